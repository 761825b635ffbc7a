package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/perbu/expreval/pkg/arena"
	"github.com/perbu/expreval/pkg/config"
	"github.com/perbu/expreval/pkg/evalctx"
	"github.com/perbu/expreval/pkg/evalerr"
	"github.com/perbu/expreval/pkg/eval"
	"github.com/perbu/expreval/pkg/parser"
)

const version = "0.1.0-alpha"

func run(_ context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("expreval", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("v", false, "verbose output")
	verboseLong := flags.Bool("verbose", false, "verbose output")
	showVersion := flags.Bool("version", false, "show version information")
	configPath := flags.String("config", "", "path to a YAML batch-engine config file")
	listFunctions := flags.Bool("list-functions", false, "list the default context's registered functions and exit")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "expreval version %s\n", version)
		return 0
	}

	logLevel := slog.LevelInfo
	if *verbose || *verboseLong {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	if *listFunctions {
		return runListFunctions(stdout)
	}

	if *configPath != "" {
		return runConfig(*configPath, stdout, logger)
	}

	exprs := flags.Args()
	if len(exprs) == 0 {
		printUsage(stderr)
		return 1
	}
	return runExpressions(exprs, stdout, stderr, logger)
}

func runListFunctions(stdout io.Writer) int {
	a := arena.New(16, 16)
	ctx := evalctx.NewDefault(evalctx.DefaultLimits(), a)
	for _, name := range ctx.NativeFunctionNames() {
		nf, _ := ctx.LookupNativeFunction(name)
		if nf.Description != "" {
			fmt.Fprintf(stdout, "%-10s arity=%d  %s\n", nf.Name, nf.Arity, nf.Description)
		} else {
			fmt.Fprintf(stdout, "%-10s arity=%d\n", nf.Name, nf.Arity)
		}
	}
	return 0
}

func runConfig(path string, stdout io.Writer, logger *slog.Logger) int {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		return 1
	}
	_, _, eng, err := cfg.Build()
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		return 1
	}
	if err := eng.Eval(); err != nil {
		logger.Error("evaluation failed", "error", err)
		return exitCodeFor(err)
	}
	for i, v := range eng.GetAllResults() {
		fmt.Fprintf(stdout, "[%d] = %v\n", i, v)
	}
	return 0
}

func runExpressions(exprs []string, stdout, stderr io.Writer, logger *slog.Logger) int {
	a := arena.New(4096, 1024)
	ctx := evalctx.NewDefault(evalctx.DefaultLimits(), a)
	evalr := eval.New(ctx.Limits())

	worst := 0
	for _, src := range exprs {
		root, err := parser.Parse(src, a)
		if err != nil {
			logger.Debug("parse error", "expr", src, "error", err)
			fmt.Fprintf(stderr, "%s: %v\n", src, err)
			worst = exitCodeFor(err)
			continue
		}
		v, err := evalr.Eval(root, a, ctx, nil)
		if err != nil {
			logger.Debug("eval error", "expr", src, "error", err)
			fmt.Fprintf(stderr, "%s: %v\n", src, err)
			worst = exitCodeFor(err)
			continue
		}
		fmt.Fprintf(stdout, "%s = %v\n", src, v)
	}
	return worst
}

// exitCodeFor maps an *evalerr.Error's Kind to a small, stable non-zero
// exit code family so scripts can distinguish capacity exhaustion from a
// plain evaluation failure without parsing stderr text.
func exitCodeFor(err error) int {
	var evErr *evalerr.Error
	if errors.As(err, &evErr) && evErr.Kind == evalerr.CapacityExceeded {
		return 3
	}
	return 1
}

func printUsage(stderr io.Writer) {
	fmt.Fprintf(stderr, `expreval - arithmetic expression evaluator

Usage:
  expreval [options] <expression>...
  expreval -config <file.yaml>

Options:
  -v, --verbose       Show verbose (debug) logging
  -config <file>      Load a batch-engine configuration and evaluate it once
  -list-functions     List the default context's registered functions
  -version            Show version information

Examples:
  expreval "1 + 2 * 3"
  expreval -v "sqrt(16)"
  expreval -config batch.yaml
`)
}
