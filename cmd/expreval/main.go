// Command expreval evaluates arithmetic expressions against a default (or
// YAML-configured) context and prints their results.
package main

import (
	"context"
	"os"
)

func main() {
	ctx := context.Background()
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
