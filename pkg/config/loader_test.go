package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, yamlBody string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte(yamlBody), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return configFile
}

func TestLoad_ValidConfig(t *testing.T) {
	configFile := writeConfig(t, `
engine:
  parameters:
    - name: a
      initial: 1.5
    - name: b
      initial: 2.5
  expressions:
    - "a + b"
    - "a * b"
`)

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Engine.Parameters) != 2 {
		t.Errorf("len(Parameters) = %d, want 2", len(cfg.Engine.Parameters))
	}
	if len(cfg.Engine.Expressions) != 2 {
		t.Errorf("len(Expressions) = %d, want 2", len(cfg.Engine.Expressions))
	}
	// Defaults should have been applied.
	if cfg.Limits.MaxVariables == 0 {
		t.Error("MaxVariables default was not applied")
	}
	if cfg.Limits.LibmAvailable == nil || !*cfg.Limits.LibmAvailable {
		t.Error("LibmAvailable default was not applied to true")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("Load() error = %v, want 'reading config file' error", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configFile := writeConfig(t, "engine: [unterminated\n")
	_, err := Load(configFile)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("Load() error = %v, want 'parsing config file' error", err)
	}
}

func TestValidate_RequiresExpressions(t *testing.T) {
	cfg := Config{}
	err := validate(&cfg)
	if err == nil || !strings.Contains(err.Error(), "expressions is required") {
		t.Errorf("validate() error = %v, want 'expressions is required'", err)
	}
}

func TestValidate_DuplicateParameterName(t *testing.T) {
	cfg := Config{
		Engine: EngineConfig{
			Expressions: []string{"x"},
			Parameters: []ParameterConfig{
				{Name: "x", Initial: 1},
				{Name: "x", Initial: 2},
			},
		},
	}
	err := validate(&cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate name") {
		t.Errorf("validate() error = %v, want duplicate-name error", err)
	}
}

func TestValidate_FunctionRequiresBody(t *testing.T) {
	cfg := Config{
		Engine: EngineConfig{Expressions: []string{"x"}},
		Context: ContextConfig{
			Functions: []ExpressionFunctionConfig{{Name: "f"}},
		},
	}
	err := validate(&cfg)
	if err == nil || !strings.Contains(err.Error(), "body is required") {
		t.Errorf("validate() error = %v, want body-required error", err)
	}
}

func TestApplyDefaults_FillsZeroFields(t *testing.T) {
	cfg := Config{Engine: EngineConfig{Expressions: []string{"x"}}}
	applyDefaults(&cfg)
	if cfg.Limits.MaxRecursionDepth == 0 {
		t.Error("MaxRecursionDepth should have a non-zero default")
	}
	if cfg.Engine.ArenaNodeCapacity != defaultArenaNodeCapacity {
		t.Errorf("ArenaNodeCapacity = %d, want %d", cfg.Engine.ArenaNodeCapacity, defaultArenaNodeCapacity)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Engine: EngineConfig{Expressions: []string{"x"}, ArenaNodeCapacity: 77},
		Limits: LimitsConfig{MaxVariables: 3},
	}
	applyDefaults(&cfg)
	if cfg.Engine.ArenaNodeCapacity != 77 {
		t.Errorf("ArenaNodeCapacity = %d, want 77 preserved", cfg.Engine.ArenaNodeCapacity)
	}
	if cfg.Limits.MaxVariables != 3 {
		t.Errorf("MaxVariables = %d, want 3 preserved", cfg.Limits.MaxVariables)
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	configFile := writeConfig(t, `
context:
  constants:
    k: 10
  arrays:
    data: [10, 20, 30]
  functions:
    - name: double
      params: ["n"]
      body: "n * 2"
engine:
  parameters:
    - name: x
      initial: 5
  expressions:
    - "x + k"
    - "data[1]"
    - "double(x)"
`)

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	_, _, eng, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := eng.Eval(); err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	results := eng.GetAllResults()
	if results[0] != 15 {
		t.Errorf("x + k = %v, want 15", results[0])
	}
	if results[1] != 20 {
		t.Errorf("data[1] = %v, want 20", results[1])
	}
	if results[2] != 10 {
		t.Errorf("double(x) = %v, want 10", results[2])
	}
}
