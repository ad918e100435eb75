package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"connscan/internal/model"
)

// AnalysisPolicy is the threshold bundle for one run. It is loaded once,
// validated, and read-only during analysis; evaluators never mutate it.
type AnalysisPolicy struct {
	Name string `yaml:"name"`

	// Position family. The general detection limit and the safety-rule limit
	// are distinct concerns and configured independently.
	MaxPositionalParams int `yaml:"max_positional_params"`
	MaxFunctionParams   int `yaml:"max_function_params"`

	// Safety-rule family.
	MaxComplexity   int  `yaml:"max_complexity"`
	MaxNestingDepth int  `yaml:"max_nesting_depth"`
	MaxGlobals      int  `yaml:"max_globals"`
	FlagRecursion   bool `yaml:"flag_recursion"`

	// God object thresholds.
	MaxMethods     int `yaml:"max_methods"`
	WarnMethods    int `yaml:"warn_methods"`
	MaxClassLines  int `yaml:"max_class_lines"`
	WarnClassLines int `yaml:"warn_class_lines"`

	// Name/type/value families.
	MaxImports        int `yaml:"max_imports"`
	MaxParamTypes     int `yaml:"max_param_types"`
	MinValueRepeats   int `yaml:"min_value_repeats"`
	MinExecutionCalls int `yaml:"min_execution_calls"`

	// Duplicate detection.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinClusterSize      int     `yaml:"min_cluster_size"`
	MinDupStatements    int     `yaml:"min_dup_statements"`

	// Literals that never count as magic values.
	SafeLiterals []string `yaml:"safe_literals"`

	// Quality gates.
	OverallGate     float64 `yaml:"overall_gate"`
	SafetyGate      float64 `yaml:"safety_gate"`
	DuplicationGate float64 `yaml:"duplication_gate"`

	// Execution budget.
	Workers       int `yaml:"workers"`
	FileTimeoutMs int `yaml:"file_timeout_ms"`

	// Weight applied to violations from pattern-based (partial) models when
	// computing the overall score.
	PartialWeight float64 `yaml:"partial_weight"`
}

// DefaultPolicy returns the baseline threshold bundle.
func DefaultPolicy() *AnalysisPolicy {
	return &AnalysisPolicy{
		Name:                "default",
		MaxPositionalParams: 3,
		MaxFunctionParams:   6,
		MaxComplexity:       10,
		MaxNestingDepth:     4,
		MaxGlobals:          5,
		FlagRecursion:       false,
		MaxMethods:          20,
		WarnMethods:         15,
		MaxClassLines:       500,
		WarnClassLines:      300,
		MaxImports:          15,
		MaxParamTypes:       4,
		MinValueRepeats:     3,
		MinExecutionCalls:   2,
		SimilarityThreshold: 0.7,
		MinClusterSize:      2,
		MinDupStatements:    3,
		SafeLiterals:        []string{"0", "1", "-1", "", "utf-8"},
		OverallGate:         0.70,
		SafetyGate:          0.95,
		DuplicationGate:     0.80,
		Workers:             runtime.NumCPU(),
		FileTimeoutMs:       10000,
		PartialWeight:       0.5,
	}
}

// LoadPreset returns a named policy preset.
func LoadPreset(name string) (*AnalysisPolicy, error) {
	p := DefaultPolicy()
	switch name {
	case "", "default":
	case "strict":
		p.Name = "strict"
		p.MaxPositionalParams = 3
		p.MaxFunctionParams = 4
		p.MaxComplexity = 8
		p.MaxNestingDepth = 3
		p.MaxGlobals = 3
		p.MaxMethods = 15
		p.WarnMethods = 10
		p.MaxClassLines = 300
		p.WarnClassLines = 200
		p.SimilarityThreshold = 0.6
		p.OverallGate = 0.85
		p.SafetyGate = 0.98
		p.DuplicationGate = 0.90
		p.FlagRecursion = true
	case "safety-compliance":
		p.Name = "safety-compliance"
		p.FlagRecursion = true
		p.MaxComplexity = 10
		p.MaxNestingDepth = 3
		p.MaxFunctionParams = 6
		p.SafetyGate = 0.95
	case "lenient":
		p.Name = "lenient"
		p.MaxPositionalParams = 5
		p.MaxFunctionParams = 8
		p.MaxComplexity = 15
		p.MaxNestingDepth = 6
		p.MaxGlobals = 10
		p.MaxMethods = 30
		p.WarnMethods = 25
		p.MaxClassLines = 800
		p.WarnClassLines = 600
		p.SimilarityThreshold = 0.85
		p.OverallGate = 0.50
		p.SafetyGate = 0.80
		p.DuplicationGate = 0.60
	default:
		return nil, &model.PolicyConfigError{Field: "name", Reason: fmt.Sprintf("unknown preset %q", name)}
	}
	return p, nil
}

// LoadPolicyFile loads a YAML policy file on top of the default preset, so a
// file only needs to name the thresholds it overrides.
func LoadPolicyFile(path string) (*AnalysisPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, &model.PolicyConfigError{Field: "file", Reason: err.Error()}
	}
	if p.Name == "" {
		p.Name = "custom"
	}
	return p, nil
}

// Validate checks threshold sanity. Any failure aborts the run before
// analysis starts.
func (p *AnalysisPolicy) Validate() error {
	positive := map[string]int{
		"max_positional_params": p.MaxPositionalParams,
		"max_function_params":   p.MaxFunctionParams,
		"max_complexity":        p.MaxComplexity,
		"max_nesting_depth":     p.MaxNestingDepth,
		"max_globals":           p.MaxGlobals,
		"max_methods":           p.MaxMethods,
		"warn_methods":          p.WarnMethods,
		"max_class_lines":       p.MaxClassLines,
		"warn_class_lines":      p.WarnClassLines,
		"min_cluster_size":      p.MinClusterSize,
		"min_dup_statements":    p.MinDupStatements,
	}
	for field, value := range positive {
		if value <= 0 {
			return &model.PolicyConfigError{Field: field, Reason: "must be positive"}
		}
	}

	if p.WarnMethods > p.MaxMethods {
		return &model.PolicyConfigError{Field: "warn_methods", Reason: "must not exceed max_methods"}
	}
	if p.WarnClassLines > p.MaxClassLines {
		return &model.PolicyConfigError{Field: "warn_class_lines", Reason: "must not exceed max_class_lines"}
	}

	ratios := map[string]float64{
		"similarity_threshold": p.SimilarityThreshold,
		"overall_gate":         p.OverallGate,
		"safety_gate":          p.SafetyGate,
		"duplication_gate":     p.DuplicationGate,
		"partial_weight":       p.PartialWeight,
	}
	for field, value := range ratios {
		if value <= 0 || value > 1 {
			return &model.PolicyConfigError{Field: field, Reason: "must be in (0, 1]"}
		}
	}

	if p.Workers <= 0 {
		p.Workers = runtime.NumCPU()
	}
	if p.FileTimeoutMs <= 0 {
		p.FileTimeoutMs = 10000
	}
	return nil
}

// IsSafeLiteral reports whether a literal value is in the allowlist.
func (p *AnalysisPolicy) IsSafeLiteral(value string) bool {
	for _, safe := range p.SafeLiterals {
		if value == safe {
			return true
		}
	}
	return false
}
