package model

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Severity levels for violations.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight returns the scoring weight of a severity level.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Rank orders severities for sorting and comparisons (higher is worse).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ViolationKind identifies which detector produced a violation.
type ViolationKind string

const (
	// Connascence families.
	KindName      ViolationKind = "connascence_of_name"
	KindType      ViolationKind = "connascence_of_type"
	KindMeaning   ViolationKind = "connascence_of_meaning"
	KindPosition  ViolationKind = "connascence_of_position"
	KindAlgorithm ViolationKind = "connascence_of_algorithm"
	KindExecution ViolationKind = "connascence_of_execution"
	KindTiming    ViolationKind = "connascence_of_timing"
	KindValue     ViolationKind = "connascence_of_value"
	KindIdentity  ViolationKind = "connascence_of_identity"

	// Structural-size smell.
	KindGodObject ViolationKind = "god_object"

	// Safety-rule family (power-of-ten style structural limits).
	KindSafetyComplexity ViolationKind = "safety_rule_complexity"
	KindSafetyNesting    ViolationKind = "safety_rule_nesting"
	KindSafetyParams     ViolationKind = "safety_rule_parameters"
	KindSafetyGlobals    ViolationKind = "safety_rule_globals"
	KindSafetyRecursion  ViolationKind = "safety_rule_recursion"
)

// RuleFamily groups violation kinds for compliance scoring.
type RuleFamily string

const (
	FamilyConnascence RuleFamily = "connascence"
	FamilySafety      RuleFamily = "safety"
	FamilyStructure   RuleFamily = "structure"
)

// Family returns the rule family a violation kind belongs to.
func (k ViolationKind) Family() RuleFamily {
	switch k {
	case KindSafetyComplexity, KindSafetyNesting, KindSafetyParams,
		KindSafetyGlobals, KindSafetyRecursion:
		return FamilySafety
	case KindGodObject:
		return FamilyStructure
	default:
		return FamilyConnascence
	}
}

// ViolationID derives a stable identifier so repeated runs over unchanged
// source produce identical violations.
func ViolationID(kind ViolationKind, filePath string, line, col int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d|%d", kind, filePath, line, col)
	return fmt.Sprintf("%s-%016x", kind.short(), h.Sum64())
}

func (k ViolationKind) short() string {
	s := string(k)
	if idx := strings.LastIndex(s, "_"); idx >= 0 && strings.HasPrefix(s, "connascence") {
		return "con-" + s[idx+1:]
	}
	return s
}

// Violation is an immutable finding produced by exactly one evaluator.
type Violation struct {
	ID             string                 `json:"id"`
	Kind           ViolationKind          `json:"kind"`
	Severity       Severity               `json:"severity"`
	FilePath       string                 `json:"file_path"`
	Line           int                    `json:"line"`
	Column         int                    `json:"column"`
	Description    string                 `json:"description"`
	Recommendation string                 `json:"recommendation"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// CodeBlockRef locates one member of a duplicate cluster.
type CodeBlockRef struct {
	FilePath  string `json:"file_path"`
	Function  string `json:"function"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Signature string `json:"signature"`
}

// DuplicateCluster is a group of structurally similar code blocks. Blocks are
// ordered by (file path, start line) so output is stable across runs.
type DuplicateCluster struct {
	ID         string         `json:"id"`
	Blocks     []CodeBlockRef `json:"blocks"`
	Similarity float64        `json:"similarity"`
	ExactMatch bool           `json:"exact_match"`
	Files      []string       `json:"files"`
}
