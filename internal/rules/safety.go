package rules

import (
	"fmt"

	"connscan/internal/config"
	"connscan/internal/model"
)

// SafetyEvaluator enforces the power-of-ten style structural limits:
// complexity, nesting depth, parameter count, global count and recursion.
// Parameter count overlaps the position family on purpose; the safety finding
// is tagged separately so compliance scoring can isolate it, and it uses its
// own, larger limit. Reachability/coverage rules are not expressible from
// static structure and are left to coverage tooling.
type SafetyEvaluator struct{}

// NewSafetyEvaluator creates a new safety-rule evaluator.
func NewSafetyEvaluator() *SafetyEvaluator {
	return &SafetyEvaluator{}
}

func (e *SafetyEvaluator) Name() string {
	return "safety_rules"
}

func (e *SafetyEvaluator) Kind() model.ViolationKind {
	return model.KindSafetyComplexity
}

func (e *SafetyEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation

	for _, fn := range m.Functions {
		if fn.Complexity > policy.MaxComplexity {
			violations = append(violations, model.Violation{
				ID:       model.ViolationID(model.KindSafetyComplexity, m.FilePath, fn.StartLine, 1),
				Kind:     model.KindSafetyComplexity,
				Severity: model.SeverityCritical,
				FilePath: m.FilePath,
				Line:     fn.StartLine,
				Column:   1,
				Description: fmt.Sprintf("Function %q has cyclomatic complexity %d (limit %d)",
					fn.Name, fn.Complexity, policy.MaxComplexity),
				Recommendation: "Decompose the function until each piece has a single decision focus",
				Context: map[string]interface{}{
					"function":   fn.Name,
					"complexity": fn.Complexity,
					"limit":      policy.MaxComplexity,
				},
			})
		}

		if fn.NestingDepth > policy.MaxNestingDepth {
			violations = append(violations, model.Violation{
				ID:       model.ViolationID(model.KindSafetyNesting, m.FilePath, fn.StartLine, 1),
				Kind:     model.KindSafetyNesting,
				Severity: model.SeverityHigh,
				FilePath: m.FilePath,
				Line:     fn.StartLine,
				Column:   1,
				Description: fmt.Sprintf("Function %q nests control flow %d levels deep (limit %d)",
					fn.Name, fn.NestingDepth, policy.MaxNestingDepth),
				Recommendation: "Flatten with early returns or extract the inner blocks",
				Context: map[string]interface{}{
					"function":      fn.Name,
					"nesting_depth": fn.NestingDepth,
					"limit":         policy.MaxNestingDepth,
				},
			})
		}

		if count := len(fn.Params); count > policy.MaxFunctionParams {
			violations = append(violations, model.Violation{
				ID:       model.ViolationID(model.KindSafetyParams, m.FilePath, fn.StartLine, 1),
				Kind:     model.KindSafetyParams,
				Severity: model.SeverityHigh,
				FilePath: m.FilePath,
				Line:     fn.StartLine,
				Column:   1,
				Description: fmt.Sprintf("Function %q takes %d parameters (safety limit %d)",
					fn.Name, count, policy.MaxFunctionParams),
				Recommendation: "Reduce the signature to the safety limit",
				Context: map[string]interface{}{
					"function":        fn.Name,
					"parameter_count": count,
					"parameter_limit": policy.MaxFunctionParams,
				},
			})
		}

		if fn.Recursive && policy.FlagRecursion {
			violations = append(violations, model.Violation{
				ID:       model.ViolationID(model.KindSafetyRecursion, m.FilePath, fn.StartLine, 1),
				Kind:     model.KindSafetyRecursion,
				Severity: model.SeverityMedium,
				FilePath: m.FilePath,
				Line:     fn.StartLine,
				Column:   1,
				Description: fmt.Sprintf("Function %q calls itself; recursion depth is unbounded statically",
					fn.Name),
				Recommendation: "Rewrite as an iteration with an explicit bound",
				Context: map[string]interface{}{
					"function": fn.Name,
				},
			})
		}
	}

	// Global count is also a safety rule, independent of the identity family.
	distinct := make(map[string]bool)
	firstLine := 0
	for _, g := range m.Globals {
		if !distinct[g.Name] && (firstLine == 0 || g.Line < firstLine) {
			firstLine = g.Line
		}
		distinct[g.Name] = true
	}
	if len(distinct) > policy.MaxGlobals {
		violations = append(violations, model.Violation{
			ID:       model.ViolationID(model.KindSafetyGlobals, m.FilePath, firstLine, 1),
			Kind:     model.KindSafetyGlobals,
			Severity: model.SeverityHigh,
			FilePath: m.FilePath,
			Line:     firstLine,
			Column:   1,
			Description: fmt.Sprintf("File declares %d global bindings (safety limit %d)",
				len(distinct), policy.MaxGlobals),
			Recommendation: "Restrict data to the smallest possible scope",
			Context: map[string]interface{}{
				"global_count": len(distinct),
				"global_limit": policy.MaxGlobals,
			},
		})
	}

	return violations
}
