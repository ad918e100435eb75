package rules

import (
	"fmt"

	"connscan/internal/config"
	"connscan/internal/model"
)

// PositionEvaluator flags positional-parameter coupling: callers of a long
// parameter list must know the exact argument order.
type PositionEvaluator struct{}

// NewPositionEvaluator creates a new position evaluator.
func NewPositionEvaluator() *PositionEvaluator {
	return &PositionEvaluator{}
}

func (e *PositionEvaluator) Name() string {
	return "connascence_position"
}

func (e *PositionEvaluator) Kind() model.ViolationKind {
	return model.KindPosition
}

func (e *PositionEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation

	for _, fn := range m.Functions {
		count := len(fn.Params)
		if count <= policy.MaxPositionalParams {
			continue
		}

		// Past double the limit the coupling surface is severe enough to
		// escalate a tier.
		severity := model.SeverityHigh
		if count > policy.MaxPositionalParams*2 {
			severity = model.SeverityCritical
		}

		violations = append(violations, model.Violation{
			ID:       model.ViolationID(model.KindPosition, m.FilePath, fn.StartLine, 1),
			Kind:     model.KindPosition,
			Severity: severity,
			FilePath: m.FilePath,
			Line:     fn.StartLine,
			Column:   1,
			Description: fmt.Sprintf("Function %q takes %d positional parameters (limit %d)",
				fn.Name, count, policy.MaxPositionalParams),
			Recommendation: "Group related parameters into a parameter object or builder",
			Context: map[string]interface{}{
				"function":        fn.Name,
				"parameter_count": count,
				"parameter_limit": policy.MaxPositionalParams,
			},
		})
	}

	return violations
}
