package rules

import (
	"fmt"

	"connscan/internal/config"
	"connscan/internal/model"
)

// MeaningEvaluator flags magic literals: numeric or string values whose
// meaning is carried by convention instead of a named constant.
type MeaningEvaluator struct{}

// NewMeaningEvaluator creates a new meaning evaluator.
func NewMeaningEvaluator() *MeaningEvaluator {
	return &MeaningEvaluator{}
}

func (e *MeaningEvaluator) Name() string {
	return "connascence_meaning"
}

func (e *MeaningEvaluator) Kind() model.ViolationKind {
	return model.KindMeaning
}

func (e *MeaningEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation

	for _, lit := range m.Literals {
		if policy.IsSafeLiteral(lit.Value) {
			continue
		}

		severity := model.SeverityMedium
		if lit.Context == model.ContextConditional {
			severity = model.SeverityHigh
		}

		display := lit.Value
		if lit.IsString {
			display = fmt.Sprintf("%q", lit.Value)
		}

		violations = append(violations, model.Violation{
			ID:       model.ViolationID(model.KindMeaning, m.FilePath, lit.Line, lit.Column),
			Kind:     model.KindMeaning,
			Severity: severity,
			FilePath: m.FilePath,
			Line:     lit.Line,
			Column:   lit.Column,
			Description: fmt.Sprintf("Magic literal %s in %s context couples callers to an unexplained value",
				display, lit.Context),
			Recommendation: fmt.Sprintf("Extract %s into a named constant", display),
			Context: map[string]interface{}{
				"magic_value":     lit.Value,
				"literal_context": string(lit.Context),
				"function":        lit.Function,
			},
		})
	}

	return violations
}
