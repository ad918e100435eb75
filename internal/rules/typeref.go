package rules

import (
	"fmt"

	"connscan/internal/config"
	"connscan/internal/model"
)

// TypeEvaluator flags explicit type-annotation coupling: a signature naming
// many distinct annotated types binds its callers to all of them at once.
type TypeEvaluator struct{}

// NewTypeEvaluator creates a new type evaluator.
func NewTypeEvaluator() *TypeEvaluator {
	return &TypeEvaluator{}
}

func (e *TypeEvaluator) Name() string {
	return "connascence_type"
}

func (e *TypeEvaluator) Kind() model.ViolationKind {
	return model.KindType
}

func (e *TypeEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation

	for _, fn := range m.Functions {
		distinct := make(map[string]bool)
		for _, p := range fn.Params {
			if p.TypeAnnotation != "" {
				distinct[p.TypeAnnotation] = true
			}
		}
		if len(distinct) <= policy.MaxParamTypes {
			continue
		}

		severity := model.SeverityLow
		if len(distinct) > policy.MaxParamTypes*2 {
			severity = model.SeverityMedium
		}

		violations = append(violations, model.Violation{
			ID:       model.ViolationID(model.KindType, m.FilePath, fn.StartLine, 1),
			Kind:     model.KindType,
			Severity: severity,
			FilePath: m.FilePath,
			Line:     fn.StartLine,
			Column:   1,
			Description: fmt.Sprintf("Function %q names %d distinct parameter types (limit %d)",
				fn.Name, len(distinct), policy.MaxParamTypes),
			Recommendation: "Introduce a narrower interface or aggregate type for the signature",
			Context: map[string]interface{}{
				"function":   fn.Name,
				"type_count": len(distinct),
				"type_limit": policy.MaxParamTypes,
			},
		})
	}

	return violations
}
