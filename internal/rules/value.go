package rules

import (
	"fmt"
	"sort"

	"connscan/internal/config"
	"connscan/internal/model"
)

// ValueEvaluator flags shared-constant coupling: the same unexplained literal
// repeated across several functions must change everywhere at once.
type ValueEvaluator struct{}

// NewValueEvaluator creates a new value evaluator.
func NewValueEvaluator() *ValueEvaluator {
	return &ValueEvaluator{}
}

func (e *ValueEvaluator) Name() string {
	return "connascence_value"
}

func (e *ValueEvaluator) Kind() model.ViolationKind {
	return model.KindValue
}

func (e *ValueEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	type usage struct {
		functions map[string]bool
		first     model.LiteralUse
		count     int
	}

	byValue := make(map[string]*usage)
	var order []string
	for _, lit := range m.Literals {
		if policy.IsSafeLiteral(lit.Value) || lit.Function == "" {
			continue
		}
		u, ok := byValue[lit.Value]
		if !ok {
			u = &usage{functions: make(map[string]bool), first: lit}
			byValue[lit.Value] = u
			order = append(order, lit.Value)
		}
		u.functions[lit.Function] = true
		u.count++
	}
	sort.Strings(order)

	var violations []model.Violation
	for _, value := range order {
		u := byValue[value]
		// Repetition inside one function is already a meaning finding; value
		// coupling needs the literal shared across functions.
		if u.count < policy.MinValueRepeats || len(u.functions) < 2 {
			continue
		}

		severity := model.SeverityLow
		if len(u.functions) >= 3 {
			severity = model.SeverityMedium
		}

		display := value
		if u.first.IsString {
			display = fmt.Sprintf("%q", value)
		}

		violations = append(violations, model.Violation{
			ID:       model.ViolationID(model.KindValue, m.FilePath, u.first.Line, u.first.Column),
			Kind:     model.KindValue,
			Severity: severity,
			FilePath: m.FilePath,
			Line:     u.first.Line,
			Column:   u.first.Column,
			Description: fmt.Sprintf("Literal %s repeated %d times across %d functions",
				display, u.count, len(u.functions)),
			Recommendation: fmt.Sprintf("Define %s once as a shared named constant", display),
			Context: map[string]interface{}{
				"value":          value,
				"repeat_count":   u.count,
				"function_count": len(u.functions),
			},
		})
	}

	sortViolations(violations)
	return violations
}
