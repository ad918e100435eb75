package rules

import (
	"fmt"
	"regexp"

	"connscan/internal/config"
	"connscan/internal/model"
)

// ExecutionEvaluator flags ordering dependencies between state-mutating calls:
// repeated mutator calls against the same receiver inside one function only
// work when executed in that exact order.
type ExecutionEvaluator struct {
	mutatorPattern *regexp.Regexp
}

// NewExecutionEvaluator creates a new execution evaluator.
func NewExecutionEvaluator() *ExecutionEvaluator {
	return &ExecutionEvaluator{
		mutatorPattern: regexp.MustCompile(`(?i)^(set|add|remove|update|push|pop|append|insert|delete|write|clear|reset|enable|disable|init)`),
	}
}

func (e *ExecutionEvaluator) Name() string {
	return "connascence_execution"
}

func (e *ExecutionEvaluator) Kind() model.ViolationKind {
	return model.KindExecution
}

func (e *ExecutionEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation

	for _, fn := range m.Functions {
		mutations := make(map[string][]model.CallSite)
		for _, call := range fn.Calls {
			if call.Receiver == "" || !e.mutatorPattern.MatchString(call.Callee) {
				continue
			}
			mutations[call.Receiver] = append(mutations[call.Receiver], call)
		}

		for receiver, calls := range mutations {
			if len(calls) < policy.MinExecutionCalls {
				continue
			}

			severity := model.SeverityMedium
			if len(calls) >= policy.MinExecutionCalls*2 {
				severity = model.SeverityHigh
			}

			first := calls[0]
			violations = append(violations, model.Violation{
				ID:       model.ViolationID(model.KindExecution, m.FilePath, first.Line, 1),
				Kind:     model.KindExecution,
				Severity: severity,
				FilePath: m.FilePath,
				Line:     first.Line,
				Column:   1,
				Description: fmt.Sprintf("%d sequential mutating calls on %q in %q depend on execution order",
					len(calls), receiver, fn.Name),
				Recommendation: "Collapse the mutation sequence into one explicit operation or constructor",
				Context: map[string]interface{}{
					"function":   fn.Name,
					"receiver":   receiver,
					"call_count": len(calls),
				},
			})
		}
	}

	sortViolations(violations)
	return violations
}
