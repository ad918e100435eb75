package rules

import (
	"fmt"
	"strings"

	"connscan/internal/config"
	"connscan/internal/model"
)

// TimingEvaluator flags blocking-sleep calls. Sleeping to wait for another
// component is dynamic coupling on wall-clock timing and masks race
// conditions, so it defaults to critical.
type TimingEvaluator struct{}

// NewTimingEvaluator creates a new timing evaluator.
func NewTimingEvaluator() *TimingEvaluator {
	return &TimingEvaluator{}
}

func (e *TimingEvaluator) Name() string {
	return "connascence_timing"
}

func (e *TimingEvaluator) Kind() model.ViolationKind {
	return model.KindTiming
}

var sleepCallees = map[string]bool{
	"sleep":      true,
	"usleep":     true,
	"nanosleep":  true,
	"settimeout": true, // setTimeout used as a delay
	"delay":      true,
	"wait":       true,
	"pause":      true,
}

func (e *TimingEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation

	for _, fn := range m.Functions {
		for _, call := range fn.Calls {
			if !sleepCallees[strings.ToLower(call.Callee)] {
				continue
			}
			violations = append(violations, model.Violation{
				ID:       model.ViolationID(model.KindTiming, m.FilePath, call.Line, 1),
				Kind:     model.KindTiming,
				Severity: model.SeverityCritical,
				FilePath: m.FilePath,
				Line:     call.Line,
				Column:   1,
				Description: fmt.Sprintf("Blocking sleep call %q in %q couples correctness to wall-clock timing",
					call.Callee, fn.Name),
				Recommendation: "Replace the sleep with an explicit synchronization primitive or event",
				Context: map[string]interface{}{
					"function": fn.Name,
					"callee":   call.Callee,
				},
			})
		}
	}

	return violations
}
