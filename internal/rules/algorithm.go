package rules

import (
	"fmt"
	"sort"

	"connscan/internal/config"
	"connscan/internal/dupes"
	"connscan/internal/model"
)

// AlgorithmEvaluator flags structural duplication between functions: two
// bodies with identical normalized statement sequences implement the same
// algorithm twice. This is the exact pre-filter in front of the fuzzy
// clustering pass, and it is the one family that needs cross-file visibility,
// so the engine runs it in the global phase.
type AlgorithmEvaluator struct{}

// NewAlgorithmEvaluator creates a new algorithm evaluator.
func NewAlgorithmEvaluator() *AlgorithmEvaluator {
	return &AlgorithmEvaluator{}
}

func (e *AlgorithmEvaluator) Name() string {
	return "connascence_algorithm"
}

func (e *AlgorithmEvaluator) Kind() model.ViolationKind {
	return model.KindAlgorithm
}

// EvaluateAcross inspects every analyzed model at once and emits one
// violation per function whose exact statement shape appears elsewhere in the
// run.
func (e *AlgorithmEvaluator) EvaluateAcross(models []*model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	type site struct {
		m  *model.StructuralModel
		fn *model.FunctionNode
	}

	bySignature := make(map[string][]site)
	for _, m := range models {
		for _, fn := range m.Functions {
			if len(fn.Body) <= policy.MinDupStatements {
				continue
			}
			sig := dupes.Signature(fn)
			bySignature[sig] = append(bySignature[sig], site{m: m, fn: fn})
		}
	}

	var signatures []string
	for sig, sites := range bySignature {
		if len(sites) >= 2 {
			signatures = append(signatures, sig)
		}
	}
	sort.Strings(signatures)

	var violations []model.Violation
	for _, sig := range signatures {
		sites := bySignature[sig]
		for _, s := range sites {
			violations = append(violations, model.Violation{
				ID:       model.ViolationID(model.KindAlgorithm, s.m.FilePath, s.fn.StartLine, 1),
				Kind:     model.KindAlgorithm,
				Severity: model.SeverityMedium,
				FilePath: s.m.FilePath,
				Line:     s.fn.StartLine,
				Column:   1,
				Description: fmt.Sprintf("Function %q shares its exact statement shape with %d other function(s)",
					s.fn.Name, len(sites)-1),
				Recommendation: "Extract the shared algorithm into one implementation",
				Context: map[string]interface{}{
					"function":  s.fn.Name,
					"signature": sig,
					"matches":   len(sites) - 1,
				},
			})
		}
	}

	sortViolations(violations)
	return violations
}
