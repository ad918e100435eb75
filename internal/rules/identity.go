package rules

import (
	"fmt"

	"connscan/internal/config"
	"connscan/internal/model"
)

// IdentityEvaluator flags shared mutable globals: when many module-level
// bindings exist, every reader is coupled to the same object identity.
type IdentityEvaluator struct{}

// NewIdentityEvaluator creates a new identity evaluator.
func NewIdentityEvaluator() *IdentityEvaluator {
	return &IdentityEvaluator{}
}

func (e *IdentityEvaluator) Name() string {
	return "connascence_identity"
}

func (e *IdentityEvaluator) Kind() model.ViolationKind {
	return model.KindIdentity
}

func (e *IdentityEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	distinct := make(map[string]bool)
	firstLine := 0
	for _, g := range m.Globals {
		if !distinct[g.Name] && (firstLine == 0 || g.Line < firstLine) {
			firstLine = g.Line
		}
		distinct[g.Name] = true
	}

	if len(distinct) <= policy.MaxGlobals {
		return nil
	}

	return []model.Violation{{
		ID:       model.ViolationID(model.KindIdentity, m.FilePath, firstLine, 1),
		Kind:     model.KindIdentity,
		Severity: model.SeverityHigh,
		FilePath: m.FilePath,
		Line:     firstLine,
		Column:   1,
		Description: fmt.Sprintf("File declares %d mutable global bindings (limit %d)",
			len(distinct), policy.MaxGlobals),
		Recommendation: "Move shared state behind an explicit owner passed to its users",
		Context: map[string]interface{}{
			"global_count": len(distinct),
			"global_limit": policy.MaxGlobals,
		},
	}}
}
