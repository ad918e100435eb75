package rules

import (
	"fmt"

	"connscan/internal/config"
	"connscan/internal/model"
)

// NameEvaluator flags name-reference coupling through the import graph: a
// file that imports a very wide set of modules knows too many names.
type NameEvaluator struct{}

// NewNameEvaluator creates a new name evaluator.
func NewNameEvaluator() *NameEvaluator {
	return &NameEvaluator{}
}

func (e *NameEvaluator) Name() string {
	return "connascence_name"
}

func (e *NameEvaluator) Kind() model.ViolationKind {
	return model.KindName
}

func (e *NameEvaluator) Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	distinct := make(map[string]bool)
	firstLine := 0
	for _, imp := range m.Imports {
		if !distinct[imp.Module] && (firstLine == 0 || imp.Line < firstLine) {
			firstLine = imp.Line
		}
		distinct[imp.Module] = true
	}

	if len(distinct) <= policy.MaxImports {
		return nil
	}

	severity := model.SeverityLow
	if len(distinct) > policy.MaxImports*2 {
		severity = model.SeverityMedium
	}

	return []model.Violation{{
		ID:       model.ViolationID(model.KindName, m.FilePath, firstLine, 1),
		Kind:     model.KindName,
		Severity: severity,
		FilePath: m.FilePath,
		Line:     firstLine,
		Column:   1,
		Description: fmt.Sprintf("File references %d imported modules by name (limit %d)",
			len(distinct), policy.MaxImports),
		Recommendation: "Split the file along its import clusters to narrow each unit's name surface",
		Context: map[string]interface{}{
			"import_count": len(distinct),
			"import_limit": policy.MaxImports,
		},
	}}
}
