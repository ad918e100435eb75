package rules

import (
	"testing"

	"connscan/internal/config"
	"connscan/internal/model"
)

func shapedFunction(name string, start int, body ...model.StatementKind) *model.FunctionNode {
	return &model.FunctionNode{Name: name, StartLine: start, EndLine: start + len(body), Body: body}
}

func TestAlgorithm_SharedShapeAcrossFiles(t *testing.T) {
	policy := config.DefaultPolicy()
	shape := []model.StatementKind{model.StmtIf, model.StmtAssign, model.StmtCall, model.StmtReturn}

	models := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{
			shapedFunction("parse_user", 10, shape...),
			shapedFunction("tiny", 30, model.StmtReturn), // under the minimum, never a candidate
		}},
		{FilePath: "b.py", Functions: []*model.FunctionNode{
			shapedFunction("parse_account", 5, shape...),
		}},
	}

	violations := NewAlgorithmEvaluator().EvaluateAcross(models, policy)
	if len(violations) != 2 {
		t.Fatalf("expected one violation per matching site, got %d", len(violations))
	}
	for _, v := range violations {
		if v.Kind != model.KindAlgorithm || v.Severity != model.SeverityMedium {
			t.Fatalf("unexpected violation: %+v", v)
		}
		if v.Context["matches"] != 1 {
			t.Fatalf("expected 1 match per site, got %v", v.Context["matches"])
		}
	}
	// Deterministic order: a.py before b.py.
	if violations[0].FilePath != "a.py" || violations[1].FilePath != "b.py" {
		t.Fatalf("violations out of order: %s, %s", violations[0].FilePath, violations[1].FilePath)
	}
}

func TestAlgorithm_UniqueShapesAreClean(t *testing.T) {
	policy := config.DefaultPolicy()
	models := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{
			shapedFunction("f", 1, model.StmtIf, model.StmtAssign, model.StmtCall, model.StmtReturn),
			shapedFunction("g", 10, model.StmtFor, model.StmtCall, model.StmtCall, model.StmtReturn),
		}},
	}

	if got := NewAlgorithmEvaluator().EvaluateAcross(models, policy); len(got) != 0 {
		t.Fatalf("distinct shapes must not violate, got %d", len(got))
	}
}
