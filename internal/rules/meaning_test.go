package rules

import (
	"testing"

	"connscan/internal/config"
	"connscan/internal/model"
)

func TestMeaning_SafeLiteralsNeverFlagged(t *testing.T) {
	policy := config.DefaultPolicy()
	m := &model.StructuralModel{
		FilePath: "a.py",
		Literals: []model.LiteralUse{
			{Value: "0", Context: model.ContextConditional, Line: 1, Column: 1},
			{Value: "1", Context: model.ContextArgument, Line: 2, Column: 1},
			{Value: "-1", Context: model.ContextAssignment, Line: 3, Column: 1},
			{Value: "utf-8", IsString: true, Context: model.ContextConditional, Line: 4, Column: 1},
			{Value: "", IsString: true, Context: model.ContextArgument, Line: 5, Column: 1},
		},
	}

	violations := NewMeaningEvaluator().Evaluate(m, policy)
	if len(violations) != 0 {
		t.Fatalf("safe literals must not violate regardless of context, got %d", len(violations))
	}
}

func TestMeaning_ConditionalIsHigh(t *testing.T) {
	policy := config.DefaultPolicy()
	m := &model.StructuralModel{
		FilePath: "a.py",
		Literals: []model.LiteralUse{
			{Value: "86400", Context: model.ContextConditional, Function: "f", Line: 3, Column: 8},
			{Value: "86400", Context: model.ContextArgument, Function: "f", Line: 9, Column: 12},
		},
	}

	violations := NewMeaningEvaluator().Evaluate(m, policy)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(violations))
	}
	if violations[0].Severity != model.SeverityHigh {
		t.Fatalf("conditional literal should be high, got %s", violations[0].Severity)
	}
	if violations[1].Severity != model.SeverityMedium {
		t.Fatalf("argument literal should be medium, got %s", violations[1].Severity)
	}
	if violations[0].Context["magic_value"] != "86400" {
		t.Fatalf("expected magic_value in context, got %v", violations[0].Context)
	}
}
