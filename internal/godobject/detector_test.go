package godobject

import (
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"connscan/internal/config"
	"connscan/internal/model"
)

func classWithMethods(name string, methods, startLine, endLine int) (*model.ClassNode, []*model.FunctionNode) {
	cls := &model.ClassNode{Name: name, StartLine: startLine, EndLine: endLine}
	var fns []*model.FunctionNode
	for i := 0; i < methods; i++ {
		fn := &model.FunctionNode{
			Name:      fmt.Sprintf("method%d", i),
			ClassName: name,
			StartLine: startLine + i,
			Body:      []model.StatementKind{model.StmtAssign, model.StmtReturn},
		}
		cls.Methods = append(cls.Methods, fn)
		fns = append(fns, fn)
	}
	return cls, fns
}

func TestDetect_CriticalTierReportsOnce(t *testing.T) {
	policy := config.DefaultPolicy()
	cls, fns := classWithMethods("Monolith", 25, 10, 609) // 600 lines, both tiers exceeded
	m := &model.StructuralModel{FilePath: "big.py", Classes: []*model.ClassNode{cls}, Functions: fns}

	violations := NewDetector(zap.NewNop()).Detect(m, policy)
	if len(violations) != 1 {
		t.Fatalf("a class gets at most one violation, got %d", len(violations))
	}
	v := violations[0]
	if v.Kind != model.KindGodObject || v.Severity != model.SeverityCritical {
		t.Fatalf("expected critical god object, got %s %s", v.Kind, v.Severity)
	}
	if v.Context["method_count"] != 25 {
		t.Fatalf("expected method_count 25, got %v", v.Context["method_count"])
	}
	if v.Context["loc"] != 600 {
		t.Fatalf("expected loc 600, got %v", v.Context["loc"])
	}
	if _, ok := v.Context["loc_estimated"]; ok {
		t.Fatal("loc from real line spans must not be marked estimated")
	}
}

func TestDetect_WarningTier(t *testing.T) {
	policy := config.DefaultPolicy()
	cls, fns := classWithMethods("Large", 16, 1, 100)
	m := &model.StructuralModel{FilePath: "mid.py", Classes: []*model.ClassNode{cls}, Functions: fns}

	violations := NewDetector(zap.NewNop()).Detect(m, policy)
	if len(violations) != 1 || violations[0].Severity != model.SeverityHigh {
		t.Fatalf("expected one high violation, got %v", violations)
	}
}

func TestDetect_EstimatedLOCFlagged(t *testing.T) {
	policy := config.DefaultPolicy()
	// No end-line metadata: LOC falls back to statement-count estimation.
	cls := &model.ClassNode{Name: "Opaque", StartLine: 1}
	for i := 0; i < 5; i++ {
		fn := &model.FunctionNode{Name: fmt.Sprintf("m%d", i), ClassName: "Opaque"}
		for j := 0; j < 60; j++ {
			fn.Body = append(fn.Body, model.StmtCall)
		}
		cls.Methods = append(cls.Methods, fn)
	}
	m := &model.StructuralModel{FilePath: "legacy.rb", Partial: true, Classes: []*model.ClassNode{cls}}

	violations := NewDetector(zap.NewNop()).Detect(m, policy)
	if len(violations) != 1 {
		t.Fatalf("expected one violation, got %d", len(violations))
	}
	if violations[0].Context["loc_estimated"] != true {
		t.Fatal("estimated loc must be flagged in context")
	}
	if violations[0].Context["loc"] != 600 {
		t.Fatalf("expected estimated loc 600, got %v", violations[0].Context["loc"])
	}
}

func TestDetect_SmallClassesAreClean(t *testing.T) {
	policy := config.DefaultPolicy()
	cls, fns := classWithMethods("Tidy", 5, 1, 50)
	m := &model.StructuralModel{FilePath: "ok.py", Classes: []*model.ClassNode{cls}, Functions: fns}

	if got := NewDetector(zap.NewNop()).Detect(m, policy); len(got) != 0 {
		t.Fatalf("expected no violations, got %d", len(got))
	}
}

func TestDetect_Idempotent(t *testing.T) {
	policy := config.DefaultPolicy()
	cls, fns := classWithMethods("Monolith", 25, 10, 609)
	m := &model.StructuralModel{FilePath: "big.py", Classes: []*model.ClassNode{cls}, Functions: fns}

	d := NewDetector(zap.NewNop())
	first := d.Detect(m, policy)
	second := d.Detect(m, policy)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("detection over an unchanged model must be identical")
	}
}
