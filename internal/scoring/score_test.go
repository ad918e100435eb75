package scoring

import (
	"math"
	"testing"

	"connscan/internal/config"
	"connscan/internal/model"
)

func TestScore_CleanRunIsPerfect(t *testing.T) {
	policy := config.DefaultPolicy()
	scores, gates := NewEngine().Score(nil, nil, 10, policy)

	if scores.Overall != 1.0 || scores.SafetyCompliance != 1.0 || scores.Duplication != 1.0 {
		t.Fatalf("clean run must score 1.0 everywhere, got %+v", scores)
	}
	if !gates.Overall || !gates.SafetyCompliance || !gates.Duplication {
		t.Fatalf("all gates must pass on a clean run, got %+v", gates)
	}
}

func TestScore_OverallDecaysMonotonically(t *testing.T) {
	policy := config.DefaultPolicy()
	e := NewEngine()

	var violations []model.Violation
	prev := 1.0
	for i := 0; i < 10; i++ {
		violations = append(violations, model.Violation{Kind: model.KindMeaning, Severity: model.SeverityHigh})
		scores, _ := e.Score(violations, nil, 0, policy)
		if scores.Overall >= prev {
			t.Fatalf("overall must strictly decrease: %f then %f", prev, scores.Overall)
		}
		if scores.Overall <= 0 {
			t.Fatalf("overall must stay positive, got %f", scores.Overall)
		}
		prev = scores.Overall
	}

	// 10 high violations: 50/(50+50) = 0.5.
	if math.Abs(prev-0.5) > 1e-9 {
		t.Fatalf("expected 0.5 after 10 high violations, got %f", prev)
	}
}

func TestScore_PartialViolationsDiscounted(t *testing.T) {
	policy := config.DefaultPolicy()
	e := NewEngine()

	full := []model.Violation{{Kind: model.KindMeaning, Severity: model.SeverityCritical}}
	partial := []model.Violation{{
		Kind:     model.KindMeaning,
		Severity: model.SeverityCritical,
		Context:  map[string]interface{}{"partial_extraction": true},
	}}

	fullScores, _ := e.Score(full, nil, 0, policy)
	partialScores, _ := e.Score(partial, nil, 0, policy)
	if partialScores.Overall <= fullScores.Overall {
		t.Fatalf("partial findings must weigh less: full %f, partial %f",
			fullScores.Overall, partialScores.Overall)
	}
}

func TestScore_SafetyComplianceIgnoresOtherFamilies(t *testing.T) {
	policy := config.DefaultPolicy()
	violations := []model.Violation{
		{Kind: model.KindMeaning, Severity: model.SeverityCritical},
		{Kind: model.KindGodObject, Severity: model.SeverityCritical},
		{Kind: model.KindSafetyNesting, Severity: model.SeverityHigh},
	}

	scores, gates := NewEngine().Score(violations, nil, 0, policy)
	want := 50.0 / 55.0 // only the one safety finding counts
	if math.Abs(scores.SafetyCompliance-want) > 1e-9 {
		t.Fatalf("expected safety score %f, got %f", want, scores.SafetyCompliance)
	}
	if gates.SafetyCompliance {
		t.Fatal("safety gate at 0.95 must fail with a high safety violation")
	}
}

func TestScore_DuplicationRatio(t *testing.T) {
	policy := config.DefaultPolicy()
	clusters := []model.DuplicateCluster{
		{Blocks: []model.CodeBlockRef{{Function: "a"}, {Function: "b"}}},
	}

	scores, gates := NewEngine().Score(nil, clusters, 10, policy)
	if math.Abs(scores.Duplication-0.8) > 1e-9 {
		t.Fatalf("2 of 10 blocks clustered should score 0.8, got %f", scores.Duplication)
	}
	if !gates.Duplication {
		t.Fatal("0.8 meets the default duplication gate")
	}

	scores, gates = NewEngine().Score(nil, clusters, 4, policy)
	if math.Abs(scores.Duplication-0.5) > 1e-9 {
		t.Fatalf("2 of 4 blocks clustered should score 0.5, got %f", scores.Duplication)
	}
	if gates.Duplication {
		t.Fatal("0.5 must fail the default duplication gate")
	}
}

func TestCounts(t *testing.T) {
	violations := []model.Violation{
		{Kind: model.KindMeaning, Severity: model.SeverityHigh},
		{Kind: model.KindMeaning, Severity: model.SeverityMedium},
		{Kind: model.KindTiming, Severity: model.SeverityCritical},
	}

	sev := SeverityCounts(violations)
	if sev[model.SeverityHigh] != 1 || sev[model.SeverityCritical] != 1 || sev[model.SeverityMedium] != 1 {
		t.Fatalf("unexpected severity counts: %v", sev)
	}
	kinds := KindCounts(violations)
	if kinds[model.KindMeaning] != 2 || kinds[model.KindTiming] != 1 {
		t.Fatalf("unexpected kind counts: %v", kinds)
	}
}
