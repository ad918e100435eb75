package dupes

import (
	"math"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"connscan/internal/config"
	"connscan/internal/model"
)

func fnWithBody(name string, start int, body ...model.StatementKind) *model.FunctionNode {
	return &model.FunctionNode{Name: name, StartLine: start, EndLine: start + len(body), Body: body}
}

func TestDetect_ExactClusterAcrossFiles(t *testing.T) {
	policy := config.DefaultPolicy()
	shape := []model.StatementKind{model.StmtIf, model.StmtReturn, model.StmtFor, model.StmtAssign}

	models := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{fnWithBody("first", 3, shape...)}},
		{FilePath: "b.py", Functions: []*model.FunctionNode{fnWithBody("second", 8, shape...)}},
	}

	clusters := NewDetector(zap.NewNop()).Detect(models, policy)
	if len(clusters) != 1 {
		t.Fatalf("expected one exact cluster, got %d", len(clusters))
	}
	c := clusters[0]
	if !c.ExactMatch || c.Similarity != 1.0 {
		t.Fatalf("expected exact match with similarity 1.0, got %+v", c)
	}
	if len(c.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(c.Blocks))
	}
	if !reflect.DeepEqual(c.Files, []string{"a.py", "b.py"}) {
		t.Fatalf("unexpected file list: %v", c.Files)
	}
}

func TestDetect_MinStatementFilter(t *testing.T) {
	policy := config.DefaultPolicy()
	// Exactly MinDupStatements statements: not analyzable, strict greater-than.
	short := []model.StatementKind{model.StmtIf, model.StmtReturn, model.StmtAssign}

	models := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{fnWithBody("first", 1, short...)}},
		{FilePath: "b.py", Functions: []*model.FunctionNode{fnWithBody("second", 1, short...)}},
	}

	if got := NewDetector(zap.NewNop()).Detect(models, policy); len(got) != 0 {
		t.Fatalf("blocks at the minimum statement count must be ignored, got %d clusters", len(got))
	}
	if n := AnalyzableBlocks(models, policy.MinDupStatements); n != 0 {
		t.Fatalf("expected 0 analyzable blocks, got %d", n)
	}
}

func TestDetect_FuzzyClusterStoresMinSimilarity(t *testing.T) {
	policy := config.DefaultPolicy()
	base := []model.StatementKind{
		model.StmtIf, model.StmtAssign, model.StmtCall, model.StmtCall,
		model.StmtFor, model.StmtAssign, model.StmtReturn,
	}
	// Same sequence with one extra statement: lcs 7, ratio 14/15 ≈ 0.93.
	near := append(append([]model.StatementKind{}, base...), model.StmtCall)

	models := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{fnWithBody("canonical", 1, base...)}},
		{FilePath: "b.py", Functions: []*model.FunctionNode{fnWithBody("variant", 1, near...)}},
	}

	clusters := NewDetector(zap.NewNop()).Detect(models, policy)
	if len(clusters) != 1 {
		t.Fatalf("expected one fuzzy cluster, got %d", len(clusters))
	}
	c := clusters[0]
	if c.ExactMatch {
		t.Fatal("expected a fuzzy cluster, got exact")
	}
	want := 14.0 / 15.0
	if math.Abs(c.Similarity-want) > 1e-9 {
		t.Fatalf("expected similarity %.4f, got %.4f", want, c.Similarity)
	}
}

func TestDetect_DeterministicUnderInputOrder(t *testing.T) {
	policy := config.DefaultPolicy()
	shape := []model.StatementKind{model.StmtIf, model.StmtReturn, model.StmtFor, model.StmtAssign}

	forward := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{fnWithBody("first", 3, shape...)}},
		{FilePath: "b.py", Functions: []*model.FunctionNode{fnWithBody("second", 8, shape...)}},
	}
	reversed := []*model.StructuralModel{forward[1], forward[0]}

	d := NewDetector(zap.NewNop())
	got1 := d.Detect(forward, policy)
	got2 := d.Detect(reversed, policy)
	if !reflect.DeepEqual(got1, got2) {
		t.Fatal("cluster output must not depend on model order")
	}
	if got1[0].ID != got2[0].ID {
		t.Fatal("cluster ids must be stable across runs")
	}
}

func TestDetect_BlockInAtMostOneCluster(t *testing.T) {
	policy := config.DefaultPolicy()
	shape := []model.StatementKind{model.StmtIf, model.StmtReturn, model.StmtFor, model.StmtAssign}

	models := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{
			fnWithBody("one", 1, shape...),
			fnWithBody("two", 20, shape...),
			fnWithBody("three", 40, shape...),
		}},
	}

	clusters := NewDetector(zap.NewNop()).Detect(models, policy)
	if len(clusters) != 1 {
		t.Fatalf("expected one cluster of three, got %d", len(clusters))
	}
	seen := map[string]bool{}
	for _, b := range clusters[0].Blocks {
		key := b.FilePath + b.Function
		if seen[key] {
			t.Fatalf("block %s appears twice", key)
		}
		seen[key] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct blocks, got %d", len(seen))
	}
}

func TestDetect_UndersizedGroupReleasesMembers(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.MinClusterSize = 3

	// The first candidate matches only the second; that pair is below the
	// minimum cluster size and must not consume the second candidate, which
	// belongs in the qualifying three-member cluster behind it.
	outlier := []model.StatementKind{
		model.StmtAssign, model.StmtAssign, model.StmtIf, model.StmtCall, model.StmtReturn,
	}
	bridge := []model.StatementKind{
		model.StmtAssign, model.StmtAssign, model.StmtIf, model.StmtCall, model.StmtReturn,
		model.StmtFor, model.StmtCall,
	}
	peerOne := []model.StatementKind{
		model.StmtIf, model.StmtCall, model.StmtReturn, model.StmtFor, model.StmtCall,
		model.StmtAssign, model.StmtAssign,
	}
	peerTwo := []model.StatementKind{
		model.StmtIf, model.StmtCall, model.StmtReturn, model.StmtFor, model.StmtCall,
		model.StmtAssign, model.StmtReturn,
	}

	models := []*model.StructuralModel{
		{FilePath: "a.py", Functions: []*model.FunctionNode{fnWithBody("outlier", 1, outlier...)}},
		{FilePath: "b.py", Functions: []*model.FunctionNode{fnWithBody("bridge", 1, bridge...)}},
		{FilePath: "c.py", Functions: []*model.FunctionNode{fnWithBody("peer_one", 1, peerOne...)}},
		{FilePath: "d.py", Functions: []*model.FunctionNode{fnWithBody("peer_two", 1, peerTwo...)}},
	}

	clusters := NewDetector(zap.NewNop()).Detect(models, policy)
	if len(clusters) != 1 {
		t.Fatalf("expected one cluster of three, got %d", len(clusters))
	}
	c := clusters[0]
	if len(c.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(c.Blocks))
	}
	if !reflect.DeepEqual(c.Files, []string{"b.py", "c.py", "d.py"}) {
		t.Fatalf("expected the bridge to join its peers, got %v", c.Files)
	}
}

func TestLCSRatio(t *testing.T) {
	a := []string{"if", "assign", "call", "return"}
	if got := lcsRatio(a, a); got != 1.0 {
		t.Fatalf("identical sequences should score 1.0, got %f", got)
	}
	if got := lcsRatio(a, []string{"for", "while", "try"}); got != 0 {
		t.Fatalf("disjoint sequences should score 0, got %f", got)
	}
	if got := lcsRatio(a, nil); got != 0 {
		t.Fatalf("empty sequence should score 0, got %f", got)
	}
	b := []string{"if", "assign", "return"}
	want := 2.0 * 3.0 / 7.0
	if got := lcsRatio(a, b); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}
