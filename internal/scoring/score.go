package scoring

import (
	"connscan/internal/config"
	"connscan/internal/model"
)

// weightNormalizer controls how fast the overall score decays: a weighted
// violation total equal to the normalizer halves the score.
const weightNormalizer = 50.0

// Engine reduces a violation list and cluster set into the three quality
// scores and their gates. It is a pure fold; nothing here mutates inputs.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score computes all scores and gate decisions. analyzableBlocks is the
// duplication-score denominator; when zero, duplication scores perfect.
func (e *Engine) Score(violations []model.Violation, clusters []model.DuplicateCluster, analyzableBlocks int, policy *config.AnalysisPolicy) (model.Scores, model.Gates) {
	scores := model.Scores{
		Overall:          e.overall(violations, policy),
		SafetyCompliance: e.safetyCompliance(violations),
		Duplication:      e.duplication(clusters, analyzableBlocks),
	}
	gates := model.Gates{
		Overall:          scores.Overall >= policy.OverallGate,
		SafetyCompliance: scores.SafetyCompliance >= policy.SafetyGate,
		Duplication:      scores.Duplication >= policy.DuplicationGate,
	}
	return scores, gates
}

// overall maps the weighted violation total into (0,1]: zero violations score
// 1.0 and the score decays toward (but never reaches) zero. Findings from
// pattern-extracted files count at the policy's partial weight since they are
// not ground truth.
func (e *Engine) overall(violations []model.Violation, policy *config.AnalysisPolicy) float64 {
	weighted := 0.0
	for _, v := range violations {
		w := float64(v.Severity.Weight())
		if partial, ok := v.Context["partial_extraction"].(bool); ok && partial {
			w *= policy.PartialWeight
		}
		weighted += w
	}
	return weightNormalizer / (weightNormalizer + weighted)
}

// safetyCompliance scores only the safety-rule subset against its own decay.
func (e *Engine) safetyCompliance(violations []model.Violation) float64 {
	weighted := 0.0
	for _, v := range violations {
		if v.Kind.Family() == model.FamilySafety {
			weighted += float64(v.Severity.Weight())
		}
	}
	return weightNormalizer / (weightNormalizer + weighted)
}

// duplication is 1 minus the clustered-block ratio.
func (e *Engine) duplication(clusters []model.DuplicateCluster, analyzableBlocks int) float64 {
	if analyzableBlocks == 0 {
		return 1.0
	}
	clustered := 0
	for _, c := range clusters {
		clustered += len(c.Blocks)
	}
	ratio := float64(clustered) / float64(analyzableBlocks)
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio
}

// SeverityCounts tallies violations per severity for dashboards.
func SeverityCounts(violations []model.Violation) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, v := range violations {
		counts[v.Severity]++
	}
	return counts
}

// KindCounts tallies violations per kind for dashboards.
func KindCounts(violations []model.Violation) map[model.ViolationKind]int {
	counts := make(map[model.ViolationKind]int)
	for _, v := range violations {
		counts[v.Kind]++
	}
	return counts
}
