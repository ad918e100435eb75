package dupes

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"connscan/internal/config"
	"connscan/internal/model"
)

// Detector performs the cross-file duplicate analysis: exact grouping on
// normalized signatures, then fuzzy merging of the leftovers. Membership and
// ordering are fully deterministic; ties break on (file path, start line).
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a new duplicate detector.
func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{logger: logger}
}

type candidate struct {
	block  model.CodeBlockRef
	tokens []string
}

// Detect runs the clustering over every analyzed file. Each code block ends
// up in at most one cluster; blocks below the minimum statement count are not
// analyzable and are excluded up front.
func (d *Detector) Detect(models []*model.StructuralModel, policy *config.AnalysisPolicy) []model.DuplicateCluster {
	candidates := collectCandidates(models, policy.MinDupStatements)

	bySignature := make(map[string][]candidate)
	var signatures []string
	for _, c := range candidates {
		if _, seen := bySignature[c.block.Signature]; !seen {
			signatures = append(signatures, c.block.Signature)
		}
		bySignature[c.block.Signature] = append(bySignature[c.block.Signature], c)
	}
	sort.Strings(signatures)

	var clusters []model.DuplicateCluster
	var leftovers []candidate

	for _, sig := range signatures {
		group := bySignature[sig]
		if len(group) >= policy.MinClusterSize {
			clusters = append(clusters, d.buildCluster(group, 1.0, true))
		} else {
			leftovers = append(leftovers, group...)
		}
	}

	clusters = append(clusters, d.fuzzyClusters(leftovers, policy)...)

	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i].Blocks[0], clusters[j].Blocks[0]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.StartLine < b.StartLine
	})

	d.logger.Info("Duplicate detection complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("clusters", len(clusters)))

	return clusters
}

// fuzzyClusters greedily merges remaining candidates whose signature
// similarity meets the policy threshold. Candidates are visited in stable
// order so results do not depend on scheduling.
func (d *Detector) fuzzyClusters(leftovers []candidate, policy *config.AnalysisPolicy) []model.DuplicateCluster {
	sortCandidates(leftovers)

	assigned := make([]bool, len(leftovers))
	var clusters []model.DuplicateCluster

	for i := range leftovers {
		if assigned[i] {
			continue
		}
		group := []candidate{leftovers[i]}
		members := []int{i}
		similarity := 1.0

		for j := i + 1; j < len(leftovers); j++ {
			if assigned[j] {
				continue
			}
			score := lcsRatio(leftovers[i].tokens, leftovers[j].tokens)
			if score >= policy.SimilarityThreshold {
				group = append(group, leftovers[j])
				members = append(members, j)
				if score < similarity {
					similarity = score
				}
			}
		}

		// Members are only consumed once the group actually qualifies;
		// an undersized group must leave them available for a later seed.
		if len(group) >= policy.MinClusterSize {
			for _, m := range members {
				assigned[m] = true
			}
			clusters = append(clusters, d.buildCluster(group, similarity, false))
		}
	}

	return clusters
}

func (d *Detector) buildCluster(group []candidate, similarity float64, exact bool) model.DuplicateCluster {
	blocks := make([]model.CodeBlockRef, len(group))
	for i, c := range group {
		blocks[i] = c.block
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].FilePath != blocks[j].FilePath {
			return blocks[i].FilePath < blocks[j].FilePath
		}
		return blocks[i].StartLine < blocks[j].StartLine
	})

	fileSet := make(map[string]bool)
	var files []string
	for _, b := range blocks {
		if !fileSet[b.FilePath] {
			fileSet[b.FilePath] = true
			files = append(files, b.FilePath)
		}
	}
	sort.Strings(files)

	// Content-derived UUID keeps cluster ids stable across runs.
	seed := blocks[0].FilePath + "|" + blocks[0].Signature
	return model.DuplicateCluster{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String(),
		Blocks:     blocks,
		Similarity: similarity,
		ExactMatch: exact,
		Files:      files,
	}
}

// collectCandidates gathers analyzable blocks: functions longer than the
// minimum statement count.
func collectCandidates(models []*model.StructuralModel, minStatements int) []candidate {
	var candidates []candidate
	for _, m := range models {
		for _, fn := range m.Functions {
			if len(fn.Body) <= minStatements {
				continue
			}
			sig := Signature(fn)
			candidates = append(candidates, candidate{
				block: model.CodeBlockRef{
					FilePath:  m.FilePath,
					Function:  fn.Name,
					StartLine: fn.StartLine,
					EndLine:   fn.EndLine,
					Signature: sig,
				},
				tokens: tokens(sig),
			})
		}
	}
	sortCandidates(candidates)
	return candidates
}

// AnalyzableBlocks counts the blocks eligible for clustering, used by the
// duplication score denominator.
func AnalyzableBlocks(models []*model.StructuralModel, minStatements int) int {
	count := 0
	for _, m := range models {
		for _, fn := range m.Functions {
			if len(fn.Body) > minStatements {
				count++
			}
		}
	}
	return count
}

func sortCandidates(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].block.FilePath != candidates[j].block.FilePath {
			return candidates[i].block.FilePath < candidates[j].block.FilePath
		}
		return candidates[i].block.StartLine < candidates[j].block.StartLine
	})
}
