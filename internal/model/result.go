package model

// Scores carries the three independent quality scores, each in [0,1].
type Scores struct {
	Overall          float64 `json:"overall"`
	SafetyCompliance float64 `json:"safetyCompliance"`
	Duplication      float64 `json:"duplication"`
}

// Gates carries the pass/fail decision per score. Callers gate on whichever
// subset matters to them; the engine never collapses them into one bit.
type Gates struct {
	Overall          bool `json:"overall"`
	SafetyCompliance bool `json:"safetyCompliance"`
	Duplication      bool `json:"duplication"`
}

// ParseFailure records one file that could not be parsed during the run.
type ParseFailure struct {
	FilePath string `json:"file_path"`
	Reason   string `json:"reason"`
}

// Metrics aggregates run-level counters.
type Metrics struct {
	FilesAnalyzed    int            `json:"filesAnalyzed"`
	FilesSkipped     int            `json:"filesSkipped"`
	FilesUnsupported int            `json:"filesUnsupported"`
	FunctionCount    int            `json:"functionCount"`
	ClassCount       int            `json:"classCount"`
	AnalysisTimeMs   int64          `json:"analysisTimeMs"`
	ParseFailures    []ParseFailure `json:"parseFailures,omitempty"`
}

// AnalysisResult is the aggregate output of one run.
type AnalysisResult struct {
	RunID               string             `json:"runId"`
	Policy              string             `json:"policy"`
	Violations          []Violation        `json:"violations"`
	DuplicationClusters []DuplicateCluster `json:"duplicationClusters"`
	Scores              Scores             `json:"scores"`
	Gates               Gates              `json:"gates"`
	Metrics             Metrics            `json:"metrics"`

	// Dashboard aggregates, derived once at fold time.
	SeverityCounts map[Severity]int      `json:"severityCounts"`
	KindCounts     map[ViolationKind]int `json:"kindCounts"`
}

// WeightedTotal returns the severity-weighted sum of all violations.
func (r *AnalysisResult) WeightedTotal() int {
	total := 0
	for _, v := range r.Violations {
		total += v.Severity.Weight()
	}
	return total
}
