package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"connscan/internal/model"
)

// Format selects a serialization for the analysis result.
type Format string

const (
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatSARIF, FormatYAML:
		return Format(name), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q", name)
	}
}

// Write serializes a result to the writer in the requested format.
func Write(w io.Writer, result *model.AnalysisResult, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML:
		data, err := yaml.Marshal(yamlDocument(result))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml report: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatSARIF:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toSARIF(result))
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// ParseJSON reads a JSON report back into a result, the round-trip
// counterpart of Write.
func ParseJSON(r io.Reader) (*model.AnalysisResult, error) {
	var result model.AnalysisResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse json report: %w", err)
	}
	return &result, nil
}

// ParseYAML reads a YAML report back into a result.
func ParseYAML(data []byte) (*model.AnalysisResult, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml report: %w", err)
	}
	return doc.toResult(), nil
}

// document is the YAML shape; yaml.v2 cannot reuse the JSON tags so the
// result is mirrored into explicitly tagged structs.
type document struct {
	RunID               string                   `yaml:"runId"`
	Policy              string                   `yaml:"policy"`
	Violations          []violationDoc           `yaml:"violations"`
	DuplicationClusters []model.DuplicateCluster `yaml:"duplicationClusters"`
	Scores              scoresDoc                `yaml:"scores"`
	Gates               gatesDoc                 `yaml:"gates"`
	Metrics             metricsDoc               `yaml:"metrics"`
	SeverityCounts      map[model.Severity]int   `yaml:"severityCounts"`
}

type violationDoc struct {
	ID             string `yaml:"id"`
	Kind           string `yaml:"kind"`
	Severity       string `yaml:"severity"`
	FilePath       string `yaml:"file_path"`
	Line           int    `yaml:"line"`
	Column         int    `yaml:"column"`
	Description    string `yaml:"description"`
	Recommendation string `yaml:"recommendation"`
}

type scoresDoc struct {
	Overall          float64 `yaml:"overall"`
	SafetyCompliance float64 `yaml:"safetyCompliance"`
	Duplication      float64 `yaml:"duplication"`
}

type gatesDoc struct {
	Overall          bool `yaml:"overall"`
	SafetyCompliance bool `yaml:"safetyCompliance"`
	Duplication      bool `yaml:"duplication"`
}

type metricsDoc struct {
	FilesAnalyzed    int   `yaml:"filesAnalyzed"`
	FilesSkipped     int   `yaml:"filesSkipped"`
	FilesUnsupported int   `yaml:"filesUnsupported"`
	FunctionCount    int   `yaml:"functionCount"`
	ClassCount       int   `yaml:"classCount"`
	AnalysisTimeMs   int64 `yaml:"analysisTimeMs"`
}

func yamlDocument(result *model.AnalysisResult) document {
	doc := document{
		RunID:               result.RunID,
		Policy:              result.Policy,
		DuplicationClusters: result.DuplicationClusters,
		Scores: scoresDoc{
			Overall:          result.Scores.Overall,
			SafetyCompliance: result.Scores.SafetyCompliance,
			Duplication:      result.Scores.Duplication,
		},
		Gates: gatesDoc{
			Overall:          result.Gates.Overall,
			SafetyCompliance: result.Gates.SafetyCompliance,
			Duplication:      result.Gates.Duplication,
		},
		Metrics: metricsDoc{
			FilesAnalyzed:    result.Metrics.FilesAnalyzed,
			FilesSkipped:     result.Metrics.FilesSkipped,
			FilesUnsupported: result.Metrics.FilesUnsupported,
			FunctionCount:    result.Metrics.FunctionCount,
			ClassCount:       result.Metrics.ClassCount,
			AnalysisTimeMs:   result.Metrics.AnalysisTimeMs,
		},
		SeverityCounts: result.SeverityCounts,
	}
	for _, v := range result.Violations {
		doc.Violations = append(doc.Violations, violationDoc{
			ID:             v.ID,
			Kind:           string(v.Kind),
			Severity:       string(v.Severity),
			FilePath:       v.FilePath,
			Line:           v.Line,
			Column:         v.Column,
			Description:    v.Description,
			Recommendation: v.Recommendation,
		})
	}
	return doc
}

func (doc document) toResult() *model.AnalysisResult {
	result := &model.AnalysisResult{
		RunID:               doc.RunID,
		Policy:              doc.Policy,
		DuplicationClusters: doc.DuplicationClusters,
		Scores: model.Scores{
			Overall:          doc.Scores.Overall,
			SafetyCompliance: doc.Scores.SafetyCompliance,
			Duplication:      doc.Scores.Duplication,
		},
		Gates: model.Gates{
			Overall:          doc.Gates.Overall,
			SafetyCompliance: doc.Gates.SafetyCompliance,
			Duplication:      doc.Gates.Duplication,
		},
		Metrics: model.Metrics{
			FilesAnalyzed:    doc.Metrics.FilesAnalyzed,
			FilesSkipped:     doc.Metrics.FilesSkipped,
			FilesUnsupported: doc.Metrics.FilesUnsupported,
			FunctionCount:    doc.Metrics.FunctionCount,
			ClassCount:       doc.Metrics.ClassCount,
			AnalysisTimeMs:   doc.Metrics.AnalysisTimeMs,
		},
		SeverityCounts: doc.SeverityCounts,
	}
	for _, v := range doc.Violations {
		result.Violations = append(result.Violations, model.Violation{
			ID:             v.ID,
			Kind:           model.ViolationKind(v.Kind),
			Severity:       model.Severity(v.Severity),
			FilePath:       v.FilePath,
			Line:           v.Line,
			Column:         v.Column,
			Description:    v.Description,
			Recommendation: v.Recommendation,
		})
	}
	return result
}
