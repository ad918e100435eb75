package report

import "connscan/internal/model"

// Minimal SARIF 2.1.0 document, enough for code-scanning consumers.

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func sarifLevel(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical, model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func toSARIF(result *model.AnalysisResult) sarifLog {
	ruleSet := make(map[model.ViolationKind]bool)
	var ruleOrder []model.ViolationKind
	results := make([]sarifResult, 0, len(result.Violations))

	for _, v := range result.Violations {
		if !ruleSet[v.Kind] {
			ruleSet[v.Kind] = true
			ruleOrder = append(ruleOrder, v.Kind)
		}
		results = append(results, sarifResult{
			RuleID:  string(v.Kind),
			Level:   sarifLevel(v.Severity),
			Message: sarifMessage{Text: v.Description},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.FilePath},
					Region:           sarifRegion{StartLine: v.Line, StartColumn: v.Column},
				},
			}},
		})
	}

	rules := make([]sarifRule, 0, len(ruleOrder))
	for _, kind := range ruleOrder {
		rules = append(rules, sarifRule{
			ID:               string(kind),
			ShortDescription: sarifMessage{Text: string(kind)},
		})
	}

	return sarifLog{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "connscan",
				InformationURI: "https://github.com/armchr/connscan",
				Rules:          rules,
			}},
			Results: results,
		}},
	}
}
