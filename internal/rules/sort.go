package rules

import (
	"sort"

	"connscan/internal/model"
)

// sortViolations orders violations by position so evaluators built on map
// iteration still produce stable output.
func sortViolations(violations []model.Violation) {
	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Description < b.Description
	})
}
