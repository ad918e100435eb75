package godobject

import (
	"fmt"

	"go.uber.org/zap"

	"connscan/internal/config"
	"connscan/internal/model"
)

// Detector flags god objects: classes with disproportionately many methods or
// lines. A class gets at most one violation per run; when both the critical
// and warning tiers are exceeded only the highest severity is reported.
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a new god object detector.
func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{logger: logger}
}

// Detect runs god object detection over one file's classes.
func (d *Detector) Detect(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation

	for _, cls := range m.Classes {
		methods := cls.MethodCount()
		loc, estimated := cls.LOC()

		var severity model.Severity
		switch {
		case methods > policy.MaxMethods || loc > policy.MaxClassLines:
			severity = model.SeverityCritical
		case methods > policy.WarnMethods || loc > policy.WarnClassLines:
			severity = model.SeverityHigh
		default:
			continue
		}

		d.logger.Debug("God object detected",
			zap.String("class", cls.Name),
			zap.String("file", m.FilePath),
			zap.Int("methods", methods),
			zap.Int("loc", loc),
			zap.String("severity", string(severity)))

		context := map[string]interface{}{
			"class":        cls.Name,
			"method_count": methods,
			"loc":          loc,
			"method_limit": policy.MaxMethods,
			"loc_limit":    policy.MaxClassLines,
		}
		if estimated {
			context["loc_estimated"] = true
		}

		violations = append(violations, model.Violation{
			ID:       model.ViolationID(model.KindGodObject, m.FilePath, cls.StartLine, 1),
			Kind:     model.KindGodObject,
			Severity: severity,
			FilePath: m.FilePath,
			Line:     cls.StartLine,
			Column:   1,
			Description: fmt.Sprintf("Class %q has %d methods and %d lines; it concentrates too many responsibilities",
				cls.Name, methods, loc),
			Recommendation: "Split the class along its responsibility clusters",
			Context:        context,
		})
	}

	return violations
}
