package rules

import (
	"go.uber.org/zap"

	"connscan/internal/config"
	"connscan/internal/model"
)

// Evaluator is one coupling-family rule pass. Evaluators are pure functions
// of the structural model and the read-only policy, so the registry may run
// them in any order or concurrently.
type Evaluator interface {
	// Name returns the unique identifier for this evaluator.
	Name() string

	// Kind returns the violation kind this evaluator emits.
	Kind() model.ViolationKind

	// Evaluate inspects one file's structural model and returns violations.
	Evaluate(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation
}

// Registry holds the per-file evaluators in registration order.
type Registry struct {
	evaluators []Evaluator
	logger     *zap.Logger
}

// NewRegistry creates a registry with every per-file evaluator wired in. The
// algorithm family needs cross-file visibility and runs in the engine's
// global phase instead.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{logger: logger}

	r.Register(NewMeaningEvaluator())
	r.Register(NewPositionEvaluator())
	r.Register(NewIdentityEvaluator())
	r.Register(NewTimingEvaluator())
	r.Register(NewExecutionEvaluator())
	r.Register(NewNameEvaluator())
	r.Register(NewTypeEvaluator())
	r.Register(NewValueEvaluator())
	r.Register(NewSafetyEvaluator())

	return r
}

// Register adds an evaluator.
func (r *Registry) Register(evaluator Evaluator) {
	r.evaluators = append(r.evaluators, evaluator)
	r.logger.Debug("Registered rule evaluator",
		zap.String("evaluator", evaluator.Name()),
		zap.String("kind", string(evaluator.Kind())))
}

// EvaluateAll runs every evaluator over one structural model. Tagging of
// findings from pattern-based models happens in the engine, where god object
// and global-phase findings are visible too.
func (r *Registry) EvaluateAll(m *model.StructuralModel, policy *config.AnalysisPolicy) []model.Violation {
	var violations []model.Violation
	for _, evaluator := range r.evaluators {
		violations = append(violations, evaluator.Evaluate(m, policy)...)
	}
	return violations
}
