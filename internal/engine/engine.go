package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"connscan/internal/config"
	"connscan/internal/dupes"
	"connscan/internal/godobject"
	"connscan/internal/model"
	"connscan/internal/parser"
	"connscan/internal/rules"
	"connscan/internal/scoring"
)

// Engine wires the full pipeline: adapters, per-file evaluators, the global
// phase (algorithm matching, duplicate clustering, god object detection) and
// scoring. One Engine serves many runs; all per-run state lives in Analyze.
type Engine struct {
	adapters  *parser.Registry
	rules     *rules.Registry
	algorithm *rules.AlgorithmEvaluator
	godObject *godobject.Detector
	dupes     *dupes.Detector
	scoring   *scoring.Engine
	logger    *zap.Logger
}

// New creates an analysis engine.
func New(logger *zap.Logger) (*Engine, error) {
	adapters, err := parser.NewRegistry(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build adapter registry: %w", err)
	}
	return &Engine{
		adapters:  adapters,
		rules:     rules.NewRegistry(logger),
		algorithm: rules.NewAlgorithmEvaluator(),
		godObject: godobject.NewDetector(logger),
		dupes:     dupes.NewDetector(logger),
		scoring:   scoring.NewEngine(),
		logger:    logger,
	}, nil
}

// fileOutcome carries one file through the barrier between the per-file and
// global phases. Slots are indexed by file so worker scheduling cannot change
// output order.
type fileOutcome struct {
	path        string
	m           *model.StructuralModel
	violations  []model.Violation
	parseErr    error
	unsupported bool
}

// Analyze runs the engine over the given paths. File-level problems are
// folded into metrics; only configuration and invariant errors surface.
func (e *Engine) Analyze(ctx context.Context, paths []string, excludes []string, policy *config.AnalysisPolicy) (*model.AnalysisResult, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()

	files, unsupported, err := e.collectFiles(paths, excludes)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Starting analysis",
		zap.Int("files", len(files)),
		zap.String("policy", policy.Name),
		zap.Int("workers", policy.Workers))

	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(policy.Workers)

	for i, path := range files {
		// Cooperative cancellation between units of work.
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			outcomes[i] = e.analyzeOne(gctx, path, policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Barrier: every per-file model is available from here on.
	var models []*model.StructuralModel
	var violations []model.Violation
	metrics := model.Metrics{FilesUnsupported: unsupported}
	for _, outcome := range outcomes {
		switch {
		case outcome.unsupported:
			metrics.FilesUnsupported++
			e.logger.Warn("Skipping unsupported file", zap.String("file", outcome.path))
		case outcome.parseErr != nil:
			metrics.FilesSkipped++
			metrics.ParseFailures = append(metrics.ParseFailures, model.ParseFailure{
				FilePath: outcome.path,
				Reason:   outcome.parseErr.Error(),
			})
			e.logger.Warn("Skipping unparsable file",
				zap.String("file", outcome.path),
				zap.Error(outcome.parseErr))
		case outcome.m != nil:
			metrics.FilesAnalyzed++
			metrics.FunctionCount += len(outcome.m.Functions)
			metrics.ClassCount += len(outcome.m.Classes)
			models = append(models, outcome.m)
			violations = append(violations, outcome.violations...)
		}
	}

	// Global phase: needs cross-file visibility, runs once, deterministically.
	violations = append(violations, e.algorithm.EvaluateAcross(models, policy)...)
	clusters := e.dupes.Detect(models, policy)

	tagPartialViolations(models, violations)
	sortViolations(violations)

	if err := checkRunInvariant(models, violations, clusters); err != nil {
		return nil, err
	}

	analyzable := dupes.AnalyzableBlocks(models, policy.MinDupStatements)
	scores, gates := e.scoring.Score(violations, clusters, analyzable, policy)

	metrics.AnalysisTimeMs = time.Since(started).Milliseconds()

	result := &model.AnalysisResult{
		RunID:               uuid.NewString(),
		Policy:              policy.Name,
		Violations:          violations,
		DuplicationClusters: clusters,
		Scores:              scores,
		Gates:               gates,
		Metrics:             metrics,
		SeverityCounts:      scoring.SeverityCounts(violations),
		KindCounts:          scoring.KindCounts(violations),
	}

	e.logger.Info("Analysis complete",
		zap.Int("violations", len(violations)),
		zap.Int("clusters", len(clusters)),
		zap.Float64("overall_score", scores.Overall),
		zap.Int64("elapsed_ms", metrics.AnalysisTimeMs))

	return result, nil
}

// AnalyzeFile analyzes a single file, the editor-facing entry point.
func (e *Engine) AnalyzeFile(ctx context.Context, path string, policy *config.AnalysisPolicy) (*model.AnalysisResult, error) {
	return e.Analyze(ctx, []string{path}, nil, policy)
}

// analyzeOne parses one file and runs the per-file evaluators, under the
// policy's per-file timeout. No retry: a file over budget is excluded.
func (e *Engine) analyzeOne(ctx context.Context, path string, policy *config.AnalysisPolicy) fileOutcome {
	outcome := fileOutcome{path: path}

	adapter, err := e.adapters.ForFile(path)
	if err != nil {
		outcome.unsupported = true
		return outcome
	}

	source, err := os.ReadFile(path)
	if err != nil {
		outcome.parseErr = &model.ParseError{FilePath: path, Err: err}
		return outcome
	}

	parseCtx, cancel := context.WithTimeout(ctx, time.Duration(policy.FileTimeoutMs)*time.Millisecond)
	defer cancel()

	type parsed struct {
		m   *model.StructuralModel
		err error
	}
	done := make(chan parsed, 1)
	go func() {
		m, err := adapter.Parse(parseCtx, path, source)
		done <- parsed{m: m, err: err}
	}()

	select {
	case p := <-done:
		if p.err != nil {
			outcome.parseErr = p.err
			return outcome
		}
		outcome.m = p.m
	case <-parseCtx.Done():
		outcome.parseErr = &model.ParseError{FilePath: path, Err: parseCtx.Err()}
		return outcome
	}

	outcome.violations = e.rules.EvaluateAll(outcome.m, policy)
	outcome.violations = append(outcome.violations, e.godObject.Detect(outcome.m, policy)...)
	return outcome
}

// collectFiles expands paths into the sorted list of supported files,
// honoring exclusion globs. Files no adapter claims are counted, not
// collected.
func (e *Engine) collectFiles(paths []string, excludes []string) ([]string, int, error) {
	seen := make(map[string]bool)
	var files []string
	unsupported := 0

	add := func(path string) {
		if seen[path] || excluded(path, excludes) {
			return
		}
		seen[path] = true
		if !e.adapters.Supports(path) {
			unsupported++
			return
		}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, unsupported, nil
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "dist", "build", "target":
		return true
	}
	return false
}

func excluded(path string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// tagPartialViolations marks every finding against a pattern-extracted file,
// whichever detector produced it, so scoring can discount it. Tagging keys off
// the file path because god object and global-phase findings never pass
// through the per-file registry.
func tagPartialViolations(models []*model.StructuralModel, violations []model.Violation) {
	partial := make(map[string]bool)
	for _, m := range models {
		if m.Partial {
			partial[m.FilePath] = true
		}
	}
	if len(partial) == 0 {
		return
	}
	for i := range violations {
		if !partial[violations[i].FilePath] {
			continue
		}
		if violations[i].Context == nil {
			violations[i].Context = map[string]interface{}{}
		}
		violations[i].Context["partial_extraction"] = true
	}
}

// checkRunInvariant halts the run when a violation or cluster references a
// file that was not parsed in this run; that would mean corrupted results.
func checkRunInvariant(models []*model.StructuralModel, violations []model.Violation, clusters []model.DuplicateCluster) error {
	parsed := make(map[string]bool, len(models))
	for _, m := range models {
		parsed[m.FilePath] = true
	}
	for _, v := range violations {
		if !parsed[v.FilePath] {
			return &model.InvariantError{
				Detail: fmt.Sprintf("violation %s references unparsed file %s", v.ID, v.FilePath),
			}
		}
	}
	for _, c := range clusters {
		for _, b := range c.Blocks {
			if !parsed[b.FilePath] {
				return &model.InvariantError{
					Detail: fmt.Sprintf("cluster %s references unparsed file %s", c.ID, b.FilePath),
				}
			}
		}
	}
	return nil
}

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
		return a.Kind < b.Kind
	})
}

// IsFatal reports whether an analysis error should abort the caller rather
// than degrade into a partial result.
func IsFatal(err error) bool {
	var policyErr *model.PolicyConfigError
	var invariantErr *model.InvariantError
	return errors.As(err, &policyErr) || errors.As(err, &invariantErr)
}
