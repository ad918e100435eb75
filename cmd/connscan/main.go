package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"connscan/internal/config"
	"connscan/internal/controller"
	"connscan/internal/engine"
	"connscan/internal/handler"
	"connscan/internal/model"
	"connscan/internal/report"
)

func main() {
	var policyName = flag.String("policy", "default", "Policy preset: default, strict, safety-compliance, lenient")
	var policyFile = flag.String("policy-file", "", "Path to a YAML policy override file")
	var exclude = flag.String("exclude", "", "Comma-separated exclusion globs")
	var format = flag.String("format", "json", "Report format: json, sarif, yaml")
	var out = flag.String("out", "", "Report output path (default: stdout)")
	var workers = flag.Int("workers", 0, "Worker count (default: CPU count)")
	var strict = flag.Bool("strict", false, "Exit 1 on critical violations or failed gates")
	var serve = flag.Bool("serve", false, "Run the HTTP API instead of a one-shot scan")
	var addr = flag.String("addr", ":8080", "HTTP listen address in serve mode")
	var verbose = flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	cfgZap := zap.NewProductionConfig()
	if *verbose {
		cfgZap.Level.SetLevel(zapcore.DebugLevel)
	}
	cfgZap.OutputPaths = []string{"stderr"}
	logger, err := cfgZap.Build()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	policy, err := loadPolicy(*policyName, *policyFile)
	if err != nil {
		logger.Fatal("Failed to load policy", zap.Error(err))
	}
	if *workers > 0 {
		policy.Workers = *workers
	}

	analysisEngine, err := engine.New(logger)
	if err != nil {
		logger.Fatal("Failed to initialize engine", zap.Error(err))
	}

	if *serve {
		analyzeController := controller.NewAnalyzeController(analysisEngine, logger)
		router := handler.SetupRouter(analyzeController, logger)
		logger.Info("Starting HTTP API", zap.String("addr", *addr))
		if err := router.Run(*addr); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	reportFormat, err := report.ParseFormat(*format)
	if err != nil {
		logger.Fatal("Invalid report format", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := analysisEngine.Analyze(ctx, paths, splitGlobs(*exclude), policy)
	if err != nil {
		logger.Fatal("Analysis failed", zap.Error(err))
	}

	if err := writeReport(result, reportFormat, *out); err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}

	printSummary(result)

	if *strict && shouldFail(result) {
		os.Exit(1)
	}
}

func loadPolicy(presetName, filePath string) (*config.AnalysisPolicy, error) {
	if filePath != "" {
		return config.LoadPolicyFile(filePath)
	}
	return config.LoadPreset(presetName)
}

func splitGlobs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	globs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			globs = append(globs, trimmed)
		}
	}
	return globs
}

func writeReport(result *model.AnalysisResult, format report.Format, out string) error {
	if out == "" {
		return report.Write(os.Stdout, result, format)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()
	return report.Write(f, result, format)
}

// printSummary renders a human-readable digest on stderr so stdout stays
// machine-parseable.
func printSummary(result *model.AnalysisResult) {
	w := os.Stderr

	bold := color.New(color.Bold)
	bold.Fprintf(w, "\nAnalyzed %d files in %dms (%d skipped, %d unsupported)\n",
		result.Metrics.FilesAnalyzed, result.Metrics.AnalysisTimeMs,
		result.Metrics.FilesSkipped, result.Metrics.FilesUnsupported)

	fmt.Fprintf(w, "Violations: %s critical, %s high, %s medium, %s low\n",
		color.RedString("%d", result.SeverityCounts[model.SeverityCritical]),
		color.YellowString("%d", result.SeverityCounts[model.SeverityHigh]),
		color.CyanString("%d", result.SeverityCounts[model.SeverityMedium]),
		color.WhiteString("%d", result.SeverityCounts[model.SeverityLow]))
	fmt.Fprintf(w, "Duplicate clusters: %d\n", len(result.DuplicationClusters))

	fmt.Fprintf(w, "Scores: overall %s | safety %s | duplication %s\n",
		gateString(result.Scores.Overall, result.Gates.Overall),
		gateString(result.Scores.SafetyCompliance, result.Gates.SafetyCompliance),
		gateString(result.Scores.Duplication, result.Gates.Duplication))
}

func gateString(score float64, passed bool) string {
	if passed {
		return color.GreenString("%.2f (pass)", score)
	}
	return color.RedString("%.2f (fail)", score)
}

func shouldFail(result *model.AnalysisResult) bool {
	if result.SeverityCounts[model.SeverityCritical] > 0 {
		return true
	}
	return !result.Gates.Overall || !result.Gates.SafetyCompliance || !result.Gates.Duplication
}
