package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"connscan/internal/config"
	"connscan/internal/engine"
)

// AnalyzeController handles the HTTP analysis endpoints consumed by editor
// and CI collaborators.
type AnalyzeController struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewAnalyzeController creates a new analyze controller.
func NewAnalyzeController(analysisEngine *engine.Engine, logger *zap.Logger) *AnalyzeController {
	return &AnalyzeController{
		engine: analysisEngine,
		logger: logger,
	}
}

// AnalyzeRequest is the request body for workspace analysis.
type AnalyzeRequest struct {
	Paths     []string `json:"paths" binding:"required"`
	Policy    string   `json:"policy"`     // preset name (default: "default")
	Excludes  []string `json:"excludes"`   // exclusion globs
	TimeoutMs int      `json:"timeout_ms"` // whole-run budget (default: 300000)
}

// Analyze handles POST /api/v1/analyze.
func (ac *AnalyzeController) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TimeoutMs == 0 {
		req.TimeoutMs = 300000
	}

	policy, err := config.LoadPreset(req.Policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ac.logger.Info("Analyzing workspace",
		zap.Strings("paths", req.Paths),
		zap.String("policy", policy.Name))

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(req.TimeoutMs)*time.Millisecond)
	defer cancel()

	result, err := ac.engine.Analyze(ctx, req.Paths, req.Excludes, policy)
	if err != nil {
		ac.logger.Error("Analysis failed",
			zap.Strings("paths", req.Paths),
			zap.Error(err))
		status := http.StatusInternalServerError
		if !engine.IsFatal(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": fmt.Sprintf("Analysis failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzeFileRequest is the request body for single-file analysis.
type AnalyzeFileRequest struct {
	Path   string `json:"path" binding:"required"`
	Policy string `json:"policy"`
}

// AnalyzeFile handles POST /api/v1/analyzeFile, the per-file entry used for
// inline diagnostics.
func (ac *AnalyzeController) AnalyzeFile(c *gin.Context) {
	var req AnalyzeFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := config.LoadPreset(req.Policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ac.engine.AnalyzeFile(c.Request.Context(), req.Path, policy)
	if err != nil {
		ac.logger.Error("File analysis failed",
			zap.String("path", req.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Analysis failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListPolicies handles GET /api/v1/policies.
func (ac *AnalyzeController) ListPolicies(c *gin.Context) {
	names := []string{"default", "strict", "safety-compliance", "lenient"}
	policies := make([]*config.AnalysisPolicy, 0, len(names))
	for _, name := range names {
		p, err := config.LoadPreset(name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		policies = append(policies, p)
	}
	c.JSON(http.StatusOK, gin.H{"policies": policies})
}
