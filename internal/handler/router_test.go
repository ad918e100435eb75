package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"connscan/internal/controller"
	"connscan/internal/engine"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	analysisEngine, err := engine.New(zap.NewNop())
	require.NoError(t, err)
	analyzeController := controller.NewAnalyzeController(analysisEngine, zap.NewNop())
	return SetupRouter(analyzeController, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestPoliciesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Policies []struct {
			Name string `json:"Name"`
		} `json:"policies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Policies, 4)
}

func TestAnalyzeEndpoint(t *testing.T) {
	dir := t.TempDir()
	source := "def greet(name):\n    message = \"hello\"\n    return message\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.py"), []byte(source), 0o644))

	router := newTestRouter(t)

	payload, err := json.Marshal(map[string]interface{}{"paths": []string{dir}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["runId"])
	assert.Equal(t, "default", body["policy"])
}

func TestAnalyzeEndpoint_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	// Missing required paths.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown policy preset.
	payload := []byte(`{"paths": ["."], "policy": "nonsense"}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
