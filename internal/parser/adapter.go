package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"connscan/internal/model"
)

// LanguageAdapter turns raw source text into a structural model. Full-parse
// adapters are grammar-aware; the pattern adapter extracts what it can and
// marks the model partial.
type LanguageAdapter interface {
	// Language returns the language tag this adapter handles.
	Language() string

	// Parse builds a structural model for one file. It is a pure function of
	// the input text; failures return a *model.ParseError.
	Parse(ctx context.Context, path string, source []byte) (*model.StructuralModel, error)
}

// Registry selects an adapter per file by extension.
type Registry struct {
	byExt  map[string]LanguageAdapter
	logger *zap.Logger
}

// NewRegistry constructs all language adapters and wires the extension map.
func NewRegistry(logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		byExt:  make(map[string]LanguageAdapter),
		logger: logger,
	}

	pythonAdapter, err := NewPythonAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to create python adapter: %w", err)
	}
	goAdapter, err := NewGoAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to create go adapter: %w", err)
	}
	javaAdapter, err := NewJavaAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to create java adapter: %w", err)
	}
	jsAdapter, err := NewJavaScriptAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to create javascript adapter: %w", err)
	}
	tsAdapter, err := NewTypeScriptAdapter()
	if err != nil {
		return nil, fmt.Errorf("failed to create typescript adapter: %w", err)
	}

	r.register(pythonAdapter, ".py")
	r.register(goAdapter, ".go")
	r.register(javaAdapter, ".java")
	r.register(jsAdapter, ".js", ".jsx", ".mjs")
	r.register(tsAdapter, ".ts", ".tsx")

	// Languages without a wired grammar fall back to pattern extraction.
	patternExts := map[string]string{
		".rb":    "ruby",
		".php":   "php",
		".c":     "c",
		".h":     "c",
		".cc":    "cpp",
		".cpp":   "cpp",
		".hpp":   "cpp",
		".cs":    "csharp",
		".rs":    "rust",
		".swift": "swift",
		".kt":    "kotlin",
	}
	for ext, lang := range patternExts {
		r.byExt[ext] = NewPatternAdapter(lang)
	}

	return r, nil
}

func (r *Registry) register(adapter LanguageAdapter, exts ...string) {
	for _, ext := range exts {
		r.byExt[ext] = adapter
	}
	r.logger.Debug("Registered language adapter",
		zap.String("language", adapter.Language()),
		zap.Strings("extensions", exts))
}

// ForFile returns the adapter claiming the file, or ErrUnsupportedLanguage.
func (r *Registry) ForFile(path string) (LanguageAdapter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	adapter, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedLanguage, path)
	}
	return adapter, nil
}

// Extensions returns the sorted set of supported extensions, mainly for the
// directory walker.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}
