package parser

import (
	"context"
	"testing"

	"connscan/internal/model"
)

const goSource = `package cache

import (
	"fmt"
	"sync"
)

var registry = map[string]int{}

type Store struct {
	mu    sync.Mutex
	items map[string]string
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *Store) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

func describe(s *Store, verbose bool) string {
	if verbose && len(s.items) > 0 {
		return fmt.Sprintf("store with %d items", len(s.items))
	}
	return "store"
}
`

func parseGo(t *testing.T) *model.StructuralModel {
	t.Helper()
	adapter, err := NewGoAdapter()
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	m, err := adapter.Parse(context.Background(), "store.go", []byte(goSource))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return m
}

func TestGo_ReceiverMethodsGrouped(t *testing.T) {
	m := parseGo(t)

	if len(m.Functions) != 3 {
		t.Fatalf("expected 3 functions, got %d", len(m.Functions))
	}
	if len(m.Classes) != 1 || m.Classes[0].Name != "Store" {
		t.Fatalf("expected one synthetic Store class, got %v", m.Classes)
	}
	cls := m.Classes[0]
	if cls.MethodCount() != 2 {
		t.Fatalf("expected Get and Put grouped, got %d methods", cls.MethodCount())
	}
	for _, fn := range cls.Methods {
		if fn.ClassName != "Store" {
			t.Fatalf("method %q missing receiver class", fn.Name)
		}
	}
	// The free function stays out of the synthetic class.
	if m.Functions[2].Name != "describe" || m.Functions[2].ClassName != "" {
		t.Fatalf("unexpected third function: %+v", m.Functions[2])
	}
}

func TestGo_ParamsAndComplexity(t *testing.T) {
	m := parseGo(t)

	put := m.Functions[1]
	if put.Name != "Put" {
		t.Fatalf("expected Put second, got %q", put.Name)
	}
	// Grouped declaration: key, value string.
	if len(put.Params) != 2 {
		t.Fatalf("expected 2 params, got %v", put.Params)
	}
	if put.Params[0].TypeAnnotation != "string" || put.Params[1].TypeAnnotation != "string" {
		t.Fatalf("grouped params share the annotation, got %v", put.Params)
	}

	describe := m.Functions[2]
	// 1 base + if + short-circuit &&.
	if describe.Complexity != 3 {
		t.Fatalf("expected complexity 3, got %d", describe.Complexity)
	}
}

func TestGo_Imports(t *testing.T) {
	m := parseGo(t)

	modules := map[string]bool{}
	for _, imp := range m.Imports {
		modules[imp.Module] = true
	}
	if !modules["fmt"] || !modules["sync"] {
		t.Fatalf("expected fmt and sync, got %v", m.Imports)
	}
	if len(m.Globals) != 1 || m.Globals[0].Name != "registry" {
		t.Fatalf("expected package-level registry global, got %v", m.Globals)
	}
}
