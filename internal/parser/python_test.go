package parser

import (
	"context"
	"reflect"
	"testing"

	"connscan/internal/model"
)

const pythonSource = `import os
from collections import defaultdict

LIMIT = 100

def connect(host, port, retries):
    timeout = 30
    if retries > 5:
        return None
    for i in range(retries):
        conn.set_host(host)
        conn.set_port(port)
        time.sleep(2)
    return conn

class Cache:
    def get(self, key):
        return self.store[key]

    def put(self, key, value):
        self.store[key] = value
`

func parsePython(t *testing.T) *model.StructuralModel {
	t.Helper()
	adapter, err := NewPythonAdapter()
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	m, err := adapter.Parse(context.Background(), "sample.py", []byte(pythonSource))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return m
}

func TestPython_Functions(t *testing.T) {
	m := parsePython(t)

	if m.Partial {
		t.Fatal("full-parse models must not be partial")
	}
	if len(m.Functions) != 3 {
		t.Fatalf("expected 3 functions, got %d", len(m.Functions))
	}

	connect := m.Functions[0]
	if connect.Name != "connect" || len(connect.Params) != 3 {
		t.Fatalf("unexpected first function: %s with %d params", connect.Name, len(connect.Params))
	}

	wantBody := []model.StatementKind{
		model.StmtAssign, model.StmtIf, model.StmtReturn,
		model.StmtFor, model.StmtCall, model.StmtCall, model.StmtCall,
		model.StmtReturn,
	}
	if !reflect.DeepEqual(connect.Body, wantBody) {
		t.Fatalf("unexpected body shape: %v", connect.Body)
	}
	if connect.Complexity != 3 {
		t.Fatalf("expected complexity 3 (if + for), got %d", connect.Complexity)
	}
	if connect.NestingDepth != 1 {
		t.Fatalf("expected nesting depth 1, got %d", connect.NestingDepth)
	}
	if connect.Recursive {
		t.Fatal("connect does not call itself")
	}
}

func TestPython_CallsAndLiterals(t *testing.T) {
	m := parsePython(t)
	connect := m.Functions[0]

	byCallee := map[string]model.CallSite{}
	for _, call := range connect.Calls {
		byCallee[call.Callee] = call
	}
	if call, ok := byCallee["sleep"]; !ok || call.Receiver != "time" {
		t.Fatalf("expected time.sleep call, got %v", connect.Calls)
	}
	if call, ok := byCallee["set_host"]; !ok || call.Receiver != "conn" {
		t.Fatalf("expected conn.set_host call, got %v", connect.Calls)
	}

	byValue := map[string]model.LiteralUse{}
	for _, lit := range m.Literals {
		byValue[lit.Value] = lit
	}
	if lit := byValue["5"]; lit.Context != model.ContextConditional {
		t.Fatalf("literal in an if condition must be conditional, got %s", lit.Context)
	}
	if lit := byValue["2"]; lit.Context != model.ContextArgument {
		t.Fatalf("literal in an argument list must be argument, got %s", lit.Context)
	}
	if lit := byValue["30"]; lit.Context != model.ContextAssignment {
		t.Fatalf("assigned literal must be assignment, got %s", lit.Context)
	}
}

func TestPython_ClassAndModuleScope(t *testing.T) {
	m := parsePython(t)

	if len(m.Classes) != 1 || m.Classes[0].Name != "Cache" {
		t.Fatalf("expected class Cache, got %v", m.Classes)
	}
	cls := m.Classes[0]
	if cls.MethodCount() != 2 {
		t.Fatalf("expected 2 methods, got %d", cls.MethodCount())
	}

	get := cls.Methods[0]
	if get.ClassName != "Cache" {
		t.Fatalf("method must carry its class name, got %q", get.ClassName)
	}
	// self never counts as a parameter.
	if len(get.Params) != 1 || get.Params[0].Name != "key" {
		t.Fatalf("unexpected method params: %v", get.Params)
	}

	if len(m.Globals) != 1 || m.Globals[0].Name != "LIMIT" {
		t.Fatalf("expected module global LIMIT, got %v", m.Globals)
	}

	modules := map[string]bool{}
	for _, imp := range m.Imports {
		modules[imp.Module] = true
	}
	if !modules["os"] || !modules["collections"] {
		t.Fatalf("expected os and collections imports, got %v", m.Imports)
	}
}
