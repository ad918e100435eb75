package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"connscan/internal/model"
)

// grammarSpec tells the shared extractor how one grammar maps onto the
// structural model. Each full-parse adapter supplies one.
type grammarSpec struct {
	functionKinds map[string]bool
	classKinds    map[string]bool

	// wrapper kind -> field holding the real definition (decorators, exports)
	unwrapFields map[string]string

	importKinds  map[string]bool
	varDeclKinds map[string]bool
	anonFnKinds  map[string]bool

	stmtKinds    map[string]model.StatementKind
	blockKinds   map[string]bool
	exprStmtKind string

	assignKinds    map[string]bool
	callKinds      map[string]bool
	argListKinds   map[string]bool
	condFieldKinds map[string]bool

	branchKinds map[string]bool
	nestKinds   map[string]bool

	// extraBranch catches decision points not distinguishable by kind alone
	// (short-circuit operators hide inside binary_expression in several
	// grammars).
	extraBranch func(n *tree_sitter.Node, src []byte) bool

	numberKinds map[string]bool
	stringKinds map[string]bool

	skipParams map[string]bool

	// fieldDeclKind marks class-body declarations that count as shared state
	// when declared static (java).
	fieldDeclKind string

	// receiverClass maps a method node to a synthetic class name (go).
	receiverClass func(fn *tree_sitter.Node, src []byte) string

	// isConstDecl filters immutable declarations out of the global set.
	isConstDecl func(n *tree_sitter.Node, src []byte) bool

	// importModule extracts import references from an import node.
	importModule func(n *tree_sitter.Node, src []byte) []model.ImportRef
}

// tsAdapter is a grammar-aware language adapter backed by tree-sitter.
type tsAdapter struct {
	language string
	tsLang   *tree_sitter.Language
	spec     grammarSpec
	parser   *tree_sitter.Parser
	mu       sync.Mutex // tree-sitter parsers are not thread-safe
}

func newTSAdapter(language string, tsLang *tree_sitter.Language, spec grammarSpec) (*tsAdapter, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("failed to set %s language: %w", language, err)
	}
	return &tsAdapter{
		language: language,
		tsLang:   tsLang,
		spec:     spec,
		parser:   parser,
	}, nil
}

func (a *tsAdapter) Language() string {
	return a.language
}

func (a *tsAdapter) Parse(ctx context.Context, path string, source []byte) (*model.StructuralModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, &model.ParseError{FilePath: path, Err: err}
	}

	a.mu.Lock()
	tree := a.parser.Parse(source, nil)
	a.mu.Unlock()
	if tree == nil {
		return nil, &model.ParseError{FilePath: path, Err: fmt.Errorf("tree-sitter returned no tree")}
	}
	defer tree.Close()

	m := &model.StructuralModel{
		FilePath:  path,
		Language:  a.language,
		LineCount: bytes.Count(source, []byte("\n")) + 1,
	}

	e := &extractor{spec: a.spec, src: source, model: m}
	e.walkTop(tree.RootNode(), nil)
	e.attachReceiverClasses()

	return m, nil
}

// extractor walks one parse tree and fills a structural model.
type extractor struct {
	spec  grammarSpec
	src   []byte
	model *model.StructuralModel
}

func (e *extractor) text(n *tree_sitter.Node) string {
	return n.Utf8Text(e.src)
}

func line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func column(n *tree_sitter.Node) int {
	return int(n.StartPosition().Column) + 1
}

// walkTop handles declarations: functions, classes, imports, globals. class is
// non-nil while walking a class body.
func (e *extractor) walkTop(n *tree_sitter.Node, class *model.ClassNode) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		kind := c.Kind()

		if field, ok := e.spec.unwrapFields[kind]; ok {
			if inner := c.ChildByFieldName(field); inner != nil {
				e.walkSingle(inner, c, class)
			}
			continue
		}
		e.walkSingle(c, c, class)
	}
}

// walkSingle dispatches one top-level declaration. span is the node whose line
// range should be reported (the wrapper, when one exists).
func (e *extractor) walkSingle(c, span *tree_sitter.Node, class *model.ClassNode) {
	kind := c.Kind()

	switch {
	case e.spec.functionKinds[kind]:
		fn := e.buildFunction(c, span, class)
		e.model.Functions = append(e.model.Functions, fn)
		if class != nil {
			fn.ClassName = class.Name
			class.Methods = append(class.Methods, fn)
		}

	case e.spec.classKinds[kind]:
		cls := &model.ClassNode{
			StartLine: line(span),
			EndLine:   int(span.EndPosition().Row) + 1,
		}
		if nameNode := c.ChildByFieldName("name"); nameNode != nil {
			cls.Name = e.text(nameNode)
		}
		e.model.Classes = append(e.model.Classes, cls)
		if body := c.ChildByFieldName("body"); body != nil {
			e.walkTop(body, cls)
		}

	case e.spec.importKinds[kind]:
		if e.spec.importModule != nil {
			e.model.Imports = append(e.model.Imports, e.spec.importModule(c, e.src)...)
		}

	case e.spec.varDeclKinds[kind] && class == nil:
		e.extractVarDecl(c)

	case kind == e.spec.fieldDeclKind && class != nil:
		// Static class fields are shared mutable state.
		if strings.Contains(e.text(c), "static") && !strings.Contains(e.text(c), "final") {
			if nameNode := firstIdentifier(c); nameNode != nil {
				e.model.Globals = append(e.model.Globals, model.GlobalRef{
					Name: e.text(nameNode),
					Line: line(c),
				})
			}
		}

	case kind == e.spec.exprStmtKind && class == nil:
		// Module-level assignment declares a global binding.
		e.extractModuleAssignment(c)

	default:
		// Namespaces, module blocks and similar containers may nest more
		// declarations.
		if e.spec.blockKinds[kind] {
			e.walkTop(c, class)
		}
	}
}

func (e *extractor) extractVarDecl(c *tree_sitter.Node) {
	if e.spec.isConstDecl != nil && e.spec.isConstDecl(c, e.src) {
		return
	}
	for i := uint(0); i < c.NamedChildCount(); i++ {
		d := c.NamedChild(i)
		// A declarator whose value is a function literal is a named function,
		// not a global.
		if value := d.ChildByFieldName("value"); value != nil && e.spec.anonFnKinds[value.Kind()] {
			fn := e.buildFunction(value, d, nil)
			if nameNode := d.ChildByFieldName("name"); nameNode != nil {
				fn.Name = e.text(nameNode)
			}
			e.model.Functions = append(e.model.Functions, fn)
			continue
		}
		if nameNode := d.ChildByFieldName("name"); nameNode != nil && nameNode.Kind() == "identifier" {
			e.model.Globals = append(e.model.Globals, model.GlobalRef{Name: e.text(nameNode), Line: line(d)})
		} else if d.Kind() == "identifier" {
			e.model.Globals = append(e.model.Globals, model.GlobalRef{Name: e.text(d), Line: line(d)})
		}
	}
}

func (e *extractor) extractModuleAssignment(c *tree_sitter.Node) {
	for i := uint(0); i < c.NamedChildCount(); i++ {
		inner := c.NamedChild(i)
		if !e.spec.assignKinds[inner.Kind()] {
			continue
		}
		left := inner.ChildByFieldName("left")
		if left != nil && left.Kind() == "identifier" {
			e.model.Globals = append(e.model.Globals, model.GlobalRef{Name: e.text(left), Line: line(left)})
		}
	}
}

// buildFunction extracts one function node: parameters, statement shape,
// complexity, nesting, call sites and literals.
func (e *extractor) buildFunction(c, span *tree_sitter.Node, class *model.ClassNode) *model.FunctionNode {
	fn := &model.FunctionNode{
		Name:      "<anonymous>",
		StartLine: line(span),
		EndLine:   int(span.EndPosition().Row) + 1,
	}
	if nameNode := c.ChildByFieldName("name"); nameNode != nil {
		fn.Name = e.text(nameNode)
	}

	if params := c.ChildByFieldName("parameters"); params != nil {
		e.buildParams(params, fn)
	}

	body := c.ChildByFieldName("body")
	if body == nil {
		return fn
	}

	e.collectStatements(body, fn)
	fn.Complexity = 1 + e.countBranches(body)
	fn.NestingDepth = e.maxNesting(body, 0)
	e.collectCalls(body, fn)
	e.collectLiterals(body, fn.Name, model.ContextAssignment)

	for _, call := range fn.Calls {
		if call.Callee == fn.Name {
			fn.Recursive = true
			break
		}
	}

	if e.spec.receiverClass != nil {
		fn.ClassName = e.spec.receiverClass(c, e.src)
	}
	return fn
}

func (e *extractor) buildParams(params *tree_sitter.Node, fn *model.FunctionNode) {
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)

		var names []string
		var typeAnnotation string

		if p.Kind() == "identifier" {
			names = append(names, e.text(p))
		} else {
			for j := uint(0); j < p.NamedChildCount(); j++ {
				child := p.NamedChild(j)
				if child.Kind() == "identifier" {
					names = append(names, e.text(child))
				}
			}
			if len(names) == 0 {
				if nameNode := p.ChildByFieldName("name"); nameNode != nil {
					names = append(names, e.text(nameNode))
				}
			}
			if typeNode := p.ChildByFieldName("type"); typeNode != nil {
				// typescript wraps the annotation node together with the colon
				typeAnnotation = strings.TrimLeft(e.text(typeNode), ": ")
				// Grouped declarations list the type as a trailing identifier.
				if len(names) > 1 && names[len(names)-1] == typeAnnotation {
					names = names[:len(names)-1]
				}
			}
		}

		for _, name := range names {
			if e.spec.skipParams[name] {
				continue
			}
			fn.Params = append(fn.Params, model.Param{Name: name, TypeAnnotation: typeAnnotation})
		}
	}
}

// collectStatements flattens the body into an ordered statement-kind sequence.
// Control statements contribute their own token, then their nested blocks.
func (e *extractor) collectStatements(n *tree_sitter.Node, fn *model.FunctionNode) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		kind := c.Kind()

		if sk, ok := e.spec.stmtKinds[kind]; ok {
			fn.Body = append(fn.Body, sk)
			switch sk {
			case model.StmtIf, model.StmtFor, model.StmtWhile, model.StmtTry:
				e.collectStatements(c, fn)
			}
			continue
		}
		if kind == e.spec.exprStmtKind {
			fn.Body = append(fn.Body, e.classifyExpr(c))
			continue
		}
		if e.spec.blockKinds[kind] {
			e.collectStatements(c, fn)
		}
	}
}

func (e *extractor) classifyExpr(c *tree_sitter.Node) model.StatementKind {
	if hasDescendant(c, e.spec.assignKinds) {
		return model.StmtAssign
	}
	return model.StmtCall
}

func (e *extractor) countBranches(n *tree_sitter.Node) int {
	count := 0
	walk(n, func(c *tree_sitter.Node) bool {
		if e.spec.branchKinds[c.Kind()] {
			count++
		} else if e.spec.extraBranch != nil && e.spec.extraBranch(c, e.src) {
			count++
		}
		return true
	})
	return count
}

func (e *extractor) maxNesting(n *tree_sitter.Node, depth int) int {
	deepest := depth
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		childDepth := depth
		if e.spec.nestKinds[c.Kind()] {
			childDepth++
		}
		if d := e.maxNesting(c, childDepth); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func (e *extractor) collectCalls(n *tree_sitter.Node, fn *model.FunctionNode) {
	walk(n, func(c *tree_sitter.Node) bool {
		if !e.spec.callKinds[c.Kind()] {
			return true
		}
		receiver, callee := e.callTarget(c)
		if callee != "" {
			fn.Calls = append(fn.Calls, model.CallSite{Callee: callee, Receiver: receiver, Line: line(c)})
		}
		return true
	})
}

// callTarget resolves the callee and, for attribute-style calls, the receiver.
// Field names differ per grammar so several are tried.
func (e *extractor) callTarget(call *tree_sitter.Node) (receiver, callee string) {
	target := call.ChildByFieldName("function")
	if target == nil {
		// java method_invocation puts the name directly on the call node
		if nameNode := call.ChildByFieldName("name"); nameNode != nil {
			callee = e.text(nameNode)
			if obj := call.ChildByFieldName("object"); obj != nil {
				receiver = e.text(obj)
			}
		}
		return receiver, callee
	}

	if target.Kind() == "identifier" {
		return "", e.text(target)
	}
	for _, field := range []string{"attribute", "field", "property", "name"} {
		if n := target.ChildByFieldName(field); n != nil {
			callee = e.text(n)
			break
		}
	}
	for _, field := range []string{"object", "operand"} {
		if n := target.ChildByFieldName(field); n != nil {
			receiver = e.text(n)
			break
		}
	}
	if callee == "" {
		callee = e.text(target)
	}
	return receiver, callee
}

// collectLiterals records literal uses with their syntactic context. The
// conditional context is sticky: anything under a condition stays conditional.
func (e *extractor) collectLiterals(n *tree_sitter.Node, fnName string, ctx model.LiteralContext) {
	var cond *tree_sitter.Node
	if e.spec.condFieldKinds[n.Kind()] {
		cond = n.ChildByFieldName("condition")
	}

	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		kind := c.Kind()

		childCtx := ctx
		if cond != nil && c.StartByte() == cond.StartByte() && c.EndByte() == cond.EndByte() {
			childCtx = model.ContextConditional
		}
		if childCtx != model.ContextConditional {
			switch {
			case e.spec.argListKinds[kind]:
				childCtx = model.ContextArgument
			case e.spec.assignKinds[kind]:
				childCtx = model.ContextAssignment
			}
		}

		if e.spec.numberKinds[kind] || e.spec.stringKinds[kind] {
			value := e.text(c)
			isString := e.spec.stringKinds[kind]
			if isString {
				value = strings.Trim(value, "\"'`")
			}
			e.model.Literals = append(e.model.Literals, model.LiteralUse{
				Value:    value,
				IsString: isString,
				Context:  childCtx,
				Function: fnName,
				Line:     line(c),
				Column:   column(c),
			})
			continue
		}
		e.collectLiterals(c, fnName, childCtx)
	}
}

// attachReceiverClasses groups receiver methods into synthetic class nodes so
// size heuristics apply to languages without class declarations.
func (e *extractor) attachReceiverClasses() {
	if e.spec.receiverClass == nil {
		return
	}
	byName := make(map[string]*model.ClassNode)
	var order []string
	for _, fn := range e.model.Functions {
		if fn.ClassName == "" {
			continue
		}
		cls, ok := byName[fn.ClassName]
		if !ok {
			cls = &model.ClassNode{Name: fn.ClassName, StartLine: fn.StartLine, EndLine: fn.EndLine}
			byName[fn.ClassName] = cls
			order = append(order, fn.ClassName)
		}
		cls.Methods = append(cls.Methods, fn)
		if fn.StartLine < cls.StartLine {
			cls.StartLine = fn.StartLine
		}
		if fn.EndLine > cls.EndLine {
			cls.EndLine = fn.EndLine
		}
	}
	for _, name := range order {
		e.model.Classes = append(e.model.Classes, byName[name])
	}
}

// walk visits nodes depth-first; the callback returns false to prune.
func walk(n *tree_sitter.Node, fn func(*tree_sitter.Node) bool) {
	if !fn(n) {
		return
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		walk(n.NamedChild(i), fn)
	}
}

func hasDescendant(n *tree_sitter.Node, kinds map[string]bool) bool {
	found := false
	walk(n, func(c *tree_sitter.Node) bool {
		if kinds[c.Kind()] {
			found = true
			return false
		}
		return !found
	})
	return found
}

func firstIdentifier(n *tree_sitter.Node) *tree_sitter.Node {
	var result *tree_sitter.Node
	walk(n, func(c *tree_sitter.Node) bool {
		if c.Kind() == "identifier" {
			result = c
			return false
		}
		return result == nil
	})
	return result
}
