package parser

import (
	"context"
	"regexp"
	"strings"

	"connscan/internal/model"
)

// PatternAdapter extracts a best-effort structural model from languages
// without a wired grammar, using line and regex scanning. Models it produces
// are marked Partial so downstream scoring can discount them; pattern hits are
// never treated as ground truth.
type PatternAdapter struct {
	language string
}

// NewPatternAdapter creates a pattern-based adapter for the given language tag.
func NewPatternAdapter(language string) *PatternAdapter {
	return &PatternAdapter{language: language}
}

func (a *PatternAdapter) Language() string {
	return a.language
}

var (
	// Covers `def name(...)`, `fn name(...)`, `function name(...)` and
	// C-style `type name(...)` followed by an opening brace.
	funcDefRe = regexp.MustCompile(`^\s*(?:def|fn|function|func)\s+(\w+)\s*\(([^)]*)\)`)
	cFuncRe   = regexp.MustCompile(`^\s*(?:[\w:<>\*&\[\]]+\s+)+([A-Za-z_]\w*)\s*\(([^)]*)\)\s*\{?\s*$`)

	classDefRe = regexp.MustCompile(`^\s*(?:pub\s+)?(?:class|struct|module|trait|interface)\s+([A-Za-z_]\w*)`)

	importRe = regexp.MustCompile(`^\s*(?:#include\s*[<"]([^>"]+)[>"]|(?:import|require|use|using)\s+['"]?([\w./:\-]+))`)

	numberLitRe = regexp.MustCompile(`\b-?\d+(?:\.\d+)?\b`)
	stringLitRe = regexp.MustCompile(`"([^"\\]*)"|'([^'\\]*)'`)

	globalRe = regexp.MustCompile(`^([A-Za-z_]\w*)\s*[:+]?=`)

	callRe = regexp.MustCompile(`(?:([A-Za-z_]\w*)\.)?([A-Za-z_]\w*)\s*\(`)
)

// keywords that must never be mistaken for function names or calls
var patternKeywords = map[string]bool{
	"if": true, "else": true, "elsif": true, "elif": true, "for": true,
	"while": true, "switch": true, "case": true, "return": true, "catch": true,
	"do": true, "unless": true, "until": true, "sizeof": true, "new": true,
}

func (a *PatternAdapter) Parse(ctx context.Context, path string, source []byte) (*model.StructuralModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, &model.ParseError{FilePath: path, Err: err}
	}

	lines := strings.Split(string(source), "\n")
	m := &model.StructuralModel{
		FilePath:  path,
		Language:  a.language,
		Partial:   true,
		LineCount: len(lines),
	}

	var current *model.FunctionNode
	var currentClass *model.ClassNode
	funcIndent := -1

	for idx, raw := range lines {
		lineNo := idx + 1
		line := stripLineComment(raw)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		indent := indentOf(raw)

		// Function ends when indentation falls back to its own level.
		if current != nil && indent <= funcIndent && trimmed != "{" && !strings.HasPrefix(trimmed, "}") {
			if isDefinitionLine(trimmed) || indent < funcIndent {
				current.EndLine = lineNo - 1
				a.finishFunction(current)
				current = nil
			}
		}

		if ref := matchImport(trimmed, lineNo); ref != nil {
			m.Imports = append(m.Imports, *ref)
			continue
		}

		if match := classDefRe.FindStringSubmatch(trimmed); match != nil {
			currentClass = &model.ClassNode{Name: match[1], StartLine: lineNo}
			m.Classes = append(m.Classes, currentClass)
			continue
		}

		if name, params, ok := matchFunctionDef(trimmed); ok {
			if current != nil {
				current.EndLine = lineNo - 1
				a.finishFunction(current)
			}
			current = &model.FunctionNode{
				Name:      name,
				StartLine: lineNo,
				EndLine:   lineNo,
			}
			for _, p := range splitParams(params) {
				current.Params = append(current.Params, p)
			}
			if currentClass != nil {
				current.ClassName = currentClass.Name
				currentClass.Methods = append(currentClass.Methods, current)
				if lineNo > currentClass.EndLine {
					currentClass.EndLine = lineNo
				}
			}
			m.Functions = append(m.Functions, current)
			funcIndent = indent
			continue
		}

		if current == nil {
			// Module-level binding.
			if match := globalRe.FindStringSubmatch(trimmed); match != nil && indent == 0 {
				m.Globals = append(m.Globals, model.GlobalRef{Name: match[1], Line: lineNo})
			}
			continue
		}

		current.EndLine = lineNo
		if currentClass != nil && lineNo > currentClass.EndLine {
			currentClass.EndLine = lineNo
		}

		kind, conditional := classifyLine(trimmed)
		if kind != "" {
			current.Body = append(current.Body, kind)
		}

		depth := (indent - funcIndent) / 2
		if depth > current.NestingDepth {
			current.NestingDepth = depth
		}

		a.collectLineLiterals(m, current, trimmed, lineNo, conditional)
		a.collectLineCalls(current, trimmed, lineNo)
	}

	if current != nil {
		a.finishFunction(current)
	}

	return m, nil
}

func (a *PatternAdapter) finishFunction(fn *model.FunctionNode) {
	fn.Complexity = 1
	for _, kind := range fn.Body {
		switch kind {
		case model.StmtIf, model.StmtFor, model.StmtWhile:
			fn.Complexity++
		}
	}
	for _, call := range fn.Calls {
		if call.Callee == fn.Name {
			fn.Recursive = true
			break
		}
	}
}

// classifyLine maps one source line to a statement kind. The second return
// reports whether the line opens a conditional, which raises literal severity.
func classifyLine(trimmed string) (model.StatementKind, bool) {
	switch {
	case hasKeyword(trimmed, "if"), hasKeyword(trimmed, "elif"),
		hasKeyword(trimmed, "elsif"), hasKeyword(trimmed, "unless"),
		hasKeyword(trimmed, "switch"), hasKeyword(trimmed, "case"):
		return model.StmtIf, true
	case hasKeyword(trimmed, "for"), hasKeyword(trimmed, "foreach"):
		return model.StmtFor, true
	case hasKeyword(trimmed, "while"), hasKeyword(trimmed, "until"):
		return model.StmtWhile, true
	case hasKeyword(trimmed, "return"):
		return model.StmtReturn, false
	case hasKeyword(trimmed, "try"), hasKeyword(trimmed, "begin"):
		return model.StmtTry, false
	case strings.Contains(trimmed, "=") && !strings.Contains(trimmed, "==") &&
		!strings.Contains(trimmed, "!=") && !strings.Contains(trimmed, "<=") &&
		!strings.Contains(trimmed, ">="):
		return model.StmtAssign, false
	case callRe.MatchString(trimmed):
		return model.StmtCall, false
	}
	return "", false
}

func (a *PatternAdapter) collectLineLiterals(m *model.StructuralModel, fn *model.FunctionNode, trimmed string, lineNo int, conditional bool) {
	ctx := model.ContextAssignment
	if conditional {
		ctx = model.ContextConditional
	}

	withoutStrings := trimmed
	for _, match := range stringLitRe.FindAllStringSubmatchIndex(trimmed, -1) {
		value := trimmed[match[0]:match[1]]
		m.Literals = append(m.Literals, model.LiteralUse{
			Value:    strings.Trim(value, `"'`),
			IsString: true,
			Context:  ctx,
			Function: fn.Name,
			Line:     lineNo,
			Column:   match[0] + 1,
		})
	}
	// Blank strings out so their digits are not double-counted as numbers.
	withoutStrings = stringLitRe.ReplaceAllStringFunc(withoutStrings, func(s string) string {
		return strings.Repeat(" ", len(s))
	})

	for _, match := range numberLitRe.FindAllStringIndex(withoutStrings, -1) {
		m.Literals = append(m.Literals, model.LiteralUse{
			Value:    withoutStrings[match[0]:match[1]],
			Context:  ctx,
			Function: fn.Name,
			Line:     lineNo,
			Column:   match[0] + 1,
		})
	}
}

func (a *PatternAdapter) collectLineCalls(fn *model.FunctionNode, trimmed string, lineNo int) {
	for _, match := range callRe.FindAllStringSubmatch(trimmed, -1) {
		callee := match[2]
		if patternKeywords[callee] {
			continue
		}
		fn.Calls = append(fn.Calls, model.CallSite{
			Callee:   callee,
			Receiver: match[1],
			Line:     lineNo,
		})
	}
}

func matchFunctionDef(trimmed string) (name, params string, ok bool) {
	if match := funcDefRe.FindStringSubmatch(trimmed); match != nil {
		return match[1], match[2], true
	}
	if match := cFuncRe.FindStringSubmatch(trimmed); match != nil && !patternKeywords[match[1]] {
		return match[1], match[2], true
	}
	return "", "", false
}

func matchImport(trimmed string, lineNo int) *model.ImportRef {
	match := importRe.FindStringSubmatch(trimmed)
	if match == nil {
		return nil
	}
	module := match[1]
	if module == "" {
		module = match[2]
	}
	return &model.ImportRef{Module: module, Line: lineNo}
}

func splitParams(params string) []model.Param {
	var result []model.Param
	for _, part := range strings.Split(params, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "void" || part == "self" {
			continue
		}
		// Keep the last identifier-looking token as the name; anything before
		// it is treated as a type.
		fields := strings.Fields(strings.NewReplacer("*", " ", "&", " ").Replace(part))
		if len(fields) == 0 {
			continue
		}
		name := strings.SplitN(fields[len(fields)-1], "=", 2)[0]
		name = strings.SplitN(name, ":", 2)[0]
		param := model.Param{Name: strings.TrimSpace(name)}
		if len(fields) > 1 {
			param.TypeAnnotation = strings.Join(fields[:len(fields)-1], " ")
		} else if colon := strings.Index(part, ":"); colon >= 0 {
			param.TypeAnnotation = strings.TrimSpace(strings.SplitN(part[colon+1:], "=", 2)[0])
		}
		result = append(result, param)
	}
	return result
}

func isDefinitionLine(trimmed string) bool {
	_, _, ok := matchFunctionDef(trimmed)
	return ok || classDefRe.MatchString(trimmed)
}

func hasKeyword(trimmed, keyword string) bool {
	if !strings.HasPrefix(trimmed, keyword) {
		return false
	}
	rest := trimmed[len(keyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '(' || rest[0] == ':'
}

func stripLineComment(line string) string {
	for _, marker := range []string{"//", "#"} {
		if idx := strings.Index(line, marker); idx >= 0 {
			line = line[:idx]
		}
	}
	return line
}

func indentOf(line string) int {
	count := 0
	for _, r := range line {
		switch r {
		case ' ':
			count++
		case '\t':
			count += 4
		default:
			return count
		}
	}
	return count
}
