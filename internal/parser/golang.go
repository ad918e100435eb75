package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"connscan/internal/model"
)

// NewGoAdapter creates the full-parse adapter for Go. Receiver methods are
// grouped into synthetic class nodes so the structural-size heuristics apply.
func NewGoAdapter() (LanguageAdapter, error) {
	spec := grammarSpec{
		functionKinds: kinds("function_declaration", "method_declaration"),
		importKinds:   kinds("import_declaration"),
		varDeclKinds:  kinds("var_declaration"),
		stmtKinds: map[string]model.StatementKind{
			"if_statement":                model.StmtIf,
			"for_statement":               model.StmtFor,
			"return_statement":            model.StmtReturn,
			"expression_switch_statement": model.StmtIf,
			"type_switch_statement":       model.StmtIf,
			"select_statement":            model.StmtIf,
			"short_var_declaration":       model.StmtAssign,
			"assignment_statement":        model.StmtAssign,
			"var_declaration":             model.StmtAssign,
			"call_expression":             model.StmtCall,
			"go_statement":                model.StmtCall,
			"defer_statement":             model.StmtCall,
		},
		blockKinds: kinds("block", "expression_case", "default_case",
			"type_case", "communication_case", "labeled_statement"),
		assignKinds:    kinds("short_var_declaration", "assignment_statement"),
		callKinds:      kinds("call_expression"),
		argListKinds:   kinds("argument_list"),
		condFieldKinds: kinds("if_statement"),
		branchKinds: kinds("if_statement", "for_statement",
			"expression_case", "type_case", "communication_case"),
		extraBranch: shortCircuitBranch,
		nestKinds: kinds("if_statement", "for_statement",
			"expression_switch_statement", "type_switch_statement",
			"select_statement", "func_literal"),
		numberKinds: kinds("int_literal", "float_literal", "imaginary_literal"),
		stringKinds: kinds("interpreted_string_literal", "raw_string_literal"),
		receiverClass: func(fn *tree_sitter.Node, src []byte) string {
			if fn.Kind() != "method_declaration" {
				return ""
			}
			receiver := fn.ChildByFieldName("receiver")
			if receiver == nil {
				return ""
			}
			var name string
			walk(receiver, func(c *tree_sitter.Node) bool {
				if c.Kind() == "type_identifier" {
					name = c.Utf8Text(src)
					return false
				}
				return name == ""
			})
			return name
		},
		importModule: func(n *tree_sitter.Node, src []byte) []model.ImportRef {
			var refs []model.ImportRef
			walk(n, func(c *tree_sitter.Node) bool {
				if c.Kind() == "import_spec" {
					if path := c.ChildByFieldName("path"); path != nil {
						refs = append(refs, model.ImportRef{
							Module: strings.Trim(path.Utf8Text(src), "\"`"),
							Line:   int(c.StartPosition().Row) + 1,
						})
					}
					return false
				}
				return true
			})
			return refs
		},
	}
	return newTSAdapter("go", tree_sitter.NewLanguage(golang.Language()), spec)
}

// shortCircuitBranch reports whether a node is a short-circuit boolean
// operator, which adds an implicit branch.
func shortCircuitBranch(n *tree_sitter.Node, src []byte) bool {
	if n.Kind() != "binary_expression" {
		return false
	}
	if op := n.ChildByFieldName("operator"); op != nil {
		text := op.Utf8Text(src)
		return text == "&&" || text == "||"
	}
	return false
}
