package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"connscan/internal/model"
)

// NewJavaScriptAdapter creates the full-parse adapter for JavaScript.
func NewJavaScriptAdapter() (LanguageAdapter, error) {
	return newTSAdapter("javascript", tree_sitter.NewLanguage(javascript.Language()), ecmaSpec())
}

// ecmaSpec is shared between the JavaScript and TypeScript adapters; the
// TypeScript grammar is a superset with the same statement kinds.
func ecmaSpec() grammarSpec {
	return grammarSpec{
		functionKinds: kinds("function_declaration", "generator_function_declaration",
			"method_definition"),
		classKinds: kinds("class_declaration"),
		unwrapFields: map[string]string{
			"export_statement": "declaration",
		},
		importKinds:  kinds("import_statement"),
		varDeclKinds: kinds("lexical_declaration", "variable_declaration"),
		anonFnKinds:  kinds("arrow_function", "function_expression", "function"),
		stmtKinds: map[string]model.StatementKind{
			"if_statement":         model.StmtIf,
			"switch_statement":     model.StmtIf,
			"for_statement":        model.StmtFor,
			"for_in_statement":     model.StmtFor,
			"while_statement":      model.StmtWhile,
			"do_statement":         model.StmtWhile,
			"return_statement":     model.StmtReturn,
			"try_statement":        model.StmtTry,
			"lexical_declaration":  model.StmtAssign,
			"variable_declaration": model.StmtAssign,
		},
		blockKinds: kinds("statement_block", "switch_body", "switch_case",
			"switch_default", "catch_clause", "finally_clause", "class_body",
			"labeled_statement"),
		exprStmtKind: "expression_statement",
		assignKinds:  kinds("assignment_expression", "augmented_assignment_expression"),
		callKinds:    kinds("call_expression", "new_expression"),
		argListKinds: kinds("arguments"),
		condFieldKinds: kinds("if_statement", "while_statement", "do_statement",
			"for_statement"),
		branchKinds: kinds("if_statement", "for_statement", "for_in_statement",
			"while_statement", "do_statement", "catch_clause", "switch_case",
			"ternary_expression"),
		extraBranch: shortCircuitBranch,
		nestKinds: kinds("if_statement", "for_statement", "for_in_statement",
			"while_statement", "do_statement", "try_statement",
			"switch_statement", "arrow_function", "function_expression"),
		numberKinds: kinds("number"),
		stringKinds: kinds("string", "template_string"),
		isConstDecl: func(n *tree_sitter.Node, src []byte) bool {
			return strings.HasPrefix(n.Utf8Text(src), "const")
		},
		importModule: func(n *tree_sitter.Node, src []byte) []model.ImportRef {
			if source := n.ChildByFieldName("source"); source != nil {
				return []model.ImportRef{{
					Module: strings.Trim(source.Utf8Text(src), "\"'`"),
					Line:   int(n.StartPosition().Row) + 1,
				}}
			}
			return nil
		},
	}
}
