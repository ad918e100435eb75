package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"connscan/internal/model"
)

// NewJavaAdapter creates the full-parse adapter for Java.
func NewJavaAdapter() (LanguageAdapter, error) {
	spec := grammarSpec{
		functionKinds: kinds("method_declaration", "constructor_declaration"),
		classKinds:    kinds("class_declaration", "interface_declaration", "enum_declaration"),
		importKinds:   kinds("import_declaration"),
		stmtKinds: map[string]model.StatementKind{
			"if_statement":                 model.StmtIf,
			"switch_expression":            model.StmtIf,
			"for_statement":                model.StmtFor,
			"enhanced_for_statement":       model.StmtFor,
			"while_statement":              model.StmtWhile,
			"do_statement":                 model.StmtWhile,
			"return_statement":             model.StmtReturn,
			"try_statement":                model.StmtTry,
			"try_with_resources_statement": model.StmtTry,
			"local_variable_declaration":   model.StmtAssign,
		},
		blockKinds: kinds("block", "switch_block",
			"switch_block_statement_group", "catch_clause", "finally_clause",
			"class_body", "labeled_statement"),
		exprStmtKind:   "expression_statement",
		assignKinds:    kinds("assignment_expression"),
		callKinds:      kinds("method_invocation", "object_creation_expression"),
		argListKinds:   kinds("argument_list"),
		condFieldKinds: kinds("if_statement", "while_statement", "do_statement"),
		branchKinds: kinds("if_statement", "for_statement",
			"enhanced_for_statement", "while_statement", "do_statement",
			"catch_clause", "switch_label", "ternary_expression"),
		extraBranch: shortCircuitBranch,
		nestKinds: kinds("if_statement", "for_statement",
			"enhanced_for_statement", "while_statement", "do_statement",
			"try_statement", "switch_expression"),
		numberKinds: kinds("decimal_integer_literal", "hex_integer_literal",
			"octal_integer_literal", "binary_integer_literal",
			"decimal_floating_point_literal"),
		stringKinds:   kinds("string_literal"),
		fieldDeclKind: "field_declaration",
		importModule: func(n *tree_sitter.Node, src []byte) []model.ImportRef {
			var refs []model.ImportRef
			for i := uint(0); i < n.NamedChildCount(); i++ {
				c := n.NamedChild(i)
				if c.Kind() == "scoped_identifier" || c.Kind() == "identifier" {
					refs = append(refs, model.ImportRef{Module: c.Utf8Text(src), Line: int(c.StartPosition().Row) + 1})
				}
			}
			return refs
		},
	}
	return newTSAdapter("java", tree_sitter.NewLanguage(java.Language()), spec)
}
