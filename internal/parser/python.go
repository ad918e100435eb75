package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"connscan/internal/model"
)

// NewPythonAdapter creates the full-parse adapter for Python, the primary
// supported language.
func NewPythonAdapter() (LanguageAdapter, error) {
	spec := grammarSpec{
		functionKinds: kinds("function_definition"),
		classKinds:    kinds("class_definition"),
		unwrapFields: map[string]string{
			"decorated_definition": "definition",
		},
		importKinds: kinds("import_statement", "import_from_statement"),
		stmtKinds: map[string]model.StatementKind{
			"if_statement":     model.StmtIf,
			"elif_clause":      model.StmtIf,
			"for_statement":    model.StmtFor,
			"while_statement":  model.StmtWhile,
			"return_statement": model.StmtReturn,
			"try_statement":    model.StmtTry,
		},
		blockKinds: kinds("block", "else_clause", "except_clause",
			"finally_clause", "with_statement", "case_clause", "match_statement"),
		exprStmtKind:   "expression_statement",
		assignKinds:    kinds("assignment", "augmented_assignment"),
		callKinds:      kinds("call"),
		argListKinds:   kinds("argument_list"),
		condFieldKinds: kinds("if_statement", "elif_clause", "while_statement"),
		branchKinds: kinds("if_statement", "elif_clause", "for_statement",
			"while_statement", "except_clause", "boolean_operator",
			"conditional_expression", "case_clause"),
		nestKinds: kinds("if_statement", "for_statement", "while_statement",
			"try_statement", "with_statement", "function_definition"),
		numberKinds: kinds("integer", "float"),
		stringKinds: kinds("string"),
		skipParams:  kinds("self", "cls"),
		importModule: func(n *tree_sitter.Node, src []byte) []model.ImportRef {
			var refs []model.ImportRef
			if module := n.ChildByFieldName("module_name"); module != nil {
				refs = append(refs, model.ImportRef{Module: module.Utf8Text(src), Line: int(n.StartPosition().Row) + 1})
				return refs
			}
			for i := uint(0); i < n.NamedChildCount(); i++ {
				c := n.NamedChild(i)
				switch c.Kind() {
				case "dotted_name":
					refs = append(refs, model.ImportRef{Module: c.Utf8Text(src), Line: int(c.StartPosition().Row) + 1})
				case "aliased_import":
					if name := c.ChildByFieldName("name"); name != nil {
						refs = append(refs, model.ImportRef{Module: name.Utf8Text(src), Line: int(c.StartPosition().Row) + 1})
					}
				}
			}
			return refs
		},
	}
	return newTSAdapter("python", tree_sitter.NewLanguage(python.Language()), spec)
}

// kinds builds a set from node-kind names.
func kinds(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
