package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// NewTypeScriptAdapter creates the full-parse adapter for TypeScript. It
// reuses the ECMAScript spec; the TypeScript grammar adds type annotations,
// which the shared extractor already picks up from parameter "type" fields.
func NewTypeScriptAdapter() (LanguageAdapter, error) {
	spec := ecmaSpec()
	spec.classKinds["abstract_class_declaration"] = true
	spec.blockKinds["internal_module"] = true
	spec.blockKinds["module"] = true
	spec.skipParams = kinds("this")
	return newTSAdapter("typescript", tree_sitter.NewLanguage(typescript.LanguageTypescript()), spec)
}
