package model

// StatementKind is the normalized shape of one statement in a function body.
type StatementKind string

const (
	StmtCall   StatementKind = "call"
	StmtIf     StatementKind = "if"
	StmtFor    StatementKind = "for"
	StmtWhile  StatementKind = "while"
	StmtReturn StatementKind = "return"
	StmtAssign StatementKind = "assign"
	StmtTry    StatementKind = "try"
)

// LiteralContext describes where a literal appears syntactically.
type LiteralContext string

const (
	ContextConditional LiteralContext = "conditional"
	ContextArgument    LiteralContext = "argument"
	ContextAssignment  LiteralContext = "assignment"
)

// Param is one function parameter. TypeAnnotation is empty when the source
// carries no explicit annotation.
type Param struct {
	Name           string `json:"name"`
	TypeAnnotation string `json:"type_annotation,omitempty"`
}

// CallSite is one call expression inside a function body.
type CallSite struct {
	Callee   string `json:"callee"`
	Receiver string `json:"receiver,omitempty"`
	Line     int    `json:"line"`
}

// FunctionNode is the structural representation of one function or method.
type FunctionNode struct {
	Name         string          `json:"name"`
	ClassName    string          `json:"class_name,omitempty"`
	Params       []Param         `json:"params"`
	Body         []StatementKind `json:"body"`
	Calls        []CallSite      `json:"calls"`
	StartLine    int             `json:"start_line"`
	EndLine      int             `json:"end_line"`
	NestingDepth int             `json:"nesting_depth"`
	Complexity   int             `json:"complexity"`
	Recursive    bool            `json:"recursive"`
}

// LineCount returns the span of the function in lines.
func (f *FunctionNode) LineCount() int {
	if f.EndLine < f.StartLine {
		return 0
	}
	return f.EndLine - f.StartLine + 1
}

// ClassNode is a class (or, for Go, a receiver type) with its methods.
// Methods are borrowed references into the owning StructuralModel's function
// list; the class never owns them.
type ClassNode struct {
	Name      string          `json:"name"`
	StartLine int             `json:"start_line"`
	EndLine   int             `json:"end_line"`
	Methods   []*FunctionNode `json:"-"`
}

// MethodCount returns the number of methods attached to the class.
func (c *ClassNode) MethodCount() int {
	return len(c.Methods)
}

// LOC returns the class line span when end-line metadata is present, otherwise
// a best-effort estimate from the method statement counts.
func (c *ClassNode) LOC() (loc int, estimated bool) {
	if c.EndLine > c.StartLine {
		return c.EndLine - c.StartLine + 1, false
	}
	statements := 0
	for _, m := range c.Methods {
		statements += len(m.Body)
	}
	return statements * 2, true
}

// ImportRef is an import-like statement.
type ImportRef struct {
	Module string `json:"module"`
	Line   int    `json:"line"`
}

// GlobalRef is a module-level mutable binding.
type GlobalRef struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// LiteralUse is one literal occurrence with its syntactic context.
type LiteralUse struct {
	Value    string         `json:"value"`
	IsString bool           `json:"is_string"`
	Context  LiteralContext `json:"context"`
	Function string         `json:"function,omitempty"`
	Line     int            `json:"line"`
	Column   int            `json:"column"`
}

// StructuralModel is the language-neutral representation of one source file.
// It is built once by a language adapter and read-only afterwards.
type StructuralModel struct {
	FilePath  string          `json:"file_path"`
	Language  string          `json:"language"`
	Partial   bool            `json:"partial"`
	LineCount int             `json:"line_count"`
	Functions []*FunctionNode `json:"functions"`
	Classes   []*ClassNode    `json:"classes"`
	Imports   []ImportRef     `json:"imports"`
	Globals   []GlobalRef     `json:"globals"`
	Literals  []LiteralUse    `json:"literals"`
}

// SourceUnit is one analyzed file: raw text plus the derived model. It lives
// only for the duration of a run.
type SourceUnit struct {
	Path     string
	Language string
	Source   []byte
	Model    *StructuralModel
}
