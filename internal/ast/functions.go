package ast

// ParamKind classifies a function parameter.
type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamStar                // *args
	ParamStarStar             // **kwargs
)

// Param is one function parameter.
type Param struct {
	Name    string
	Default Expr // nil if no default
	Kind    ParamKind
}

func (*FunctionDef) stmtNode() {}

// FunctionDef is a `def name(params): body` statement. Locals and
// Captures are filled in by the parser's closure-capture analysis
// (internal/parser's closure resolution pass) and consumed by the
// compiler to decide local-slot vs. shared-cell storage.
type FunctionDef struct {
	Base
	Name     string
	Params   []Param
	Body     []Stmt
	Locals   []string // assigned names that stay purely local to this frame
	Captures []string // names shared with an enclosing function via a cell
	Globals  []string // names declared `global` in this function
	Nonlocal []string // names declared `nonlocal` in this function
	IsMethod bool
}

func (f *FunctionDef) String() string { return "def " + f.Name }
