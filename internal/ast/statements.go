package ast

import (
	"strings"

	"github.com/wings-lang/wings/internal/diag"
)

func (*PassStmt) stmtNode()       {}
func (*ExprStmt) stmtNode()       {}
func (*AssignStmt) stmtNode()     {}
func (*GlobalStmt) stmtNode()     {}
func (*NonlocalStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()     {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*TryStmt) stmtNode()        {}
func (*RaiseStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()      {}
func (*ContinueStmt) stmtNode()   {}
func (*SeqStmt) stmtNode()        {}
func (*ImportStmt) stmtNode()     {}
func (*ImportFromStmt) stmtNode() {}
func (*DelStmt) stmtNode()        {}

// PassStmt is a no-op statement.
type PassStmt struct{ Base }

func (p *PassStmt) String() string { return "pass" }

// ExprStmt evaluates an expression and discards its value.
type ExprStmt struct {
	Base
	X Expr
}

func (e *ExprStmt) String() string { return e.X.String() }

// AssignStmt is `Target = Value`. Target may be an *Identifier,
// *AttributeExpr, *IndexExpr, or a *TupleExpr/*ListExpr of assignable
// targets for packing/unpacking assignment. Compound assignment (`+=`
// etc.) is rewritten to this form by the parser with Value wrapped in the
// corresponding *BinaryExpr.
type AssignStmt struct {
	Base
	Target Expr
	Value  Expr
}

func (a *AssignStmt) String() string { return a.Target.String() + " = " + a.Value.String() }

// GlobalStmt declares names as referring to the module global scope.
type GlobalStmt struct {
	Base
	Names []string
}

func (g *GlobalStmt) String() string { return "global " + strings.Join(g.Names, ", ") }

// NonlocalStmt declares names as referring to an enclosing function scope.
type NonlocalStmt struct {
	Base
	Names []string
}

func (n *NonlocalStmt) String() string { return "nonlocal " + strings.Join(n.Names, ", ") }

// ReturnStmt returns from the enclosing function; Value is nil for a bare
// `return`.
type ReturnStmt struct {
	Base
	Value Expr
}

func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// IfStmt covers if/elif/else; Else may itself be a single-statement
// []Stmt{*IfStmt} list to represent "elif", or any statement list for a
// final "else".
type IfStmt struct {
	Base
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (i *IfStmt) String() string { return "if " + i.Cond.String() }

// WhileStmt is `while Cond: Body [else: Else]`. `for` loops are lowered to
// this form by the parser (see internal/parser's desugaring pass); Else
// runs when the loop condition becomes false without an intervening
// `break` from Body.
type WhileStmt struct {
	Base
	Cond Expr
	Body []Stmt
	Else []Stmt
}

func (w *WhileStmt) String() string { return "while " + w.Cond.String() }

// ExceptClause is one `except [Types] [as Name]: Body` clause.
type ExceptClause struct {
	Types []Expr // empty means bare `except` (matches everything)
	Name  string // "" if no `as Name`
	Body  []Stmt
}

// TryStmt is `try: Body except...: ... finally: Finally`.
type TryStmt struct {
	Base
	Body    []Stmt
	Excepts []ExceptClause
	Finally []Stmt
}

func (t *TryStmt) String() string { return "try" }

// RaiseStmt is `raise [Value]`; a bare `raise` re-raises the current
// exception.
type RaiseStmt struct {
	Base
	Value Expr
}

func (r *RaiseStmt) String() string {
	if r.Value == nil {
		return "raise"
	}
	return "raise " + r.Value.String()
}

// BreakStmt and ContinueStmt must be lexically inside a loop within the
// same function (enforced by the parser).
type BreakStmt struct{ Base }
type ContinueStmt struct{ Base }

func (*BreakStmt) String() string    { return "break" }
func (*ContinueStmt) String() string { return "continue" }

// SeqStmt is a parser-inserted composite node holding several statements
// that replace one source statement in place (used by the for/with
// desugarings).
type SeqStmt struct {
	Base
	Statements []Stmt
}

func (s *SeqStmt) String() string { return "seq" }

// ImportStmt is `import Module [as Alias]`.
type ImportStmt struct {
	Base
	Module string
	Alias  string // "" means bind under Module
}

func (i *ImportStmt) String() string { return "import " + i.Module }

// ImportedName is one `Name [as Alias]` in a from-import list; Name == "*"
// means `from Module import *`.
type ImportedName struct {
	Name  string
	Alias string
}

// ImportFromStmt is `from Module import Name [as Alias], ...`.
type ImportFromStmt struct {
	Base
	Module string
	Names  []ImportedName
}

func (i *ImportFromStmt) String() string { return "from " + i.Module + " import ..." }

// DelStmt is `del target, target, ...`; each target may be an
// *Identifier, *AttributeExpr, or *IndexExpr.
type DelStmt struct {
	Base
	Targets []Expr
}

func (d *DelStmt) String() string { return "del " + joinExpr(d.Targets) }

func Position(n Node) diag.Pos { return n.Pos() }
