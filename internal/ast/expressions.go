package ast

import (
	"strconv"
	"strings"

	"github.com/wings-lang/wings/internal/diag"
)

func (NullLiteral) exprNode()   {}
func (BoolLiteral) exprNode()   {}
func (IntLiteral) exprNode()    {}
func (FloatLiteral) exprNode()  {}
func (StringLiteral) exprNode() {}
func (*Identifier) exprNode()   {}
func (*TupleExpr) exprNode()    {}
func (*ListExpr) exprNode()     {}
func (*DictExpr) exprNode()     {}
func (*SetExpr) exprNode()      {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*BoolOpExpr) exprNode()   {}
func (*CompareExpr) exprNode()  {}
func (*TernaryExpr) exprNode()  {}
func (*CallExpr) exprNode()     {}
func (*AttributeExpr) exprNode() {}
func (*IndexExpr) exprNode()    {}
func (*SliceExpr) exprNode()    {}
func (*LambdaExpr) exprNode()   {}
func (*CompoundExpr) exprNode() {}

type NullLiteral struct{ Base }
type BoolLiteral struct {
	Base
	Value bool
}
type IntLiteral struct {
	Base
	Value int64
}
type FloatLiteral struct {
	Base
	Value float64
}
type StringLiteral struct {
	Base
	Value string
}

func (NullLiteral) String() string { return "None" }

func (b BoolLiteral) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}

func (i IntLiteral) String() string    { return strconv.FormatInt(i.Value, 10) }
func (f FloatLiteral) String() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (s StringLiteral) String() string { return "\"" + s.Value + "\"" }

// Identifier is a bare name reference; the parser/compiler resolve it to a
// local, cell (closure capture), global, or attribute-of-self lookup.
type Identifier struct {
	Base
	Name string
}

func (i *Identifier) String() string { return i.Name }

// TupleExpr, ListExpr, SetExpr are ordered element literals.
type TupleExpr struct {
	Base
	Elements []Expr
}
type ListExpr struct {
	Base
	Elements []Expr
}
type SetExpr struct {
	Base
	Elements []Expr
}

func (t *TupleExpr) String() string { return "(" + joinExpr(t.Elements) + ")" }
func (l *ListExpr) String() string  { return "[" + joinExpr(l.Elements) + "]" }
func (s *SetExpr) String() string   { return "{" + joinExpr(s.Elements) + "}" }

// DictEntry is one key:value pair of a dict literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

type DictExpr struct {
	Base
	Entries []DictEntry
}

func (d *DictExpr) String() string {
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		parts[i] = e.Key.String() + ": " + e.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// UnaryExpr is a prefix operator: "-", "+", "~", "not".
type UnaryExpr struct {
	Base
	Op      string
	Operand Expr
}

func (u *UnaryExpr) String() string { return u.Op + u.Operand.String() }

// BinaryExpr is every dunder-dispatched binary operator: arithmetic,
// bitwise, shift. Logical and/or use BoolOpExpr; comparisons use
// CompareExpr; membership/identity are folded into CompareExpr with Op
// "in", "not in", "is", "is not".
type BinaryExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) String() string { return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")" }

// BoolOpExpr is short-circuit "and"/"or".
type BoolOpExpr struct {
	Base
	Op    string // "and" | "or"
	Left  Expr
	Right Expr
}

func (b *BoolOpExpr) String() string { return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")" }

// CompareExpr covers ==, !=, <, <=, >, >=, in, not in, is, is not.
type CompareExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

func (c *CompareExpr) String() string {
	return "(" + c.Left.String() + " " + c.Op + " " + c.Right.String() + ")"
}

// TernaryExpr is `then if cond else other`.
type TernaryExpr struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

func (t *TernaryExpr) String() string {
	return "(" + t.Then.String() + " if " + t.Cond.String() + " else " + t.Else.String() + ")"
}

// KeywordArg is a `name=value` call argument.
type KeywordArg struct {
	Name  string
	Value Expr
}

// CallExpr is `Func(args..., name=value...)`.
type CallExpr struct {
	Base
	Func   Expr
	Args   []Expr
	Kwargs []KeywordArg
}

func (c *CallExpr) String() string { return c.Func.String() + "(" + joinExpr(c.Args) + ")" }

// AttributeExpr is `obj.Name`.
type AttributeExpr struct {
	Base
	Object Expr
	Name   string
}

func (a *AttributeExpr) String() string { return a.Object.String() + "." + a.Name }

// IndexExpr is `obj[Index]`; Index may itself be a *SliceExpr.
type IndexExpr struct {
	Base
	Object Expr
	Index  Expr
}

func (i *IndexExpr) String() string { return i.Object.String() + "[" + i.Index.String() + "]" }

// SliceExpr is the `lower:upper:step` form inside an index; any part may be
// nil to mean "omitted".
type SliceExpr struct {
	Base
	Lower Expr
	Upper Expr
	Step  Expr
}

func (s *SliceExpr) String() string { return "slice" }

// LambdaExpr is an anonymous function expression; Body is the single
// expression it evaluates (lambdas cannot contain full statement bodies).
type LambdaExpr struct {
	Base
	Params   []Param
	Body     Expr
	Locals   []string
	Captures []string
}

func (l *LambdaExpr) String() string { return "lambda" }

// CompoundExpr is a parser-inserted node used to lower constructs (list
// comprehensions) that need statements to run before an expression can be
// evaluated: run Prelude, then yield the value of Result.
type CompoundExpr struct {
	Base
	Prelude []Stmt
	Result  Expr
}

func (c *CompoundExpr) String() string { return "compound(" + c.Result.String() + ")" }

func joinExpr(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func NewPos(p diag.Pos) Base { return Base{P: p} }
