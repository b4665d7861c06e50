package ast

import "strings"

func (*ClassDef) stmtNode() {}

// ClassDef is `class Name(Base1, Base2): body`. The body's FunctionDef
// children become methods (IsMethod set by the parser); other statements
// in the body (assignments) become class-level attributes evaluated once
// at class-creation time.
type ClassDef struct {
	Base
	Name  string
	Bases []Expr
	Body  []Stmt
}

func (c *ClassDef) String() string {
	names := make([]string, len(c.Bases))
	for i, b := range c.Bases {
		names[i] = b.String()
	}
	return "class " + c.Name + "(" + strings.Join(names, ", ") + ")"
}
