// Package ast defines the abstract syntax tree produced by internal/parser.
package ast

import "github.com/wings-lang/wings/internal/diag"

// Node is implemented by every AST node.
type Node interface {
	Pos() diag.Pos
	String() string
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Program is the parser's top-level output: the ordered list of top-level
// statements.
type Program struct {
	Statements []Stmt
}

func (p *Program) Pos() diag.Pos {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return diag.Pos{Line: 1, Column: 1}
}

func (p *Program) String() string { return "Program" }

// Base carries the source position every node needs.
type Base struct {
	P diag.Pos
}

func (b Base) Pos() diag.Pos { return b.P }
