package compiler

import (
	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/diag"
)

// Compiler lowers one function/module body (one *scope) at a time into a
// Chunk; nested functions recurse into a fresh child Compiler sharing the
// same diagnostic sink and source file name.
type Compiler struct {
	parent *Compiler
	chunk  *Chunk
	source string

	locals   map[string]int32
	cells    map[string]int32
	captures map[string]int32
	globals  map[string]bool

	// ownLocalNames/ownCellNames/ownCaptureNames record, in slot order,
	// the names newFunctionCompiler assigned; the caller reads these
	// back to build this function's FuncProto once its body is compiled.
	ownLocalNames   []string
	ownCellNames    []string
	ownCaptureNames []string

	loopStack []*loopCtx
	tryBlocks []tryBlockCtx

	errs *diag.List
}

type loopCtx struct {
	breakJumps    []int
	continueJumps []int
	continueTarget int // patched once known; -1 until the loop's head is reached
	tryDepth      int // len(tryBlocks) when the loop was entered
}

// tryBlockCtx tracks one lexically-enclosing try statement while its body
// (or an except-clause body) is being compiled: whether a runtime try
// frame is active over the code being emitted, and the finally body every
// early exit (return/break/continue) must inline on its way out.
type tryBlockCtx struct {
	live    bool
	finally []ast.Stmt
}

func toPos(p diag.Pos) Pos { return Pos{Line: p.Line, Column: p.Column} }

// Compile builds the module-level Chunk for prog. sourceFile is carried
// into every FuncProto for traceback rendering. A module body always
// yields None; use CompileEval for the expression-yielding entry.
func Compile(prog *ast.Program, sourceFile string) (*Chunk, *diag.List) {
	return compileProgram(prog, sourceFile, false)
}

// CompileEval compiles prog like Compile but, when the final top-level
// statement is a bare expression, leaves that expression's value as the
// chunk's result instead of discarding it. This is the alternate
// expression-yielding path Engine.Eval and REPL-style callers use;
// imports keep Compile's always-None module semantics.
func CompileEval(prog *ast.Program, sourceFile string) (*Chunk, *diag.List) {
	return compileProgram(prog, sourceFile, true)
}

func compileProgram(prog *ast.Program, sourceFile string, keepLast bool) (*Chunk, *diag.List) {
	errs := &diag.List{}
	c := &Compiler{
		chunk:    &Chunk{Name: "<module>", SourceFile: sourceFile},
		source:   sourceFile,
		locals:   map[string]int32{},
		cells:    map[string]int32{},
		captures: map[string]int32{},
		globals:  map[string]bool{},
		errs:     errs,
	}
	stmts := prog.Statements
	var last *ast.ExprStmt
	if keepLast && len(stmts) > 0 {
		if es, ok := stmts[len(stmts)-1].(*ast.ExprStmt); ok {
			last = es
			stmts = stmts[:len(stmts)-1]
		}
	}
	c.compileStmts(stmts)
	if last != nil {
		c.compileExpr(last.X)
	} else {
		c.chunk.emit(OpLoadNone, 0, Pos{})
	}
	c.chunk.emit(OpReturn, 1, Pos{})
	return c.chunk, errs
}

func (c *Compiler) errorf(pos diag.Pos, format string, args ...any) {
	c.errs.Addf(pos, "", c.source, format, args...)
}

// newFunctionCompiler sets up a child Compiler for one FunctionDef/
// LambdaExpr body, pre-resolving local/cell/capture slots from the
// resolver's Locals/Captures analysis plus this function's own
// cell-promotion (locals a nested literal captures, computed by scanning
// the body one function-level deep).
func (c *Compiler) newFunctionCompiler(name string, params []ast.Param, locals, captureNames []string, body []ast.Stmt, globals []string) *Compiler {
	promoted := collectCellPromotions(body)

	child := &Compiler{
		parent:   c,
		chunk:    &Chunk{Name: name, SourceFile: c.source},
		source:   c.source,
		locals:   map[string]int32{},
		cells:    map[string]int32{},
		captures: map[string]int32{},
		globals:  map[string]bool{},
		errs:     c.errs,
	}
	for _, g := range globals {
		child.globals[g] = true
	}

	var localNames, cellNames []string
	for _, p := range params {
		if promoted[p.Name] {
			child.cells[p.Name] = int32(len(cellNames))
			cellNames = append(cellNames, p.Name)
		} else {
			child.locals[p.Name] = int32(len(localNames))
			localNames = append(localNames, p.Name)
		}
	}
	for _, l := range locals {
		if _, isParam := child.locals[l]; isParam {
			continue
		}
		if _, isCell := child.cells[l]; isCell {
			continue
		}
		if promoted[l] {
			child.cells[l] = int32(len(cellNames))
			cellNames = append(cellNames, l)
		} else {
			child.locals[l] = int32(len(localNames))
			localNames = append(localNames, l)
		}
	}
	for i, name := range captureNames {
		child.captures[name] = int32(i)
	}

	child.ownLocalNames = localNames
	child.ownCellNames = cellNames
	child.ownCaptureNames = append([]string(nil), captureNames...)
	return child
}

func collectCellPromotions(body []ast.Stmt) map[string]bool {
	promoted := map[string]bool{}
	var visitStmts func([]ast.Stmt)
	var visitExpr func(ast.Expr)

	visitExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.LambdaExpr:
			for _, name := range n.Captures {
				promoted[name] = true
			}
			if n.Body != nil {
				visitExpr(n.Body)
			}
			for _, p := range n.Params {
				if p.Default != nil {
					visitExpr(p.Default)
				}
			}
		case *ast.CompoundExpr:
			visitStmts(n.Prelude)
			visitExpr(n.Result)
		case *ast.UnaryExpr:
			visitExpr(n.Operand)
		case *ast.BinaryExpr:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.BoolOpExpr:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.CompareExpr:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.TernaryExpr:
			visitExpr(n.Cond)
			visitExpr(n.Then)
			visitExpr(n.Else)
		case *ast.CallExpr:
			visitExpr(n.Func)
			for _, a := range n.Args {
				visitExpr(a)
			}
			for _, kw := range n.Kwargs {
				visitExpr(kw.Value)
			}
		case *ast.AttributeExpr:
			visitExpr(n.Object)
		case *ast.IndexExpr:
			visitExpr(n.Object)
			visitExpr(n.Index)
		case *ast.SliceExpr:
			if n.Lower != nil {
				visitExpr(n.Lower)
			}
			if n.Upper != nil {
				visitExpr(n.Upper)
			}
			if n.Step != nil {
				visitExpr(n.Step)
			}
		case *ast.TupleExpr:
			for _, el := range n.Elements {
				visitExpr(el)
			}
		case *ast.ListExpr:
			for _, el := range n.Elements {
				visitExpr(el)
			}
		case *ast.SetExpr:
			for _, el := range n.Elements {
				visitExpr(el)
			}
		case *ast.DictExpr:
			for _, entry := range n.Entries {
				visitExpr(entry.Key)
				visitExpr(entry.Value)
			}
		}
	}

	visitStmts = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *ast.FunctionDef:
				for _, name := range n.Captures {
					promoted[name] = true
				}
				for _, p := range n.Params {
					if p.Default != nil {
						visitExpr(p.Default)
					}
				}
			case *ast.ClassDef:
				for _, b := range n.Bases {
					visitExpr(b)
				}
				visitStmts(n.Body)
			case *ast.ExprStmt:
				visitExpr(n.X)
			case *ast.AssignStmt:
				visitExpr(n.Value)
				visitExpr(n.Target)
			case *ast.ReturnStmt:
				if n.Value != nil {
					visitExpr(n.Value)
				}
			case *ast.IfStmt:
				visitExpr(n.Cond)
				visitStmts(n.Then)
				visitStmts(n.Else)
			case *ast.WhileStmt:
				visitExpr(n.Cond)
				visitStmts(n.Body)
				visitStmts(n.Else)
			case *ast.TryStmt:
				visitStmts(n.Body)
				for _, ex := range n.Excepts {
					for _, t := range ex.Types {
						visitExpr(t)
					}
					visitStmts(ex.Body)
				}
				visitStmts(n.Finally)
			case *ast.RaiseStmt:
				if n.Value != nil {
					visitExpr(n.Value)
				}
			case *ast.SeqStmt:
				visitStmts(n.Statements)
			case *ast.DelStmt:
				for _, t := range n.Targets {
					visitExpr(t)
				}
			}
		}
	}

	visitStmts(body)
	return promoted
}

func (c *Compiler) internString(s string) int32 { return c.chunk.internConstString(s) }

func (c *Compiler) addFuncProto(proto *FuncProto) int32 {
	c.chunk.FuncProtos = append(c.chunk.FuncProtos, proto)
	return int32(len(c.chunk.FuncProtos) - 1)
}
