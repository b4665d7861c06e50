package parser

import "github.com/wings-lang/wings/internal/ast"

// resolveClosures walks the whole program computing, for every function
// literal (def or lambda), its locals/captures/globals/nonlocals exactly as
// described by the language's closure-capture rule: locals are write-vars
// minus globals/nonlocals/params; captures are free variables that resolve
// to an enclosing function's bound name, turned into shared cells.
// The module level is not itself a capturable scope: a free variable a
// top-level function references that isn't its own local/param resolves
// dynamically against the module's global namespace, not via a shared
// cell. Cells exist only for a nested function capturing an *enclosing
// function's* locals, so walkStmts starts with a nil scope — resolvable
// against nil always reports false (see scope.resolvable), which is
// exactly the "treat it as a global lookup" behavior top-level functions
// need.
func resolveClosures(prog *ast.Program) {
	walkStmts(prog.Statements, nil)
}

type scope struct {
	parent *scope
	bound  map[string]bool // every name bound at this level or below it that a nested function could capture
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bound: map[string]bool{}}
}

func (s *scope) resolvable(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.bound[name] {
			return true
		}
	}
	return false
}

// walkStmts recurses through the program structurally, resolving every
// nested function/lambda/class it finds using the given enclosing scope.
func walkStmts(stmts []ast.Stmt, sc *scope) {
	for _, s := range stmts {
		walkStmt(s, sc)
	}
}

func walkStmt(s ast.Stmt, sc *scope) {
	switch n := s.(type) {
	case *ast.FunctionDef:
		resolveFunction(n, sc)
	case *ast.ClassDef:
		for _, b := range n.Bases {
			walkExpr(b, sc)
		}
		walkStmts(n.Body, sc)
	case *ast.ExprStmt:
		walkExpr(n.X, sc)
	case *ast.AssignStmt:
		walkExpr(n.Target, sc)
		walkExpr(n.Value, sc)
	case *ast.ReturnStmt:
		if n.Value != nil {
			walkExpr(n.Value, sc)
		}
	case *ast.IfStmt:
		walkExpr(n.Cond, sc)
		walkStmts(n.Then, sc)
		walkStmts(n.Else, sc)
	case *ast.WhileStmt:
		walkExpr(n.Cond, sc)
		walkStmts(n.Body, sc)
		walkStmts(n.Else, sc)
	case *ast.TryStmt:
		walkStmts(n.Body, sc)
		for _, ex := range n.Excepts {
			for _, t := range ex.Types {
				walkExpr(t, sc)
			}
			walkStmts(ex.Body, sc)
		}
		walkStmts(n.Finally, sc)
	case *ast.RaiseStmt:
		if n.Value != nil {
			walkExpr(n.Value, sc)
		}
	case *ast.SeqStmt:
		walkStmts(n.Statements, sc)
	case *ast.DelStmt:
		for _, t := range n.Targets {
			if id, ok := t.(*ast.Identifier); !ok {
				walkExpr(t, sc)
			} else {
				_ = id
			}
		}
	default:
		// PassStmt, BreakStmt, ContinueStmt, GlobalStmt, NonlocalStmt,
		// ImportStmt, ImportFromStmt: no nested functions possible.
	}
}

func walkExpr(e ast.Expr, sc *scope) {
	switch n := e.(type) {
	case *ast.LambdaExpr:
		resolveLambda(n, sc)
	case *ast.CompoundExpr:
		walkStmts(n.Prelude, sc)
		walkExpr(n.Result, sc)
	case *ast.UnaryExpr:
		walkExpr(n.Operand, sc)
	case *ast.BinaryExpr:
		walkExpr(n.Left, sc)
		walkExpr(n.Right, sc)
	case *ast.BoolOpExpr:
		walkExpr(n.Left, sc)
		walkExpr(n.Right, sc)
	case *ast.CompareExpr:
		walkExpr(n.Left, sc)
		walkExpr(n.Right, sc)
	case *ast.TernaryExpr:
		walkExpr(n.Cond, sc)
		walkExpr(n.Then, sc)
		walkExpr(n.Else, sc)
	case *ast.CallExpr:
		walkExpr(n.Func, sc)
		for _, a := range n.Args {
			walkExpr(a, sc)
		}
		for _, kw := range n.Kwargs {
			walkExpr(kw.Value, sc)
		}
	case *ast.AttributeExpr:
		walkExpr(n.Object, sc)
	case *ast.IndexExpr:
		walkExpr(n.Object, sc)
		walkExpr(n.Index, sc)
	case *ast.SliceExpr:
		if n.Lower != nil {
			walkExpr(n.Lower, sc)
		}
		if n.Upper != nil {
			walkExpr(n.Upper, sc)
		}
		if n.Step != nil {
			walkExpr(n.Step, sc)
		}
	case *ast.TupleExpr:
		for _, el := range n.Elements {
			walkExpr(el, sc)
		}
	case *ast.ListExpr:
		for _, el := range n.Elements {
			walkExpr(el, sc)
		}
	case *ast.SetExpr:
		for _, el := range n.Elements {
			walkExpr(el, sc)
		}
	case *ast.DictExpr:
		for _, entry := range n.Entries {
			walkExpr(entry.Key, sc)
			walkExpr(entry.Value, sc)
		}
	default:
		// Identifier, literals: nothing to recurse into.
	}
}

// resolveFunction computes n's Locals/Captures/Globals/Nonlocal and then
// recurses into its body with a fresh child scope.
func resolveFunction(n *ast.FunctionDef, sc *scope) {
	writes, refs, globals, nonlocals := collectVars(n.Body)
	paramNames := map[string]bool{}
	for _, p := range n.Params {
		paramNames[p.Name] = true
		if p.Default != nil {
			walkExpr(p.Default, sc)
		}
	}

	n.Globals = setToSlice(globals)
	n.Nonlocal = setToSlice(nonlocals)

	locals := map[string]bool{}
	for name := range writes {
		if globals[name] || nonlocals[name] || paramNames[name] {
			continue
		}
		locals[name] = true
	}
	n.Locals = setToSlice(locals)

	captures := map[string]bool{}
	for name := range refs {
		if writes[name] || globals[name] || paramNames[name] {
			continue
		}
		if sc.resolvable(name) {
			captures[name] = true
		}
	}
	for name := range nonlocals {
		captures[name] = true
	}
	n.Captures = setToSlice(captures)

	child := newScope(sc)
	for name := range paramNames {
		child.bound[name] = true
	}
	for _, name := range n.Locals {
		child.bound[name] = true
	}
	for _, name := range n.Captures {
		child.bound[name] = true
	}
	child.bound[n.Name] = true

	walkStmts(n.Body, child)
}

func resolveLambda(n *ast.LambdaExpr, sc *scope) {
	writes, refs, _, _ := collectVars([]ast.Stmt{&ast.ExprStmt{X: n.Body}})
	paramNames := map[string]bool{}
	for _, p := range n.Params {
		paramNames[p.Name] = true
		if p.Default != nil {
			walkExpr(p.Default, sc)
		}
	}
	locals := map[string]bool{}
	for name := range writes {
		if !paramNames[name] {
			locals[name] = true
		}
	}
	n.Locals = setToSlice(locals)

	captures := map[string]bool{}
	for name := range refs {
		if writes[name] || paramNames[name] {
			continue
		}
		if sc.resolvable(name) {
			captures[name] = true
		}
	}
	n.Captures = setToSlice(captures)

	child := newScope(sc)
	for name := range paramNames {
		child.bound[name] = true
	}
	for _, name := range n.Locals {
		child.bound[name] = true
	}
	for _, name := range n.Captures {
		child.bound[name] = true
	}
	walkExpr(n.Body, child)
}

func setToSlice(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// collectVars walks stmts (NOT descending into nested FunctionDef/LambdaExpr
// bodies) and returns write-vars, all referenced vars, and explicit
// global/nonlocal declarations.
func collectVars(stmts []ast.Stmt) (writes, refs, globals, nonlocals map[string]bool) {
	writes = map[string]bool{}
	refs = map[string]bool{}
	globals = map[string]bool{}
	nonlocals = map[string]bool{}

	var visitTarget func(e ast.Expr)
	var visitStmts func([]ast.Stmt)
	var visitExpr func(ast.Expr)

	visitTarget = func(e ast.Expr) {
		switch t := e.(type) {
		case *ast.Identifier:
			writes[t.Name] = true
		case *ast.TupleExpr:
			for _, el := range t.Elements {
				visitTarget(el)
			}
		case *ast.ListExpr:
			for _, el := range t.Elements {
				visitTarget(el)
			}
		case *ast.AttributeExpr:
			visitExpr(t.Object)
		case *ast.IndexExpr:
			visitExpr(t.Object)
			visitExpr(t.Index)
		}
	}

	visitExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Identifier:
			refs[n.Name] = true
		case *ast.LambdaExpr:
			// Free variables inside the lambda body that are not its own
			// params/locals still count as references of the enclosing
			// function (so it can offer them as captures), matching the
			// "all-vars" rule applied transitively through nested literals
			// that are not `def`.
			inner := map[string]bool{}
			for _, p := range n.Params {
				inner[p.Name] = true
			}
			collectFreeInExpr(n.Body, inner, refs)
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
				writes[n.Name] = true
			case *ast.ClassDef:
				writes[n.Name] = true
				for _, b := range n.Bases {
					visitExpr(b)
				}
			case *ast.ExprStmt:
				visitExpr(n.X)
			case *ast.AssignStmt:
				visitExpr(n.Value)
				visitTarget(n.Target)
			case *ast.GlobalStmt:
				for _, name := range n.Names {
					globals[name] = true
				}
			case *ast.NonlocalStmt:
				for _, name := range n.Names {
					nonlocals[name] = true
				}
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
					if ex.Name != "" {
						writes[ex.Name] = true
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
					if id, ok := t.(*ast.Identifier); ok {
						writes[id.Name] = true
					} else {
						visitExpr(t)
					}
				}
			}
		}
	}

	visitStmts(stmts)
	return writes, refs, globals, nonlocals
}

// collectFreeInExpr collects names referenced in e that are not in bound,
// adding them to out. Used so a lambda nested directly in an expression
// still contributes free variables to its enclosing function's refs.
func collectFreeInExpr(e ast.Expr, bound map[string]bool, out map[string]bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		if !bound[n.Name] {
			out[n.Name] = true
		}
	case *ast.UnaryExpr:
		collectFreeInExpr(n.Operand, bound, out)
	case *ast.BinaryExpr:
		collectFreeInExpr(n.Left, bound, out)
		collectFreeInExpr(n.Right, bound, out)
	case *ast.BoolOpExpr:
		collectFreeInExpr(n.Left, bound, out)
		collectFreeInExpr(n.Right, bound, out)
	case *ast.CompareExpr:
		collectFreeInExpr(n.Left, bound, out)
		collectFreeInExpr(n.Right, bound, out)
	case *ast.TernaryExpr:
		collectFreeInExpr(n.Cond, bound, out)
		collectFreeInExpr(n.Then, bound, out)
		collectFreeInExpr(n.Else, bound, out)
	case *ast.CallExpr:
		collectFreeInExpr(n.Func, bound, out)
		for _, a := range n.Args {
			collectFreeInExpr(a, bound, out)
		}
		for _, kw := range n.Kwargs {
			collectFreeInExpr(kw.Value, bound, out)
		}
	case *ast.AttributeExpr:
		collectFreeInExpr(n.Object, bound, out)
	case *ast.IndexExpr:
		collectFreeInExpr(n.Object, bound, out)
		collectFreeInExpr(n.Index, bound, out)
	case *ast.TupleExpr:
		for _, el := range n.Elements {
			collectFreeInExpr(el, bound, out)
		}
	case *ast.ListExpr:
		for _, el := range n.Elements {
			collectFreeInExpr(el, bound, out)
		}
	case *ast.SetExpr:
		for _, el := range n.Elements {
			collectFreeInExpr(el, bound, out)
		}
	case *ast.DictExpr:
		for _, entry := range n.Entries {
			collectFreeInExpr(entry.Key, bound, out)
			collectFreeInExpr(entry.Value, bound, out)
		}
	case *ast.LambdaExpr:
		inner := map[string]bool{}
		for k := range bound {
			inner[k] = true
		}
		for _, p := range n.Params {
			inner[p.Name] = true
		}
		collectFreeInExpr(n.Body, inner, out)
	}
}
