package parser

import (
	"testing"

	"github.com/wings-lang/wings/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse errors for %q: %v", src, errs.Errors)
	}
	return prog
}

func firstFunctionDef(t *testing.T, stmts []ast.Stmt) *ast.FunctionDef {
	t.Helper()
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionDef); ok {
			return fd
		}
	}
	t.Fatalf("no FunctionDef found among %d statements", len(stmts))
	return nil
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

// TestClosureCaptureSeparatesLocalsFromCaptures checks the closure
// resolution rule: a name only ever assigned inside the function is a
// local; a name read but never assigned (coming from an enclosing scope)
// becomes a capture.
func TestClosureCaptureSeparatesLocalsFromCaptures(t *testing.T) {
	src := "def outer():\n" +
		"  x = 1\n" +
		"  def inner():\n" +
		"    y = 2\n" +
		"    return x + y\n" +
		"  return inner\n"
	prog := mustParse(t, src)
	outer := firstFunctionDef(t, prog.Statements)
	inner := firstFunctionDef(t, outer.Body)

	if !contains(inner.Locals, "y") {
		t.Errorf("inner.Locals = %v, want it to contain \"y\"", inner.Locals)
	}
	if contains(inner.Locals, "x") {
		t.Errorf("inner.Locals = %v, must not contain \"x\" (it's captured, not local)", inner.Locals)
	}
	if !contains(inner.Captures, "x") {
		t.Errorf("inner.Captures = %v, want it to contain \"x\"", inner.Captures)
	}
}

// TestClosureCaptureHonorsExplicitNonlocal checks that a `nonlocal`
// declaration forces a name into Captures even if it's also assigned
// inside the nested function (so the cell itself is mutated, not a
// freshly created local slot).
func TestClosureCaptureHonorsExplicitNonlocal(t *testing.T) {
	src := "def outer():\n" +
		"  count = 0\n" +
		"  def bump():\n" +
		"    nonlocal count\n" +
		"    count = count + 1\n" +
		"  return bump\n"
	prog := mustParse(t, src)
	outer := firstFunctionDef(t, prog.Statements)
	bump := firstFunctionDef(t, outer.Body)

	if contains(bump.Locals, "count") {
		t.Errorf("bump.Locals = %v, must not contain \"count\" (declared nonlocal)", bump.Locals)
	}
	if !contains(bump.Captures, "count") {
		t.Errorf("bump.Captures = %v, want it to contain \"count\"", bump.Captures)
	}
}

// TestClosureCaptureDoesNotDescendIntoNestedFunctionBodies verifies the
// parser walks only the immediate body when computing write/all-vars,
// never descending into nested function bodies: a name
// assigned only inside a doubly-nested function must not leak into the
// outer function's own Locals/Captures sets.
func TestClosureCaptureDoesNotDescendIntoNestedFunctionBodies(t *testing.T) {
	src := "def outer():\n" +
		"  def inner():\n" +
		"    deep = 1\n" +
		"    return deep\n" +
		"  return inner\n"
	prog := mustParse(t, src)
	outer := firstFunctionDef(t, prog.Statements)

	if contains(outer.Locals, "deep") {
		t.Errorf("outer.Locals = %v, must not contain \"deep\" from the nested function body", outer.Locals)
	}
	if contains(outer.Captures, "deep") {
		t.Errorf("outer.Captures = %v, must not contain \"deep\"", outer.Captures)
	}
}

func TestParamDefaultMustNotPrecedeNonDefault(t *testing.T) {
	_, errs := Parse("def f(x=1, y):\n  return x\n")
	if !errs.HasErrors() {
		t.Fatal("expected a parse error for a non-default parameter after a default one")
	}
}

func TestOnlyOneStarArgsParameterAllowed(t *testing.T) {
	_, errs := Parse("def f(*a, *b):\n  pass\n")
	if !errs.HasErrors() {
		t.Fatal("expected a parse error for a second *args parameter")
	}
}

func TestOnlyOneKwargsParameterAllowed(t *testing.T) {
	_, errs := Parse("def f(**a, **b):\n  pass\n")
	if !errs.HasErrors() {
		t.Fatal("expected a parse error for a second **kwargs parameter")
	}
}

func TestElifMustFollowIf(t *testing.T) {
	_, errs := Parse("elif True:\n  pass\n")
	if !errs.HasErrors() {
		t.Fatal("expected a parse error for a dangling elif")
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	_, errs := Parse("break\n")
	if !errs.HasErrors() {
		t.Fatal("expected a parse error for break outside a loop")
	}
}

func TestBreakInsideLoopInsideFunctionIsFine(t *testing.T) {
	_, errs := Parse("def f():\n  while True:\n    break\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", errs.Errors)
	}
}

// TestBreakCannotCrossFunctionBoundary: a break lexically inside a loop
// of an *enclosing* function, but inside a nested function's own body,
// must still be rejected: break/continue must be lexically inside a
// loop within the same function.
func TestBreakCannotCrossFunctionBoundary(t *testing.T) {
	_, errs := Parse("def outer():\n  while True:\n    def inner():\n      break\n")
	if !errs.HasErrors() {
		t.Fatal("expected a parse error: break inside inner() doesn't see outer()'s while loop")
	}
}

func TestKeywordArgumentsMustFollowPositional(t *testing.T) {
	_, errs := Parse("f(x=1, 2)\n")
	if !errs.HasErrors() {
		t.Fatal("expected a parse error for a positional argument after a keyword one")
	}
}

// TestForLoopDesugarsToIteratorProtocol checks that a for-loop
// never survives into the AST as its own node. The parser lowers it into
// a SeqStmt holding an iterator-acquire AssignStmt followed by a
// WhileStmt whose body fetches __next__ inside a try/except
// StopIteration -> break.
func TestForLoopDesugarsToIteratorProtocol(t *testing.T) {
	prog := mustParse(t, "for x in range(3):\n  print(x)\n")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d top-level statements, want 1", len(prog.Statements))
	}
	seq, ok := prog.Statements[0].(*ast.SeqStmt)
	if !ok {
		t.Fatalf("for-loop did not lower to *ast.SeqStmt, got %T", prog.Statements[0])
	}
	if len(seq.Statements) != 2 {
		t.Fatalf("got %d statements inside the lowered for-loop, want 2", len(seq.Statements))
	}
	if _, ok := seq.Statements[0].(*ast.AssignStmt); !ok {
		t.Fatalf("first lowered statement is %T, want *ast.AssignStmt (the __iter__ acquire)", seq.Statements[0])
	}
	while, ok := seq.Statements[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("second lowered statement is %T, want *ast.WhileStmt", seq.Statements[1])
	}
	var sawTry bool
	for _, s := range while.Body {
		if _, ok := s.(*ast.TryStmt); ok {
			sawTry = true
		}
	}
	if !sawTry {
		t.Fatal("lowered while-loop body does not contain the __next__/StopIteration try statement")
	}
}

// TestWithStatementDesugarsToTryFinally checks that a with-
// statement lowers to a SeqStmt binding the context manager, calling
// __enter__, then a TryStmt whose Finally calls __exit__.
func TestWithStatementDesugarsToTryFinally(t *testing.T) {
	prog := mustParse(t, "with open(\"f\") as fh:\n  pass\n")
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d top-level statements, want 1", len(prog.Statements))
	}
	seq, ok := prog.Statements[0].(*ast.SeqStmt)
	if !ok {
		t.Fatalf("with-statement did not lower to *ast.SeqStmt, got %T", prog.Statements[0])
	}
	var sawTry bool
	for _, s := range seq.Statements {
		if try, ok := s.(*ast.TryStmt); ok {
			sawTry = true
			if len(try.Finally) == 0 {
				t.Fatal("lowered with-statement's TryStmt has no Finally clause")
			}
		}
	}
	if !sawTry {
		t.Fatal("with-statement did not desugar into a try/finally")
	}
}

// TestCompoundAssignmentRewritesToTargetOpValue checks that `x += 2`
// rewrites directly to an AssignStmt whose Value is x + 2 (a BinaryExpr),
// with no wrapping ExprStmt/AssignExpr layer.
func TestCompoundAssignmentRewritesToTargetOpValue(t *testing.T) {
	prog := mustParse(t, "x = 1\nx += 2\n")
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d top-level statements, want 2", len(prog.Statements))
	}
	assign, ok := prog.Statements[1].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("second statement is %T, want *ast.AssignStmt", prog.Statements[1])
	}
	if _, ok := assign.Target.(*ast.Identifier); !ok {
		t.Fatalf("compound assignment target is %T, want *ast.Identifier", assign.Target)
	}
	if _, ok := assign.Value.(*ast.BinaryExpr); !ok {
		t.Fatalf("x += 2 should rewrite to x = x + 2 (a BinaryExpr value), got %T", assign.Value)
	}
}
