package wings

import (
	"strings"
	"testing"
)

// End-to-end behavior tests: whole scripts run through the public
// Engine, asserting the printed stream or the raised exception class,
// with Output capture standing in for a print callback.

func evalCapturingOutput(t *testing.T, src string) string {
	t.Helper()
	var out strings.Builder
	e, err := New(WithOutput(&out))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()
	if _, err := e.Eval(src); err != nil {
		t.Fatalf("Eval(%q) error = %v", src, err)
	}
	return out.String()
}

func TestScenarioArithmeticPrecedence(t *testing.T) {
	got := evalCapturingOutput(t, "print(2 + 3 * 4)")
	if strings.TrimSpace(got) != "14" {
		t.Fatalf("got %q, want \"14\"", got)
	}
}

func TestScenarioDefaultVariadicKeywordParams(t *testing.T) {
	src := "def f(x=1, *a, **k):\n" +
		"  return (x, a, sorted(k.items()))\n" +
		"print(f(10, 20, 30, y=1, z=2))\n"
	got := strings.TrimSpace(evalCapturingOutput(t, src))
	want := "(10, (20, 30), [('y', 1), ('z', 2)])"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestScenarioBaseMethodSkipsMostDerived exercises the embedder-visible
// "call up the MRO skipping the most-derived" operator, which is the
// Go-level substitute for the core language's missing `super()`.
func TestScenarioBaseMethodSkipsMostDerived(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	src := "class A:\n" +
		"  def m(self): return 1\n" +
		"class B(A):\n" +
		"  def m(self): return 10\n" +
		"b = B()\n"
	if _, err := e.Eval(src); err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	b, ok := e.Global("b")
	if !ok {
		t.Fatal("global b not found")
	}
	derived, err := b.CallMethod("m")
	if err != nil {
		t.Fatalf("CallMethod(m) error = %v", err)
	}
	if v, _ := derived.AsInt(); v != 10 {
		t.Fatalf("b.m() = %d, want 10 (most-derived override)", v)
	}

	base, err := b.CallBaseMethod("m")
	if err != nil {
		t.Fatalf("CallBaseMethod(m) error = %v", err)
	}
	if v, _ := base.AsInt(); v != 1 {
		t.Fatalf("CallBaseMethod(m) = %d, want 1 (A's m, skipping B's override)", v)
	}
}

func TestScenarioTryExceptFinallyOrdering(t *testing.T) {
	src := "try:\n" +
		"  raise ValueError(\"x\")\n" +
		"except TypeError:\n" +
		"  print(\"T\")\n" +
		"except ValueError as e:\n" +
		"  print(\"V\", e)\n" +
		"finally:\n" +
		"  print(\"F\")\n"
	got := evalCapturingOutput(t, src)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "V") || lines[1] != "F" {
		t.Fatalf("got %q, want a \"V ...\" line then \"F\"", got)
	}
}

// TestScenarioFinallyAlwaysRunsOnReturn checks that a try/finally
// executes finally even when the try body returns.
func TestScenarioFinallyAlwaysRunsOnReturn(t *testing.T) {
	src := "def f():\n" +
		"  try:\n" +
		"    return 1\n" +
		"  finally:\n" +
		"    print(\"cleanup\")\n" +
		"print(f())\n"
	got := evalCapturingOutput(t, src)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 || lines[0] != "cleanup" || lines[1] != "1" {
		t.Fatalf("got %q, want cleanup then 1", got)
	}
}

// TestScenarioClosuresShareCells verifies closure-cell semantics: all
// three lambdas observe the loop variable's final value
// because captures are shared cells, not value copies at definition time.
func TestScenarioClosuresShareCells(t *testing.T) {
	src := "a = []\n" +
		"for i in range(3):\n" +
		"  a.append(lambda: i)\n" +
		"print([f() for f in a])\n"
	got := strings.TrimSpace(evalCapturingOutput(t, src))
	if got != "[2, 2, 2]" {
		t.Fatalf("got %q, want \"[2, 2, 2]\"", got)
	}
}

// TestScenarioFinallyRunsOnReturnFromExceptHandler covers the path a
// bare try-body return doesn't exercise: a return inside
// an except handler must still run this try's finally before leaving.
func TestScenarioFinallyRunsOnReturnFromExceptHandler(t *testing.T) {
	src := "def f():\n" +
		"  try:\n" +
		"    raise ValueError(\"x\")\n" +
		"  except ValueError:\n" +
		"    return 1\n" +
		"  finally:\n" +
		"    print(\"F\")\n" +
		"print(f())\n"
	got := evalCapturingOutput(t, src)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 || lines[0] != "F" || lines[1] != "1" {
		t.Fatalf("got %q, want \"F\" then \"1\"", got)
	}
}

// TestScenarioFinallyRunsWhenExceptHandlerRaises covers a raise from
// inside an except handler: the new exception must not
// skip this try's own finally on its way out.
func TestScenarioFinallyRunsWhenExceptHandlerRaises(t *testing.T) {
	var out strings.Builder
	e, err := New(WithOutput(&out))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	src := "try:\n" +
		"  raise ValueError(\"x\")\n" +
		"except ValueError:\n" +
		"  raise TypeError(\"y\")\n" +
		"finally:\n" +
		"  print(\"F\")\n"
	_, err = e.Eval(src)
	if err == nil {
		t.Fatal("expected TypeError raised from the except handler to propagate")
	}
	se, ok := err.(*ScriptError)
	if !ok || !strings.Contains(se.Exception.Type(), "TypeError") {
		t.Fatalf("expected TypeError, got %v", err)
	}
	if strings.TrimSpace(out.String()) != "F" {
		t.Fatalf("got output %q, want \"F\" printed before TypeError propagates", out.String())
	}
}

func TestScenarioTupleKeyHashesButListKeyErrors(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if _, err := e.Eval("d = {}\nd[(1,2)] = \"ok\""); err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	v, err := e.Eval("d[(1,2)]")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	got, _ := v.AsString()
	if got != "ok" {
		t.Fatalf("d[(1,2)] = %q, want \"ok\"", got)
	}

	_, err = e.Eval("d[[1,2]]")
	if err == nil {
		t.Fatal("expected a TypeError indexing with a list key, got nil")
	}
	se, ok := err.(*ScriptError)
	if !ok {
		t.Fatalf("expected *ScriptError, got %T: %v", err, err)
	}
	if !strings.Contains(se.Exception.Type(), "TypeError") {
		t.Fatalf("exception type = %q, want TypeError", se.Exception.Type())
	}
}

func TestScenarioIsinstanceAcrossInheritance(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()
	src := "class A:\n  pass\nclass B(A):\n  pass\nprint(isinstance(B(), A))\n"
	got := strings.TrimSpace(evalCapturingOutput(t, src))
	_ = e
	if got != "True" {
		t.Fatalf("got %q, want \"True\"", got)
	}
}

func TestScenarioNegativeAndOutOfRangeIndices(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	v, err := e.Eval("s = [1, 2, 3]\ns[-1]")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got, _ := v.AsInt(); got != 3 {
		t.Fatalf("s[-1] = %d, want 3", got)
	}

	_, err = e.Eval("s = [1, 2, 3]\ns[3]")
	if err == nil {
		t.Fatal("expected IndexError for s[len(s)]")
	}
	se, ok := err.(*ScriptError)
	if !ok || !strings.Contains(se.Exception.Type(), "IndexError") {
		t.Fatalf("expected IndexError, got %v", err)
	}

	_, err = e.Eval("s = [1, 2, 3]\ns[-4]")
	if err == nil {
		t.Fatal("expected IndexError for s[-len(s)-1]")
	}
	se, ok = err.(*ScriptError)
	if !ok || !strings.Contains(se.Exception.Type(), "IndexError") {
		t.Fatalf("expected IndexError, got %v", err)
	}
}

func TestScenarioSliceStepZeroRaisesValueError(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	_, err = e.Eval("s = [1, 2, 3]\ns[::0]")
	if err == nil {
		t.Fatal("expected ValueError for a step-0 slice")
	}
	se, ok := err.(*ScriptError)
	if !ok || !strings.Contains(se.Exception.Type(), "ValueError") {
		t.Fatalf("expected ValueError, got %v", err)
	}
}

func TestScenarioDivisionByZeroRaisesZeroDivisionError(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	_, err = e.Eval("1 / 0")
	if err == nil {
		t.Fatal("expected ZeroDivisionError")
	}
	se, ok := err.(*ScriptError)
	if !ok || !strings.Contains(se.Exception.Type(), "ZeroDivisionError") {
		t.Fatalf("expected ZeroDivisionError, got %v", err)
	}
}

func TestScenarioHashingMutableContainerRaisesTypeError(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	_, err = e.Eval("d = {}\nd[[1, 2]] = 1")
	if err == nil {
		t.Fatal("expected TypeError hashing a list key")
	}
	se, ok := err.(*ScriptError)
	if !ok || !strings.Contains(se.Exception.Type(), "TypeError") {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

// TestScenarioFloorDivAndModSatisfyFlooredDivisionIdentity checks
// a == (a // b) * b + (a % b), with the remainder sign following the
// divisor.
func TestScenarioFloorDivAndModSatisfyFlooredDivisionIdentity(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	v, err := e.Eval("-7 % 3")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got, _ := v.AsInt(); got != 2 {
		t.Fatalf("-7 %% 3 = %d, want 2 (sign follows divisor)", got)
	}

	v, err = e.Eval("-7 // 3")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got, _ := v.AsInt(); got != -3 {
		t.Fatalf("-7 // 3 = %d, want -3", got)
	}
}

func TestScenarioWithStatementAlwaysCallsExit(t *testing.T) {
	src := "class Ctx:\n" +
		"  def __enter__(self):\n" +
		"    print(\"enter\")\n" +
		"    return self\n" +
		"  def __exit__(self, a, b, c):\n" +
		"    print(\"exit\")\n" +
		"with Ctx() as c:\n" +
		"  print(\"body\")\n"
	got := evalCapturingOutput(t, src)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	want := []string{"enter", "body", "exit"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want enter/body/exit", got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestScenarioListComprehensionFiltersAndMaps(t *testing.T) {
	got := strings.TrimSpace(evalCapturingOutput(t, "print([x * x for x in range(5) if x % 2 == 0])"))
	if got != "[0, 4, 16]" {
		t.Fatalf("got %q, want \"[0, 4, 16]\"", got)
	}
}

func TestScenarioIdentityOfDistinctIntsWithEqualValue(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	v, err := e.Eval("a = 1000 + 1\nb = 1000 + 1\na is b")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	truthy, _ := v.AsBool()
	if truthy {
		t.Fatal("a is b = True, want False: two freshly computed ints must not be interned/identical")
	}
}
