package vm

import (
	"strings"
	"testing"

	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/parser"
)

func mustRun(t *testing.T, vm *VM, src string) *object.Object {
	t.Helper()
	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse errors for %q: %v", src, errs.Errors)
	}
	chunk, cerrs := compiler.CompileEval(prog, "<test>")
	if cerrs.HasErrors() {
		t.Fatalf("compile errors for %q: %v", src, cerrs.Errors)
	}
	result, err := vm.Run(chunk, "<test>")
	if err != nil {
		t.Fatalf("Run(%q) error = %v", src, err)
	}
	return result
}

func runExpectErr(t *testing.T, vm *VM, src string) error {
	t.Helper()
	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse errors for %q: %v", src, errs.Errors)
	}
	chunk, cerrs := compiler.CompileEval(prog, "<test>")
	if cerrs.HasErrors() {
		t.Fatalf("compile errors for %q: %v", src, cerrs.Errors)
	}
	_, err := vm.Run(chunk, "<test>")
	if err == nil {
		t.Fatalf("Run(%q) unexpectedly succeeded", src)
	}
	return err
}

func TestVMRaisesNameErrorForUndefinedGlobal(t *testing.T) {
	v := New(Config{})
	err := runExpectErr(t, v, "print(undefined_name)")
	exc, ok := ExceptionFromError(err)
	if !ok {
		t.Fatalf("expected a script exception, got %v", err)
	}
	if exc.TypeTag() != "NameError" {
		t.Fatalf("exception type = %s, want NameError", exc.TypeTag())
	}
}

func TestVMRecursionLimitRaisesRecursionError(t *testing.T) {
	v := New(Config{MaxRecursion: 10})
	err := runExpectErr(t, v, "def f():\n  return f()\nf()\n")
	exc, ok := ExceptionFromError(err)
	if !ok {
		t.Fatalf("expected a script exception, got %v", err)
	}
	if exc.TypeTag() != "RecursionError" {
		t.Fatalf("exception type = %s, want RecursionError", exc.TypeTag())
	}
}

func TestVMAttributeErrorOnMissingAttribute(t *testing.T) {
	v := New(Config{})
	mustRun(t, v, "class A:\n  pass\na = A()\n")
	err := runExpectErr(t, v, "a.missing")
	exc, ok := ExceptionFromError(err)
	if !ok || exc.TypeTag() != "AttributeError" {
		t.Fatalf("expected AttributeError, got %v", err)
	}
}

func TestVMClassInheritanceAndIsinstance(t *testing.T) {
	v := New(Config{})
	result := mustRun(t, v, strings.Join([]string{
		"class Animal:",
		"  def speak(self): return \"...\"",
		"class Dog(Animal):",
		"  def speak(self): return \"woof\"",
		"d = Dog()",
		"isinstance(d, Animal)",
	}, "\n"))
	if result.Kind != object.KindBool || !result.Bool {
		t.Fatalf("isinstance(Dog(), Animal) = %+v, want True", result)
	}
}

func TestVMGCReclaimsUnreachableCycle(t *testing.T) {
	v := New(Config{GCRunFactor: 1.0})
	mustRun(t, v, strings.Join([]string{
		"class Node:",
		"  pass",
		"def make_cycle():",
		"  a = Node()",
		"  b = Node()",
		"  a.next = b",
		"  b.next = a",
		"make_cycle()",
	}, "\n"))
	v.Heap().Collect()
	// Both Node instances were local to make_cycle and unrooted once it
	// returned; the tracing collector must reclaim the cycle even though
	// each instance points at the other.
	for _, o := range v.heap.Objects() {
		if o.Kind == object.KindInstance && o.ClassRef != nil && o.ClassRef.Class.Name == "Node" {
			t.Fatalf("Node instance survived collection despite being part of an unrooted cycle")
		}
	}
}

func TestVMCallBaseSkipsMostDerivedOverride(t *testing.T) {
	v := New(Config{})
	mustRun(t, v, strings.Join([]string{
		"class A:",
		"  def m(self): return 1",
		"class B(A):",
		"  def m(self): return 2",
		"b = B()",
	}, "\n"))
	mod := v.Module("<test>")
	b, ok := mod.Attrs.Get("b")
	if !ok {
		t.Fatal("global b not found")
	}

	derived, err := v.CallMethod(b, "m", nil, nil)
	if err != nil {
		t.Fatalf("CallMethod(m) error = %v", err)
	}
	if derived.Int != 2 {
		t.Fatalf("b.m() = %d, want 2 (most-derived override)", derived.Int)
	}

	base, err := v.CallBase(b, "m", nil, nil)
	if err != nil {
		t.Fatalf("CallBase(m) error = %v", err)
	}
	if base.Int != 1 {
		t.Fatalf("CallBase(m) = %d, want 1 (A's m, skipping B's override)", base.Int)
	}
}

func TestVMModuleImportResolvesThroughRegisteredLoader(t *testing.T) {
	v := New(Config{})
	v.RegisterModuleLoader("greet", func(vm *VM, name string) (*object.Object, error) {
		mod := vm.NewModule(name)
		mod.Attrs.Set("hello", vm.NewString("hi"))
		return mod, nil
	})
	result := mustRun(t, v, "import greet\ngreet.hello")
	if result.Kind != object.KindString || result.Str != "hi" {
		t.Fatalf("greet.hello = %+v, want string \"hi\"", result)
	}
}

func TestVMFromImportBindsSpecificName(t *testing.T) {
	v := New(Config{})
	v.RegisterModuleLoader("greet", func(vm *VM, name string) (*object.Object, error) {
		mod := vm.NewModule(name)
		mod.Attrs.Set("hello", vm.NewString("hi"))
		return mod, nil
	})
	result := mustRun(t, v, "from greet import hello\nhello")
	if result.Kind != object.KindString || result.Str != "hi" {
		t.Fatalf("hello = %+v, want string \"hi\"", result)
	}
}

func TestVMUnknownModuleRaisesImportError(t *testing.T) {
	v := New(Config{})
	err := runExpectErr(t, v, "import does_not_exist")
	exc, ok := ExceptionFromError(err)
	if !ok || exc.TypeTag() != "ImportError" {
		t.Fatalf("expected ImportError, got %v", err)
	}
}

func TestVMParameterBindingRejectsDoubleBinding(t *testing.T) {
	v := New(Config{})
	err := runExpectErr(t, v, "def f(x): return x\nf(1, x=2)\n")
	exc, ok := ExceptionFromError(err)
	if !ok || exc.TypeTag() != "TypeError" {
		t.Fatalf("expected TypeError for double-bound parameter, got %v", err)
	}
}

// TestVMKeywordOnlyParameterIsNeverFilledPositionally: a named parameter
// after *args must only bind via keyword (or default); surplus
// positionals go to *args, never to the keyword-only slot.
func TestVMKeywordOnlyParameterIsNeverFilledPositionally(t *testing.T) {
	v := New(Config{})
	mustRun(t, v, "def f(a, *args, b):\n  return (a, args, b)\n")

	err := runExpectErr(t, v, "f(1, 2, 3)")
	exc, ok := ExceptionFromError(err)
	if !ok || exc.TypeTag() != "TypeError" {
		t.Fatalf("f(1, 2, 3) should fail with TypeError for unbound keyword-only b, got %v", err)
	}

	result := mustRun(t, v, "f(1, 2, 3, b=4)")
	if result.Kind != object.KindTuple || len(result.Items) != 3 {
		t.Fatalf("f(1, 2, 3, b=4) = %+v, want a 3-tuple", result)
	}
	if result.Items[0].Int != 1 || result.Items[2].Int != 4 {
		t.Fatalf("f(1, 2, 3, b=4) bound a=%v b=%v, want a=1 b=4", result.Items[0].Int, result.Items[2].Int)
	}
	star := result.Items[1]
	if star.Kind != object.KindTuple || len(star.Items) != 2 || star.Items[0].Int != 2 || star.Items[1].Int != 3 {
		t.Fatalf("f(1, 2, 3, b=4) bound args=%+v, want (2, 3)", star)
	}
}

// TestVMHandledExceptionDoesNotLingerForBareRaise: once an except clause
// handles an exception, a later bare `raise` has nothing to re-raise.
func TestVMHandledExceptionDoesNotLingerForBareRaise(t *testing.T) {
	v := New(Config{})
	mustRun(t, v, strings.Join([]string{
		"try:",
		"  raise ValueError(\"x\")",
		"except ValueError:",
		"  pass",
	}, "\n"))

	err := runExpectErr(t, v, "raise")
	exc, ok := ExceptionFromError(err)
	if !ok || exc.TypeTag() != "RuntimeError" {
		t.Fatalf("bare raise after a handled exception should be RuntimeError, got %v", err)
	}
}

func TestVMParameterBindingRejectsMissingRequiredArgument(t *testing.T) {
	v := New(Config{})
	err := runExpectErr(t, v, "def f(x, y): return x + y\nf(1)\n")
	exc, ok := ExceptionFromError(err)
	if !ok || exc.TypeTag() != "TypeError" {
		t.Fatalf("expected TypeError for missing argument, got %v", err)
	}
}

func TestVMHeapLenReflectsForcedCollectionOfDeadLocals(t *testing.T) {
	v := New(Config{GCRunFactor: 1.0})
	mustRun(t, v, "def f():\n  tmp = [1, 2, 3]\n  return 0\nf()\n")
	before := v.Heap().Len()
	v.Heap().Collect()
	after := v.Heap().Len()
	if after > before {
		t.Fatalf("heap grew after a forced collection: %d -> %d", before, after)
	}
}
