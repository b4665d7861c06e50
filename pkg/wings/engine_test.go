package wings

import (
	"strings"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	v, err := e.Eval("1 + 2 * 3")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	got, err := v.AsInt()
	if err != nil || got != 7 {
		t.Fatalf("Eval(\"1 + 2 * 3\") = %v, %v, want 7", got, err)
	}
}

func TestEvalSharesGlobalsAcrossCalls(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if _, err := e.Eval("x = 41"); err != nil {
		t.Fatalf("first Eval() error = %v", err)
	}
	v, err := e.Eval("x + 1")
	if err != nil {
		t.Fatalf("second Eval() error = %v", err)
	}
	got, _ := v.AsInt()
	if got != 42 {
		t.Fatalf("x + 1 = %d, want 42", got)
	}
}

func TestScriptErrorIsDistinguishable(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	_, err = e.Eval("raise ValueError('boom')")
	if err == nil {
		t.Fatal("expected an error for an uncaught raise, got nil")
	}
	se, ok := err.(*ScriptError)
	if !ok {
		t.Fatalf("expected a *ScriptError, got %T", err)
	}
	if !strings.Contains(se.Error(), "boom") {
		t.Errorf("ScriptError message = %q, want it to mention \"boom\"", se.Error())
	}
}

func TestRegisterFunction(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	e.RegisterFunction("double", func(args []Value, kwargs Value) (Value, error) {
		n, err := args[0].AsInt()
		if err != nil {
			return Value{}, err
		}
		return e.NewInt(n * 2), nil
	})

	v, err := e.Eval("double(21)")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	got, _ := v.AsInt()
	if got != 42 {
		t.Fatalf("double(21) = %d, want 42", got)
	}
}

func TestMathModuleIsAlwaysAvailable(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	v, err := e.Eval("import math\nmath.sqrt(9)")
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	got, _ := v.AsFloat()
	if got != 3 {
		t.Fatalf("math.sqrt(9) = %v, want 3", got)
	}
}

func TestOSModuleRequiresOptIn(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if _, err := e.Eval("import os"); err == nil {
		t.Error("expected importing os without WithOSAccess to fail, got nil error")
	}
}

func TestOSModuleAvailableWithOptIn(t *testing.T) {
	e, err := New(WithOSAccess(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if _, err := e.Eval("import os\nos.getcwd()"); err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
}

func TestValueOperatorAndIterationHelpers(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	sum, err := e.NewInt(40).BinaryOp("+", e.NewInt(2))
	if err != nil {
		t.Fatalf("BinaryOp(+) error = %v", err)
	}
	if got, _ := sum.AsInt(); got != 42 {
		t.Fatalf("40 + 2 = %d, want 42", got)
	}

	neg, err := e.NewInt(7).UnaryOp("-")
	if err != nil {
		t.Fatalf("UnaryOp(-) error = %v", err)
	}
	if got, _ := neg.AsInt(); got != -7 {
		t.Fatalf("-7 = %d, want -7", got)
	}

	list := e.NewList(e.NewInt(1), e.NewInt(2), e.NewInt(3))
	total := int64(0)
	if err := list.Each(func(v Value) error {
		n, err := v.AsInt()
		if err != nil {
			return err
		}
		total += n
		return nil
	}); err != nil {
		t.Fatalf("Each() error = %v", err)
	}
	if total != 6 {
		t.Fatalf("Each() sum = %d, want 6", total)
	}

	pair, err := list.Unpack(3)
	if err != nil {
		t.Fatalf("Unpack(3) error = %v", err)
	}
	if got, _ := pair[2].AsInt(); got != 3 {
		t.Fatalf("Unpack(3)[2] = %d, want 3", got)
	}
	if _, err := list.Unpack(2); err == nil {
		t.Fatal("expected a length-mismatch error from Unpack(2)")
	}
}

func TestCompileAndRun(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	fn, err := e.Compile("10 + 32")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	v, err := fn.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got, _ := v.AsInt()
	if got != 42 {
		t.Fatalf("Run() = %d, want 42", got)
	}
}
