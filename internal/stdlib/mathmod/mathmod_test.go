package mathmod

import (
	"math"
	"testing"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.New(vm.Config{})
}

func moduleFn(t *testing.T, v *vm.VM, name string) *object.Object {
	t.Helper()
	mod, err := Loader(v, "math")
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	fn, ok := mod.Attrs.Get(name)
	if !ok {
		t.Fatalf("math module has no %q", name)
	}
	return fn
}

func call(t *testing.T, v *vm.VM, fn *object.Object, args ...*object.Object) *object.Object {
	t.Helper()
	result, err := v.Call(fn, args, nil)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	return result
}

func TestSqrt(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "sqrt")

	tests := []struct {
		name string
		arg  float64
		want float64
	}{
		{"perfect square", 16, 4},
		{"zero", 0, 0},
		{"non-square", 2, math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := call(t, v, fn, v.NewFloat(tt.arg))
			if got.Kind != object.KindFloat || got.Float != tt.want {
				t.Errorf("sqrt(%v) = %v, want %v", tt.arg, got.Float, tt.want)
			}
		})
	}
}

func TestSqrtWrongArgCount(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "sqrt")
	if _, err := v.Call(fn, nil, nil); err == nil {
		t.Error("expected an error for zero arguments, got nil")
	}
}

func TestPow(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "pow")
	got := call(t, v, fn, v.NewFloat(2), v.NewFloat(10))
	if got.Float != 1024 {
		t.Errorf("pow(2, 10) = %v, want 1024", got.Float)
	}
}

func TestGcd(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "gcd")

	tests := []struct {
		a, b, want int64
	}{
		{12, 18, 6},
		{-12, 18, 6},
		{0, 5, 5},
		{7, 13, 1},
	}
	for _, tt := range tests {
		got := call(t, v, fn, v.NewInt(tt.a), v.NewInt(tt.b))
		if got.Int != tt.want {
			t.Errorf("gcd(%d, %d) = %d, want %d", tt.a, tt.b, got.Int, tt.want)
		}
	}
}

func TestGcdRejectsNonInt(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "gcd")
	if _, err := v.Call(fn, []*object.Object{v.NewFloat(1), v.NewInt(2)}, nil); err == nil {
		t.Error("expected a TypeError for a float argument, got nil")
	}
}

func TestLogWithBase(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "log")
	got := call(t, v, fn, v.NewFloat(8), v.NewFloat(2))
	if math.Abs(got.Float-3) > 1e-9 {
		t.Errorf("log(8, 2) = %v, want 3", got.Float)
	}
}

func TestIsnanIsinf(t *testing.T) {
	v := newTestVM(t)
	mod, _ := Loader(v, "math")
	nan, _ := mod.Attrs.Get("nan")
	inf, _ := mod.Attrs.Get("inf")

	isnan, _ := mod.Attrs.Get("isnan")
	isinf, _ := mod.Attrs.Get("isinf")

	if !call(t, v, isnan, nan).Bool {
		t.Error("isnan(nan) should be true")
	}
	if !call(t, v, isinf, inf).Bool {
		t.Error("isinf(inf) should be true")
	}
}

func TestConstants(t *testing.T) {
	v := newTestVM(t)
	mod, _ := Loader(v, "math")
	pi, ok := mod.Attrs.Get("pi")
	if !ok || pi.Float != math.Pi {
		t.Errorf("math.pi = %v, want %v", pi.Float, math.Pi)
	}
}
