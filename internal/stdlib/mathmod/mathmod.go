// Package mathmod implements the native `math` module: one Go function
// per built-in, registered by concern (constants, one-argument wrappers,
// two-argument forms, predicates) rather than one giant dispatch switch.
package mathmod

import (
	"math"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

// Loader builds the `math` module namespace, registered unconditionally
// (math has no filesystem/clock side effects, so it isn't gated behind
// WithOSAccess the way os/time/sys are).
func Loader(v *vm.VM, name string) (*object.Object, error) {
	mod := v.NewModule(name)
	mod.Attrs.Set("pi", v.NewFloat(math.Pi))
	mod.Attrs.Set("e", v.NewFloat(math.E))
	mod.Attrs.Set("inf", v.NewFloat(math.Inf(1)))
	mod.Attrs.Set("nan", v.NewFloat(math.NaN()))

	unary := map[string]func(float64) float64{
		"sqrt": math.Sqrt, "sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
		"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
		"exp": math.Exp, "log2": math.Log2, "log10": math.Log10,
		"ceil": math.Ceil, "trunc": math.Trunc,
	}
	for fname, fn := range unary {
		fn := fn
		mod.Attrs.Set(fname, v.NewNativeFunc(fname, unaryFn(v, fname, fn)))
	}

	mod.Attrs.Set("floor", v.NewNativeFunc("floor", unaryFn(v, "floor", math.Floor)))
	mod.Attrs.Set("log", v.NewNativeFunc("log", logFn(v)))
	mod.Attrs.Set("pow", v.NewNativeFunc("pow", powFn(v)))
	mod.Attrs.Set("atan2", v.NewNativeFunc("atan2", atan2Fn(v)))
	mod.Attrs.Set("hypot", v.NewNativeFunc("hypot", hypotFn(v)))
	mod.Attrs.Set("gcd", v.NewNativeFunc("gcd", gcdFn(v)))
	mod.Attrs.Set("isnan", v.NewNativeFunc("isnan", isnanFn(v)))
	mod.Attrs.Set("isinf", v.NewNativeFunc("isinf", isinfFn(v)))
	return mod, nil
}

func asFloat(v *vm.VM, o *object.Object, fname string) (float64, error) {
	switch o.Kind {
	case object.KindFloat:
		return o.Float, nil
	case object.KindInt:
		return float64(o.Int), nil
	case object.KindBool:
		if o.Bool {
			return 1, nil
		}
		return 0, nil
	}
	return 0, v.Raise("TypeError", "math.%s() argument must be a number", fname)
}

func unaryFn(v *vm.VM, fname string, fn func(float64) float64) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 {
			return nil, v.Raise("TypeError", "math.%s() takes exactly 1 argument", fname)
		}
		x, err := asFloat(v, args[0], fname)
		if err != nil {
			return nil, err
		}
		return v.NewFloat(fn(x)), nil
	}
}

func logFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, v.Raise("TypeError", "math.log() takes 1 or 2 arguments")
		}
		x, err := asFloat(v, args[0], "log")
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return v.NewFloat(math.Log(x)), nil
		}
		base, err := asFloat(v, args[1], "log")
		if err != nil {
			return nil, err
		}
		return v.NewFloat(math.Log(x) / math.Log(base)), nil
	}
}

func powFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 2 {
			return nil, v.Raise("TypeError", "math.pow() takes exactly 2 arguments")
		}
		x, err := asFloat(v, args[0], "pow")
		if err != nil {
			return nil, err
		}
		y, err := asFloat(v, args[1], "pow")
		if err != nil {
			return nil, err
		}
		return v.NewFloat(math.Pow(x, y)), nil
	}
}

func atan2Fn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 2 {
			return nil, v.Raise("TypeError", "math.atan2() takes exactly 2 arguments")
		}
		y, err := asFloat(v, args[0], "atan2")
		if err != nil {
			return nil, err
		}
		x, err := asFloat(v, args[1], "atan2")
		if err != nil {
			return nil, err
		}
		return v.NewFloat(math.Atan2(y, x)), nil
	}
}

func hypotFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 2 {
			return nil, v.Raise("TypeError", "math.hypot() takes exactly 2 arguments")
		}
		x, err := asFloat(v, args[0], "hypot")
		if err != nil {
			return nil, err
		}
		y, err := asFloat(v, args[1], "hypot")
		if err != nil {
			return nil, err
		}
		return v.NewFloat(math.Hypot(x, y)), nil
	}
}

func gcdFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 2 || args[0].Kind != object.KindInt || args[1].Kind != object.KindInt {
			return nil, v.Raise("TypeError", "math.gcd() takes exactly 2 int arguments")
		}
		a, b := args[0].Int, args[1].Int
		if a < 0 {
			a = -a
		}
		if b < 0 {
			b = -b
		}
		for b != 0 {
			a, b = b, a%b
		}
		return v.NewInt(a), nil
	}
}

func isnanFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		x, err := asFloat(v, args[0], "isnan")
		if err != nil {
			return nil, err
		}
		return v.NewBool(math.IsNaN(x)), nil
	}
}

func isinfFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		x, err := asFloat(v, args[0], "isinf")
		if err != nil {
			return nil, err
		}
		return v.NewBool(math.IsInf(x, 0)), nil
	}
}
