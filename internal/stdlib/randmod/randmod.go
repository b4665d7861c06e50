// Package randmod implements the native `random` module, following the
// same one-function-per-builtin layout as mathmod.
package randmod

import (
	"math/rand"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

// Loader builds the `random` module namespace. Registered unconditionally:
// pseudo-random generation has no filesystem/clock side effect worth
// gating behind WithOSAccess.
func Loader(v *vm.VM, name string) (*object.Object, error) {
	mod := v.NewModule(name)
	mod.Attrs.Set("random", v.NewNativeFunc("random", randomFn(v)))
	mod.Attrs.Set("randint", v.NewNativeFunc("randint", randintFn(v)))
	mod.Attrs.Set("uniform", v.NewNativeFunc("uniform", uniformFn(v)))
	mod.Attrs.Set("choice", v.NewNativeFunc("choice", choiceFn(v)))
	mod.Attrs.Set("shuffle", v.NewNativeFunc("shuffle", shuffleFn(v)))
	mod.Attrs.Set("seed", v.NewNativeFunc("seed", seedFn(v)))
	return mod, nil
}

func randomFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 0 {
			return nil, v.Raise("TypeError", "random.random() takes no arguments")
		}
		return v.NewFloat(rand.Float64()), nil
	}
}

func randintFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 2 || args[0].Kind != object.KindInt || args[1].Kind != object.KindInt {
			return nil, v.Raise("TypeError", "random.randint() takes exactly 2 int arguments")
		}
		lo, hi := args[0].Int, args[1].Int
		if hi < lo {
			return nil, v.Raise("ValueError", "random.randint() upper bound must not be less than lower bound")
		}
		return v.NewInt(lo + rand.Int63n(hi-lo+1)), nil
	}
}

func uniformFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 2 {
			return nil, v.Raise("TypeError", "random.uniform() takes exactly 2 arguments")
		}
		lo, err := asFloat(v, args[0])
		if err != nil {
			return nil, err
		}
		hi, err := asFloat(v, args[1])
		if err != nil {
			return nil, err
		}
		return v.NewFloat(lo + rand.Float64()*(hi-lo)), nil
	}
}

func choiceFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 || (args[0].Kind != object.KindList && args[0].Kind != object.KindTuple) {
			return nil, v.Raise("TypeError", "random.choice() takes exactly 1 sequence argument")
		}
		items := args[0].Items
		if len(items) == 0 {
			return nil, v.Raise("IndexError", "random.choice() cannot choose from an empty sequence")
		}
		return items[rand.Intn(len(items))], nil
	}
}

func shuffleFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 || args[0].Kind != object.KindList {
			return nil, v.Raise("TypeError", "random.shuffle() takes exactly 1 list argument")
		}
		items := args[0].Items
		rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		return v.None(), nil
	}
}

func seedFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 || args[0].Kind != object.KindInt {
			return nil, v.Raise("TypeError", "random.seed() takes exactly 1 int argument")
		}
		rand.Seed(args[0].Int)
		return v.None(), nil
	}
}

func asFloat(v *vm.VM, o *object.Object) (float64, error) {
	switch o.Kind {
	case object.KindFloat:
		return o.Float, nil
	case object.KindInt:
		return float64(o.Int), nil
	}
	return 0, v.Raise("TypeError", "argument must be a number")
}
