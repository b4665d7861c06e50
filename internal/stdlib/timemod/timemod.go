// Package timemod implements the native `time` module, gated behind
// WithOSAccess since wall-clock reads make scripts non-deterministic.
package timemod

import (
	"time"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

// Loader builds the `time` module namespace.
func Loader(v *vm.VM, name string) (*object.Object, error) {
	mod := v.NewModule(name)
	mod.Attrs.Set("time", v.NewNativeFunc("time", timeFn(v)))
	mod.Attrs.Set("sleep", v.NewNativeFunc("sleep", sleepFn(v)))
	mod.Attrs.Set("monotonic", v.NewNativeFunc("monotonic", monotonicFn(v)))
	mod.Attrs.Set("strftime", v.NewNativeFunc("strftime", strftimeFn(v)))
	return mod, nil
}

func timeFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 0 {
			return nil, v.Raise("TypeError", "time.time() takes no arguments")
		}
		return v.NewFloat(float64(time.Now().UnixNano()) / 1e9), nil
	}
}

func sleepFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 {
			return nil, v.Raise("TypeError", "time.sleep() takes exactly 1 argument")
		}
		var secs float64
		switch args[0].Kind {
		case object.KindFloat:
			secs = args[0].Float
		case object.KindInt:
			secs = float64(args[0].Int)
		default:
			return nil, v.Raise("TypeError", "time.sleep() argument must be a number")
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return v.None(), nil
	}
}

var monotonicStart = time.Now()

func monotonicFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 0 {
			return nil, v.Raise("TypeError", "time.monotonic() takes no arguments")
		}
		return v.NewFloat(time.Since(monotonicStart).Seconds()), nil
	}
}

// strftime accepts a Go time-layout string rather than C strftime's %Y/%m/%d
// directives: wings has no strptime/locale machinery to match against, and
// Go's reference-time layout is the idiomatic choice for a Go host.
func strftimeFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 || args[0].Kind != object.KindString {
			return nil, v.Raise("TypeError", "time.strftime() takes exactly 1 format string argument")
		}
		return v.NewString(time.Now().Format(args[0].Str)), nil
	}
}
