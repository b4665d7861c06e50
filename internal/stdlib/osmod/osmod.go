// Package osmod implements the native `os` module: filesystem and
// process-environment access gated behind WithOSAccess, since an
// embedder may run untrusted scripts and not want them touching the
// host filesystem at all.
package osmod

import (
	"os"
	"strings"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

// Loader builds the `os` module namespace. The caller is expected to
// only register this loader when the embedder opted into WithOSAccess.
func Loader(v *vm.VM, name string) (*object.Object, error) {
	mod := v.NewModule(name)
	mod.Attrs.Set("environ", buildEnviron(v))
	mod.Attrs.Set("getenv", v.NewNativeFunc("getenv", getenvFn(v)))
	mod.Attrs.Set("getcwd", v.NewNativeFunc("getcwd", getcwdFn(v)))
	mod.Attrs.Set("listdir", v.NewNativeFunc("listdir", listdirFn(v)))
	mod.Attrs.Set("remove", v.NewNativeFunc("remove", removeFn(v)))
	mod.Attrs.Set("mkdir", v.NewNativeFunc("mkdir", mkdirFn(v)))
	mod.Attrs.Set("exit", v.NewNativeFunc("exit", exitFn(v)))
	return mod, nil
}

func buildEnviron(v *vm.VM) *object.Object {
	d := v.NewDict()
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		v.DictSet(d, v.NewString(parts[0]), v.NewString(parts[1]))
	}
	return d
}

func getenvFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) < 1 || len(args) > 2 || args[0].Kind != object.KindString {
			return nil, v.Raise("TypeError", "os.getenv() takes a name and an optional default")
		}
		val, ok := os.LookupEnv(args[0].Str)
		if !ok {
			if len(args) == 2 {
				return args[1], nil
			}
			return v.None(), nil
		}
		return v.NewString(val), nil
	}
}

func getcwdFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 0 {
			return nil, v.Raise("TypeError", "os.getcwd() takes no arguments")
		}
		dir, err := os.Getwd()
		if err != nil {
			return nil, v.Raise("OSError", "%s", err.Error())
		}
		return v.NewString(dir), nil
	}
}

func listdirFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		path := "."
		if len(args) == 1 {
			if args[0].Kind != object.KindString {
				return nil, v.Raise("TypeError", "os.listdir() argument must be a string")
			}
			path = args[0].Str
		} else if len(args) > 1 {
			return nil, v.Raise("TypeError", "os.listdir() takes 0 or 1 arguments")
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, v.Raise("OSError", "%s", err.Error())
		}
		items := make([]*object.Object, len(entries))
		for i, e := range entries {
			items[i] = v.NewString(e.Name())
		}
		return v.NewList(items), nil
	}
}

func removeFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 || args[0].Kind != object.KindString {
			return nil, v.Raise("TypeError", "os.remove() takes exactly 1 string argument")
		}
		if err := os.Remove(args[0].Str); err != nil {
			return nil, v.Raise("OSError", "%s", err.Error())
		}
		return v.None(), nil
	}
}

func mkdirFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 || args[0].Kind != object.KindString {
			return nil, v.Raise("TypeError", "os.mkdir() takes exactly 1 string argument")
		}
		if err := os.MkdirAll(args[0].Str, 0755); err != nil {
			return nil, v.Raise("OSError", "%s", err.Error())
		}
		return v.None(), nil
	}
}

func exitFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		code := 0
		if len(args) == 1 && args[0].Kind == object.KindInt {
			code = int(args[0].Int)
		}
		os.Exit(code)
		return v.None(), nil
	}
}
