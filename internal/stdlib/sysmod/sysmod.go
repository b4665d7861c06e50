// Package sysmod implements the native `sys` module: argv, stdio
// streams, and the interpreter's own version string. Gated behind
// WithOSAccess alongside os/time since argv and stdio expose host
// process state to the script.
package sysmod

import (
	"bufio"
	"fmt"
	"os"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

var stdinReader = bufio.NewReader(os.Stdin)

// Loader builds the `sys` module namespace. argv is the script's own
// argument vector, threaded through from the Engine's WithArgv option.
func Loader(v *vm.VM, name string, argv []string) (*object.Object, error) {
	mod := v.NewModule(name)
	items := make([]*object.Object, len(argv))
	for i, a := range argv {
		items[i] = v.NewString(a)
	}
	mod.Attrs.Set("argv", v.NewList(items))
	mod.Attrs.Set("version", v.NewString("0.1.0"))
	mod.Attrs.Set("stdout_write", v.NewNativeFunc("stdout_write", writeFn(v, os.Stdout)))
	mod.Attrs.Set("stderr_write", v.NewNativeFunc("stderr_write", writeFn(v, os.Stderr)))
	mod.Attrs.Set("stdin_readline", v.NewNativeFunc("stdin_readline", readlineFn(v)))
	return mod, nil
}

func writeFn(v *vm.VM, out *os.File) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 1 || args[0].Kind != object.KindString {
			return nil, v.Raise("TypeError", "write() takes exactly 1 string argument")
		}
		fmt.Fprint(out, args[0].Str)
		return v.None(), nil
	}
}

func readlineFn(v *vm.VM) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if len(args) != 0 {
			return nil, v.Raise("TypeError", "stdin_readline() takes no arguments")
		}
		line, err := stdinReader.ReadString('\n')
		if err != nil && line == "" {
			return v.NewString(""), nil
		}
		return v.NewString(line), nil
	}
}
