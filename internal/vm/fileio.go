package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/wings-lang/wings/internal/object"
)

// newFileHandle wraps an *os.File as an instance exposing read/write/
// close/__enter__/__exit__, stashing the Go file under Userdata. A
// finalizer closes the
// descriptor if the script's `with` block (or explicit close()) never
// ran, so a forgotten handle doesn't leak past the owning context.
func (vm *VM) newFileHandle(f *os.File) *object.Object {
	inst := vm.heap.New(object.KindInstance)
	inst.Attrs = object.NewAttrTable()
	inst.SetUserdata(f)
	closed := false
	// One shared reader so read()/readline() advance the same cursor
	// instead of each losing the other's buffered lookahead.
	reader := bufio.NewReader(f)

	inst.Attrs.Set("read", vm.wrapNative("read", inst, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if closed {
			return nil, vm.raisef("OSError", "I/O operation on closed file")
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, vm.raisef("OSError", "%v", err)
		}
		return vm.newString(string(data)), nil
	}))
	inst.Attrs.Set("readline", vm.wrapNative("readline", inst, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if closed {
			return nil, vm.raisef("OSError", "I/O operation on closed file")
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return vm.newString(""), nil
		}
		return vm.newString(line), nil
	}))
	inst.Attrs.Set("write", vm.wrapNative("write", inst, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if closed {
			return nil, vm.raisef("OSError", "I/O operation on closed file")
		}
		if len(args) != 1 || args[0].Kind != object.KindString {
			return nil, vm.raisef("TypeError", "write() argument must be a string")
		}
		n, err := f.WriteString(args[0].Str)
		if err != nil {
			return nil, vm.raisef("OSError", "%v", err)
		}
		return vm.newInt(int64(n)), nil
	}))
	inst.Attrs.Set("close", vm.wrapNative("close", inst, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if !closed {
			closed = true
			f.Close()
		}
		return vm.none, nil
	}))
	inst.Attrs.Set("__enter__", vm.wrapNative("__enter__", inst, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		return self, nil
	}))
	inst.Attrs.Set("__exit__", vm.wrapNative("__exit__", inst, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if !closed {
			closed = true
			f.Close()
		}
		return vm.falseObj, nil
	}))

	inst.AddFinalizer(func(o *object.Object, userdata any) {
		if !closed {
			f.Close()
		}
	}, nil)
	return inst
}
