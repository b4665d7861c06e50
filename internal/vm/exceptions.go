package vm

import (
	"fmt"

	"github.com/wings-lang/wings/internal/object"
)

// exceptionHierarchy is the closed builtin exception tree: each entry is
// (name, base name). BaseException itself has no base.
var exceptionHierarchy = []struct{ name, base string }{
	{"BaseException", ""},
	{"SystemExit", "BaseException"},
	{"Exception", "BaseException"},
	{"StopIteration", "Exception"},
	{"ArithmeticError", "Exception"},
	{"OverflowError", "ArithmeticError"},
	{"ZeroDivisionError", "ArithmeticError"},
	{"AttributeError", "Exception"},
	{"ImportError", "Exception"},
	{"LookupError", "Exception"},
	{"IndexError", "LookupError"},
	{"KeyError", "LookupError"},
	{"MemoryError", "Exception"},
	{"NameError", "Exception"},
	{"OSError", "Exception"},
	{"IsADirectoryError", "OSError"},
	{"RuntimeError", "Exception"},
	{"NotImplementedError", "RuntimeError"},
	{"RecursionError", "RuntimeError"},
	{"SyntaxError", "Exception"},
	{"TypeError", "Exception"},
	{"ValueError", "Exception"},
}

// bootstrapExceptions builds every class in exceptionHierarchy as a plain
// object.Class, wiring Attrs.Parents to the base's Attrs so isinstance and
// attribute lookup both follow the same left-first parent-chain rule
// ordinary user classes use (see class.go's doc comment).
func (vm *VM) bootstrapExceptions() {
	vm.exceptionClasses = map[string]*object.Object{}
	for _, e := range exceptionHierarchy {
		classObj := &object.Object{Kind: object.KindClass}
		attrs := object.NewAttrTable()
		if e.base != "" {
			attrs.AddParent(vm.exceptionClasses[e.base].Class.Attrs)
		}
		cls := &object.Class{Name: e.name, Attrs: attrs}
		classObj.Class = cls
		classObj.Attrs = attrs
		attrs.Set("__class__", classObj)
		cls.Ctor = vm.exceptionCtor(classObj)
		if e.base != "" {
			cls.Bases = []*object.Object{vm.exceptionClasses[e.base]}
		}
		vm.exceptionClasses[e.name] = classObj
		vm.builtins.Set(e.name, classObj)
	}
}

// exceptionCtor builds the native constructor shared by every builtin
// exception class: it stashes the constructor args under `args` (for
// str(e)/repr(e)) and the first one under `_message`, the string str(e)
// and traceback rendering read back.
func (vm *VM) exceptionCtor(classObj *object.Object) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		inst := vm.heap.New(object.KindInstance)
		inst.ClassRef = classObj
		inst.Attrs = object.NewAttrTable()
		inst.Attrs.AddParent(classObj.Class.Attrs)
		if len(args) > 0 {
			inst.Attrs.Set("_message", args[0])
		} else {
			inst.Attrs.Set("_message", vm.none)
		}
		inst.Attrs.Set("args", vm.newTuple(args))
		return inst, nil
	}
}

// newExceptionInstance constructs a builtin exception instance directly,
// bypassing OpCall, for the VM's own internal raises (TypeError on a bad
// operand, IndexError on an out-of-range subscript, ...).
func (vm *VM) newExceptionInstance(className, message string) *object.Object {
	classObj, ok := vm.exceptionClasses[className]
	if !ok {
		// Should never happen for a name in exceptionHierarchy; fall back
		// to a bare string wrapped as RuntimeError rather than panicking.
		classObj = vm.exceptionClasses["RuntimeError"]
	}
	inst, _ := classObj.Class.Ctor([]*object.Object{vm.newString(message)}, nil)
	return inst
}

// isInstanceOf reports whether inst is a class instance whose class is
// classObj or a descendant of it, walking the attribute table's parent
// chain exactly like ordinary method lookup; it is false for every
// non-instance value.
func isInstanceOf(inst, classObj *object.Object) bool {
	if inst.Kind != object.KindInstance || classObj.Kind != object.KindClass {
		return false
	}
	return attrTableDescendsFrom(inst.ClassRef.Class.Attrs, classObj.Class.Attrs)
}

func attrTableDescendsFrom(t, ancestor *object.AttrTable) bool {
	if t == ancestor {
		return true
	}
	for _, p := range t.Parents {
		if attrTableDescendsFrom(p, ancestor) {
			return true
		}
	}
	return false
}

// thrownException is the Go-level carrier for a script-level raise,
// unwound by the Run loop's frame search rather than Go's own panic/
// recover (the design notes rule out host-language exception machinery
// because it would erase line-number context).
type thrownException struct {
	exc *object.Object
}

func (t *thrownException) Error() string {
	if t.exc == nil {
		return "exception"
	}
	if msg, ok := t.exc.Attrs.Get("_message"); ok && msg.Kind == object.KindString {
		return t.exc.TypeTag() + ": " + msg.Str
	}
	return t.exc.TypeTag()
}

func (vm *VM) raise(exc *object.Object) error {
	return &thrownException{exc: exc}
}

func (vm *VM) raisef(className, format string, args ...any) error {
	return vm.raise(vm.newExceptionInstance(className, fmt.Sprintf(format, args...)))
}

// unwind searches the live frame stack (innermost first, never below
// depth) for an active try frame, truncating the operand stack to the
// depth that frame recorded and pushing the exception object for its
// handler chain to inspect. Frames with no
// active try frame are popped. It returns false once the frame stack is
// back down to depth, meaning this run loop's caller observes the
// exception: either an enclosing interpreted frame (whose own run loop
// repeats the search one boundary up) or native code inspecting the
// error directly, the way iteration helpers catch StopIteration.
func (vm *VM) unwind(err error, depth int) bool {
	texc, ok := err.(*thrownException)
	if !ok {
		return false
	}
	vm.currentException = texc.exc
	for len(vm.frames) > depth {
		frame := vm.frames[len(vm.frames)-1]
		if n := len(frame.tryStack); n > 0 {
			tf := frame.tryStack[n-1]
			frame.tryStack = frame.tryStack[:n-1]
			vm.stack = vm.stack[:tf.stackSize]
			vm.stack = append(vm.stack, texc.exc)
			frame.ip = tf.target
			return true
		}
		vm.stack = vm.stack[:frame.stackBase]
		vm.frames = vm.frames[:len(vm.frames)-1]
	}
	return false
}
