package vm

import (
	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/object"
)

// This file is the embedder-facing seam: pkg/wings's Value/Engine types
// need to drive call/attribute/index/conversion machinery that every
// other file in this package keeps unexported since script execution
// only ever needs it through bytecode dispatch. Most wrappers here are
// thin re-exports of the equivalent lowercase method; CallBase has no
// lowercase counterpart and does its own lookup.

// Call invokes callee (a function, class, or __call__-able instance)
// with the given positional args and an optional kwargs dict, the same
// path OpCall uses.
func (vm *VM) Call(callee *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	return vm.callValue(callee, args, kwargs)
}

// CallMethod looks up name on obj (following the attribute protocol;
// __getattr__ is not consulted) and calls it with args/kwargs.
func (vm *VM) CallMethod(obj *object.Object, name string, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	fn, err := vm.getAttr(obj, name)
	if err != nil {
		return nil, err
	}
	return vm.callValue(fn, args, kwargs)
}

// CallBase looks up name starting at obj's class's own base list, skipping
// obj's most-derived class entirely, and calls it bound to obj: the
// Go-level equivalent of a script calling `super().name(...)`, which the
// script language itself does not provide.
func (vm *VM) CallBase(obj *object.Object, name string, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if obj.Kind != object.KindInstance || obj.ClassRef == nil {
		return nil, vm.raisef("TypeError", "%s object has no base class", obj.TypeTag())
	}
	for _, base := range obj.ClassRef.Class.Bases {
		if base.Kind != object.KindClass {
			continue
		}
		if v, ok := base.Class.Attrs.Get(name); ok {
			return vm.callValue(bindIfMethod(v, obj), args, kwargs)
		}
	}
	return nil, vm.raisef("AttributeError", "%s object has no base attribute %q", obj.TypeTag(), name)
}

// GetAttr/SetAttr/DeleteAttr expose the attribute protocol (dot access,
// including descriptor-style method binding) to an embedder.
func (vm *VM) GetAttr(obj *object.Object, name string) (*object.Object, error) {
	return vm.getAttr(obj, name)
}

func (vm *VM) SetAttr(obj *object.Object, name string, val *object.Object) error {
	return vm.setAttr(obj, name, val)
}

func (vm *VM) DeleteAttr(obj *object.Object, name string) error {
	return vm.deleteAttr(obj, name)
}

// GetIndex/SetIndex/DeleteIndex expose the subscript protocol
// (obj[idx], obj[idx] = v, del obj[idx]) to an embedder.
func (vm *VM) GetIndex(obj, idx *object.Object) (*object.Object, error) {
	return vm.getIndex(obj, idx)
}

func (vm *VM) SetIndex(obj, idx, val *object.Object) error {
	return vm.setIndex(obj, idx, val)
}

func (vm *VM) DeleteIndex(obj, idx *object.Object) error {
	return vm.deleteIndex(obj, idx)
}

// Str/Repr render obj the way the language's own str()/repr() builtins
// do, dispatching to __str__/__repr__ for instances.
func (vm *VM) Str(obj *object.Object) string  { return vm.str(obj) }
func (vm *VM) Repr(obj *object.Object) string { return vm.repr(obj) }

// IsTruthy evaluates obj's boolean value under the language's truthiness
// rules (including a __bool__/__len__ fallback for instances).
func (vm *VM) IsTruthy(obj *object.Object) (bool, error) {
	return vm.isTruthy(obj)
}

// Raise raises a new instance of the named builtin exception class
// (ValueError, TypeError, ...) with a formatted message, the same way
// the VM's own internal operator/attribute errors do.
func (vm *VM) Raise(className, format string, args ...any) error {
	return vm.raisef(className, format, args...)
}

// RaiseValue raises an already-constructed exception instance, for
// re-raising a caught-elsewhere exception without rebuilding its
// message/type.
func (vm *VM) RaiseValue(exc *object.Object) error {
	return vm.raise(exc)
}

// CurrentException returns the VM's current-exception slot: whatever a
// bare `raise` would re-raise, or the instance an uncaught script-level
// exception left behind when Run/Call returned an error.
func (vm *VM) CurrentException() *object.Object {
	return vm.currentException
}

// ExceptionClass looks up one of the bootstrapped BaseException-derived
// classes by name (ValueError, KeyError, ...), for embedders that want
// to construct or isinstance-check against a builtin exception type.
func (vm *VM) ExceptionClass(name string) (*object.Object, bool) {
	cls, ok := vm.exceptionClasses[name]
	return cls, ok
}

// BuiltinTypeClass looks up the Class object a builtin Kind (int, str,
// list, ...) constructs through, mirroring type()/isinstance() dispatch.
func (vm *VM) BuiltinTypeClass(kind object.Kind) (*object.Object, bool) {
	cls, ok := vm.builtinTypeClasses[kind]
	return cls, ok
}

// NewInt, NewFloat, NewString, NewBool, NewTuple, NewList, NewDict and
// NewSet build heap-tracked values of the corresponding builtin kind,
// for embedders constructing arguments or globals from Go values.
func (vm *VM) NewInt(v int64) *object.Object       { return vm.newInt(v) }
func (vm *VM) NewFloat(v float64) *object.Object   { return vm.newFloat(v) }
func (vm *VM) NewString(v string) *object.Object   { return vm.newString(v) }
func (vm *VM) NewBool(v bool) *object.Object       { return vm.newBool(v) }
func (vm *VM) NewTuple(items []*object.Object) *object.Object { return vm.newTuple(items) }
func (vm *VM) NewList(items []*object.Object) *object.Object  { return vm.newList(items) }
func (vm *VM) NewDict() *object.Object             { return vm.newDict() }
func (vm *VM) NewSet() *object.Object              { return vm.newSet() }

// NewNativeFunc builds a callable Function object wrapping fn, for a
// ModuleLoader to attach to its module namespace under some name. Not
// heap-tracked, the same reasoning RegisterFunction's builtin wrapper
// follows: once attached to a cached module object (itself rooted via
// vm.modules), it lives for the VM's whole lifetime.
func (vm *VM) NewNativeFunc(name string, fn object.NativeFn) *object.Object {
	return &object.Object{Kind: object.KindFunction, Func: &object.Function{Name: name, Native: fn}}
}

// Module returns the registered module namespace for name, creating
// and registering an empty one if it doesn't exist yet. Run reuses
// whatever this returns (newModule checks the same vm.modules cache),
// so an embedder can SetGlobal into a module before ever Eval-ing
// anything into it.
func (vm *VM) Module(name string) *object.Object {
	mod := vm.newModule(name)
	vm.modules[name] = mod
	return mod
}

// NewModule builds an empty module namespace object under name, for a
// ModuleLoader to populate with RegisterFunction-wrapped entries and
// return. Unlike NewList/NewDict/etc this is not heap-tracked: modules
// live for the VM's whole lifetime once registered in vm.modules (which
// roots() walks directly), the same reasoning bootstrapBuiltins applies
// to builtin function objects.
func (vm *VM) NewModule(name string) *object.Object {
	return &object.Object{Kind: object.KindModule, Str: name, Attrs: object.NewAttrTable()}
}

// None, True, False return the VM's shared singletons, so an embedder's
// Value wrapper can recognize/construct them without allocating.
func (vm *VM) None() *object.Object  { return vm.none }
func (vm *VM) True() *object.Object  { return vm.trueObj }
func (vm *VM) False() *object.Object { return vm.falseObj }

// ApplyBinary applies the binary operator written as tag ("+", "-",
// "*", "/", "//", "%", "**", "<<", ">>", "&", "|", "^") to a and b,
// with the same instance-dunder dispatch the compiled operators get.
func (vm *VM) ApplyBinary(tag string, a, b *object.Object) (*object.Object, error) {
	op := binaryOpCodeForTag(tag)
	if op == compiler.OpNop {
		return nil, vm.raisef("TypeError", "unknown binary operator %q", tag)
	}
	if a.Kind == object.KindInstance {
		if m, ok := lookupMethod(a, binaryDunder[op]); ok {
			return vm.callValue(m, []*object.Object{b}, nil)
		}
	}
	return vm.nativeBinary(op, a, b)
}

// ApplyUnary applies the unary operator written as tag ("-", "+", "~")
// to a.
func (vm *VM) ApplyUnary(tag string, a *object.Object) (*object.Object, error) {
	vm.push(a)
	var op compiler.OpCode
	switch tag {
	case "-":
		op = compiler.OpNeg
	case "+":
		op = compiler.OpPos
	case "~":
		op = compiler.OpInvert
	case "not":
		op = compiler.OpNot
	default:
		vm.pop()
		return nil, vm.raisef("TypeError", "unknown unary operator %q", tag)
	}
	if err := vm.execUnary(op); err != nil {
		return nil, err
	}
	return vm.pop(), nil
}

// Each drives obj's iteration protocol to completion, invoking fn for
// every element; a non-nil error from fn stops the walk and propagates.
func (vm *VM) Each(obj *object.Object, fn func(*object.Object) error) error {
	items, err := vm.iterableToSlice(obj)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := fn(it); err != nil {
			return err
		}
	}
	return nil
}

// Unpack materializes obj's elements into a fresh slice of exactly n,
// raising ValueError on a length mismatch.
func (vm *VM) Unpack(obj *object.Object, n int) ([]*object.Object, error) {
	items, err := vm.iterableToSlice(obj)
	if err != nil {
		return nil, err
	}
	if len(items) != n {
		return nil, vm.raisef("ValueError", "expected %d values to unpack, got %d", n, len(items))
	}
	return items, nil
}

// Iter and Next drive the language's iterator protocol from Go, for an
// embedder walking a list/dict/set/string/custom-__iter__ value without
// compiling a for-loop.
func (vm *VM) Iter(obj *object.Object) (*object.Object, error) {
	switch obj.Kind {
	case object.KindList, object.KindTuple:
		return vm.newSeqIterator(obj.Items), nil
	case object.KindString:
		return vm.newStringIterator(obj.Str), nil
	case object.KindDict:
		return vm.newDictIterator(obj), nil
	case object.KindSet:
		return vm.newSetIterator(obj), nil
	}
	if m, ok := lookupMethod(obj, "__iter__"); ok {
		return vm.callValue(m, nil, nil)
	}
	return nil, vm.raisef("TypeError", "%s object is not iterable", obj.TypeTag())
}

// ExceptionFromError unwraps a script-level exception (the kind raise/
// except operate on) out of an error returned by Run/Call/CallMethod/
// GetAttr/etc, distinguishing it from a host-level Go error (a
// malformed chunk, an I/O failure from a native function). ok is false
// for anything that isn't a thrown script exception.
func ExceptionFromError(err error) (*object.Object, bool) {
	texc, ok := err.(*thrownException)
	if !ok {
		return nil, false
	}
	return texc.exc, true
}

// DictSet installs key/value into dict.Dict using the VM's own key
// hashing/equality, for a ModuleLoader building a dict-valued constant
// (e.g. os.environ) outside of bytecode dispatch.
func (vm *VM) DictSet(dict, key, val *object.Object) error {
	return dict.Dict.Set(vm.hashEq(), key, val)
}

// RegisterFunction installs fn as a global builtin callable under name,
// the embedder-facing counterpart of bootstrapBuiltins' internal
// `register` closure. Like every other builtin, the wrapper object is
// kept off the GC heap: builtins live for the VM's whole lifetime, so
// they never need root-tracking.
func (vm *VM) RegisterFunction(name string, fn object.NativeFn) {
	obj := &object.Object{Kind: object.KindFunction, Func: &object.Function{Name: name, Native: fn}}
	vm.builtins.Set(name, obj)
}
