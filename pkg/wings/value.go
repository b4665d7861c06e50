package wings

import (
	"fmt"

	"github.com/wings-lang/wings/internal/object"
)

// Value is an opaque handle onto a heap object living inside one
// Engine's context. Values from one Engine must never be passed to
// another; each context owns its heap outright.
type Value struct {
	engine *Engine
	obj    *object.Object
}

func newValue(e *Engine, o *object.Object) Value { return Value{engine: e, obj: o} }

// IsValid reports whether v wraps a live object (false for the zero Value).
func (v Value) IsValid() bool { return v.obj != nil }

// IsNone reports whether v is the language's None/null singleton.
func (v Value) IsNone() bool { return v.obj != nil && v.obj.Kind == object.KindNone }

// Type returns the value's short type tag (__int, __str, a user class
// name for instances, ...).
func (v Value) Type() string {
	if v.obj == nil {
		return "__null"
	}
	return v.obj.TypeTag()
}

// AsBool converts v under the language's truthiness rule, dispatching
// to __bool__/__len__ for instances.
func (v Value) AsBool() (bool, error) {
	return v.engine.vm.IsTruthy(v.obj)
}

// AsInt returns v's integer value, or an error if v is not an int (or
// bool, which the language treats as an int subtype).
func (v Value) AsInt() (int64, error) {
	switch v.obj.Kind {
	case object.KindInt:
		return v.obj.Int, nil
	case object.KindBool:
		if v.obj.Bool {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("wings: value of type %s is not an int", v.Type())
}

// AsFloat returns v's float value, widening an int if necessary.
func (v Value) AsFloat() (float64, error) {
	switch v.obj.Kind {
	case object.KindFloat:
		return v.obj.Float, nil
	case object.KindInt:
		return float64(v.obj.Int), nil
	}
	return 0, fmt.Errorf("wings: value of type %s is not a float", v.Type())
}

// AsString returns v's string contents.
func (v Value) AsString() (string, error) {
	if v.obj.Kind != object.KindString {
		return "", fmt.Errorf("wings: value of type %s is not a string", v.Type())
	}
	return v.obj.Str, nil
}

// String renders v the way the language's own str() builtin would
// (unquoted strings, dispatching to __str__ for instances).
func (v Value) String() string {
	if v.obj == nil {
		return "<invalid value>"
	}
	return v.engine.vm.Str(v.obj)
}

// Repr renders v the way repr() would (quoted strings, literal syntax
// for containers).
func (v Value) Repr() string {
	if v.obj == nil {
		return "<invalid value>"
	}
	return v.engine.vm.Repr(v.obj)
}

// Call invokes v as a function/class/callable instance with the given
// positional arguments.
func (v Value) Call(args ...Value) (Value, error) {
	raw := make([]*object.Object, len(args))
	for i, a := range args {
		raw[i] = a.obj
	}
	res, err := v.engine.vm.Call(v.obj, raw, nil)
	if err != nil {
		return Value{}, v.engine.wrapError(err)
	}
	return newValue(v.engine, res), nil
}

// CallMethod looks up name on v and calls it with args, the Go-level
// equivalent of `v.name(args...)`.
func (v Value) CallMethod(name string, args ...Value) (Value, error) {
	raw := make([]*object.Object, len(args))
	for i, a := range args {
		raw[i] = a.obj
	}
	res, err := v.engine.vm.CallMethod(v.obj, name, raw, nil)
	if err != nil {
		return Value{}, v.engine.wrapError(err)
	}
	return newValue(v.engine, res), nil
}

// CallBaseMethod looks up name starting at v's class's own bases, skipping
// v's most-derived class, and calls it bound to v — the embedder-visible
// "call up the MRO skipping the most-derived" operator, used to invoke
// an overridden base-class method the way a script-level `super()` would
// if the core language implemented one.
func (v Value) CallBaseMethod(name string, args ...Value) (Value, error) {
	raw := make([]*object.Object, len(args))
	for i, a := range args {
		raw[i] = a.obj
	}
	res, err := v.engine.vm.CallBase(v.obj, name, raw, nil)
	if err != nil {
		return Value{}, v.engine.wrapError(err)
	}
	return newValue(v.engine, res), nil
}

// Index returns v[idx] (list/tuple/dict/set membership lookup or a
// user __getitem__).
func (v Value) Index(idx Value) (Value, error) {
	res, err := v.engine.vm.GetIndex(v.obj, idx.obj)
	if err != nil {
		return Value{}, v.engine.wrapError(err)
	}
	return newValue(v.engine, res), nil
}

// SetIndex assigns v[idx] = val.
func (v Value) SetIndex(idx, val Value) error {
	if err := v.engine.vm.SetIndex(v.obj, idx.obj, val.obj); err != nil {
		return v.engine.wrapError(err)
	}
	return nil
}

// Attr returns v.name (attribute access, including bound-method
// rebinding).
func (v Value) Attr(name string) (Value, error) {
	res, err := v.engine.vm.GetAttr(v.obj, name)
	if err != nil {
		return Value{}, v.engine.wrapError(err)
	}
	return newValue(v.engine, res), nil
}

// SetAttr assigns v.name = val.
func (v Value) SetAttr(name string, val Value) error {
	if err := v.engine.vm.SetAttr(v.obj, name, val.obj); err != nil {
		return v.engine.wrapError(err)
	}
	return nil
}

// BinaryOp applies the binary operator written as tag ("+", "-", "*",
// "/", "//", "%", "**", "<<", ">>", "&", "|", "^") to v and other,
// with the same instance-dunder dispatch the compiled operators get.
func (v Value) BinaryOp(tag string, other Value) (Value, error) {
	res, err := v.engine.vm.ApplyBinary(tag, v.obj, other.obj)
	if err != nil {
		return Value{}, v.engine.wrapError(err)
	}
	return newValue(v.engine, res), nil
}

// UnaryOp applies the unary operator written as tag ("-", "+", "~",
// "not") to v.
func (v Value) UnaryOp(tag string) (Value, error) {
	res, err := v.engine.vm.ApplyUnary(tag, v.obj)
	if err != nil {
		return Value{}, v.engine.wrapError(err)
	}
	return newValue(v.engine, res), nil
}

// Each drives v's iteration protocol, invoking fn for every element; a
// non-nil error from fn stops the walk and propagates.
func (v Value) Each(fn func(Value) error) error {
	err := v.engine.vm.Each(v.obj, func(o *object.Object) error {
		return fn(newValue(v.engine, o))
	})
	if err != nil {
		return v.engine.wrapError(err)
	}
	return nil
}

// Unpack materializes v's elements into exactly n Values, failing with
// a ValueError-backed ScriptError on a length mismatch.
func (v Value) Unpack(n int) ([]Value, error) {
	items, err := v.engine.vm.Unpack(v.obj, n)
	if err != nil {
		return nil, v.engine.wrapError(err)
	}
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = newValue(v.engine, it)
	}
	return out, nil
}

// Userdata/SetUserdata expose the native payload slot host wrappers
// stash Go-side state in; the collector never walks it.
func (v Value) Userdata() any        { return v.obj.GetUserdata() }
func (v Value) SetUserdata(data any) { v.obj.SetUserdata(data) }

// AddFinalizer registers fn to run exactly once, before v's object is
// reclaimed by its context's collector.
func (v Value) AddFinalizer(fn func(userdata any), userdata any) {
	v.obj.AddFinalizer(func(_ *object.Object, ud any) { fn(ud) }, userdata)
}

// IncRef/DecRef pin v against collection across calls where the Go
// caller, not any script-reachable root, is the only thing keeping it
// alive.
func (v Value) IncRef() {
	if v.obj != nil {
		v.obj.IncRef()
	}
}

func (v Value) DecRef() {
	if v.obj != nil {
		v.obj.DecRef()
	}
}
