package wings

import "github.com/wings-lang/wings/internal/object"

// NativeFunc is a host function exposed to scripts via
// Engine.RegisterFunction: args are already positionally bound,
// kwargs is the (possibly invalid) keyword-arguments dict passed to
// a `f(**kw)`-style call.
type NativeFunc func(args []Value, kwargs Value) (Value, error)

// toNativeFn adapts a NativeFunc to the object.NativeFn shape
// internal/vm's call machinery invokes, converting Values at the
// boundary in both directions.
func (e *Engine) toNativeFn(fn NativeFunc) object.NativeFn {
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		vargs := make([]Value, len(args))
		for i, a := range args {
			vargs[i] = newValue(e, a)
		}
		res, err := fn(vargs, newValue(e, kwargs))
		if err != nil {
			return nil, e.unwrapError(err)
		}
		if !res.IsValid() {
			return e.vm.None(), nil
		}
		return res.obj, nil
	}
}

// unwrapError lets a NativeFunc raise a script-catchable exception by
// returning a *ScriptError (e.g. from Engine.Raise) unchanged, rather
// than having it re-wrapped as a fresh RuntimeError.
func (e *Engine) unwrapError(err error) error {
	if se, ok := err.(*ScriptError); ok {
		return e.vm.RaiseValue(se.Exception.obj)
	}
	return e.vm.Raise("RuntimeError", "%s", err.Error())
}
