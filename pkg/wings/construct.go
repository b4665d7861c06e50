package wings

import "github.com/wings-lang/wings/internal/object"

// NewInt, NewFloat, NewString, NewBool, NewList, NewTuple, NewDict,
// NewSet, NewModule construct values of the corresponding builtin
// kind inside e's context, for building arguments or globals from Go
// data.
func (e *Engine) NewInt(v int64) Value     { return newValue(e, e.vm.NewInt(v)) }
func (e *Engine) NewFloat(v float64) Value { return newValue(e, e.vm.NewFloat(v)) }
func (e *Engine) NewString(v string) Value { return newValue(e, e.vm.NewString(v)) }
func (e *Engine) NewBool(v bool) Value     { return newValue(e, e.vm.NewBool(v)) }

func (e *Engine) NewList(items ...Value) Value {
	raw := make([]*object.Object, len(items))
	for i, v := range items {
		raw[i] = v.obj
	}
	return newValue(e, e.vm.NewList(raw))
}

func (e *Engine) NewTuple(items ...Value) Value {
	raw := make([]*object.Object, len(items))
	for i, v := range items {
		raw[i] = v.obj
	}
	return newValue(e, e.vm.NewTuple(raw))
}

func (e *Engine) NewDict() Value { return newValue(e, e.vm.NewDict()) }
func (e *Engine) NewSet() Value  { return newValue(e, e.vm.NewSet()) }

// NewModule builds an empty module namespace, for a ModuleLoader to
// populate with SetAttr and return.
func (e *Engine) NewModule(name string) Value { return newValue(e, e.vm.NewModule(name)) }

// None, True, False return the engine's shared singletons.
func (e *Engine) None() Value  { return newValue(e, e.vm.None()) }
func (e *Engine) True() Value  { return newValue(e, e.vm.True()) }
func (e *Engine) False() Value { return newValue(e, e.vm.False()) }
