package vm

import "github.com/wings-lang/wings/internal/object"

// nativeMethod is a builtin bound-method implementation for a non-instance
// Kind (list, dict, set, str, tuple): self is the receiver, args/kwargs the
// already-unpacked call arguments.
type nativeMethod func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error)

func builtinMethod(kind object.Kind, name string) nativeMethod {
	switch kind {
	case object.KindList:
		return listMethods[name]
	case object.KindDict:
		return dictMethods[name]
	case object.KindSet:
		return setMethods[name]
	case object.KindString:
		return stringMethods[name]
	case object.KindTuple:
		return tupleMethods[name]
	}
	return nil
}

// wrapNative builds a heap-tracked Function object around a builtin method,
// bound to self, so it behaves like any other attribute-access result a
// script might store in a variable and call later.
func (vm *VM) wrapNative(name string, self *object.Object, fn nativeMethod) *object.Object {
	obj := vm.heap.New(object.KindFunction)
	obj.Func = &object.Function{
		Name:     name,
		Self:     self,
		IsMethod: true,
		Native: func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return fn(vm, self, args, kwargs)
		},
	}
	return obj
}

// bindIfMethod implements the transient per-access binding rule:
// a class-attribute function resolved through an instance's parent chain is
// unbound (Func.Self == nil); every access rebinds a fresh view rather than
// mutating the shared descriptor.
func bindIfMethod(v, self *object.Object) *object.Object {
	if v.Kind == object.KindFunction && v.Func.IsMethod && v.Func.Self == nil {
		return &object.Object{Kind: object.KindFunction, Func: v.Func.Bind(self)}
	}
	return v
}

// lookupMethod resolves a dunder/protocol method on an instance without
// raising AttributeError, for the VM's own internal dispatch (operators,
// hashing, iteration) rather than script-visible attribute access.
func lookupMethod(obj *object.Object, name string) (*object.Object, bool) {
	if obj.Kind != object.KindInstance || obj.Attrs == nil {
		return nil, false
	}
	v, ok := obj.Attrs.Get(name)
	if !ok || v.Kind != object.KindFunction {
		return nil, false
	}
	return bindIfMethod(v, obj), true
}

// getAttr implements OpLoadAttr's attribute protocol: instances
// and classes resolve through the AttrTable parent chain, modules resolve
// against their own namespace, and every other Kind exposes a fixed table
// of builtin bound methods.
func (vm *VM) getAttr(obj *object.Object, name string) (*object.Object, error) {
	switch obj.Kind {
	case object.KindInstance:
		if obj.Attrs != nil {
			if v, ok := obj.Attrs.Get(name); ok {
				return bindIfMethod(v, obj), nil
			}
		}
		return nil, vm.raisef("AttributeError", "%s object has no attribute %q", obj.TypeTag(), name)
	case object.KindClass:
		if v, ok := obj.Class.Attrs.Get(name); ok {
			return v, nil
		}
		return nil, vm.raisef("AttributeError", "type object %q has no attribute %q", obj.Class.Name, name)
	case object.KindModule:
		if v, ok := obj.Attrs.Get(name); ok {
			return v, nil
		}
		return nil, vm.raisef("AttributeError", "module %q has no attribute %q", obj.Str, name)
	case object.KindFunction:
		if name == "__name__" {
			return vm.newString(obj.Func.Name), nil
		}
	}
	if fn := builtinMethod(obj.Kind, name); fn != nil {
		return vm.wrapNative(name, obj, fn), nil
	}
	return nil, vm.raisef("AttributeError", "%s object has no attribute %q", obj.TypeTag(), name)
}

func (vm *VM) setAttr(obj *object.Object, name string, val *object.Object) error {
	switch obj.Kind {
	case object.KindInstance:
		if obj.Attrs == nil {
			obj.Attrs = object.NewAttrTable()
		}
		obj.Attrs.Set(name, val)
		return nil
	case object.KindClass:
		obj.Class.Attrs.Set(name, val)
		return nil
	case object.KindModule:
		obj.Attrs.Set(name, val)
		return nil
	}
	return vm.raisef("AttributeError", "%s object attributes are read-only", obj.TypeTag())
}

func (vm *VM) deleteAttr(obj *object.Object, name string) error {
	switch obj.Kind {
	case object.KindInstance:
		if obj.Attrs != nil && obj.Attrs.Delete(name) {
			return nil
		}
	case object.KindClass:
		if obj.Class.Attrs.Delete(name) {
			return nil
		}
	case object.KindModule:
		if obj.Attrs.Delete(name) {
			return nil
		}
	}
	return vm.raisef("AttributeError", "%s object has no attribute %q", obj.TypeTag(), name)
}

// ---------------------------------------------------------------------
// Indexing and slicing
// ---------------------------------------------------------------------

func (vm *VM) getIndex(obj, idx *object.Object) (*object.Object, error) {
	if obj.Kind == object.KindInstance {
		if m, ok := lookupMethod(obj, "__getitem__"); ok {
			return vm.callValue(m, []*object.Object{idx}, nil)
		}
		return nil, vm.raisef("TypeError", "%s object is not subscriptable", obj.TypeTag())
	}

	switch obj.Kind {
	case object.KindList, object.KindTuple:
		if idx.Kind == object.KindSlice {
			start, stop, step, err := normalizeSlice(len(obj.Items), idx)
			if err != nil {
				return nil, vm.raisef("ValueError", "%v", err)
			}
			items := sliceObjects(obj.Items, start, stop, step)
			if obj.Kind == object.KindList {
				return vm.newList(items), nil
			}
			return vm.newTuple(items), nil
		}
		i, err := vm.indexInt(idx, obj.TypeTag())
		if err != nil {
			return nil, err
		}
		i = normalizeScalarIndex(i, len(obj.Items))
		if i < 0 || i >= len(obj.Items) {
			return nil, vm.raisef("IndexError", "%s index out of range", obj.TypeTag())
		}
		return obj.Items[i], nil

	case object.KindString:
		runes := []rune(obj.Str)
		if idx.Kind == object.KindSlice {
			start, stop, step, err := normalizeSlice(len(runes), idx)
			if err != nil {
				return nil, vm.raisef("ValueError", "%v", err)
			}
			return vm.newString(string(sliceRunes(runes, start, stop, step))), nil
		}
		i, err := vm.indexInt(idx, "__str")
		if err != nil {
			return nil, err
		}
		i = normalizeScalarIndex(i, len(runes))
		if i < 0 || i >= len(runes) {
			return nil, vm.raisef("IndexError", "string index out of range")
		}
		return vm.newString(string(runes[i])), nil

	case object.KindDict:
		v, ok, err := obj.Dict.Get(vm.hashEq(), idx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, vm.raisef("KeyError", "%s", vm.repr(idx))
		}
		return v, nil
	}
	return nil, vm.raisef("TypeError", "%s object is not subscriptable", obj.TypeTag())
}

func (vm *VM) setIndex(obj, idx, val *object.Object) error {
	if obj.Kind == object.KindInstance {
		if m, ok := lookupMethod(obj, "__setitem__"); ok {
			_, err := vm.callValue(m, []*object.Object{idx, val}, nil)
			return err
		}
		return vm.raisef("TypeError", "%s object does not support item assignment", obj.TypeTag())
	}

	switch obj.Kind {
	case object.KindList:
		if idx.Kind == object.KindSlice {
			start, stop, step, err := normalizeSlice(len(obj.Items), idx)
			if err != nil {
				return vm.raisef("ValueError", "%v", err)
			}
			if step != 1 {
				return vm.raisef("ValueError", "extended slice assignment is not supported")
			}
			if val.Kind != object.KindList && val.Kind != object.KindTuple {
				return vm.raisef("TypeError", "can only assign an iterable to a slice")
			}
			if start > stop {
				stop = start
			}
			replacement := append([]*object.Object{}, obj.Items[:start]...)
			replacement = append(replacement, val.Items...)
			replacement = append(replacement, obj.Items[stop:]...)
			obj.Items = replacement
			return nil
		}
		i, err := vm.indexInt(idx, "__list")
		if err != nil {
			return err
		}
		i = normalizeScalarIndex(i, len(obj.Items))
		if i < 0 || i >= len(obj.Items) {
			return vm.raisef("IndexError", "list assignment index out of range")
		}
		obj.Items[i] = val
		return nil
	case object.KindDict:
		return obj.Dict.Set(vm.hashEq(), idx, val)
	}
	return vm.raisef("TypeError", "%s object does not support item assignment", obj.TypeTag())
}

func (vm *VM) deleteIndex(obj, idx *object.Object) error {
	if obj.Kind == object.KindInstance {
		if m, ok := lookupMethod(obj, "__delitem__"); ok {
			_, err := vm.callValue(m, []*object.Object{idx}, nil)
			return err
		}
		return vm.raisef("TypeError", "%s object doesn't support item deletion", obj.TypeTag())
	}

	switch obj.Kind {
	case object.KindList:
		i, err := vm.indexInt(idx, "__list")
		if err != nil {
			return err
		}
		i = normalizeScalarIndex(i, len(obj.Items))
		if i < 0 || i >= len(obj.Items) {
			return vm.raisef("IndexError", "list assignment index out of range")
		}
		obj.Items = append(obj.Items[:i], obj.Items[i+1:]...)
		return nil
	case object.KindDict:
		ok, err := obj.Dict.Delete(vm.hashEq(), idx)
		if err != nil {
			return err
		}
		if !ok {
			return vm.raisef("KeyError", "%s", vm.repr(idx))
		}
		return nil
	case object.KindSet:
		ok, err := obj.Set.Remove(vm.hashEq(), idx)
		if err != nil {
			return err
		}
		if !ok {
			return vm.raisef("KeyError", "%s", vm.repr(idx))
		}
		return nil
	}
	return vm.raisef("TypeError", "%s object doesn't support item deletion", obj.TypeTag())
}

func (vm *VM) indexInt(idx *object.Object, typeTag string) (int, error) {
	if idx.Kind != object.KindInt {
		return 0, vm.raisef("TypeError", "%s indices must be integers, not %s", typeTag, idx.TypeTag())
	}
	return int(idx.Int), nil
}

func normalizeScalarIndex(i, length int) int {
	if i < 0 {
		return i + length
	}
	return i
}

// normalizeSlice resolves a KindSlice object's (possibly-None) bounds into
// concrete start/stop/step for a sequence of the given length, following
// Python's slice.indices() clamping rule.
func normalizeSlice(length int, s *object.Object) (start, stop, step int, err error) {
	step = 1
	if s.SliceStep != nil && s.SliceStep.Kind == object.KindInt {
		step = int(s.SliceStep.Int)
	}
	if step == 0 {
		return 0, 0, 0, errSliceStepZero
	}

	if step > 0 {
		start, stop = 0, length
	} else {
		start, stop = length-1, -1
	}

	if s.SliceLower != nil && s.SliceLower.Kind == object.KindInt {
		start = clampSliceIndex(int(s.SliceLower.Int), length, step > 0)
	}
	if s.SliceUpper != nil && s.SliceUpper.Kind == object.KindInt {
		stop = clampSliceIndex(int(s.SliceUpper.Int), length, step > 0)
	}
	return start, stop, step, nil
}

var errSliceStepZero = sliceStepZeroError{}

type sliceStepZeroError struct{}

func (sliceStepZeroError) Error() string { return "slice step cannot be zero" }

func clampSliceIndex(i, length int, forward bool) int {
	if i < 0 {
		i += length
	}
	if forward {
		if i < 0 {
			return 0
		}
		if i > length {
			return length
		}
		return i
	}
	if i < -1 {
		return -1
	}
	if i >= length {
		return length - 1
	}
	return i
}

func sliceIndices(start, stop, step int) []int {
	var idxs []int
	if step > 0 {
		for i := start; i < stop; i += step {
			idxs = append(idxs, i)
		}
	} else {
		for i := start; i > stop; i += step {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func sliceObjects(items []*object.Object, start, stop, step int) []*object.Object {
	idxs := sliceIndices(start, stop, step)
	out := make([]*object.Object, len(idxs))
	for j, i := range idxs {
		out[j] = items[i]
	}
	return out
}

func sliceRunes(runes []rune, start, stop, step int) []rune {
	idxs := sliceIndices(start, stop, step)
	out := make([]rune, len(idxs))
	for j, i := range idxs {
		out[j] = runes[i]
	}
	return out
}
