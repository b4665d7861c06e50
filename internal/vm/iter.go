package vm

import "github.com/wings-lang/wings/internal/object"

// newSeqIterator builds the iterator instance a for-loop's desugared
// `__iter__()`/`__next__()` calls drive over a point-in-time snapshot of
// items (used for list/tuple/str/range, whose contents don't need
// tombstone-aware revalidation the way Dict/Set do).
func (vm *VM) newSeqIterator(items []*object.Object) *object.Object {
	it := vm.heap.New(object.KindInstance)
	it.Attrs = object.NewAttrTable()
	// The snapshot must be reachable from the iterator itself, not just
	// from the Go closure below, or the collector could reclaim elements
	// mid-iteration once the source container is gone.
	it.Attrs.Set("_src", vm.newList(items))
	pos := 0
	it.Attrs.Set("__next__", vm.wrapNative("__next__", it, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		if pos >= len(items) {
			return nil, vm.raisef("StopIteration", "")
		}
		v := items[pos]
		pos++
		return v, nil
	}))
	it.Attrs.Set("__iter__", vm.wrapNative("__iter__", it, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		return self, nil
	}))
	return it
}

// newDictIterator wraps object.Dict's self-revalidating Iterator so a
// for-loop over a dict sees the same tombstone-safe semantics as any other
// direct caller of Dict.Iter(). Iterating a dict yields its keys.
func (vm *VM) newDictIterator(dictObj *object.Object) *object.Object {
	it := vm.heap.New(object.KindInstance)
	it.Attrs = object.NewAttrTable()
	it.Attrs.Set("_src", dictObj)
	cursor := dictObj.Dict.Iter()
	it.Attrs.Set("__next__", vm.wrapNative("__next__", it, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		k, _, ok := cursor.Next()
		if !ok {
			return nil, vm.raisef("StopIteration", "")
		}
		return k, nil
	}))
	it.Attrs.Set("__iter__", vm.wrapNative("__iter__", it, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		return self, nil
	}))
	return it
}

func (vm *VM) newSetIterator(setObj *object.Object) *object.Object {
	it := vm.heap.New(object.KindInstance)
	it.Attrs = object.NewAttrTable()
	it.Attrs.Set("_src", setObj)
	cursor := setObj.Set.Iter()
	it.Attrs.Set("__next__", vm.wrapNative("__next__", it, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		k, ok := cursor.Next()
		if !ok {
			return nil, vm.raisef("StopIteration", "")
		}
		return k, nil
	}))
	it.Attrs.Set("__iter__", vm.wrapNative("__iter__", it, func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		return self, nil
	}))
	return it
}

// newStringIterator yields one-character strings, the granularity `for c in s`
// iterates at.
func (vm *VM) newStringIterator(s string) *object.Object {
	runes := []rune(s)
	items := make([]*object.Object, len(runes))
	for i, r := range runes {
		items[i] = vm.newString(string(r))
	}
	return vm.newSeqIterator(items)
}
