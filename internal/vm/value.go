package vm

import "github.com/wings-lang/wings/internal/object"

func (vm *VM) newInt(v int64) *object.Object {
	o := vm.heap.New(object.KindInt)
	o.Int = v
	return o
}

func (vm *VM) newFloat(v float64) *object.Object {
	o := vm.heap.New(object.KindFloat)
	o.Float = v
	return o
}

func (vm *VM) newString(v string) *object.Object {
	o := vm.heap.New(object.KindString)
	o.Str = v
	return o
}

func (vm *VM) newBool(v bool) *object.Object {
	if v {
		return vm.trueObj
	}
	return vm.falseObj
}

func (vm *VM) newTuple(items []*object.Object) *object.Object {
	o := vm.heap.New(object.KindTuple)
	o.Items = append([]*object.Object(nil), items...)
	return o
}

func (vm *VM) newList(items []*object.Object) *object.Object {
	o := vm.heap.New(object.KindList)
	o.Items = append([]*object.Object(nil), items...)
	return o
}

func (vm *VM) newDict() *object.Object {
	o := vm.heap.New(object.KindDict)
	o.Dict = object.NewDict()
	return o
}

func (vm *VM) newSet() *object.Object {
	o := vm.heap.New(object.KindSet)
	o.Set = object.NewSet()
	return o
}

// HashEq is the object.HashEq implementation every Dict/Set operation in
// this VM uses: it checks for a user-defined __hash__/__eq__ before
// falling back to object.DefaultHash/object.DefaultEqual (dict.go's doc
// comment describes exactly this split of responsibility).
type hashEq struct{ vm *VM }

func (vm *VM) hashEq() object.HashEq { return hashEq{vm: vm} }

func (h hashEq) Hash(key *object.Object) (uint64, error) {
	if key.Kind == object.KindInstance {
		if m, ok := lookupMethod(key, "__hash__"); ok {
			res, err := h.vm.callValue(m, nil, nil)
			if err != nil {
				return 0, err
			}
			if res.Kind != object.KindInt {
				return 0, h.vm.raisef("TypeError", "__hash__ must return int")
			}
			return uint64(res.Int), nil
		}
	}
	v, err := object.DefaultHash(key)
	if err != nil {
		return 0, h.vm.raisef("TypeError", "unhashable type: %s", key.TypeTag())
	}
	return v, nil
}

func (h hashEq) Equal(a, b *object.Object) (bool, error) {
	if a.Kind == object.KindInstance {
		if m, ok := lookupMethod(a, "__eq__"); ok {
			res, err := h.vm.callValue(m, []*object.Object{b}, nil)
			if err != nil {
				return false, err
			}
			return res.IsTruthy(), nil
		}
	}
	return object.DefaultEqual(a, b), nil
}
