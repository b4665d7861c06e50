package vm

import (
	"math"
	"strings"

	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/object"
)

// binaryDunder maps every arithmetic/bitwise opcode to the dunder
// method the operator dispatches as a.__dunder__(b) on instance
// operands.
var binaryDunder = map[compiler.OpCode]string{
	compiler.OpAdd:      "__add__",
	compiler.OpSub:      "__sub__",
	compiler.OpMul:      "__mul__",
	compiler.OpDiv:      "__truediv__",
	compiler.OpFloorDiv: "__floordiv__",
	compiler.OpMod:      "__mod__",
	compiler.OpPow:      "__pow__",
	compiler.OpLShift:   "__lshift__",
	compiler.OpRShift:   "__rshift__",
	compiler.OpBitAnd:   "__and__",
	compiler.OpBitOr:    "__or__",
	compiler.OpBitXor:   "__xor__",
}

// binaryOpCodeForTag maps an operator's written form back to its opcode,
// the embedder-facing mirror of the compiler's own operator lowering.
func binaryOpCodeForTag(tag string) compiler.OpCode {
	switch tag {
	case "+":
		return compiler.OpAdd
	case "-":
		return compiler.OpSub
	case "*":
		return compiler.OpMul
	case "/":
		return compiler.OpDiv
	case "//":
		return compiler.OpFloorDiv
	case "%":
		return compiler.OpMod
	case "**":
		return compiler.OpPow
	case "<<":
		return compiler.OpLShift
	case ">>":
		return compiler.OpRShift
	case "&":
		return compiler.OpBitAnd
	case "|":
		return compiler.OpBitOr
	case "^":
		return compiler.OpBitXor
	}
	return compiler.OpNop
}

var compareDunder = map[compiler.OpCode]string{
	compiler.OpCmpEq: "__eq__",
	compiler.OpCmpNe: "__ne__",
	compiler.OpCmpLt: "__lt__",
	compiler.OpCmpLe: "__le__",
	compiler.OpCmpGt: "__gt__",
	compiler.OpCmpGe: "__ge__",
}

// execBinary pops two operands and pushes the result of applying op,
// dispatching to a user class's dunder method when the left operand is an
// instance, and to native numeric/string/sequence semantics otherwise
// (no reflected dunder is tried for an instance on the right).
func (vm *VM) execBinary(op compiler.OpCode) error {
	b := vm.pop()
	a := vm.pop()

	if a.Kind == object.KindInstance {
		if m, ok := lookupMethod(a, binaryDunder[op]); ok {
			res, err := vm.callValue(m, []*object.Object{b}, nil)
			if err != nil {
				return err
			}
			vm.push(res)
			return nil
		}
	}

	res, err := vm.nativeBinary(op, a, b)
	if err != nil {
		return err
	}
	vm.push(res)
	return nil
}

func (vm *VM) nativeBinary(op compiler.OpCode, a, b *object.Object) (*object.Object, error) {
	switch op {
	case compiler.OpAdd:
		return vm.doAdd(a, b)
	case compiler.OpSub:
		return vm.arith(a, b, "-", func(x, y int64) (int64, error) { return x - y, nil }, func(x, y float64) float64 { return x - y })
	case compiler.OpMul:
		return vm.doMul(a, b)
	case compiler.OpDiv:
		return vm.doTrueDiv(a, b)
	case compiler.OpFloorDiv:
		return vm.doFloorDiv(a, b)
	case compiler.OpMod:
		return vm.doMod(a, b)
	case compiler.OpPow:
		return vm.doPow(a, b)
	case compiler.OpLShift:
		return vm.intOp(a, b, "<<", func(x, y int64) (int64, error) { return x << uint64(y), nil })
	case compiler.OpRShift:
		return vm.intOp(a, b, ">>", func(x, y int64) (int64, error) { return x >> uint64(y), nil })
	case compiler.OpBitAnd:
		return vm.intOp(a, b, "&", func(x, y int64) (int64, error) { return x & y, nil })
	case compiler.OpBitOr:
		return vm.intOp(a, b, "|", func(x, y int64) (int64, error) { return x | y, nil })
	case compiler.OpBitXor:
		return vm.intOp(a, b, "^", func(x, y int64) (int64, error) { return x ^ y, nil })
	}
	return nil, runtimeErrorf("unhandled binary op %v", op)
}

func isNumeric(o *object.Object) bool {
	return o.Kind == object.KindInt || o.Kind == object.KindFloat || o.Kind == object.KindBool
}

func asFloat(o *object.Object) float64 {
	switch o.Kind {
	case object.KindInt:
		return float64(o.Int)
	case object.KindBool:
		if o.Bool {
			return 1
		}
		return 0
	default:
		return o.Float
	}
}

func asInt(o *object.Object) int64 {
	switch o.Kind {
	case object.KindInt:
		return o.Int
	case object.KindBool:
		if o.Bool {
			return 1
		}
		return 0
	default:
		return int64(o.Float)
	}
}

func (vm *VM) doAdd(a, b *object.Object) (*object.Object, error) {
	switch {
	case a.Kind == object.KindString && b.Kind == object.KindString:
		return vm.newString(a.Str + b.Str), nil
	case a.Kind == object.KindList && b.Kind == object.KindList:
		out := append(append([]*object.Object(nil), a.Items...), b.Items...)
		return vm.newList(out), nil
	case a.Kind == object.KindTuple && b.Kind == object.KindTuple:
		out := append(append([]*object.Object(nil), a.Items...), b.Items...)
		return vm.newTuple(out), nil
	case isNumeric(a) && isNumeric(b):
		return vm.arithResult(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y }), nil
	}
	return nil, vm.raisef("TypeError", "unsupported operand type(s) for +: %s and %s", a.TypeTag(), b.TypeTag())
}

func (vm *VM) doMul(a, b *object.Object) (*object.Object, error) {
	switch {
	case a.Kind == object.KindString && isRepeatCount(b):
		return vm.newString(strings.Repeat(a.Str, int(asInt(b)))), nil
	case b.Kind == object.KindString && isRepeatCount(a):
		return vm.newString(strings.Repeat(b.Str, int(asInt(a)))), nil
	case a.Kind == object.KindList && isRepeatCount(b):
		return vm.newList(repeatItems(a.Items, int(asInt(b)))), nil
	case b.Kind == object.KindList && isRepeatCount(a):
		return vm.newList(repeatItems(b.Items, int(asInt(a)))), nil
	case isNumeric(a) && isNumeric(b):
		return vm.arithResult(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }), nil
	}
	return nil, vm.raisef("TypeError", "unsupported operand type(s) for *: %s and %s", a.TypeTag(), b.TypeTag())
}

func isRepeatCount(o *object.Object) bool { return o.Kind == object.KindInt }

func repeatItems(items []*object.Object, n int) []*object.Object {
	if n <= 0 {
		return nil
	}
	out := make([]*object.Object, 0, len(items)*n)
	for i := 0; i < n; i++ {
		out = append(out, items...)
	}
	return out
}

func (vm *VM) arith(a, b *object.Object, sym string, intFn func(x, y int64) (int64, error), floatFn func(x, y float64) float64) (*object.Object, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, vm.raisef("TypeError", "unsupported operand type(s) for %s: %s and %s", sym, a.TypeTag(), b.TypeTag())
	}
	return vm.arithResult(a, b, func(x, y int64) int64 { r, _ := intFn(x, y); return r }, floatFn), nil
}

func (vm *VM) arithResult(a, b *object.Object, intFn func(x, y int64) int64, floatFn func(x, y float64) float64) *object.Object {
	if a.Kind == object.KindFloat || b.Kind == object.KindFloat {
		return vm.newFloat(floatFn(asFloat(a), asFloat(b)))
	}
	return vm.newInt(intFn(asInt(a), asInt(b)))
}

func (vm *VM) intOp(a, b *object.Object, sym string, fn func(x, y int64) (int64, error)) (*object.Object, error) {
	if a.Kind != object.KindInt && a.Kind != object.KindBool {
		return nil, vm.raisef("TypeError", "unsupported operand type(s) for %s: %s and %s", sym, a.TypeTag(), b.TypeTag())
	}
	if b.Kind != object.KindInt && b.Kind != object.KindBool {
		return nil, vm.raisef("TypeError", "unsupported operand type(s) for %s: %s and %s", sym, a.TypeTag(), b.TypeTag())
	}
	r, err := fn(asInt(a), asInt(b))
	if err != nil {
		return nil, vm.raisef("ValueError", "%v", err)
	}
	return vm.newInt(r), nil
}

func (vm *VM) doTrueDiv(a, b *object.Object) (*object.Object, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, vm.raisef("TypeError", "unsupported operand type(s) for /: %s and %s", a.TypeTag(), b.TypeTag())
	}
	if asFloat(b) == 0 {
		return nil, vm.raisef("ZeroDivisionError", "division by zero")
	}
	return vm.newFloat(asFloat(a) / asFloat(b)), nil
}

// doFloorDiv implements floored integer/float division: `a == (a // b) * b
// + (a % b)` with the remainder taking the sign of the divisor.
func (vm *VM) doFloorDiv(a, b *object.Object) (*object.Object, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, vm.raisef("TypeError", "unsupported operand type(s) for //: %s and %s", a.TypeTag(), b.TypeTag())
	}
	if a.Kind == object.KindFloat || b.Kind == object.KindFloat {
		if asFloat(b) == 0 {
			return nil, vm.raisef("ZeroDivisionError", "float floor division by zero")
		}
		return vm.newFloat(math.Floor(asFloat(a) / asFloat(b))), nil
	}
	y := asInt(b)
	if y == 0 {
		return nil, vm.raisef("ZeroDivisionError", "integer division or modulo by zero")
	}
	x := asInt(a)
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return vm.newInt(q), nil
}

func (vm *VM) doMod(a, b *object.Object) (*object.Object, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, vm.raisef("TypeError", "unsupported operand type(s) for %%: %s and %s", a.TypeTag(), b.TypeTag())
	}
	if a.Kind == object.KindFloat || b.Kind == object.KindFloat {
		y := asFloat(b)
		if y == 0 {
			return nil, vm.raisef("ZeroDivisionError", "float modulo")
		}
		r := math.Mod(asFloat(a), y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return vm.newFloat(r), nil
	}
	y := asInt(b)
	if y == 0 {
		return nil, vm.raisef("ZeroDivisionError", "integer division or modulo by zero")
	}
	x := asInt(a)
	r := x % y
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return vm.newInt(r), nil
}

// doPow: integer ** with a
// non-negative integer exponent stays int; a negative exponent or any
// float operand promotes to float.
func (vm *VM) doPow(a, b *object.Object) (*object.Object, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, vm.raisef("TypeError", "unsupported operand type(s) for **: %s and %s", a.TypeTag(), b.TypeTag())
	}
	if a.Kind != object.KindFloat && b.Kind != object.KindFloat && asInt(b) >= 0 {
		base, exp := asInt(a), asInt(b)
		result := int64(1)
		for i := int64(0); i < exp; i++ {
			result *= base
		}
		return vm.newInt(result), nil
	}
	return vm.newFloat(math.Pow(asFloat(a), asFloat(b))), nil
}

// execUnary implements -, +, ~, not.
func (vm *VM) execUnary(op compiler.OpCode) error {
	a := vm.pop()

	if a.Kind == object.KindInstance && op != compiler.OpNot {
		name := map[compiler.OpCode]string{compiler.OpNeg: "__neg__", compiler.OpPos: "__pos__", compiler.OpInvert: "__invert__"}[op]
		if m, ok := lookupMethod(a, name); ok {
			res, err := vm.callValue(m, nil, nil)
			if err != nil {
				return err
			}
			vm.push(res)
			return nil
		}
	}

	switch op {
	case compiler.OpNot:
		truthy, err := vm.isTruthy(a)
		if err != nil {
			return err
		}
		vm.push(vm.newBool(!truthy))
		return nil
	case compiler.OpPos:
		if !isNumeric(a) {
			return vm.raisef("TypeError", "bad operand type for unary +: %s", a.TypeTag())
		}
		vm.push(a)
		return nil
	case compiler.OpNeg:
		if !isNumeric(a) {
			return vm.raisef("TypeError", "bad operand type for unary -: %s", a.TypeTag())
		}
		if a.Kind == object.KindFloat {
			vm.push(vm.newFloat(-a.Float))
		} else {
			vm.push(vm.newInt(-asInt(a)))
		}
		return nil
	case compiler.OpInvert:
		if a.Kind != object.KindInt && a.Kind != object.KindBool {
			return vm.raisef("TypeError", "bad operand type for unary ~: %s", a.TypeTag())
		}
		vm.push(vm.newInt(^asInt(a)))
		return nil
	}
	return runtimeErrorf("unhandled unary op %v", op)
}

// isTruthy honors a user class's __bool__/__len__ override before falling
// back to object.IsTruthy's builtin rule.
func (vm *VM) isTruthy(o *object.Object) (bool, error) {
	if o.Kind == object.KindInstance {
		if m, ok := lookupMethod(o, "__bool__"); ok {
			res, err := vm.callValue(m, nil, nil)
			if err != nil {
				return false, err
			}
			return res.IsTruthy(), nil
		}
		if m, ok := lookupMethod(o, "__len__"); ok {
			res, err := vm.callValue(m, nil, nil)
			if err != nil {
				return false, err
			}
			return res.Kind == object.KindInt && res.Int != 0, nil
		}
		return true, nil
	}
	return o.IsTruthy(), nil
}

// execCompare implements ==, !=, <, <=, >, >=, in, not in, is, is not.
func (vm *VM) execCompare(op compiler.OpCode) error {
	b := vm.pop()
	a := vm.pop()

	switch op {
	case compiler.OpCmpIs:
		vm.push(vm.newBool(a == b))
		return nil
	case compiler.OpCmpIsNot:
		vm.push(vm.newBool(a != b))
		return nil
	case compiler.OpCmpIn, compiler.OpCmpNotIn:
		found, err := vm.contains(b, a)
		if err != nil {
			return err
		}
		if op == compiler.OpCmpNotIn {
			found = !found
		}
		vm.push(vm.newBool(found))
		return nil
	}

	if a.Kind == object.KindInstance {
		if dunder, ok := compareDunder[op]; ok {
			if m, ok := lookupMethod(a, dunder); ok {
				res, err := vm.callValue(m, []*object.Object{b}, nil)
				if err != nil {
					return err
				}
				if res.Kind != object.KindBool {
					return vm.raisef("TypeError", "%s must return bool", dunder)
				}
				vm.push(res)
				return nil
			}
		}
	}

	res, err := vm.nativeCompare(op, a, b)
	if err != nil {
		return err
	}
	vm.push(vm.newBool(res))
	return nil
}

func (vm *VM) nativeCompare(op compiler.OpCode, a, b *object.Object) (bool, error) {
	if op == compiler.OpCmpEq {
		eq, err := vm.hashEq().Equal(a, b)
		return eq, err
	}
	if op == compiler.OpCmpNe {
		eq, err := vm.hashEq().Equal(a, b)
		return !eq, err
	}

	cmp, err := vm.compareOrdered(a, b)
	if err != nil {
		return false, err
	}
	switch op {
	case compiler.OpCmpLt:
		return cmp < 0, nil
	case compiler.OpCmpLe:
		return cmp <= 0, nil
	case compiler.OpCmpGt:
		return cmp > 0, nil
	case compiler.OpCmpGe:
		return cmp >= 0, nil
	}
	return false, runtimeErrorf("unhandled comparison op %v", op)
}

// compareOrdered returns -1/0/1 for a<b/a==b/a>b across numerics, strings
// (byte-lexicographic), and tuples/lists (elementwise).
func (vm *VM) compareOrdered(a, b *object.Object) (int, error) {
	switch {
	case isNumeric(a) && isNumeric(b):
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	case a.Kind == object.KindString && b.Kind == object.KindString:
		return strings.Compare(a.Str, b.Str), nil
	case (a.Kind == object.KindList && b.Kind == object.KindList) || (a.Kind == object.KindTuple && b.Kind == object.KindTuple):
		for i := 0; i < len(a.Items) && i < len(b.Items); i++ {
			c, err := vm.compareOrdered(a.Items[i], b.Items[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		return len(a.Items) - len(b.Items), nil
	}
	return 0, vm.raisef("TypeError", "'<' not supported between instances of %q and %q", a.TypeTag(), b.TypeTag())
}

// contains implements `a in b` as `b.__contains__(a)` for instances, and a
// native membership test for builtin containers otherwise.
func (vm *VM) contains(container, item *object.Object) (bool, error) {
	if container.Kind == object.KindInstance {
		if m, ok := lookupMethod(container, "__contains__"); ok {
			res, err := vm.callValue(m, []*object.Object{item}, nil)
			if err != nil {
				return false, err
			}
			if res.Kind != object.KindBool {
				return false, vm.raisef("TypeError", "__contains__ must return bool")
			}
			return res.Bool, nil
		}
	}
	switch container.Kind {
	case object.KindList, object.KindTuple:
		for _, e := range container.Items {
			eq, err := vm.hashEq().Equal(e, item)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	case object.KindString:
		if item.Kind != object.KindString {
			return false, vm.raisef("TypeError", "'in <string>' requires string as left operand, not %s", item.TypeTag())
		}
		return strings.Contains(container.Str, item.Str), nil
	case object.KindDict:
		_, ok, err := container.Dict.Get(vm.hashEq(), item)
		return ok, err
	case object.KindSet:
		return container.Set.Contains(vm.hashEq(), item)
	}
	return false, vm.raisef("TypeError", "argument of type %q is not iterable", container.TypeTag())
}
