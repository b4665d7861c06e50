package object

import (
	"errors"
	"hash/fnv"
	"math"
	"strconv"
)

// ErrUnhashable is returned by DefaultHash for the mutable container kinds
// that do not define __hash__; the VM surfaces it as a TypeError.
var ErrUnhashable = errors.New("unhashable type")

// DefaultHash computes the builtin hash for None/Bool/Int/Float/Str and
// Tuple-of-hashable; it returns ErrUnhashable for List/Dict/Set and for
// instances (internal/vm's HashEq implementation checks for a
// user-defined __hash__ before falling back here).
func DefaultHash(o *Object) (uint64, error) {
	h := fnv.New64a()
	switch o.Kind {
	case KindNone:
		h.Write([]byte{0})
	case KindBool:
		if o.Bool {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{2})
		}
	case KindInt:
		h.Write([]byte(strconv.FormatInt(o.Int, 10)))
	case KindFloat:
		// An int and an equal-valued float must hash the same so
		// `{1: "a"}[1.0]` finds the entry.
		if o.Float == math.Trunc(o.Float) {
			h.Write([]byte(strconv.FormatInt(int64(o.Float), 10)))
		} else {
			h.Write([]byte(strconv.FormatFloat(o.Float, 'g', -1, 64)))
		}
	case KindString:
		h.Write([]byte(o.Str))
	case KindTuple:
		for _, e := range o.Items {
			sub, err := DefaultHash(e)
			if err != nil {
				return 0, err
			}
			h.Write([]byte{byte(sub), byte(sub >> 8), byte(sub >> 16), byte(sub >> 24)})
		}
	default:
		return 0, ErrUnhashable
	}
	return h.Sum64(), nil
}

// DefaultEqual implements byte-sequence/value equality uniformly (the
// design notes resolve the source's pointer-comparison ambiguity this
// way): scalars compare by value, numeric kinds compare across
// int/float, strings by byte content, tuples elementwise, everything
// else by object identity.
func DefaultEqual(a, b *Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	an, aIsNum := numericValue(a)
	bn, bIsNum := numericValue(b)
	if aIsNum && bIsNum {
		return an == bn
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNone:
		return true
	case KindString:
		return a.Str == b.Str
	case KindTuple:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !DefaultEqual(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numericValue(o *Object) (float64, bool) {
	switch o.Kind {
	case KindBool:
		if o.Bool {
			return 1, true
		}
		return 0, true
	case KindInt:
		return float64(o.Int), true
	case KindFloat:
		return o.Float, true
	default:
		return 0, false
	}
}
