package randmod

import (
	"testing"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.New(vm.Config{})
}

func moduleFn(t *testing.T, v *vm.VM, name string) *object.Object {
	t.Helper()
	mod, err := Loader(v, "random")
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	fn, ok := mod.Attrs.Get(name)
	if !ok {
		t.Fatalf("random module has no %q", name)
	}
	return fn
}

func TestRandomRange(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "random")
	for i := 0; i < 100; i++ {
		got, err := v.Call(fn, nil, nil)
		if err != nil {
			t.Fatalf("random() error = %v", err)
		}
		if got.Float < 0 || got.Float >= 1 {
			t.Fatalf("random() = %v, want in [0, 1)", got.Float)
		}
	}
}

func TestRandintBounds(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "randint")
	for i := 0; i < 50; i++ {
		got, err := v.Call(fn, []*object.Object{v.NewInt(5), v.NewInt(5)}, nil)
		if err != nil {
			t.Fatalf("randint() error = %v", err)
		}
		if got.Int != 5 {
			t.Fatalf("randint(5, 5) = %d, want 5", got.Int)
		}
	}
}

func TestRandintRejectsInvertedBounds(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "randint")
	if _, err := v.Call(fn, []*object.Object{v.NewInt(10), v.NewInt(1)}, nil); err == nil {
		t.Error("expected a ValueError for hi < lo, got nil")
	}
}

func TestChoiceFromEmptySequence(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "choice")
	if _, err := v.Call(fn, []*object.Object{v.NewList(nil)}, nil); err == nil {
		t.Error("expected an IndexError for an empty sequence, got nil")
	}
}

func TestChoicePicksAMember(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "choice")
	items := []*object.Object{v.NewInt(1), v.NewInt(2), v.NewInt(3)}
	got, err := v.Call(fn, []*object.Object{v.NewList(items)}, nil)
	if err != nil {
		t.Fatalf("choice() error = %v", err)
	}
	if got.Int < 1 || got.Int > 3 {
		t.Fatalf("choice() = %d, want one of 1,2,3", got.Int)
	}
}

func TestShuffleKeepsAllElements(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "shuffle")
	list := v.NewList([]*object.Object{v.NewInt(1), v.NewInt(2), v.NewInt(3)})
	if _, err := v.Call(fn, []*object.Object{list}, nil); err != nil {
		t.Fatalf("shuffle() error = %v", err)
	}
	sum := int64(0)
	for _, it := range list.Items {
		sum += it.Int
	}
	if sum != 6 {
		t.Fatalf("shuffle() changed the element set, sum = %d, want 6", sum)
	}
}
