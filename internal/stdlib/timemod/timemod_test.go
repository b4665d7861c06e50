package timemod

import (
	"testing"
	"time"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.New(vm.Config{})
}

func moduleFn(t *testing.T, v *vm.VM, name string) *object.Object {
	t.Helper()
	mod, err := Loader(v, "time")
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	fn, ok := mod.Attrs.Get(name)
	if !ok {
		t.Fatalf("time module has no %q", name)
	}
	return fn
}

func call(t *testing.T, v *vm.VM, fn *object.Object, args ...*object.Object) *object.Object {
	t.Helper()
	result, err := v.Call(fn, args, nil)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	return result
}

func TestTimeReturnsCurrentUnixSeconds(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "time")
	before := float64(time.Now().Unix())
	got := call(t, v, fn)
	after := float64(time.Now().Unix())
	if got.Kind != object.KindFloat || got.Float < before-1 || got.Float > after+1 {
		t.Errorf("time() = %v, want something near [%v, %v]", got.Float, before, after)
	}
}

func TestTimeRejectsArguments(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "time")
	if _, err := v.Call(fn, []*object.Object{v.NewInt(1)}, nil); err == nil {
		t.Error("expected a TypeError for time.time() with an argument, got nil")
	}
}

func TestSleepAcceptsIntOrFloatAndActuallyWaits(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "sleep")
	start := time.Now()
	call(t, v, fn, v.NewFloat(0.01))
	if time.Since(start) < 5*time.Millisecond {
		t.Error("sleep(0.01) returned suspiciously fast")
	}
	call(t, v, fn, v.NewInt(0))
}

func TestSleepRejectsNonNumber(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "sleep")
	if _, err := v.Call(fn, []*object.Object{v.NewString("1")}, nil); err == nil {
		t.Error("expected a TypeError for a string argument to sleep(), got nil")
	}
}

func TestMonotonicIsNondecreasing(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "monotonic")
	first := call(t, v, fn)
	second := call(t, v, fn)
	if second.Float < first.Float {
		t.Errorf("monotonic() went backwards: %v then %v", first.Float, second.Float)
	}
}

func TestStrftimeFormatsWithGoLayout(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "strftime")
	got := call(t, v, fn, v.NewString("2006"))
	want := time.Now().Format("2006")
	if got.Str != want {
		t.Errorf("strftime(\"2006\") = %q, want %q", got.Str, want)
	}
}

func TestStrftimeRejectsNonStringFormat(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "strftime")
	if _, err := v.Call(fn, []*object.Object{v.NewInt(1)}, nil); err == nil {
		t.Error("expected a TypeError for a non-string format argument, got nil")
	}
}
