package osmod

import (
	"os"
	"path/filepath"
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
	mod, err := Loader(v, "os")
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	fn, ok := mod.Attrs.Get(name)
	if !ok {
		t.Fatalf("os module has no %q", name)
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

func TestGetenvReturnsSetValue(t *testing.T) {
	v := newTestVM(t)
	os.Setenv("WINGS_OSMOD_TEST", "hello")
	defer os.Unsetenv("WINGS_OSMOD_TEST")

	fn := moduleFn(t, v, "getenv")
	got := call(t, v, fn, v.NewString("WINGS_OSMOD_TEST"))
	if got.Kind != object.KindString || got.Str != "hello" {
		t.Errorf("getenv() = %+v, want string \"hello\"", got)
	}
}

func TestGetenvMissingReturnsNoneWithoutDefault(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "getenv")
	got := call(t, v, fn, v.NewString("WINGS_OSMOD_DEFINITELY_UNSET"))
	if got.Kind != object.KindNone {
		t.Errorf("getenv(missing) = %+v, want None", got)
	}
}

func TestGetenvMissingReturnsGivenDefault(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "getenv")
	got := call(t, v, fn, v.NewString("WINGS_OSMOD_DEFINITELY_UNSET"), v.NewString("fallback"))
	if got.Kind != object.KindString || got.Str != "fallback" {
		t.Errorf("getenv(missing, default) = %+v, want \"fallback\"", got)
	}
}

func TestGetcwdRejectsArguments(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "getcwd")
	if _, err := v.Call(fn, []*object.Object{v.NewString("x")}, nil); err == nil {
		t.Error("expected a TypeError for getcwd() with an argument, got nil")
	}
}

func TestMkdirThenListdirThenRemove(t *testing.T) {
	v := newTestVM(t)
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	mkdir := moduleFn(t, v, "mkdir")
	call(t, v, mkdir, v.NewString(dir))

	touched := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(touched, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	listdir := moduleFn(t, v, "listdir")
	got := call(t, v, listdir, v.NewString(dir))
	if got.Kind != object.KindList || len(got.Items) != 1 || got.Items[0].Str != "f.txt" {
		t.Errorf("listdir(%q) = %+v, want a single-entry list [\"f.txt\"]", dir, got)
	}

	remove := moduleFn(t, v, "remove")
	call(t, v, remove, v.NewString(touched))
	if _, err := os.Stat(touched); !os.IsNotExist(err) {
		t.Errorf("file %q still exists after os.remove()", touched)
	}
}

func TestRemoveNonexistentRaisesOSError(t *testing.T) {
	v := newTestVM(t)
	fn := moduleFn(t, v, "remove")
	_, err := v.Call(fn, []*object.Object{v.NewString(filepath.Join(t.TempDir(), "nope"))}, nil)
	if err == nil {
		t.Fatal("expected an OSError removing a nonexistent path, got nil")
	}
}

func TestEnvironMirrorsProcessEnvironment(t *testing.T) {
	v := newTestVM(t)
	os.Setenv("WINGS_OSMOD_ENVIRON_TEST", "present")
	defer os.Unsetenv("WINGS_OSMOD_ENVIRON_TEST")

	mod, err := Loader(v, "os")
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	environ, ok := mod.Attrs.Get("environ")
	if !ok || environ.Kind != object.KindDict {
		t.Fatalf("os.environ = %+v, want a dict", environ)
	}
	val, err := v.GetIndex(environ, v.NewString("WINGS_OSMOD_ENVIRON_TEST"))
	if err != nil {
		t.Fatalf("GetIndex() error = %v", err)
	}
	if val.Str != "present" {
		t.Errorf("os.environ[\"WINGS_OSMOD_ENVIRON_TEST\"] = %+v, want \"present\"", val)
	}
}
