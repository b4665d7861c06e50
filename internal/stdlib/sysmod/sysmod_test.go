package sysmod

import (
	"bytes"
	"os"
	"testing"

	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.New(vm.Config{})
}

func TestArgvMirrorsGivenArgumentVector(t *testing.T) {
	v := newTestVM(t)
	mod, err := Loader(v, "sys", []string{"script.wings", "--flag"})
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	argv, ok := mod.Attrs.Get("argv")
	if !ok || argv.Kind != object.KindList || len(argv.Items) != 2 {
		t.Fatalf("sys.argv = %+v, want a 2-element list", argv)
	}
	if argv.Items[0].Str != "script.wings" || argv.Items[1].Str != "--flag" {
		t.Errorf("sys.argv = %v, want [\"script.wings\", \"--flag\"]", argv.Items)
	}
}

func TestVersionIsNonEmptyString(t *testing.T) {
	v := newTestVM(t)
	mod, err := Loader(v, "sys", nil)
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	version, ok := mod.Attrs.Get("version")
	if !ok || version.Kind != object.KindString || version.Str == "" {
		t.Fatalf("sys.version = %+v, want a non-empty string", version)
	}
}

func TestStdoutWriteWritesExactBytes(t *testing.T) {
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	v := newTestVM(t)
	mod, err := Loader(v, "sys", nil)
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	fn, ok := mod.Attrs.Get("stdout_write")
	if !ok {
		t.Fatal("sys module has no stdout_write")
	}
	if _, err := v.Call(fn, []*object.Object{v.NewString("hello\n")}, nil); err != nil {
		t.Fatalf("stdout_write() error = %v", err)
	}
	w.Close()

	var buf bytes.Buffer
	buf.ReadFrom(r)
	if buf.String() != "hello\n" {
		t.Errorf("captured stdout = %q, want \"hello\\n\"", buf.String())
	}
}

func TestStdoutWriteRejectsNonString(t *testing.T) {
	v := newTestVM(t)
	mod, err := Loader(v, "sys", nil)
	if err != nil {
		t.Fatalf("Loader() error = %v", err)
	}
	fn, _ := mod.Attrs.Get("stdout_write")
	if _, err := v.Call(fn, []*object.Object{v.NewInt(1)}, nil); err == nil {
		t.Error("expected a TypeError for a non-string argument, got nil")
	}
}
