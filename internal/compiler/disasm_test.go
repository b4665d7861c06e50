package compiler

import (
	"strings"
	"testing"
)

func TestDisassembleIncludesConstantsAndNestedProtos(t *testing.T) {
	chunk := mustCompile(t, "def greet(name):\n    return \"hi \" + name\ngreet(\"a\")\n")
	out := DisassembleToString(chunk)

	for _, want := range []string{"== <module> ==", "== greet ==", "MAKE_CLOSURE", "'hi '"} {
		if !strings.Contains(out, want) {
			t.Fatalf("disassembly missing %q:\n%s", want, out)
		}
	}
}

func TestDisassembleAnnotatesJumpTargets(t *testing.T) {
	chunk := mustCompile(t, "if x:\n    y = 1\n")
	out := DisassembleToString(chunk)
	if !strings.Contains(out, "->") {
		t.Fatalf("expected a jump target arrow in disassembly:\n%s", out)
	}
}
