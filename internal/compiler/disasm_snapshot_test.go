package compiler

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// Golden-file coverage for the disassembly format itself (layout, column
// alignment, jump-target annotation), complementing disasm_test.go's
// substring assertions with a full-output snapshot.
func TestDisassembleSnapshot(t *testing.T) {
	chunk := mustCompile(t, "def add(a, b):\n    return a + b\n\nfor i in range(3):\n    print(add(i, 1))\n")
	snaps.MatchSnapshot(t, DisassembleToString(chunk))
}
