package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wings-lang/wings/internal/object"
)

// Disassembler renders a Chunk (and its nested FuncProtos) as human-readable
// bytecode text, for the `wings disasm` command and pkg/wings's
// Function.Disassemble.
type Disassembler struct {
	writer io.Writer
	chunk  *Chunk
}

func NewDisassembler(chunk *Chunk, writer io.Writer) *Disassembler {
	return &Disassembler{writer: writer, chunk: chunk}
}

// Disassemble prints the chunk's constant pool, handler table, and
// bytecode, then recurses into every nested FuncProto's own chunk.
func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.writer, "== %s ==\n", d.chunk.Name)

	if len(d.chunk.Consts) > 0 {
		fmt.Fprintf(d.writer, "Constants:\n")
		for i, k := range d.chunk.Consts {
			fmt.Fprintf(d.writer, "  [%04d] %s\n", i, k.TypeTag())
		}
	}
	fmt.Fprintf(d.writer, "Bytecode:\n")
	for offset := 0; offset < len(d.chunk.Code); offset++ {
		d.DisassembleInstruction(offset)
	}
	fmt.Fprintf(d.writer, "\n")

	for _, proto := range d.chunk.FuncProtos {
		sub := NewDisassembler(proto.Chunk, d.writer)
		sub.Disassemble()
	}
}

// DisassembleInstruction prints one instruction, annotating operands whose
// meaning depends on the opcode (constant/local/cell/capture/global index,
// jump target, func-proto index).
func (d *Disassembler) DisassembleInstruction(offset int) {
	inst := d.chunk.Code[offset]
	fmt.Fprintf(d.writer, "%04d %4d ", offset, inst.Pos.Line)

	switch inst.Op {
	case OpLoadConst:
		d.constOperand(inst)
	case OpLoadLocal, OpStoreLocal, OpDeleteLocal:
		d.nameless(inst, "local")
	case OpLoadCell, OpStoreCell, OpDeleteCell:
		d.nameless(inst, "cell")
	case OpLoadCapture, OpStoreCapture:
		d.nameless(inst, "capture")
	case OpLoadGlobal, OpStoreGlobal, OpDeleteGlobal:
		d.constOperand(inst)
	case OpLoadAttr, OpStoreAttr, OpDeleteAttr:
		d.constOperand(inst)
	case OpImportModule, OpImportFrom:
		d.constOperand(inst)
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfFalseOrPop, OpJumpIfTrueOrPop, OpPushTry:
		fmt.Fprintf(d.writer, "%-20s -> %04d\n", inst.String(), inst.A)
	case OpMakeClosure:
		name := "?"
		if int(inst.A) < len(d.chunk.FuncProtos) {
			name = d.chunk.FuncProtos[inst.A].Name
		}
		fmt.Fprintf(d.writer, "%-20s %4d '%s'\n", "MAKE_CLOSURE", inst.A, name)
	default:
		fmt.Fprintf(d.writer, "%s\n", inst.String())
	}
}

func (d *Disassembler) constOperand(inst Instruction) {
	idx := int(inst.A)
	repr := "?"
	if idx >= 0 && idx < len(d.chunk.Consts) {
		repr = constRepr(d.chunk.Consts[idx])
	}
	fmt.Fprintf(d.writer, "%-20s %4d '%s'\n", inst.String(), idx, repr)
}

func constRepr(o *object.Object) string {
	switch o.Kind {
	case object.KindString:
		return o.Str
	case object.KindInt:
		return strconv.FormatInt(o.Int, 10)
	case object.KindFloat:
		return strconv.FormatFloat(o.Float, 'g', -1, 64)
	case object.KindBool:
		return strconv.FormatBool(o.Bool)
	default:
		return o.TypeTag()
	}
}

func (d *Disassembler) nameless(inst Instruction, kind string) {
	fmt.Fprintf(d.writer, "%-20s %4d  ; %s\n", inst.String(), inst.A, kind)
}

// DisassembleToString returns chunk's full disassembly (including nested
// FuncProtos) as a string.
func DisassembleToString(chunk *Chunk) string {
	var sb strings.Builder
	NewDisassembler(chunk, &sb).Disassemble()
	return sb.String()
}
