package wings

import "github.com/wings-lang/wings/internal/compiler"

// Function is a compiled-but-not-yet-run script body, returned by
// Engine.Compile so an embedder can parse/compile once and execute
// many times (skipping the lex/parse/compile cost on every run), or
// precompile and persist via Serialize/LoadChunkFile.
type Function struct {
	engine *Engine
	chunk  *compiler.Chunk
	name   string
}

// Name returns the synthetic module name this Function runs under.
func (f *Function) Name() string { return f.name }

// Run executes the compiled body as a fresh module and returns its
// implicit final value, the same semantics Engine.Eval gives a freshly
// parsed source string.
func (f *Function) Run() (Value, error) {
	result, err := f.engine.vm.Run(f.chunk, f.name)
	if err != nil {
		return Value{}, f.engine.wrapError(err)
	}
	return newValue(f.engine, result), nil
}

// Serialize encodes the compiled chunk as a `.wingsc` binary blob
// (compiler.SerializeChunk's format), for writing to disk and later
// reloading via LoadChunkFile without re-parsing the source.
func (f *Function) Serialize() ([]byte, error) {
	return compiler.SerializeChunk(f.chunk)
}

// Disassemble renders the compiled chunk's bytecode listing, the same
// format `wings disasm` prints, for an embedder that wants to inspect a
// Function without shelling out to the CLI.
func (f *Function) Disassemble() string {
	return compiler.DisassembleToString(f.chunk)
}
