package wings

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/wings-lang/wings/internal/compiler"
)

// LoadChunkFile memory-maps a precompiled `.wingsc` file (written by
// Function.Serialize, compiler.SerializeChunk, or `wings compile`) and
// deserializes it directly from the mapping, avoiding a full read of
// files too large to comfortably copy into a []byte up front.
func (e *Engine) LoadChunkFile(path string) (*Function, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wings: %w", err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("wings: mmap %s: %w", path, err)
	}
	defer m.Unmap()

	chunk, err := compiler.DeserializeChunk([]byte(m))
	if err != nil {
		return nil, fmt.Errorf("wings: %w", err)
	}
	return &Function{engine: e, chunk: chunk, name: chunk.Name}, nil
}
