package compiler

import "testing"

func TestSerializeRoundTrip(t *testing.T) {
	chunk := mustCompile(t, "def add(a, b=1):\n    return a + b\nx = add(2)\n")

	data, err := SerializeChunk(chunk)
	if err != nil {
		t.Fatalf("SerializeChunk: %v", err)
	}

	got, err := DeserializeChunk(data)
	if err != nil {
		t.Fatalf("DeserializeChunk: %v", err)
	}

	if got.Name != chunk.Name || got.SourceFile != chunk.SourceFile {
		t.Fatalf("chunk identity mismatch: got %+v", got)
	}
	if len(got.Code) != len(chunk.Code) {
		t.Fatalf("code length = %d, want %d", len(got.Code), len(chunk.Code))
	}
	for i := range chunk.Code {
		if got.Code[i] != chunk.Code[i] {
			t.Fatalf("instruction %d = %+v, want %+v", i, got.Code[i], chunk.Code[i])
		}
	}
	if len(got.FuncProtos) != len(chunk.FuncProtos) {
		t.Fatalf("FuncProtos length = %d, want %d", len(got.FuncProtos), len(chunk.FuncProtos))
	}
	if got.FuncProtos[0].Name != chunk.FuncProtos[0].Name {
		t.Fatalf("proto name = %q, want %q", got.FuncProtos[0].Name, chunk.FuncProtos[0].Name)
	}
	if got.FuncProtos[0].NumDefaults != chunk.FuncProtos[0].NumDefaults {
		t.Fatalf("proto NumDefaults = %d, want %d", got.FuncProtos[0].NumDefaults, chunk.FuncProtos[0].NumDefaults)
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	_, err := DeserializeChunk([]byte("not a wingsc file"))
	if err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestDeserializeRejectsNewerMajorVersion(t *testing.T) {
	chunk := mustCompile(t, "x = 1\n")
	data, err := SerializeChunk(chunk)
	if err != nil {
		t.Fatalf("SerializeChunk: %v", err)
	}
	data[4] = VersionMajor + 1 // corrupt the major version byte
	if _, err := DeserializeChunk(data); err == nil {
		t.Fatal("expected incompatible version error")
	}
}
