package compiler

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/wings-lang/wings/internal/object"
)

// Bytecode file format (.wingsc)
// ===============================
//
// Header (8 bytes): magic "WNGC" (4 bytes), version major/minor/patch
// (1 byte each), reserved (1 byte).
//
// Body: one serialized Chunk (see SerializeChunk), recursing into nested
// FuncProtos depth-first. Only constant kinds a literal can produce
// (None, Bool, Int, Float, String) are representable; a chunk holding any
// other constant kind fails to serialize.

const (
	MagicNumber = "WNGC"

	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

type Version struct {
	Major, Minor, Patch uint8
}

func (v Version) String() string { return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch) }

func (v Version) IsCompatible(other Version) bool {
	if v.Major != other.Major {
		return false
	}
	return other.Minor <= v.Minor
}

func CurrentVersion() Version {
	return Version{Major: VersionMajor, Minor: VersionMinor, Patch: VersionPatch}
}

// SerializeChunk encodes chunk (and every FuncProto it reaches) into the
// .wingsc binary format mmap-backed loading later reads back without a
// full copy.
func SerializeChunk(chunk *Chunk) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeHeader(buf); err != nil {
		return nil, err
	}
	if err := writeChunk(buf, chunk); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeChunk decodes data (typically an mmap-ed file's byte slice)
// back into a *Chunk tree.
func DeserializeChunk(data []byte) (*Chunk, error) {
	r := bytes.NewReader(data)
	version, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !CurrentVersion().IsCompatible(version) {
		return nil, fmt.Errorf("incompatible bytecode version: have %s, file is %s", CurrentVersion(), version)
	}
	return readChunk(r)
}

func writeHeader(w io.Writer) error {
	if _, err := w.Write([]byte(MagicNumber)); err != nil {
		return err
	}
	v := CurrentVersion()
	return binary.Write(w, binary.LittleEndian, [4]uint8{v.Major, v.Minor, v.Patch, 0})
}

func readHeader(r io.Reader) (Version, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return Version{}, err
	}
	if string(magic) != MagicNumber {
		return Version{}, fmt.Errorf("bad magic number %q", magic)
	}
	var raw [4]uint8
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Version{}, err
	}
	return Version{Major: raw[0], Minor: raw[1], Patch: raw[2]}, nil
}

func writeChunk(w io.Writer, c *Chunk) error {
	if err := writeString(w, c.Name); err != nil {
		return err
	}
	if err := writeString(w, c.SourceFile); err != nil {
		return err
	}
	if err := writeConsts(w, c.Consts); err != nil {
		return err
	}
	if err := writeInstructions(w, c.Code); err != nil {
		return err
	}
	return writeFuncProtos(w, c.FuncProtos)
}

func readChunk(r io.Reader) (*Chunk, error) {
	c := &Chunk{}
	var err error
	if c.Name, err = readString(r); err != nil {
		return nil, err
	}
	if c.SourceFile, err = readString(r); err != nil {
		return nil, err
	}
	if c.Consts, err = readConsts(r); err != nil {
		return nil, err
	}
	if c.Code, err = readInstructions(r); err != nil {
		return nil, err
	}
	if c.FuncProtos, err = readFuncProtos(r); err != nil {
		return nil, err
	}
	return c, nil
}

func writeFuncProtos(w io.Writer, protos []*FuncProto) error {
	if err := writeUint32(w, uint32(len(protos))); err != nil {
		return err
	}
	for _, p := range protos {
		if err := writeFuncProto(w, p); err != nil {
			return err
		}
	}
	return nil
}

func readFuncProtos(r io.Reader) ([]*FuncProto, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	protos := make([]*FuncProto, n)
	for i := range protos {
		if protos[i], err = readFuncProto(r); err != nil {
			return nil, err
		}
	}
	return protos, nil
}

func writeFuncProto(w io.Writer, p *FuncProto) error {
	if err := writeString(w, p.Name); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(p.Params))); err != nil {
		return err
	}
	for _, param := range p.Params {
		if err := writeString(w, param.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(param.Kind)); err != nil {
			return err
		}
	}
	if err := writeInt32(w, int32(p.NumDefaults)); err != nil {
		return err
	}
	if err := writeString(w, p.VarArgsName); err != nil {
		return err
	}
	if err := writeString(w, p.KwArgsName); err != nil {
		return err
	}
	if err := writeStrings(w, p.LocalNames); err != nil {
		return err
	}
	if err := writeStrings(w, p.CellNames); err != nil {
		return err
	}
	if err := writeStrings(w, p.CaptureNames); err != nil {
		return err
	}
	if err := writeBool(w, p.IsMethod); err != nil {
		return err
	}
	if err := writeBool(w, p.IsClassBody); err != nil {
		return err
	}
	if err := writeString(w, p.SourceFile); err != nil {
		return err
	}
	return writeChunk(w, p.Chunk)
}

func readFuncProto(r io.Reader) (*FuncProto, error) {
	p := &FuncProto{}
	var err error
	if p.Name, err = readString(r); err != nil {
		return nil, err
	}
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	p.Params = make([]ParamProto, n)
	for i := range p.Params {
		if p.Params[i].Name, err = readString(r); err != nil {
			return nil, err
		}
		var kind uint8
		if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return nil, err
		}
		p.Params[i].Kind = object.ParamKind(kind)
	}
	numDefaults, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	p.NumDefaults = int(numDefaults)
	if p.VarArgsName, err = readString(r); err != nil {
		return nil, err
	}
	if p.KwArgsName, err = readString(r); err != nil {
		return nil, err
	}
	if p.LocalNames, err = readStrings(r); err != nil {
		return nil, err
	}
	if p.CellNames, err = readStrings(r); err != nil {
		return nil, err
	}
	if p.CaptureNames, err = readStrings(r); err != nil {
		return nil, err
	}
	if p.IsMethod, err = readBool(r); err != nil {
		return nil, err
	}
	if p.IsClassBody, err = readBool(r); err != nil {
		return nil, err
	}
	if p.SourceFile, err = readString(r); err != nil {
		return nil, err
	}
	if p.Chunk, err = readChunk(r); err != nil {
		return nil, err
	}
	return p, nil
}

func writeInstructions(w io.Writer, code []Instruction) error {
	if err := writeUint32(w, uint32(len(code))); err != nil {
		return err
	}
	for _, inst := range code {
		if err := binary.Write(w, binary.LittleEndian, uint8(inst.Op)); err != nil {
			return err
		}
		if err := writeInt32(w, inst.A); err != nil {
			return err
		}
		if err := writeInt32(w, int32(inst.Pos.Line)); err != nil {
			return err
		}
		if err := writeInt32(w, int32(inst.Pos.Column)); err != nil {
			return err
		}
	}
	return nil
}

func readInstructions(r io.Reader) ([]Instruction, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	code := make([]Instruction, n)
	for i := range code {
		var op uint8
		if err := binary.Read(r, binary.LittleEndian, &op); err != nil {
			return nil, err
		}
		a, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		line, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		col, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		code[i] = Instruction{Op: OpCode(op), A: a, Pos: Pos{Line: int(line), Column: int(col)}}
	}
	return code, nil
}

func writeConsts(w io.Writer, consts []*object.Object) error {
	if err := writeUint32(w, uint32(len(consts))); err != nil {
		return err
	}
	for _, o := range consts {
		if err := writeConst(w, o); err != nil {
			return err
		}
	}
	return nil
}

func readConsts(r io.Reader) ([]*object.Object, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	consts := make([]*object.Object, n)
	for i := range consts {
		if consts[i], err = readConst(r); err != nil {
			return nil, err
		}
	}
	return consts, nil
}

func writeConst(w io.Writer, o *object.Object) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(o.Kind)); err != nil {
		return err
	}
	switch o.Kind {
	case object.KindNone:
		return nil
	case object.KindBool:
		return writeBool(w, o.Bool)
	case object.KindInt:
		return binary.Write(w, binary.LittleEndian, o.Int)
	case object.KindFloat:
		return binary.Write(w, binary.LittleEndian, o.Float)
	case object.KindString:
		return writeString(w, o.Str)
	default:
		return fmt.Errorf("compiler: cannot serialize constant of kind %s", o.TypeTag())
	}
}

func readConst(r io.Reader) (*object.Object, error) {
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return nil, err
	}
	o := &object.Object{Kind: object.Kind(kind)}
	switch o.Kind {
	case object.KindNone:
	case object.KindBool:
		b, err := readBool(r)
		if err != nil {
			return nil, err
		}
		o.Bool = b
	case object.KindInt:
		if err := binary.Read(r, binary.LittleEndian, &o.Int); err != nil {
			return nil, err
		}
	case object.KindFloat:
		if err := binary.Read(r, binary.LittleEndian, &o.Float); err != nil {
			return nil, err
		}
	case object.KindString:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		o.Str = s
	default:
		return nil, fmt.Errorf("compiler: unknown serialized constant kind %d", kind)
	}
	return o, nil
}

func writeStrings(w io.Writer, ss []string) error {
	if err := writeUint32(w, uint32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(r io.Reader) ([]string, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ss := make([]string, n)
	for i := range ss {
		if ss[i], err = readString(r); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}

func writeBool(w io.Writer, b bool) error {
	var v uint8
	if b {
		v = 1
	}
	return binary.Write(w, binary.LittleEndian, v)
}

func readBool(r io.Reader) (bool, error) {
	var v uint8
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return false, err
	}
	return v != 0, nil
}

func writeUint32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeInt32(w io.Writer, v int32) error { return binary.Write(w, binary.LittleEndian, v) }

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
