package importer

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gamarino/protoPython-sub000/bytecode"
	"github.com/gamarino/protoPython-sub000/pyobj"
	"github.com/gamarino/protoPython-sub000/vm"
)

// Compiled-module framing (spec.md §6): magic bytes, version word, source
// mtime, then the serialized fields of a vm.Code. Mismatch on magic/version
// falls through to source loading rather than erroring, per spec.
const (
	compiledMagic   = uint32(0x70797a30) // "pyz0"
	compiledVersion = uint32(1)
)

// CompiledProvider reads precompiled `<name>.pyc0` files, skipping the
// parse/compile pass when the embedded source timestamp still matches the
// `.py` file on disk. Falls through (returns ok=false) on any framing
// mismatch or missing source pair, letting SourceProvider recompile.
type CompiledProvider struct {
	chain *Chain
	exec  Executor
	paths []string
}

// NewCompiledProvider mirrors NewSourceProvider's construction, and should
// be registered on the chain *before* the source provider so a valid cache
// entry is preferred over recompiling.
func NewCompiledProvider(chain *Chain, exec Executor, paths []string) *CompiledProvider {
	return &CompiledProvider{chain: chain, exec: exec, paths: paths}
}

func (p *CompiledProvider) TryLoad(name string) (*pyobj.Object, bool, error) {
	rel := filepath.FromSlash(name)
	for _, dir := range p.paths {
		cachePath := filepath.Join(dir, rel+".pyc0")
		srcPath := filepath.Join(dir, rel+".py")
		code, ok := p.readCache(cachePath, srcPath)
		if !ok {
			continue
		}
		mod := pyobj.NewModule(name)
		mod.SetAttribute("__file__", pyobj.Str(srcPath))
		p.chain.reserve(name, mod)
		if err := p.exec.ExecModule(code, mod); err != nil {
			mod.SetAttribute("__executed__", pyobj.False)
			return nil, false, err
		}
		mod.SetAttribute("__executed__", pyobj.True)
		p.chain.markReady(name)
		return mod, true, nil
	}
	return nil, false, nil
}

func (p *CompiledProvider) readCache(cachePath, srcPath string) (*vm.Code, bool) {
	data, err := os.ReadFile(cachePath)
	if err != nil || len(data) < 16 {
		return nil, false
	}
	magic := binary.LittleEndian.Uint32(data[0:4])
	version := binary.LittleEndian.Uint32(data[4:8])
	stamp := binary.LittleEndian.Uint64(data[8:16])
	if magic != compiledMagic || version != compiledVersion {
		return nil, false
	}
	srcInfo, err := os.Stat(srcPath)
	if err != nil || uint64(srcInfo.ModTime().Unix()) != stamp {
		return nil, false
	}
	code, ok := decodeCode(data[16:])
	return code, ok
}

// WriteCache serializes code into the `.pyc0` framing for srcPath, the
// optional compiled-module write side of spec.md §6 ("an optional
// optimization"). Not invoked automatically by the provider chain; a
// caller (e.g. a future `compileall`-style tool) opts in explicitly.
func WriteCache(cachePath, srcPath string, code *vm.Code) error {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return err
	}
	for _, k := range code.Consts {
		switch k.Kind {
		case pyobj.KindNone, pyobj.KindInt, pyobj.KindFloat, pyobj.KindStr:
		default:
			return fmt.Errorf("compiled cache: unsupported constant kind %s", k.Kind)
		}
	}
	var header [16]byte
	binary.LittleEndian.PutUint32(header[0:4], compiledMagic)
	binary.LittleEndian.PutUint32(header[4:8], compiledVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(srcInfo.ModTime().Unix()))
	body := encodeCode(code)
	return os.WriteFile(cachePath, append(header[:], body...), 0o644)
}

// encodeCode/decodeCode serialize the subset of vm.Code spec.md §6 lists
// (co_consts, co_names, co_code): a minimal framing covering None/int/float/str
// constants and the flat instruction stream. Constants of any other kind
// (nested code objects for function/class bodies, bools, bytes) are not
// supported: WriteCache refuses such a module, so no cache file is written
// and loading it falls through to source compilation.
func encodeCode(c *vm.Code) []byte {
	var buf []byte
	buf = appendUint32(buf, uint32(len(c.Names)))
	for _, n := range c.Names {
		buf = appendString(buf, n)
	}
	buf = appendUint32(buf, uint32(len(c.Consts)))
	for _, k := range c.Consts {
		buf = appendConst(buf, k)
	}
	buf = appendUint32(buf, uint32(len(c.Insns)))
	for _, ins := range c.Insns {
		buf = appendUint32(buf, uint32(ins))
	}
	return buf
}

func decodeCode(data []byte) (*vm.Code, bool) {
	r := &byteReader{data: data}
	nNames, ok := r.uint32()
	if !ok {
		return nil, false
	}
	names := make([]string, nNames)
	for i := range names {
		s, ok := r.string()
		if !ok {
			return nil, false
		}
		names[i] = s
	}
	nConsts, ok := r.uint32()
	if !ok {
		return nil, false
	}
	consts := make([]*pyobj.Object, nConsts)
	for i := range consts {
		v, ok := r.constVal()
		if !ok {
			return nil, false
		}
		consts[i] = v
	}
	nInsns, ok := r.uint32()
	if !ok {
		return nil, false
	}
	insns := make([]int, nInsns)
	for i := range insns {
		v, ok := r.uint32()
		if !ok {
			return nil, false
		}
		insns[i] = int(v)
	}
	return &vm.Code{Name: "<module>", Names: names, Consts: consts, Insns: insns, Lnotab: make([]int32, nInsns/bytecode.InstructionWidth)}, true
}

const (
	constKindNone = iota
	constKindInt
	constKindFloat
	constKindStr
)

func appendConst(buf []byte, v *pyobj.Object) []byte {
	switch v.Kind {
	case pyobj.KindInt:
		buf = append(buf, constKindInt)
		buf = appendUint64(buf, uint64(v.Int))
	case pyobj.KindFloat:
		buf = append(buf, constKindFloat)
		buf = appendUint64(buf, math.Float64bits(v.Float))
	case pyobj.KindStr:
		buf = append(buf, constKindStr)
		buf = appendString(buf, v.Str)
	default:
		buf = append(buf, constKindNone)
	}
	return buf
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) uint32() (uint32, bool) {
	if r.pos+4 > len(r.data) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, true
}

func (r *byteReader) uint64() (uint64, bool) {
	if r.pos+8 > len(r.data) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, true
}

func (r *byteReader) string() (string, bool) {
	n, ok := r.uint32()
	if !ok || r.pos+int(n) > len(r.data) {
		return "", false
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, true
}

func (r *byteReader) constVal() (*pyobj.Object, bool) {
	if r.pos >= len(r.data) {
		return nil, false
	}
	kind := r.data[r.pos]
	r.pos++
	switch kind {
	case constKindInt:
		v, ok := r.uint64()
		if !ok {
			return nil, false
		}
		return pyobj.Int(int64(v)), true
	case constKindFloat:
		v, ok := r.uint64()
		if !ok {
			return nil, false
		}
		return pyobj.Float(math.Float64frombits(v)), true
	case constKindStr:
		s, ok := r.string()
		if !ok {
			return nil, false
		}
		return pyobj.Str(s), true
	default:
		return pyobj.None, true
	}
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
