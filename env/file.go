package env

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/gamarino/protoPython-sub000/pyobj"
)

// fileState is the Go-side payload of a file object, stashed on Object.Extra
// the way a generator stashes its suspended *vm.Frame; grounded on
// runtime/file.go's File struct, pared down to the read/write/close surface
// open() needs to support here.
type fileState struct {
	f      *os.File
	reader *bufio.Reader
	closed bool
}

// fileType is the prototype every file object returned by open() shares;
// its prototype list and methods are filled in by this file's init(),
// mirroring runtime/file.go's package-level FileType.
var fileType = &pyobj.Object{Kind: pyobj.KindType, Class: pyobj.TypeType, TypeDef: &pyobj.TypeDef{Name: "file"}}

func init() {
	fileType.Proto = []*pyobj.Object{pyobj.ObjectType}
	reg := func(name string, fn pyobj.NativeFunc) { fileType.SetAttribute(name, pyobj.NewNative(name, fn)) }
	reg("read", fileRead)
	reg("readline", fileReadline)
	reg("readlines", fileReadlines)
	reg("write", fileWrite)
	reg("close", fileClose)
	reg("__enter__", func(call *pyobj.Call) (*pyobj.Object, error) { return call.Self, nil })
	reg("__exit__", func(call *pyobj.Call) (*pyobj.Object, error) { return fileClose(call) })
}

// newFileObject implements open(path, mode) for the subset of modes CPython
// text files support without buffering/encoding options (spec.md's builtins
// surface does not call out full io module semantics).
func newFileObject(path, mode string) (*pyobj.Object, error) {
	var flag int
	switch strings.TrimSuffix(mode, "b") {
	case "r", "":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case "r+":
		flag = os.O_RDWR
	default:
		return nil, pyobj.Raise(pyobj.ValueErrorType, "invalid mode: '%s'", mode)
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, pyobj.Raise(pyobj.OSErrorType, "%v", err)
	}
	obj := pyobj.New(pyobj.KindInstance, fileType)
	obj.Proto = []*pyobj.Object{fileType}
	obj.Extra = &fileState{f: f, reader: bufio.NewReader(f)}
	obj.SetAttribute("name", pyobj.Str(path))
	obj.SetAttribute("mode", pyobj.Str(mode))
	return obj, nil
}

func fileStateOf(call *pyobj.Call) (*fileState, error) {
	self := call.Self
	if self == nil && len(call.Args) > 0 {
		self = call.Args[0]
	}
	if self == nil {
		return nil, pyobj.Raise(pyobj.TypeErrorType, "file method called without a receiver")
	}
	fs, ok := self.Extra.(*fileState)
	if !ok {
		return nil, pyobj.Raise(pyobj.TypeErrorType, "not a file object")
	}
	if fs.closed {
		return nil, pyobj.Raise(pyobj.ValueErrorType, "I/O operation on closed file")
	}
	return fs, nil
}

func fileRead(call *pyobj.Call) (*pyobj.Object, error) {
	fs, err := fileStateOf(call)
	if err != nil {
		return nil, err
	}
	data, err := readAll(fs.reader)
	if err != nil {
		return nil, pyobj.Raise(pyobj.OSErrorType, "%v", err)
	}
	return pyobj.Str(string(data)), nil
}

func fileReadline(call *pyobj.Call) (*pyobj.Object, error) {
	fs, err := fileStateOf(call)
	if err != nil {
		return nil, err
	}
	line, _ := fs.reader.ReadString('\n')
	return pyobj.Str(line), nil
}

func fileReadlines(call *pyobj.Call) (*pyobj.Object, error) {
	fs, err := fileStateOf(call)
	if err != nil {
		return nil, err
	}
	var lines []*pyobj.Object
	for {
		line, err := fs.reader.ReadString('\n')
		if line != "" {
			lines = append(lines, pyobj.Str(line))
		}
		if err != nil {
			break
		}
	}
	return pyobj.NewList(lines), nil
}

func fileWrite(call *pyobj.Call) (*pyobj.Object, error) {
	fs, err := fileStateOf(call)
	if err != nil {
		return nil, err
	}
	if len(call.Args) < 1 {
		return nil, argErr("write", 1, 0)
	}
	n, werr := fs.f.WriteString(call.Args[0].Str)
	if werr != nil {
		return nil, pyobj.Raise(pyobj.OSErrorType, "%v", werr)
	}
	return pyobj.Int(int64(n)), nil
}

func fileClose(call *pyobj.Call) (*pyobj.Object, error) {
	fs, err := fileStateOf(call)
	if err != nil {
		return nil, err
	}
	fs.closed = true
	if cerr := fs.f.Close(); cerr != nil {
		return nil, pyobj.Raise(pyobj.OSErrorType, "%v", cerr)
	}
	return pyobj.None, nil
}

func readAll(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				return buf, nil
			}
			return buf, err
		}
	}
}
