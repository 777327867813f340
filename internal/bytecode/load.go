package bytecode

import (
	"fmt"
	"unsafe"
)

// ErrVersionMismatch is returned by Verify when a blob's BytecodeVersion
// does not match CurrentVersion.
type ErrVersionMismatch struct {
	Got, Want int32
}

func (e *ErrVersionMismatch) Error() string {
	return fmt.Sprintf("bytecode version mismatch: got %d, want %d", e.Got, e.Want)
}

// Verify checks that f's format version matches what this package
// understands (spec §6: "loaders must refuse to run a blob built for a
// different bytecode version").
func Verify(f *File) error {
	if f.BytecodeVersion != CurrentVersion {
		return &ErrVersionMismatch{Got: f.BytecodeVersion, Want: CurrentVersion}
	}
	if f.EntryPoint < 0 || int(f.EntryPoint) > len(f.Bytecode) {
		return fmt.Errorf("bytecode: entry point %d out of range [0,%d]", f.EntryPoint, len(f.Bytecode))
	}
	return nil
}

// nativeLittleEndian reports whether the host is little-endian. Lobster's
// loader assumes little-endian on the fast path and only byte-swaps on
// big-endian hosts (original_source/vm.cpp); this mirrors that.
func nativeLittleEndian() bool {
	var x uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&x))
	return b[0] == 1
}

// Load decodes a blob that was just deserialized (e.g. via msgpack) into
// a File, byte-swapping the int32 slices if the host is big-endian, and
// verifying it. This is the single entry point callers should use rather
// than constructing a File directly from wire data.
func Load(f *File) error {
	if !nativeLittleEndian() {
		swapInt32Slice(f.Bytecode)
		swapLineInfo(f.LineInfo)
		for i := range f.TypeTable {
			swapTypeInfo(&f.TypeTable[i])
		}
	}
	return Verify(f)
}

func swapInt32Slice(s []int32) {
	for i, v := range s {
		s[i] = swapI32(v)
	}
}

func swapLineInfo(s []int32) {
	swapInt32Slice(s)
}

func swapTypeInfo(t *TypeInfo) {
	t.Subtype = swapI32(t.Subtype)
	t.Length = swapI32(t.Length)
	t.StructIndex = swapI32(t.StructIndex)
	t.EnumIndex = swapI32(t.EnumIndex)
	swapInt32Slice(t.ElemTypes)
}

// swapI32 reverses the 4 bytes of v, used to flip between the blob's
// native little-endian word layout and a big-endian host's layout.
func swapI32(v int32) int32 {
	u := uint32(v)
	u = u<<24 | (u&0xFF00)<<8 | (u>>8)&0xFF00 | u>>24
	return int32(u)
}
