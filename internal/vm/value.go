// Package vm implements the stack-based bytecode interpreter: a
// resizable operand stack, call frames, a refcounted heap, and a
// single panic/recover error unwind path.
package vm

import (
	"fmt"

	"surge/internal/bytecode"
)

// ValueKind identifies the runtime representation of a Value.
type ValueKind uint8

const (
	VKNil ValueKind = iota
	VKInt
	VKFloat
	VKHandle // ref-bearing: string, vector, class, resource
)

func (k ValueKind) String() string {
	switch k {
	case VKNil:
		return "nil"
	case VKInt:
		return "int"
	case VKFloat:
		return "float"
	case VKHandle:
		return "handle"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// Value is one stack/variable cell. Only one of Int, Float, H is
// meaningful, selected by Kind; TypeIdx names the static type for
// diagnostics and for LTDECRTNIL-style typed decrement (spec §3).
type Value struct {
	Kind    ValueKind
	Int     int64
	Float   float64
	H       Handle
	TypeIdx int32
}

// Nil is the zero Value, equivalent to Lobster's default-constructed
// Value() (original_source/vm.cpp uses this as the nil/uninitialized
// sentinel pushed by FunIntro for not-yet-assigned locals).
var Nil = Value{Kind: VKNil}

func IntVal(n int64, typeIdx int32) Value {
	return Value{Kind: VKInt, Int: n, TypeIdx: typeIdx}
}

func FloatVal(f float64, typeIdx int32) Value {
	return Value{Kind: VKFloat, Float: f, TypeIdx: typeIdx}
}

func HandleVal(h Handle, typeIdx int32) Value {
	return Value{Kind: VKHandle, H: h, TypeIdx: typeIdx}
}

// IsRefBearing reports whether v owns a heap reference that must be
// refcounted on copy/drop.
func (v Value) IsRefBearing() bool {
	return v.Kind == VKHandle && v.H != 0
}

// Truthy implements the VM's boolean-coercion rule: nil and zero int
// are false, everything else (including 0.0) is true, matching the
// dynamically-typed JumpFalse semantics used by original_source/vm.cpp
// ("false"/"true" constant tags reduce to int 0/1).
func (v Value) Truthy() bool {
	switch v.Kind {
	case VKNil:
		return false
	case VKInt:
		return v.Int != 0
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Kind {
	case VKNil:
		return "nil"
	case VKInt:
		return fmt.Sprintf("%d", v.Int)
	case VKFloat:
		return fmt.Sprintf("%g", v.Float)
	case VKHandle:
		return fmt.Sprintf("<handle %d>", v.H)
	default:
		return "<invalid>"
	}
}

// typeKindOf resolves v's TypeInfo from the loaded blob, used by the
// leak dumper and DumpVar-style diagnostics.
func typeKindOf(f *bytecode.File, typeIdx int32) bytecode.TypeKind {
	if typeIdx < 0 || int(typeIdx) >= len(f.TypeTable) {
		return bytecode.KindAny
	}
	return f.TypeTable[typeIdx].Kind
}
