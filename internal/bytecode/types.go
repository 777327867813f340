package bytecode

// TypeKind enumerates the static type kinds that appear in a type table
// entry (spec §3).
type TypeKind uint8

const (
	KindInt TypeKind = iota
	KindFloat
	KindString
	KindVector
	KindClass
	KindStructValRef   // struct-by-value, reference-bearing
	KindStructValNoRef // struct-by-value, reference-free
	KindNilOf
	KindFunction
	KindResource
	KindAny
	KindUntypedVector
	KindValueBuffer
	KindStackFrameBuffer
)

func (k TypeKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	case KindClass:
		return "class"
	case KindStructValRef:
		return "struct_ref"
	case KindStructValNoRef:
		return "struct_noref"
	case KindNilOf:
		return "nil_of"
	case KindFunction:
		return "function"
	case KindResource:
		return "resource"
	case KindAny:
		return "any"
	case KindUntypedVector:
		return "untyped_vector"
	case KindValueBuffer:
		return "value_buffer"
	case KindStackFrameBuffer:
		return "stackframe_buffer"
	default:
		return "unknown_kind"
	}
}

// TypeInfo is one entry of the flat type table (spec §3).
type TypeInfo struct {
	Kind        TypeKind
	Subtype     int32 // index into the type table, for NilOf/Vector element type
	Length      int32 // field count for classes/structs
	StructIndex int32 // index into UDTs, for Class/Struct kinds
	EnumIndex   int32 // index into Enums, -1 if not an enum
	ElemTypes   []int32
}

// IsUDT reports whether the kind denotes a user-defined type (class or
// struct-by-value).
func (k TypeKind) IsUDT() bool {
	switch k {
	case KindClass, KindStructValRef, KindStructValNoRef:
		return true
	default:
		return false
	}
}

// IsRefBearing reports whether values of this static type carry a heap
// reference that participates in refcounting.
func (k TypeKind) IsRefBearing() bool {
	switch k {
	case KindString, KindVector, KindClass, KindStructValRef, KindResource, KindUntypedVector:
		return true
	default:
		return false
	}
}
