package vm

// Handle identifies a heap object. Handles are monotonically increasing
// and never reused within a run (grounded on the teacher's Heap, but
// refcounted rather than GC'd per spec §3/§4.3).
type Handle uint64

// ObjectKind identifies the shape of a heap Object (spec §3: "String,
// Vector, User Object, Resource").
type ObjectKind uint8

const (
	OKString ObjectKind = iota
	OKVector
	OKObject
	OKResource
)

func (k ObjectKind) String() string {
	switch k {
	case OKString:
		return "string"
	case OKVector:
		return "vector"
	case OKObject:
		return "object"
	case OKResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Object is one heap allocation: a refcounted String, Vector, User
// Object (class/struct), or opaque Resource (spec §3).
type Object struct {
	Handle   Handle
	Kind     ObjectKind
	TypeIdx  int32 // index into the type table
	Refcount int64

	Str   string
	Elems []Value // Vector elements, or User Object fields
	Res   any     // Resource payload; nil for non-resource kinds

	allocIP int32 // instruction pointer at allocation time, for leak reports
}

// Heap owns every live allocation for one VM instance. Heaps are never
// shared across VM instances (spec §4.6: each worker VM is independent);
// cross-worker communication copies scalar tuple payloads instead.
type Heap struct {
	objs map[Handle]*Object
	next Handle
}

func newHeap() *Heap {
	return &Heap{objs: make(map[Handle]*Object, 64), next: 1}
}

func (h *Heap) alloc(kind ObjectKind, typeIdx int32, ip int32) (Handle, *Object) {
	handle := h.next
	h.next++
	obj := &Object{Handle: handle, Kind: kind, TypeIdx: typeIdx, Refcount: 1, allocIP: ip}
	h.objs[handle] = obj
	return handle, obj
}

// NewString allocates a new string object (vm.cpp VM::NewString).
func (h *Heap) NewString(s string, typeIdx int32, ip int32) Value {
	handle, obj := h.alloc(OKString, typeIdx, ip)
	obj.Str = s
	return HandleVal(handle, typeIdx)
}

// NewVector allocates a vector with the given initial elements
// (vm.cpp VM::NewVec).
func (h *Heap) NewVector(elems []Value, typeIdx int32, ip int32) Value {
	handle, obj := h.alloc(OKVector, typeIdx, ip)
	obj.Elems = elems
	return HandleVal(handle, typeIdx)
}

// NewObject allocates a class/struct instance with the given field
// values (vm.cpp VM::NewObject).
func (h *Heap) NewObject(fields []Value, typeIdx int32, ip int32) Value {
	handle, obj := h.alloc(OKObject, typeIdx, ip)
	obj.Elems = fields
	return HandleVal(handle, typeIdx)
}

// NewResource wraps an opaque resource payload (vm.cpp VM::NewResource).
func (h *Heap) NewResource(res any, typeIdx int32, ip int32) Value {
	handle, obj := h.alloc(OKResource, typeIdx, ip)
	obj.Res = res
	return HandleVal(handle, typeIdx)
}

// Get returns the live object for handle, or nil if it has been freed
// or never existed.
func (h *Heap) Get(handle Handle) *Object {
	if handle == 0 {
		return nil
	}
	return h.objs[handle]
}

// free removes handle from the live set. Called only once an object's
// refcount has dropped to zero.
func (h *Heap) free(handle Handle) {
	delete(h.objs, handle)
}

// findLeaks returns every object still live when the program ends,
// sorted by refcount descending then type-table-index descending,
// matching _LeakSorter in original_source/vm.cpp (a real VM never
// leaks this way; persistent leaks indicate a reference cycle).
func (h *Heap) findLeaks() []*Object {
	leaks := make([]*Object, 0, len(h.objs))
	for _, obj := range h.objs {
		leaks = append(leaks, obj)
	}
	sortLeaks(leaks)
	return leaks
}

func sortLeaks(leaks []*Object) {
	// Simple insertion sort: leak lists are small in practice and this
	// keeps the comparator identical to _LeakSorter's two-key ordering
	// without pulling in sort.Slice's closure overhead in a hot path
	// that only runs once, at shutdown.
	for i := 1; i < len(leaks); i++ {
		j := i
		for j > 0 && leakLess(leaks[j], leaks[j-1]) {
			leaks[j], leaks[j-1] = leaks[j-1], leaks[j]
			j--
		}
	}
}

// leakLess reports whether a should sort before b: higher refcount
// first, then higher type-table index.
func leakLess(a, b *Object) bool {
	if a.Refcount != b.Refcount {
		return a.Refcount > b.Refcount
	}
	return a.TypeIdx > b.TypeIdx
}
