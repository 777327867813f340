package vm

import (
	"strconv"
	"strings"
)

// Display renders v as a Lobster-style program value, recursing through
// heap references (original_source/vm.cpp VM::ToString / DumpVal):
// strings print their contents, vectors print "[e0, e1, ...]", objects
// print "{f0, f1, ...}". Value.String alone can't do this since it has
// no access to the heap.
func (vm *VM) Display(v Value) string {
	switch v.Kind {
	case VKHandle:
		obj := vm.Heap.Get(v.H)
		if obj == nil {
			return "nil"
		}
		return vm.displayObject(obj)
	default:
		return v.String()
	}
}

func (vm *VM) displayObject(obj *Object) string {
	switch obj.Kind {
	case OKString:
		return obj.Str
	case OKVector:
		parts := make([]string, len(obj.Elems))
		for i, e := range obj.Elems {
			parts[i] = vm.Display(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case OKObject:
		parts := make([]string, len(obj.Elems))
		for i, e := range obj.Elems {
			parts[i] = vm.Display(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case OKResource:
		return "<resource " + strconv.FormatUint(uint64(obj.Handle), 10) + ">"
	default:
		return "<invalid>"
	}
}
