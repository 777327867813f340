package vm

import "surge/internal/bytecode"

// execCompare implements LT/LE/GT/GE/EQ/NE, dispatching on operand Kind
// the same way execArith does.
func (vm *VM) execCompare(op bytecode.Op) {
	b := vm.Stack.Pop()
	a := vm.Stack.Pop()

	var result bool
	switch {
	case a.Kind == VKHandle || b.Kind == VKHandle:
		result = compareHandles(vm, op, a, b)
	case a.Kind == VKFloat || b.Kind == VKFloat:
		result = compareFloat(op, asFloat(a), asFloat(b))
	default:
		result = compareInt(op, a.Int, b.Int)
	}

	vm.Dec(a)
	vm.Dec(b)
	vm.Stack.Push(boolValue(result))
}

func boolValue(b bool) Value {
	if b {
		return IntVal(1, -1)
	}
	return IntVal(0, -1)
}

func compareInt(op bytecode.Op, a, b int64) bool {
	switch op {
	case bytecode.OpLt:
		return a < b
	case bytecode.OpLe:
		return a <= b
	case bytecode.OpGt:
		return a > b
	case bytecode.OpGe:
		return a >= b
	case bytecode.OpEq:
		return a == b
	case bytecode.OpNe:
		return a != b
	default:
		return false
	}
}

func compareFloat(op bytecode.Op, a, b float64) bool {
	switch op {
	case bytecode.OpLt:
		return a < b
	case bytecode.OpLe:
		return a <= b
	case bytecode.OpGt:
		return a > b
	case bytecode.OpGe:
		return a >= b
	case bytecode.OpEq:
		return a == b
	case bytecode.OpNe:
		return a != b
	default:
		return false
	}
}

// compareHandles compares ref-bearing values: strings by content for
// EQ/NE (and lexicographically for ordering), everything else (vector,
// class, resource) by handle identity, matching the reference-identity
// default Lobster uses for unboxed comparisons of compound values.
func compareHandles(vm *VM, op bytecode.Op, a, b Value) bool {
	if a.Kind == VKHandle && b.Kind == VKHandle {
		oa, ob := vm.Heap.Get(a.H), vm.Heap.Get(b.H)
		if oa != nil && ob != nil && oa.Kind == OKString && ob.Kind == OKString {
			switch op {
			case bytecode.OpLt:
				return oa.Str < ob.Str
			case bytecode.OpLe:
				return oa.Str <= ob.Str
			case bytecode.OpGt:
				return oa.Str > ob.Str
			case bytecode.OpGe:
				return oa.Str >= ob.Str
			case bytecode.OpEq:
				return oa.Str == ob.Str
			case bytecode.OpNe:
				return oa.Str != ob.Str
			}
		}
	}
	switch op {
	case bytecode.OpEq:
		return a.H == b.H
	case bytecode.OpNe:
		return a.H != b.H
	default:
		return false
	}
}
