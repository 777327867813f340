package vm

import "fmt"

// execNewVector implements NEWVEC: [typeIdx][count], popping count
// values (in reverse push order) to become the vector's elements
// (vm.cpp VM::NewVec).
func (vm *VM) execNewVector(ip int32) (int32, bool) {
	code := vm.File.Bytecode
	typeIdx := code[ip+1]
	count := code[ip+2]
	elems := make([]Value, count)
	for i := count - 1; i >= 0; i-- {
		elems[i] = vm.Stack.Pop()
	}
	vm.Stack.Push(vm.Heap.NewVector(elems, typeIdx, ip))
	return ip + 3, false
}

func (vm *VM) execVecLen(ip int32) (int32, bool) {
	v := vm.Stack.Pop()
	obj := vm.mustVector(v, "len")
	vm.Stack.Push(IntVal(int64(len(obj.Elems)), -1))
	vm.Dec(v)
	return ip + 1, false
}

// execVecIndex implements VECIDX: [ndims], folding chained indices the
// way original_source/vm.cpp's GrabIndex does for a[i][j]...: descend
// through ndims-1 intermediate vectors doing bounds checks, then index
// the innermost vector with the final index (spec §4.3 "chained
// multi-dimensional indexing").
func (vm *VM) execVecIndex(ip int32) (int32, bool) {
	ndims := int(vm.File.Bytecode[ip+1])

	outer := vm.Stack.TopM(ndims)
	cur := outer
	for level := ndims; level > 1; level-- {
		idx := vm.Stack.Pop().Int
		obj := vm.mustVector(cur, "index")
		if idx < 0 || idx >= int64(len(obj.Elems)) {
			vm.idxErr(idx, int64(len(obj.Elems)), obj)
		}
		cur = obj.Elems[idx]
	}
	finalIdx := vm.Stack.Pop().Int
	obj := vm.mustVector(cur, "index")
	if finalIdx < 0 || finalIdx >= int64(len(obj.Elems)) {
		vm.idxErr(finalIdx, int64(len(obj.Elems)), obj)
	}
	result := vm.Inc(obj.Elems[finalIdx])
	vm.Dec(vm.Stack.Pop()) // the outer vector ref, now at top
	vm.Stack.Push(result)
	return ip + 2, false
}

// execVecIndexSet implements the single-dimension VECIDXSET L-value op:
// pops value, index, vecref; bounds-checks; stores; pushes value back.
func (vm *VM) execVecIndexSet(ip int32) (int32, bool) {
	value := vm.Stack.Pop()
	idx := vm.Stack.Pop().Int
	vecref := vm.Stack.Pop()
	obj := vm.mustVector(vecref, "index assign")
	if idx < 0 || idx >= int64(len(obj.Elems)) {
		vm.idxErr(idx, int64(len(obj.Elems)), obj)
	}
	vm.Dec(obj.Elems[idx])
	obj.Elems[idx] = value
	vm.Dec(vecref)
	vm.Stack.Push(vm.Inc(value))
	return ip + 1, false
}

func (vm *VM) execStrConcat(ip int32) (int32, bool) {
	b := vm.Stack.Pop()
	a := vm.Stack.Pop()
	vm.execStrConcatValues(a, b)
	return ip + 1, false
}

// execStrConcatValues concatenates two string-handle values, consuming
// both references (vm.cpp VM::NewString(s1, s2)).
func (vm *VM) execStrConcatValues(a, b Value) {
	sa := vm.mustString(a, "concat")
	sb := vm.mustString(b, "concat")
	result := vm.Heap.NewString(sa.Str+sb.Str, a.TypeIdx, 0)
	vm.Dec(a)
	vm.Dec(b)
	vm.Stack.Push(result)
}

// execNewObject implements NEWOBJECT: [typeIdx][nfields].
func (vm *VM) execNewObject(ip int32) (int32, bool) {
	code := vm.File.Bytecode
	typeIdx := code[ip+1]
	nfields := code[ip+2]
	fields := make([]Value, nfields)
	for i := nfields - 1; i >= 0; i-- {
		fields[i] = vm.Stack.Pop()
	}
	vm.Stack.Push(vm.Heap.NewObject(fields, typeIdx, ip))
	return ip + 3, false
}

func (vm *VM) execFieldGet(ip int32) (int32, bool) {
	fieldIdx := vm.File.Bytecode[ip+1]
	v := vm.Stack.Pop()
	obj := vm.mustObject(v, "field access")
	vm.Stack.Push(vm.Inc(obj.Elems[fieldIdx]))
	vm.Dec(v)
	return ip + 2, false
}

func (vm *VM) execFieldSet(ip int32) (int32, bool) {
	fieldIdx := vm.File.Bytecode[ip+1]
	value := vm.Stack.Pop()
	objref := vm.Stack.Pop()
	obj := vm.mustObject(objref, "field assign")
	vm.Dec(obj.Elems[fieldIdx])
	obj.Elems[fieldIdx] = value
	vm.Dec(objref)
	vm.Stack.Push(vm.Inc(value))
	return ip + 2, false
}

func (vm *VM) mustVector(v Value, what string) *Object {
	if v.Kind != VKHandle {
		vm.Error(fmt.Sprintf("%s: not a vector", what))
	}
	obj := vm.Heap.Get(v.H)
	if obj == nil {
		vm.Error(fmt.Sprintf("%s: nil reference", what))
	}
	if obj.Kind != OKVector {
		vm.Error(fmt.Sprintf("%s: not a vector", what))
	}
	return obj
}

func (vm *VM) mustObject(v Value, what string) *Object {
	if v.Kind != VKHandle {
		vm.Error(fmt.Sprintf("%s: not an object", what))
	}
	obj := vm.Heap.Get(v.H)
	if obj == nil {
		vm.Error(fmt.Sprintf("%s: nil reference", what))
	}
	if obj.Kind != OKObject {
		vm.Error(fmt.Sprintf("%s: not an object", what))
	}
	return obj
}

func (vm *VM) mustString(v Value, what string) *Object {
	if v.Kind != VKHandle {
		vm.Error(fmt.Sprintf("%s: not a string", what))
	}
	obj := vm.Heap.Get(v.H)
	if obj == nil {
		vm.Error(fmt.Sprintf("%s: nil reference", what))
	}
	if obj.Kind != OKString {
		vm.Error(fmt.Sprintf("%s: not a string", what))
	}
	return obj
}

// idxErr raises "index i out of range n of: <value>", matching
// original_source/vm.cpp's VM::IDXErr exactly.
func (vm *VM) idxErr(i, n int64, obj *Object) {
	vm.outOfRange(i, n, vm.describeObject(obj))
}

// describeObject renders a heap object the way RefToString would for
// an error message: readable but not a full structural dump.
func (vm *VM) describeObject(obj *Object) string {
	switch obj.Kind {
	case OKString:
		return fmt.Sprintf("%q", obj.Str)
	case OKVector:
		return fmt.Sprintf("[%d elements]", len(obj.Elems))
	case OKObject:
		return fmt.Sprintf("{%d fields}", len(obj.Elems))
	default:
		return "<resource>"
	}
}
