package vm

// Inc increments v's refcount if it is ref-bearing. Mirrors the
// teacher's copy-on-push convention but counts real references instead
// of tracking move/drop state, since this VM is refcounted rather than
// move-semantics based (spec §4.3).
func (vm *VM) Inc(v Value) Value {
	if v.IsRefBearing() {
		if obj := vm.Heap.Get(v.H); obj != nil {
			obj.Refcount++
		}
	}
	return v
}

// Dec decrements v's refcount, freeing (and recursively decrementing
// any fields/elements) once it reaches zero. Matches vm.cpp's
// RefObj::Dec / DECDELETENOW, but runs synchronously rather than via
// Lobster's delete_delay queue - synchronous drop is safe in Go since
// there's no concern about destructor reentrancy across jitted frames.
func (vm *VM) Dec(v Value) {
	if !v.IsRefBearing() {
		return
	}
	obj := vm.Heap.Get(v.H)
	if obj == nil {
		return
	}
	obj.Refcount--
	if obj.Refcount > 0 {
		return
	}
	vm.destroy(v.H, obj)
}

// DecRTNil decrements v if it carries a reference, ignoring scalars;
// this is the VM's LTDECRTNIL ("leniently typed decrement, tolerant of
// nil") used when unwinding keepvars/frame locals whose static type is
// not tracked at that point (vm.cpp VM::FunOut).
func (vm *VM) DecRTNil(v Value) {
	vm.Dec(v)
}

func (vm *VM) destroy(handle Handle, obj *Object) {
	switch obj.Kind {
	case OKVector, OKObject:
		for _, e := range obj.Elems {
			vm.Dec(e)
		}
	case OKResource:
		if closer, ok := obj.Res.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	vm.Heap.free(handle)
}

// DropAll decrements every value in vs, for unwinding an operand-stack
// range whose static types are already known. FunOut does not use it;
// it pops keepvars one by one through DecRTNil.
func (vm *VM) DropAll(vs []Value) {
	for _, v := range vs {
		vm.Dec(v)
	}
}
