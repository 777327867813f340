package vm

// execStartWorkers implements STARTWORKERS: pops thread count n,
// launches n independent worker VMs via StartWorkersHook (spec §4.6;
// original_source/vm.cpp VM::StartWorkers caps numthreads at 256).
func (vm *VM) execStartWorkers(ip int32) (int32, bool) {
	n := vm.Stack.Pop().Int
	if vm.IsWorker {
		vm.workerMisuse("workers can't start more worker threads")
	}
	if vm.Workers != nil {
		vm.workerMisuse("workers already running")
	}
	if n > 256 {
		n = 256
	}
	if StartWorkersHook == nil {
		vm.SeriousError(PanicAssertion, "worker support not wired into this build")
	}
	host, err := StartWorkersHook(vm.File, Options{MaxStackSize: vm.Stack.max, TraceMode: 0}, n)
	if err != nil {
		vm.Error("start workers: " + err.Error())
	}
	vm.Workers = host
	return ip + 1, false
}

// execWorkerWrite implements WORKERWRITE: pops a class instance and
// publishes its scalar fields as a tuple (vm.cpp VM::WorkerWrite; only
// scalar members are supported, matching the "lift this restriction"
// FIXME in the original).
func (vm *VM) execWorkerWrite(ip int32) (int32, bool) {
	ref := vm.Stack.Pop()
	if ref.Kind != VKHandle || ref.H == 0 {
		vm.nilReference("thread write")
	}
	obj := vm.Heap.Get(ref.H)
	if obj == nil {
		vm.nilReference("thread write")
	}
	if obj.Kind != OKObject {
		vm.Error("thread write: must be a class")
	}
	tuple := make([]Value, len(obj.Elems))
	for i, e := range obj.Elems {
		if e.IsRefBearing() {
			vm.Error("thread write: only scalar class members supported for now")
		}
		tuple[i] = e
	}
	if vm.Workers != nil {
		if err := vm.Workers.Write(obj.TypeIdx, tuple); err != nil {
			vm.Error("thread write: " + err.Error())
		}
	}
	vm.Dec(ref)
	return ip + 1, false
}

// execWorkerRead implements WORKERREAD: [typeIdx], blocking until a
// tuple of that type is available or the tuple space is torn down
// (vm.cpp VM::WorkerRead), pushing nil in the latter case.
func (vm *VM) execWorkerRead(ip int32) (int32, bool) {
	typeIdx := vm.File.Bytecode[ip+1]
	if vm.Workers == nil {
		vm.Stack.Push(Nil)
		return ip + 2, false
	}
	tuple, ok := vm.Workers.Read(typeIdx)
	if !ok {
		vm.Stack.Push(Nil)
		return ip + 2, false
	}
	vm.Stack.Push(vm.Heap.NewObject(tuple, typeIdx, ip))
	return ip + 2, false
}

// execTerminateWorkers implements TERMWORKERS (vm.cpp VM::TerminateWorkers).
func (vm *VM) execTerminateWorkers(ip int32) (int32, bool) {
	if vm.Workers != nil {
		vm.Workers.Terminate()
		vm.Workers = nil
	}
	return ip + 1, false
}
