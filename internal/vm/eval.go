package vm

import "surge/internal/bytecode"

// header is a package-local alias so the rest of this file (which
// predates the shared decoder moving into internal/bytecode) doesn't
// need renaming throughout.
type header = bytecode.FunStartHeader

// frameHeader decodes the FUNSTART header starting at ip (the index of
// the FUNSTART opcode word itself, i.e. fr.FunStart).
func frameHeader(code []int32, ip int32) header {
	return bytecode.DecodeFunStart(code, ip)
}

// FunIntro executes a function prologue: grows the stack if needed,
// swaps call arguments into their variable slots, saves the previous
// contents of each local (pushing them so a recursive call can restore
// them later), and reserves keepvar slots (original_source/vm.cpp
// VM::FunIntro). ip must point at the FUNSTART opcode word.
func (vm *VM) FunIntro(ip int32) {
	h := frameHeader(vm.File.Bytecode, ip)
	vm.Frames = append(vm.Frames, StackFrame{})

	if !vm.Stack.growIfNeeded() {
		vm.SeriousError(PanicStackOverflow, "stack overflow! (configure a larger max stack size if needed)")
	}

	nargs := int32(len(h.ArgVars))
	for i := int32(0); i < nargs; i++ {
		// Swap the just-pushed argument value into its variable slot,
		// and leave the argument's previous contents on the stack in
		// its place, so FunOut can restore them on return.
		argIdx := h.ArgVars[i]
		stackSlot := nargs - 1 - i
		vm.Stack.vals[vm.Stack.sp-int(stackSlot)], vm.Vars[argIdx] = vm.Vars[argIdx], vm.Stack.vals[vm.Stack.sp-int(stackSlot)]
	}

	for _, idx := range h.DefVars {
		vm.Stack.Push(vm.Vars[idx])
		vm.Vars[idx] = Nil
	}

	for i := int32(0); i < h.NKeepVars; i++ {
		vm.Stack.Push(Nil)
	}

	fr := &vm.Frames[len(vm.Frames)-1]
	fr.FunStart = ip
	fr.SPStart = vm.Stack.sp
}

// FunOut executes a function epilogue: pops nrv return values off the
// top, decrements keepvars and owned locals, restores saved
// args/locals, then shifts the return values down to where the call's
// arguments used to be (original_source/vm.cpp VM::FunOut).
func (vm *VM) FunOut(nrv int32) {
	vm.VMAssert(len(vm.Frames) > 0, "FunOut with no active frame")
	fr := vm.Frames[len(vm.Frames)-1]

	rets := make([]Value, nrv)
	for i := int32(0); i < nrv; i++ {
		rets[nrv-1-i] = vm.Stack.Pop()
	}

	vm.VMAssert(vm.Stack.sp == fr.SPStart, "FunOut stack depth mismatch")

	h := frameHeader(vm.File.Bytecode, fr.FunStart)

	for i := int32(0); i < h.NKeepVars; i++ {
		vm.DecRTNil(vm.Stack.Pop())
	}
	for _, idx := range h.OwnedVars {
		vm.DecRTNil(vm.Vars[idx])
	}
	for i := len(h.DefVars) - 1; i >= 0; i-- {
		idx := h.DefVars[i]
		vm.Vars[idx] = vm.Stack.Pop()
	}
	for i := len(h.ArgVars) - 1; i >= 0; i-- {
		idx := h.ArgVars[i]
		vm.Vars[idx] = vm.Stack.Pop()
	}

	vm.Frames = vm.Frames[:len(vm.Frames)-1]
	for _, v := range rets {
		vm.Stack.Push(v)
	}
}

// Run executes the program from its entry point and returns the final
// stringified top-of-stack result, or the error the program raised.
// This is the VM's single recover site, matching the spec's "single
// unwind site (UnwindOnError)": every raised VMError funnels through
// the panic thrown by Error/SeriousError and is caught here.
func (vm *VM) Run() (result string, err *VMError) {
	defer func() {
		if r := recover(); r != nil {
			if ve, ok := r.(*VMError); ok {
				err = ve
				return
			}
			panic(r)
		}
	}()
	vm.evalProgram()
	result = vm.EvalResult
	return result, nil
}

// evalProgram drives the dispatch loop from File.EntryPoint until an
// EXIT opcode or an unhandled error panic (original_source/vm.cpp
// VM::EvalProgram, here without the longjmp/setjmp half of that
// function: see Run's doc comment).
func (vm *VM) evalProgram() {
	ip := vm.File.EntryPoint
	for {
		next, done := vm.step(ip)
		if done {
			break
		}
		ip = next
	}
	vm.endEval()
}

// endEval finalizes the run: terminates the worker pool this VM started
// (a worker VM leaves the shared space to the VM that started it),
// stringifies whatever value is left on the stack, and decrements it
// (original_source/vm.cpp VM::EndEval). It does not report leaks;
// callers read them afterwards through FindLeaks/LeakReport.
func (vm *VM) endEval() {
	if vm.Workers != nil && !vm.IsWorker {
		vm.Workers.Terminate()
	}
	if vm.Stack.sp >= 0 {
		ret := vm.Stack.Pop()
		vm.EvalResult = vm.Display(ret)
		vm.Dec(ret)
	}
	vm.VMAssert(vm.Stack.sp == -1, "stack not empty at end of program")
}

// FindLeaks reports every heap object still live after Run returns,
// sorted the way original_source/vm.cpp's DumpLeaks sorts them. Callers
// (the CLI) decide how to render or persist the report; spec §4.3
// treats persistent leaks as a cycle diagnostic, not a crash.
func (vm *VM) FindLeaks() []*Object {
	return vm.Heap.findLeaks()
}
