package vm

import "fmt"

// ErrorBase prepends any retained opcode trace to err's message, the
// way original_source/vm.cpp's VM::ErrorBase splices trace_output
// ahead of "VM error: ...".
func (vm *VM) errorBase(e *VMError) *VMError {
	if vm.TraceRing != nil {
		e.TraceLines = vm.TraceRing.Lines()
	}
	return e
}

// Error raises a recoverable runtime error, walking the active call
// frames to build a "in function: ... / name = value" stack trace
// (vm.cpp VM::Error / VM::DumpVar). It never returns: the panic is
// caught by Run's recover, which is this VM's single unwind site -
// the spec's "dual exception/longjmp unwind path" collapses to one
// Go panic/recover path here, since there is no JIT-compiled native
// frame mixed into the call stack to require the longjmp fallback.
func (vm *VM) Error(msg string) Value {
	return vm.raise(vm.eb.make(PanicOutOfRange, msg))
}

// SeriousError raises an error without attempting variable dumping,
// since the VM may already be in an inconsistent state (vm.cpp
// VM::SeriousError) - used for stack overflow and internal assertion
// failures.
func (vm *VM) SeriousError(code PanicCode, msg string) Value {
	return vm.raise(vm.eb.serious(code, msg))
}

// VMAssert raises an internal assertion failure (vm.cpp VM::VMAssert).
func (vm *VM) VMAssert(cond bool, what string) {
	if !cond {
		vm.SeriousError(PanicAssertion, "VM internal assertion failure: "+what)
	}
}

// raise attaches a stack trace (unless the error is already marked
// Serious) and panics with it. Every VM error, however it was built,
// funnels through here on its way to Run's recover.
//
// If raise is re-entered while a prior error is still being unwound -
// e.g. something in captureTrace itself faults - that would otherwise
// be an infinite regress. Instead it's folded into the error already in
// flight as a "RECURSIVE ERROR:" section and unwinding continues with
// the combined message, matching original_source/vm.cpp's ErrorBase
// error_has_occured guard.
func (vm *VM) raise(e *VMError) Value {
	if vm.unwinding {
		prior := vm.pendingErr
		prior.Message += "\nRECURSIVE ERROR:\n" + e.Message
		panic(prior)
	}
	vm.unwinding = true
	vm.pendingErr = e
	if !e.Serious {
		e.Trace = vm.captureTrace()
	}
	panic(vm.errorBase(e))
}

// outOfRange raises a bounds error in errorBuilder's exact wording.
func (vm *VM) outOfRange(i, n int64, desc string) Value {
	return vm.raise(vm.eb.outOfRange(i, n, desc))
}

// nilReference raises a nil-dereference error for the named operation.
func (vm *VM) nilReference(what string) Value {
	return vm.raise(vm.eb.nilReference(what))
}

// typeMismatch raises a wrong-kind error for the named operation.
func (vm *VM) typeMismatch(what, expected string, got ValueKind) Value {
	return vm.raise(vm.eb.typeMismatch(what, expected, got))
}

// workerMisuse raises a worker-API-misuse error.
func (vm *VM) workerMisuse(msg string) Value {
	return vm.raise(vm.eb.workerMisuse(msg))
}

// captureTrace walks vm.Frames from the top down, dumping the
// function name and its arg/local variables for each, matching the
// loop in original_source/vm.cpp VM::Error that pops stackframes while
// reconstructing which vars each one owned.
func (vm *VM) captureTrace() []StackFrameDump {
	dumps := make([]StackFrameDump, 0, len(vm.Frames))
	for i := len(vm.Frames) - 1; i >= 0; i-- {
		fr := vm.Frames[i]
		deffun := vm.funcIDAt(fr.FunStart)
		name := "block"
		if deffun >= 0 {
			if fn, ok := vm.File.FuncAt(fr.FunStart); ok {
				name = fn.Name
			} else if int(deffun) < len(vm.File.Functions) {
				name = vm.File.Functions[deffun].Name
			}
		}
		dumps = append(dumps, StackFrameDump{FuncName: name, Vars: vm.dumpFrameVars(fr)})
	}
	return dumps
}

// dumpFrameVars formats each argument/local variable belonging to fr as
// "name = value", mirroring vm.cpp VM::DumpVar (simplified: this VM
// keeps the defsave/keepvar header purely numeric, so names fall back
// to "var<idx>" when no identifier table entry exists).
func (vm *VM) dumpFrameVars(fr StackFrame) []string {
	h := frameHeader(vm.File.Bytecode, fr.FunStart)
	out := make([]string, 0, len(h.ArgVars)+len(h.DefVars))
	for _, idx := range h.ArgVars {
		out = append(out, fmt.Sprintf("%s = %s", vm.varName(idx), vm.Vars[idx]))
	}
	for _, idx := range h.DefVars {
		out = append(out, fmt.Sprintf("%s = %s", vm.varName(idx), vm.Vars[idx]))
	}
	return out
}

func (vm *VM) varName(idx int32) string {
	if int(idx) < len(vm.File.SpecIdents) && vm.File.SpecIdents[idx] != "" {
		return vm.File.SpecIdents[idx]
	}
	return fmt.Sprintf("var%d", idx)
}
