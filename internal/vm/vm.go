package vm

import (
	"surge/internal/bytecode"
	"surge/internal/trace"
)

// VM is one interpreter instance: its own heap, operand stack, and
// global variable slots. Worker VMs (spec §4.6) are ordinary,
// independent VM values that happen to share a TupleSpaceHost.
type VM struct {
	File *bytecode.File
	Heap *Heap
	Stack *Stack

	// Vars holds one slot per specident, matching vm.cpp's flat `vars`
	// array indexed directly by varidx.
	Vars []Value

	Frames []StackFrame

	// ReturnIPs is the interpreter's software return-address stack.
	// The real VM uses actual native calls (vm.cpp's CALL compiles to
	// a C function call), so the hardware call stack carries the
	// continuation; this flat bytecode interpreter has no such thing
	// and tracks it explicitly instead.
	ReturnIPs []int32

	TraceMode trace.Mode
	TraceRing *trace.Ring
	// TraceSink receives each formatted trace line as it happens when
	// TraceMode is On. Left nil, On-mode traces are simply dropped;
	// cmd/vmrun wires this to stdout.
	TraceSink func(line string)

	IsWorker bool
	Workers  TupleSpaceHost // set once STARTWORKERS has run, and on worker VMs to the space they share; nil otherwise

	eb errorBuilder

	// unwinding and pendingErr track whether an error is already being
	// built. A second raise while the first is still in flight (vm.cpp
	// ErrorBase's error_has_occured guard) folds into pendingErr as a
	// "RECURSIVE ERROR:" section instead of starting a fresh unwind.
	unwinding  bool
	pendingErr *VMError

	// EvalResult holds the stringified final top-of-stack value after
	// EvalProgram returns normally (vm.cpp EndEval).
	EvalResult string
}

// New creates a VM ready to run f from its EntryPoint.
func New(f *bytecode.File, opts Options) *VM {
	vm := &VM{
		File:      f,
		Heap:      newHeap(),
		Stack:     newStack(opts.MaxStackSize),
		Vars:      make([]Value, len(f.SpecIdents)),
		TraceMode: opts.TraceMode,
	}
	vm.eb = errorBuilder{vm: vm}
	if opts.TraceMode == trace.Tail {
		vm.TraceRing = trace.NewRing(opts.TraceRingSize)
	}
	return vm
}

// emitTrace records one opcode dispatch event, honoring TraceMode
// (spec §4.4): Off does nothing, Tail appends to the ring buffer for a
// later on-error dump, On calls TraceSink immediately with the
// formatted line.
func (vm *VM) emitTrace(name, text string) {
	ev := trace.Event{Kind: trace.KindOp, Name: name, Text: text}
	switch vm.TraceMode {
	case trace.Tail:
		vm.TraceRing.Emit(ev)
	case trace.On:
		if vm.TraceSink != nil {
			vm.TraceSink(ev.Line())
		}
	}
}
