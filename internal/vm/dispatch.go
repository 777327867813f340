package vm

import (
	"fmt"

	"fortio.org/safecast"

	"surge/internal/bytecode"
	"surge/internal/trace"
)

// step executes the instruction at ip and returns the next instruction
// pointer, or done=true once an EXIT has run. This is the VM's
// dispatch loop (spec §4.4): each case is the pure U_<N> logic a
// CVM_<N> trampoline would call after optionally tracing.
func (vm *VM) step(ip int32) (next int32, done bool) {
	code := vm.File.Bytecode
	op := bytecode.Op(code[ip])

	if vm.TraceMode != trace.Off {
		vm.emitTrace(op.Name(), vm.traceOperandText(ip, op))
	}

	switch op {
	case bytecode.OpExit:
		return 0, true

	case bytecode.OpFunStart:
		h := frameHeader(code, ip)
		vm.FunIntro(ip)
		return ip + h.Words, false

	case bytecode.OpCall:
		target := code[ip+1]
		vm.ReturnIPs = append(vm.ReturnIPs, ip+2)
		return target, false

	case bytecode.OpCallV:
		target := vm.resolveVtable(vm.Stack.Pop())
		vm.ReturnIPs = append(vm.ReturnIPs, ip+1)
		return target, false

	case bytecode.OpReturn:
		nrv := code[ip+1]
		vm.FunOut(nrv)
		if len(vm.ReturnIPs) == 0 {
			return 0, true
		}
		ret := vm.ReturnIPs[len(vm.ReturnIPs)-1]
		vm.ReturnIPs = vm.ReturnIPs[:len(vm.ReturnIPs)-1]
		return ret, false

	case bytecode.OpJump:
		return code[ip+1], false

	case bytecode.OpJumpFalse:
		cond := vm.Stack.Pop()
		if !cond.Truthy() {
			return code[ip+1], false
		}
		return ip + 2, false

	case bytecode.OpBlockStart:
		return ip + 1, false

	case bytecode.OpJumpTable:
		return vm.execJumpTable(ip)

	case bytecode.OpPushInt:
		vm.Stack.Push(IntVal(int64(code[ip+1]), -1))
		return ip + 2, false

	case bytecode.OpPushFloat:
		vm.Stack.Push(FloatVal(decodeFloat(code[ip+1], code[ip+2]), -1))
		return ip + 3, false

	case bytecode.OpPushString:
		idx := code[ip+1]
		s := ""
		if int(idx) < len(vm.File.StringTable) {
			s = vm.File.StringTable[idx]
		}
		vm.Stack.Push(vm.Heap.NewString(s, -1, ip))
		return ip + 2, false

	case bytecode.OpPushNil:
		vm.Stack.Push(Nil)
		return ip + 1, false

	case bytecode.OpPushVar:
		idx := code[ip+1]
		vm.Stack.Push(vm.Inc(vm.Vars[idx]))
		return ip + 2, false

	case bytecode.OpSetVar:
		idx := code[ip+1]
		v := vm.Stack.Top()
		vm.Dec(vm.Vars[idx])
		vm.Vars[idx] = vm.Inc(v)
		return ip + 2, false

	case bytecode.OpPop:
		vm.Dec(vm.Stack.Pop())
		return ip + 1, false

	case bytecode.OpDup:
		vm.Stack.Push(vm.Inc(vm.Stack.Top()))
		return ip + 1, false

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		vm.execArith(op)
		return ip + 1, false

	case bytecode.OpNeg, bytecode.OpNot:
		vm.execUnary(op)
		return ip + 1, false

	case bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe, bytecode.OpEq, bytecode.OpNe:
		vm.execCompare(op)
		return ip + 1, false

	case bytecode.OpNewVector:
		return vm.execNewVector(ip)

	case bytecode.OpVecLen:
		return vm.execVecLen(ip)

	case bytecode.OpVecIndex:
		return vm.execVecIndex(ip)

	case bytecode.OpVecIndexSet:
		return vm.execVecIndexSet(ip)

	case bytecode.OpStrConcat:
		return vm.execStrConcat(ip)

	case bytecode.OpNewObject:
		return vm.execNewObject(ip)

	case bytecode.OpFieldGet:
		return vm.execFieldGet(ip)

	case bytecode.OpFieldSet:
		return vm.execFieldSet(ip)

	case bytecode.OpStartWorkers:
		return vm.execStartWorkers(ip)

	case bytecode.OpWorkerWrite:
		return vm.execWorkerWrite(ip)

	case bytecode.OpWorkerRead:
		return vm.execWorkerRead(ip)

	case bytecode.OpTerminateWorkers:
		return vm.execTerminateWorkers(ip)

	default:
		vm.SeriousError(PanicAssertion, fmt.Sprintf("unimplemented opcode %s", op.Name()))
		return 0, true
	}
}

// execJumpTable implements the JUMP_TABLE family: [low][high][targets
// for low..high][default], popping the switched-on int (spec §4.4,
// tocpp.cpp's "switch(pop()) { case i: ... default: }" lowering).
func (vm *VM) execJumpTable(ip int32) (int32, bool) {
	code := vm.File.Bytecode
	low := code[ip+1]
	high := code[ip+2]
	n := high - low + 1
	base := ip + 3
	v := vm.Stack.Pop().Int
	if v >= int64(low) && v <= int64(high) {
		return code[base+int32(v)-low], false
	}
	return code[base+n], false
}

// resolveVtable implements CALLV's dispatch: v is the popped vtable
// slot index (an int narrowed with fortio.org/safecast the same way
// original_source/vm.cpp's virtual-call index arithmetic is checked
// against the class hierarchy's method table size). A slot outside the
// table, or one whose entry is the sentinel 0, means the method has no
// override for this runtime type (blob.go's doc comment on
// File.Vtables), which is a nil-reference-shaped error, not a crash.
func (vm *VM) resolveVtable(v Value) int32 {
	slot, err := safecast.Conv[int32](v.Int)
	if err != nil {
		vm.nilReference("virtual call: slot index out of range")
	}
	if slot < 0 || int(slot) >= len(vm.File.Vtables) || vm.File.Vtables[slot] == 0 {
		vm.nilReference("virtual call: not implemented for this type")
	}
	return vm.File.Vtables[slot]
}

// traceOperandText renders the top-of-stack (if any) for a trace line,
// analogous to the "op - value" format original_source/vm.cpp writes
// into TraceStream.
func (vm *VM) traceOperandText(ip int32, op bytecode.Op) string {
	if vm.Stack.sp < 0 {
		return ""
	}
	return vm.Display(vm.Stack.Top())
}

func decodeFloat(lo, hi int32) float64 {
	bits := uint64(uint32(lo)) | uint64(uint32(hi))<<32
	return float64FromBits(bits)
}
