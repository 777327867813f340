package bytecode

// Op identifies one bytecode instruction (spec §4.4, §6).
//
// The real per-opcode implementations are treated by the spec as an
// external collaborator (§1); this is the compact library that ships
// with this repo so the interpreter and transpiler in this module are
// runnable and testable on their own. Arithmetic/comparison ops dispatch
// on the runtime Kind of their operands rather than being duplicated per
// static type — a deliberate simplification of the "opcodes resolved at
// compile time" design the spec describes for the (out of scope) real
// library; see DESIGN.md.
type Op int32

const (
	OpExit Op = iota
	OpFunStart
	OpCall
	OpCallV
	OpReturn
	OpJump
	OpJumpFalse
	OpBlockStart
	OpJumpTable

	OpPushInt
	OpPushFloat
	OpPushString
	OpPushNil
	OpPushVar
	OpSetVar
	OpPop
	OpDup

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpNot

	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe

	OpNewVector
	OpVecLen
	OpVecIndex
	OpVecIndexSet
	OpStrConcat

	OpNewObject
	OpFieldGet
	OpFieldSet

	OpStartWorkers
	OpWorkerWrite
	OpWorkerRead
	OpTerminateWorkers

	opMax
)

// ILUnknown marks an opcode whose immediate count is not statically
// known and must instead be read from the instruction stream itself
// (spec §6, "a table ILArity()[op] gives the static count, with
// ILUNKNOWN marking variable-arity ops").
const ILUnknown = -1

// arity gives the fixed immediate-word count for each opcode, or
// ILUnknown for the handful of variable-arity ops.
var arity = [opMax]int{
	OpExit:     0,
	OpFunStart: ILUnknown,
	OpCall:     1,
	OpCallV:    0,
	OpReturn:   1,
	OpJump:     1,
	OpJumpFalse:  1,
	OpBlockStart: 0,
	OpJumpTable:  ILUnknown,

	OpPushInt:    1,
	OpPushFloat:  2,
	OpPushString: 1,
	OpPushNil:    0,
	OpPushVar:    1,
	OpSetVar:     1,
	OpPop:        0,
	OpDup:        0,

	OpAdd: 0,
	OpSub: 0,
	OpMul: 0,
	OpDiv: 0,
	OpMod: 0,
	OpNeg: 0,
	OpNot: 0,

	OpLt: 0,
	OpLe: 0,
	OpGt: 0,
	OpGe: 0,
	OpEq: 0,
	OpNe: 0,

	OpNewVector:    2,
	OpVecLen:       0,
	OpVecIndex:     1,
	OpVecIndexSet:  0,
	OpStrConcat:    0,
	OpNewObject:    2,
	OpFieldGet:     1,
	OpFieldSet:     1,
	OpStartWorkers: 0,
	OpWorkerWrite:  0,
	OpWorkerRead:   1,
	OpTerminateWorkers: 0,
}

var names = [opMax]string{
	OpExit: "EXIT", OpFunStart: "FUNSTART", OpCall: "CALL", OpCallV: "CALLV",
	OpReturn: "RETURN", OpJump: "JUMP", OpJumpFalse: "JUMPFALSE",
	OpBlockStart: "BLOCK_START", OpJumpTable: "JUMP_TABLE",
	OpPushInt: "PUSHINT", OpPushFloat: "PUSHFLOAT", OpPushString: "PUSHSTR",
	OpPushNil: "PUSHNIL", OpPushVar: "PUSHVAR", OpSetVar: "LVAL_VAR",
	OpPop: "POP", OpDup: "DUP",
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpDiv: "DIV", OpMod: "MOD",
	OpNeg: "NEG", OpNot: "NOT",
	OpLt: "LT", OpLe: "LE", OpGt: "GT", OpGe: "GE", OpEq: "EQ", OpNe: "NE",
	OpNewVector: "NEWVEC", OpVecLen: "VECLEN", OpVecIndex: "VECIDX",
	OpVecIndexSet: "VECIDXSET", OpStrConcat: "STRCAT",
	OpNewObject: "NEWOBJECT", OpFieldGet: "FLDGET", OpFieldSet: "FLDSET",
	OpStartWorkers: "STARTWORKERS", OpWorkerWrite: "WORKERWRITE",
	OpWorkerRead: "WORKERREAD", OpTerminateWorkers: "TERMWORKERS",
}

// ILArity returns the fixed immediate count for op, or ILUnknown.
func ILArity(op Op) int {
	if op < 0 || int(op) >= len(arity) {
		return ILUnknown
	}
	return arity[op]
}

// Name returns the disassembly mnemonic for op.
func (op Op) Name() string {
	if op < 0 || int(op) >= len(names) || names[op] == "" {
		return "UNKNOWN"
	}
	return names[op]
}

// IsLValue reports whether op belongs to the L-value family: it writes
// through the top of stack rather than only reading it (spec §4.4).
func (op Op) IsLValue() bool {
	switch op {
	case OpSetVar, OpVecIndexSet, OpFieldSet:
		return true
	default:
		return false
	}
}

// IsJump reports whether op transfers control (unconditionally or
// conditionally) to a target encoded as one of its immediates.
func (op Op) IsJump() bool {
	switch op {
	case OpJump, OpJumpFalse:
		return true
	default:
		return false
	}
}

// IsCall reports whether op belongs to the call family (spec §4.4):
// its transpiled form needs a continuation function pointer.
func (op Op) IsCall() bool {
	switch op {
	case OpCall, OpCallV:
		return true
	default:
		return false
	}
}
