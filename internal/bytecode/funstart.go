package bytecode

// FunStartHeader is the decoded form of a FUNSTART instruction's
// variable-arity operand list (spec §4.4; original_source/vm.cpp
// VM::FunIntro/VM::FunOut):
//
//	[deffun][nargs][argvars...][ndef][defvars...][nkeepvars][nownedvars][ownedvars...]
//
// Both internal/vm's interpreter and internal/transpile's C emitter
// decode this same layout - the interpreter to drive FunIntro/FunOut at
// runtime, the transpiler to unroll the equivalent C statements once,
// at compile time.
type FunStartHeader struct {
	DefFun    int32
	ArgVars   []int32
	DefVars   []int32
	NKeepVars int32
	OwnedVars []int32
	// Words is the instruction-stream length of this header, including
	// the FUNSTART opcode word itself.
	Words int32
}

// DecodeFunStart parses the FUNSTART header starting at ip, the offset
// of the FUNSTART opcode word itself.
func DecodeFunStart(code []int32, ip int32) FunStartHeader {
	p := ip + 1 // skip the FUNSTART opcode word
	var h FunStartHeader
	h.DefFun = code[p]
	p++
	nargs := code[p]
	p++
	h.ArgVars = append(h.ArgVars, code[p:p+nargs]...)
	p += nargs
	ndef := code[p]
	p++
	h.DefVars = append(h.DefVars, code[p:p+ndef]...)
	p += ndef
	h.NKeepVars = code[p]
	p++
	nowned := code[p]
	p++
	h.OwnedVars = append(h.OwnedVars, code[p:p+nowned]...)
	p += nowned
	h.Words = p - ip
	return h
}
