package vm

// StackFrame records one active call's bookkeeping: where its FUNSTART
// header lives in the instruction stream, and where its locals begin on
// the operand stack (vm.cpp's StackFrame{funstart, spstart}).
type StackFrame struct {
	FunStart int32 // instruction offset of the function's FUNSTART opcode
	SPStart  int   // operand stack depth when this frame's locals begin
}

// funcIDAt reads the defined-function id out of a FUNSTART header,
// mirroring "int deffun = *(stackframes.back().funstart)" in
// original_source/vm.cpp VM::Error. funstart is the offset of the
// FUNSTART opcode word itself; the deffun id is the word right after it.
func (vm *VM) funcIDAt(funstart int32) int32 {
	return vm.File.Bytecode[funstart+1]
}
