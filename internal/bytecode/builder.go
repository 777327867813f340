package bytecode

import (
	"math"

	"surge/internal/source"
)

// Builder assembles a File instruction-by-instruction. It exists so
// tests and the workers demo command can construct verified blobs
// without a front end (spec §1 treats the parser/compiler as an
// external collaborator).
type Builder struct {
	file          File
	labels        map[string]int32
	fixups        []fixup
	vtableFixups  []vtableFixup
	interner      *source.Interner
}

type fixup struct {
	at    int32 // index into file.Bytecode holding the placeholder
	label string
}

// vtableFixup is a pending File.Vtables[at] entry, resolved once its
// label's offset is known, mirroring fixup but against the vtable
// array instead of the instruction stream.
type vtableFixup struct {
	at    int32 // index into file.Vtables
	label string
}

// NewBuilder creates an empty Builder with CurrentVersion set.
func NewBuilder() *Builder {
	return &Builder{
		file:     File{BytecodeVersion: CurrentVersion},
		labels:   make(map[string]int32),
		interner: source.NewInterner(),
	}
}

// Emit appends op followed by its immediates to the instruction stream
// and returns the instruction offset op was placed at.
func (b *Builder) Emit(op Op, imm ...int32) int32 {
	at := int32(len(b.file.Bytecode))
	b.file.Bytecode = append(b.file.Bytecode, int32(op))
	b.file.Bytecode = append(b.file.Bytecode, imm...)
	return at
}

// EmitPushFloat emits a PUSHFLOAT instruction, splitting f's IEEE-754
// bits across the two int32 immediate words the opcode expects.
func (b *Builder) EmitPushFloat(f float64) int32 {
	bits := math.Float64bits(f)
	return b.Emit(OpPushFloat, int32(uint32(bits)), int32(uint32(bits>>32)))
}

// EmitFunStart emits a FUNSTART instruction and its full variable-arity
// header: [deffun][nargs][argVars...][ndef][defVars...][nkeepvars]
// [nownedvars][ownedVars...] (spec §4.4; original_source/vm.cpp
// VM::FunIntro's header layout).
func (b *Builder) EmitFunStart(deffun int32, argVars, defVars []int32, nKeepVars int32, ownedVars []int32) int32 {
	at := int32(len(b.file.Bytecode))
	b.file.Bytecode = append(b.file.Bytecode, int32(OpFunStart), deffun, int32(len(argVars)))
	b.file.Bytecode = append(b.file.Bytecode, argVars...)
	b.file.Bytecode = append(b.file.Bytecode, int32(len(defVars)))
	b.file.Bytecode = append(b.file.Bytecode, defVars...)
	b.file.Bytecode = append(b.file.Bytecode, nKeepVars, int32(len(ownedVars)))
	b.file.Bytecode = append(b.file.Bytecode, ownedVars...)
	return at
}

// Label records name as referring to the next instruction to be emitted.
func (b *Builder) Label(name string) {
	b.labels[name] = int32(len(b.file.Bytecode))
}

// EmitJump emits a jump-family opcode with a placeholder target that is
// patched to label's offset once Build resolves all labels.
func (b *Builder) EmitJump(op Op, label string) int32 {
	at := b.Emit(op, 0)
	b.fixups = append(b.fixups, fixup{at: at + 1, label: label})
	return at
}

// EmitCall emits a CALL with a placeholder target patched to label's
// offset once Build resolves all labels, letting callers reference a
// function defined later in the instruction stream.
func (b *Builder) EmitCall(label string) int32 {
	at := b.Emit(OpCall, 0)
	b.fixups = append(b.fixups, fixup{at: at + 1, label: label})
	return at
}

// EmitCallV emits a PUSHINT of slot followed by CALLV, the way a
// compiler would push a resolved dispatch-table index ahead of a
// virtual call (spec §4.7).
func (b *Builder) EmitCallV(slot int32) int32 {
	at := b.Emit(OpPushInt, slot)
	b.Emit(OpCallV)
	return at
}

// EmitJumpTable emits a JUMP_TABLE instruction covering [low, high],
// with one label per case (len(targets) must equal high-low+1) plus a
// defaultLabel for values outside the range, matching the
// [low][high][targets...][default] encoding VM.execJumpTable decodes.
func (b *Builder) EmitJumpTable(low, high int32, targets []string, defaultLabel string) int32 {
	at := b.Emit(OpJumpTable, low, high)
	for _, label := range targets {
		slotAt := int32(len(b.file.Bytecode))
		b.file.Bytecode = append(b.file.Bytecode, 0)
		b.fixups = append(b.fixups, fixup{at: slotAt, label: label})
	}
	slotAt := int32(len(b.file.Bytecode))
	b.file.Bytecode = append(b.file.Bytecode, 0)
	b.fixups = append(b.fixups, fixup{at: slotAt, label: defaultLabel})
	return at
}

// InternString adds s to the string table (deduplicated) and returns its
// index.
func (b *Builder) InternString(s string) int32 {
	id := b.interner.Intern(s)
	return int32(id)
}

// AddSpecIdent registers a specialized identifier (one global/local
// variable slot) and returns its index into vars.
func (b *Builder) AddSpecIdent(name string) int32 {
	b.file.SpecIdents = append(b.file.SpecIdents, name)
	return int32(len(b.file.SpecIdents) - 1)
}

// AddFunction registers a function table entry.
func (b *Builder) AddFunction(fn Function) {
	b.file.Functions = append(b.file.Functions, fn)
}

// AddType appends an entry to the type table and returns its index.
func (b *Builder) AddType(t TypeInfo) int32 {
	b.file.TypeTable = append(b.file.TypeTable, t)
	return int32(len(b.file.TypeTable) - 1)
}

// AddUDT appends a user-defined type and returns its index.
func (b *Builder) AddUDT(u UDT) int32 {
	b.file.UDTs = append(b.file.UDTs, u)
	return int32(len(b.file.UDTs) - 1)
}

// AddVtableSlot appends a virtual-call slot bound to label's eventual
// offset and returns its index, for use as the operand CALLV pops. A
// slot never pointed at a label (left absent) resolves to 0, meaning
// "not implemented for this type" (spec §4.7).
func (b *Builder) AddVtableSlot(label string) int32 {
	idx := int32(len(b.file.Vtables))
	b.file.Vtables = append(b.file.Vtables, 0)
	b.vtableFixups = append(b.vtableFixups, vtableFixup{at: idx, label: label})
	return idx
}

// AddEmptyVtableSlot reserves a vtable slot with no implementation,
// so CALLV against it raises "not implemented for this type".
func (b *Builder) AddEmptyVtableSlot() int32 {
	idx := int32(len(b.file.Vtables))
	b.file.Vtables = append(b.file.Vtables, 0)
	return idx
}

// SetEntryPoint sets the instruction offset EvalProgram will start at.
func (b *Builder) SetEntryPoint(ip int32) {
	b.file.EntryPoint = ip
}

// Build resolves all pending label fixups and returns the finished,
// verified File.
func (b *Builder) Build() (*File, error) {
	for _, fx := range b.fixups {
		target, ok := b.labels[fx.label]
		if !ok {
			panic("bytecode: unresolved label " + fx.label)
		}
		b.file.Bytecode[fx.at] = target
	}
	for _, fx := range b.vtableFixups {
		target, ok := b.labels[fx.label]
		if !ok {
			panic("bytecode: unresolved vtable label " + fx.label)
		}
		b.file.Vtables[fx.at] = target
	}
	b.file.StringTable = b.interner.Snapshot()

	out := b.file
	if err := Verify(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
