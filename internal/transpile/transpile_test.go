package transpile_test

import (
	"strings"
	"testing"

	"surge/internal/bytecode"
	"surge/internal/transpile"
)

func TestEmitPushAddReturn(t *testing.T) {
	b := bytecode.NewBuilder()
	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	b.Emit(bytecode.OpPushInt, 1)
	b.Emit(bytecode.OpPushInt, 2)
	b.Emit(bytecode.OpAdd)
	b.Emit(bytecode.OpReturn, 1)
	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := transpile.Emit(file)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "int sg_main(void)") {
		t.Fatal("missing sg_main entry point")
	}
	if !strings.Contains(out, "sg_add(a, b)") {
		t.Fatal("missing ADD lowering")
	}
	if strings.Contains(out, "retaddrs") || strings.Contains(out, "goto *") {
		t.Fatal("RETURN should compile to a plain C return, not a software return stack")
	}
}

func TestEmitCallLowersToDirectCFunctionCall(t *testing.T) {
	b := bytecode.NewBuilder()
	n := b.AddSpecIdent("n")

	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	b.Emit(bytecode.OpPushInt, 5)
	b.EmitCall("factorial")
	b.Emit(bytecode.OpReturn, 1)

	b.Label("factorial")
	b.EmitFunStart(1, []int32{n}, nil, 0, nil)
	b.Emit(bytecode.OpPushVar, n)
	b.Emit(bytecode.OpReturn, 1)

	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := transpile.Emit(file)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "static void fun_") {
		t.Fatal("expected one C function per bytecode function")
	}
	if strings.Contains(out, "&&L") || strings.Contains(out, "goto *") {
		t.Fatal("CALL should be a plain C function call, not computed goto")
	}
}

func TestEmitCallVDispatchesThroughVtables(t *testing.T) {
	b := bytecode.NewBuilder()

	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	slot := b.AddVtableSlot("impl")
	b.EmitCallV(slot)
	b.Emit(bytecode.OpReturn, 0)

	b.Label("impl")
	b.EmitFunStart(1, nil, nil, 0, nil)
	b.Emit(bytecode.OpPushNil)
	b.Emit(bytecode.OpReturn, 1)

	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if file.Vtables[slot] == 0 {
		t.Fatal("vtable slot did not resolve to the labeled function")
	}

	out, err := transpile.Emit(file)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "vtables[") {
		t.Fatal("expected a vtables[] array")
	}
	if !strings.Contains(out, "vtables[slot]();") {
		t.Fatal("CALLV should dispatch through the vtables array")
	}
}

func TestEmitCallVOnAbsentSlotAbortsAtRuntime(t *testing.T) {
	b := bytecode.NewBuilder()
	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	slot := b.AddEmptyVtableSlot()
	b.EmitCallV(slot)
	b.Emit(bytecode.OpReturn, 0)
	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := transpile.Emit(file)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, `sg_unsupported("CALLV: not implemented for this type")`) {
		t.Fatal("an absent vtable entry should guard with sg_unsupported at runtime, not fail the build")
	}
}

func TestEmitJumpTableLowersToSwitch(t *testing.T) {
	b := bytecode.NewBuilder()
	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	b.Emit(bytecode.OpPushInt, 1)
	b.EmitJumpTable(0, 1, []string{"zero", "one"}, "def")
	b.Label("zero")
	b.Emit(bytecode.OpPushInt, 0)
	b.Emit(bytecode.OpReturn, 1)
	b.Label("one")
	b.Emit(bytecode.OpPushInt, 1)
	b.Emit(bytecode.OpReturn, 1)
	b.Label("def")
	b.Emit(bytecode.OpPushNil)
	b.Emit(bytecode.OpReturn, 1)
	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := transpile.Emit(file)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "switch (stack[sp--].as.i)") {
		t.Fatal("JUMP_TABLE should lower to a C switch")
	}
	if !strings.Contains(out, "default: goto") {
		t.Fatal("JUMP_TABLE's out-of-range case should lower to the default label")
	}
}

func TestEmitWorkerOpcodesAbortRatherThanFailBuild(t *testing.T) {
	b := bytecode.NewBuilder()
	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	b.Emit(bytecode.OpPushInt, 4)
	b.Emit(bytecode.OpStartWorkers)
	b.Emit(bytecode.OpReturn, 0)
	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := transpile.Emit(file)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, `sg_unsupported("STARTWORKERS")`) {
		t.Fatal("STARTWORKERS should lower to a runtime abort naming the opcode")
	}
}

func TestEmitUnknownOpcodeErrors(t *testing.T) {
	b := bytecode.NewBuilder()
	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	b.Emit(bytecode.Op(9999))
	b.Emit(bytecode.OpReturn, 0)
	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := transpile.Emit(file); err == nil {
		t.Fatal("expected an error for an opcode with no C lowering")
	}
}
