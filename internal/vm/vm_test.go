package vm_test

import (
	"strings"
	"testing"

	"surge/internal/bytecode"
	"surge/internal/vm"
)

func buildAndRun(t *testing.T, build func(b *bytecode.Builder)) (string, *vm.VMError) {
	t.Helper()
	b := bytecode.NewBuilder()
	build(b)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return vm.New(file, vm.DefaultOptions()).Run()
}

func TestPushAddReturn(t *testing.T) {
	result, verr := buildAndRun(t, func(b *bytecode.Builder) {
		entry := b.EmitFunStart(0, nil, nil, 0, nil)
		b.Emit(bytecode.OpPushInt, 1)
		b.Emit(bytecode.OpPushInt, 2)
		b.Emit(bytecode.OpAdd)
		b.Emit(bytecode.OpReturn, 1)
		b.SetEntryPoint(entry)
	})
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if result != "3" {
		t.Fatalf("got %q, want %q", result, "3")
	}
}

func TestRecursiveFactorial(t *testing.T) {
	result, verr := buildAndRun(t, func(b *bytecode.Builder) {
		n := b.AddSpecIdent("n")

		entry := b.EmitFunStart(0, nil, nil, 0, nil)
		b.Emit(bytecode.OpPushInt, 5)
		b.EmitCall("factorial")
		b.Emit(bytecode.OpReturn, 1)

		b.Label("factorial")
		b.EmitFunStart(1, []int32{n}, nil, 0, nil)
		b.Emit(bytecode.OpPushVar, n)
		b.Emit(bytecode.OpPushInt, 1)
		b.Emit(bytecode.OpLe)
		b.EmitJump(bytecode.OpJumpFalse, "recurse")
		b.Emit(bytecode.OpPushInt, 1)
		b.Emit(bytecode.OpReturn, 1)

		b.Label("recurse")
		b.Emit(bytecode.OpPushVar, n)
		b.Emit(bytecode.OpPushVar, n)
		b.Emit(bytecode.OpPushInt, 1)
		b.Emit(bytecode.OpSub)
		b.EmitCall("factorial")
		b.Emit(bytecode.OpMul)
		b.Emit(bytecode.OpReturn, 1)

		b.SetEntryPoint(entry)
	})
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if result != "120" {
		t.Fatalf("got %q, want %q", result, "120")
	}
}

func TestVectorRefcountLeakFree(t *testing.T) {
	b := bytecode.NewBuilder()
	strIdx := b.InternString("a")
	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	b.Emit(bytecode.OpPushString, strIdx)
	b.Emit(bytecode.OpPushString, strIdx)
	b.Emit(bytecode.OpPushString, strIdx)
	b.Emit(bytecode.OpNewVector, -1, 3)
	b.Emit(bytecode.OpPop)
	b.Emit(bytecode.OpPushInt, 0)
	b.Emit(bytecode.OpReturn, 1)
	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := vm.New(file, vm.DefaultOptions())
	result, verr := m.Run()
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if result != "0" {
		t.Fatalf("got %q, want %q", result, "0")
	}
	leaks := m.FindLeaks()
	if len(leaks) != 0 {
		t.Fatalf("expected no leaks, got %d: %v", len(leaks), m.LeakReport())
	}
}

func TestVecIndexOutOfRange(t *testing.T) {
	b := bytecode.NewBuilder()
	strIdx := b.InternString("x")
	entry := b.EmitFunStart(0, nil, nil, 0, nil)
	b.Emit(bytecode.OpPushString, strIdx)
	b.Emit(bytecode.OpPushString, strIdx)
	b.Emit(bytecode.OpPushString, strIdx)
	b.Emit(bytecode.OpNewVector, -1, 3)
	b.Emit(bytecode.OpPushInt, 5)
	b.Emit(bytecode.OpVecIndex, 1)
	b.Emit(bytecode.OpReturn, 1)
	b.SetEntryPoint(entry)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	_, verr := vm.New(file, vm.DefaultOptions()).Run()
	if verr == nil {
		t.Fatal("expected an out-of-range error, got none")
	}
	if !strings.Contains(verr.Message, "index 5 out of range 3 of:") {
		t.Fatalf("unexpected error message: %q", verr.Message)
	}
}

func TestDivisionByZero(t *testing.T) {
	_, verr := buildAndRun(t, func(b *bytecode.Builder) {
		entry := b.EmitFunStart(0, nil, nil, 0, nil)
		b.Emit(bytecode.OpPushInt, 1)
		b.Emit(bytecode.OpPushInt, 0)
		b.Emit(bytecode.OpDiv)
		b.Emit(bytecode.OpReturn, 1)
		b.SetEntryPoint(entry)
	})
	if verr == nil {
		t.Fatal("expected a division by zero error")
	}
	if verr.Code != vm.PanicOutOfRange {
		// Error() always raises PanicOutOfRange today; this asserts the
		// baseline doesn't silently swallow the panic rather than pinning
		// a code that may later be split out per-condition.
		t.Fatalf("unexpected code: %v", verr.Code)
	}
}
