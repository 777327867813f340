package bytecode

import "testing"

func TestBuilderEmitAndBuild(t *testing.T) {
	b := NewBuilder()
	b.Emit(OpPushInt, 1)
	b.Emit(OpPushInt, 2)
	b.Emit(OpAdd)
	b.Emit(OpReturn, 1)
	b.SetEntryPoint(0)

	f, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.BytecodeVersion != CurrentVersion {
		t.Errorf("BytecodeVersion = %d, want %d", f.BytecodeVersion, CurrentVersion)
	}
	wantLen := int32(0)
	for _, op := range []Op{OpPushInt, OpPushInt, OpAdd, OpReturn} {
		wantLen += 1 + int32(max(ILArity(op), 0))
	}
	if int32(len(f.Bytecode)) != wantLen {
		t.Errorf("len(Bytecode) = %d, want %d", len(f.Bytecode), wantLen)
	}
}

func TestBuilderJumpFixup(t *testing.T) {
	b := NewBuilder()
	b.EmitJump(OpJump, "target")
	b.Emit(OpPushInt, 99) // skipped
	b.Label("target")
	targetIP := b.Emit(OpPushInt, 1)
	b.Emit(OpReturn, 1)
	b.SetEntryPoint(0)

	f, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.Bytecode[1] != targetIP {
		t.Errorf("jump target = %d, want %d", f.Bytecode[1], targetIP)
	}
}

func TestBuilderUnresolvedLabelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unresolved label")
		}
	}()
	b := NewBuilder()
	b.EmitJump(OpJump, "nowhere")
	_, _ = b.Build()
}

func TestVerifyRejectsVersionMismatch(t *testing.T) {
	f := &File{BytecodeVersion: CurrentVersion + 1}
	err := Verify(f)
	if err == nil {
		t.Fatal("expected version mismatch error")
	}
	var vErr *ErrVersionMismatch
	if !asVersionMismatch(err, &vErr) {
		t.Fatalf("error = %v, want *ErrVersionMismatch", err)
	}
}

func asVersionMismatch(err error, target **ErrVersionMismatch) bool {
	if e, ok := err.(*ErrVersionMismatch); ok {
		*target = e
		return true
	}
	return false
}

func TestVerifyRejectsBadEntryPoint(t *testing.T) {
	f := &File{BytecodeVersion: CurrentVersion, Bytecode: []int32{1, 2}, EntryPoint: 5}
	if err := Verify(f); err == nil {
		t.Fatal("expected out-of-range entry point error")
	}
}

func TestInternStringDeduplicates(t *testing.T) {
	b := NewBuilder()
	id1 := b.InternString("hello")
	id2 := b.InternString("hello")
	id3 := b.InternString("world")
	if id1 != id2 {
		t.Errorf("same string interned twice got different ids: %d vs %d", id1, id2)
	}
	if id1 == id3 {
		t.Errorf("different strings got same id %d", id1)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
