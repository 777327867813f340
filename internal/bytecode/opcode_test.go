package bytecode

import "testing"

func TestILArityKnownOps(t *testing.T) {
	cases := map[Op]int{
		OpExit:      0,
		OpCall:      1,
		OpPushInt:   1,
		OpPushFloat: 2,
		OpAdd:       0,
	}
	for op, want := range cases {
		if got := ILArity(op); got != want {
			t.Errorf("ILArity(%s) = %d, want %d", op.Name(), got, want)
		}
	}
}

func TestILArityVariableOps(t *testing.T) {
	for _, op := range []Op{OpFunStart, OpJumpTable} {
		if got := ILArity(op); got != ILUnknown {
			t.Errorf("ILArity(%s) = %d, want ILUnknown", op.Name(), got)
		}
	}
}

func TestOpFamilyPredicates(t *testing.T) {
	if !OpSetVar.IsLValue() {
		t.Error("OpSetVar should be L-value family")
	}
	if OpAdd.IsLValue() {
		t.Error("OpAdd should not be L-value family")
	}
	if !OpJump.IsJump() {
		t.Error("OpJump should be jump family")
	}
	if !OpCall.IsCall() {
		t.Error("OpCall should be call family")
	}
	if OpCallV.IsLValue() || !OpCallV.IsCall() {
		t.Error("OpCallV should be call, not L-value")
	}
}

func TestOpNameUnknown(t *testing.T) {
	var bogus Op = 9999
	if bogus.Name() != "UNKNOWN" {
		t.Errorf("Name() = %q, want UNKNOWN", bogus.Name())
	}
}
