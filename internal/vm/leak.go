package vm

import "fmt"

// LeakLine is one formatted entry of a leak report, mirroring the
// "<value> = <description>" lines original_source/vm.cpp's DumpLeaks
// writes for each surviving allocation.
type LeakLine struct {
	TypeName string
	Refcount int64
	Handle   Handle
	Text     string
}

// LeakReport formats every object FindLeaks returns, in the same
// refcount-then-type-index order DumpLeaks sorts by. A real program
// leaves nothing here; a non-empty report indicates a reference cycle,
// since this VM has no cycle collector (spec §4.3 Non-goals).
func (vm *VM) LeakReport() []LeakLine {
	leaks := vm.FindLeaks()
	lines := make([]LeakLine, 0, len(leaks))
	for _, obj := range leaks {
		lines = append(lines, LeakLine{
			TypeName: vm.leakTypeName(obj),
			Refcount: obj.Refcount,
			Handle:   obj.Handle,
			Text:     vm.describeObject(obj),
		})
	}
	return lines
}

func (vm *VM) leakTypeName(obj *Object) string {
	kind := typeKindOf(vm.File, obj.TypeIdx)
	if kind.IsUDT() && int(obj.TypeIdx) < len(vm.File.TypeTable) {
		ti := vm.File.TypeTable[obj.TypeIdx]
		if int(ti.StructIndex) < len(vm.File.UDTs) {
			return vm.File.UDTs[ti.StructIndex].Name
		}
	}
	return kind.String()
}

// String renders one leak line the way a CLI report would print it.
func (l LeakLine) String() string {
	return fmt.Sprintf("%s = %s (refcount %d)", l.TypeName, l.Text, l.Refcount)
}

// leakFileThreshold is the number of leak lines above which the CLI
// should write the full report to a file instead of the console
// (vm.cpp DumpLeaks: "if (leaks.size() < 50) ... else write to file").
const leakFileThreshold = 50

// ShouldWriteLeakFile reports whether a report this long should be
// written to a file rather than printed directly.
func ShouldWriteLeakFile(lines []LeakLine) bool {
	return len(lines) >= leakFileThreshold
}
