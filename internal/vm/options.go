package vm

import "surge/internal/trace"

// Options configures a VM instance (spec §6 external interfaces: max
// stack size, trace mode). Populated from internal/config and CLI
// flags by cmd/vmrun.
type Options struct {
	MaxStackSize  int
	TraceMode     trace.Mode
	TraceRingSize int
}

// DefaultOptions returns the options a bare `vmrun run` invocation uses.
func DefaultOptions() Options {
	return Options{
		MaxStackSize:  defaultMaxStackSize,
		TraceMode:     trace.Off,
		TraceRingSize: trace.DefaultRingCapacity,
	}
}
