// Package config loads vmrun's on-disk settings: the handful of VM knobs
// (stack sizing, trace ring capacity, worker thread cap) that are more
// natural to keep in a project file than to repeat on every invocation.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"surge/internal/trace"
	"surge/internal/vm"
)

// Config mirrors the subset of vm.Options and worker limits a vmrun.toml
// may override. Zero values mean "use the built-in default".
type Config struct {
	MaxStackSize  int    `toml:"max_stack_size"`
	TraceMode     string `toml:"trace_mode"`
	TraceRingSize int    `toml:"trace_ring_size"`
	WorkerLimit   int64  `toml:"worker_limit"`
}

// DefaultWorkerLimit is the worker_limit Workers reports when the file
// sets none. It is shown by `vmrun workers`; STARTWORKERS does not read
// it and caps thread counts at a fixed 256.
const DefaultWorkerLimit = 256

// Load reads and parses a TOML config file. A missing file is not an
// error: it yields a zero Config, so callers can always layer it under
// vm.DefaultOptions().
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ToOptions builds vm.Options from cfg, falling back to vm.DefaultOptions
// for any field cfg leaves at zero.
func (cfg Config) ToOptions() (vm.Options, error) {
	opts := vm.DefaultOptions()
	if cfg.MaxStackSize > 0 {
		opts.MaxStackSize = cfg.MaxStackSize
	}
	if cfg.TraceRingSize > 0 {
		opts.TraceRingSize = cfg.TraceRingSize
	}
	if cfg.TraceMode != "" {
		mode, err := trace.ParseMode(cfg.TraceMode)
		if err != nil {
			return opts, err
		}
		opts.TraceMode = mode
	}
	return opts, nil
}

// Workers returns the worker thread cap cfg specifies, or
// DefaultWorkerLimit if unset.
func (cfg Config) Workers() int64 {
	if cfg.WorkerLimit > 0 {
		return cfg.WorkerLimit
	}
	return DefaultWorkerLimit
}
