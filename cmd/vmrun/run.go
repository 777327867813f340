package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"surge/internal/bytecode"
	"surge/internal/config"
	"surge/internal/trace"
	"surge/internal/ui"
	"surge/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run <file.sgb>",
	Short: "Execute a compiled bytecode blob",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func init() {
	runCmd.Flags().String("trace", "off", "execution trace mode (off|on|tail)")
	runCmd.Flags().Int("max-stack-size", 0, "operand stack ceiling in Values (0: use config/default)")
	runCmd.Flags().Bool("ui", false, "show a live trace view while the program runs (implies --trace on)")
}

func runExecution(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	opts, err := cfg.ToOptions()
	if err != nil {
		return err
	}

	traceFlag, _ := cmd.Flags().GetString("trace")
	if traceFlag != "off" {
		mode, err := trace.ParseMode(traceFlag)
		if err != nil {
			return err
		}
		opts.TraceMode = mode
	}
	if maxStack, _ := cmd.Flags().GetInt("max-stack-size"); maxStack > 0 {
		opts.MaxStackSize = maxStack
	}

	f, err := loadBlob(args[0])
	if err != nil {
		return err
	}

	showUI, _ := cmd.Flags().GetBool("ui")
	if showUI {
		opts.TraceMode = trace.On
	}

	machine := vm.New(f, opts)

	var result string
	var runErr *vm.VMError
	if showUI {
		result, runErr = runWithUI(filepath.Base(args[0]), machine)
	} else {
		if opts.TraceMode == trace.On {
			machine.TraceSink = func(line string) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		}
		result, runErr = machine.Run()
	}

	if runErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), runErr.Error())
		os.Exit(1)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)

	return reportLeaks(cmd, machine)
}

// reportLeaks prints machine's leak report to stderr, or - once it
// grows past vm.ShouldWriteLeakFile's threshold - spills the full
// report to leaks.txt in the working directory instead, the way
// original_source/vm.cpp's DumpLeaks falls back to a file for large
// reports rather than flooding the console.
func reportLeaks(cmd *cobra.Command, machine *vm.VM) error {
	lines := machine.LeakReport()
	if len(lines) == 0 {
		return nil
	}

	if !vm.ShouldWriteLeakFile(lines) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d leaked heap object(s) at exit\n", len(lines))
		for _, l := range lines {
			fmt.Fprintln(cmd.ErrOrStderr(), "  "+l.String())
		}
		return nil
	}

	const leakFile = "leaks.txt"
	var buf strings.Builder
	for _, l := range lines {
		buf.WriteString(l.String())
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(leakFile, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("vmrun: writing %s: %w", leakFile, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d leaked heap object(s) at exit, see %s\n", len(lines), leakFile)
	return nil
}

// runWithUI drives machine.Run in the background while a Bubble Tea
// program renders its trace lines live, the way runBuildWithUI in the
// teacher's own cmd/surge streamed buildpipeline.Event into a
// progress.Model (_examples/vovakirdan-surge/cmd/surge/ui_runner.go).
func runWithUI(title string, machine *vm.VM) (string, *vm.VMError) {
	events := make(chan ui.Event, 256)
	machine.TraceSink = func(line string) {
		events <- ui.Event{Line: line}
	}

	type outcome struct {
		result string
		err    *vm.VMError
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		result, err := machine.Run()
		outcomeCh <- outcome{result: result, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewTraceModel(title, events), tea.WithOutput(os.Stdout))
	_, _ = program.Run()

	out := <-outcomeCh
	return out.result, out.err
}

// loadBlob reads and msgpack-decodes a bytecode blob from path, then
// verifies it via bytecode.Load.
func loadBlob(path string) (*bytecode.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vmrun: %w", err)
	}
	var f bytecode.File
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("vmrun: decode %s: %w", path, err)
	}
	if err := bytecode.Load(&f); err != nil {
		return nil, fmt.Errorf("vmrun: %w", err)
	}
	return &f, nil
}
