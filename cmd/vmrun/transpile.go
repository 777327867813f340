package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"surge/internal/transpile"
	runtimeembed "surge/runtime"
)

var transpileCmd = &cobra.Command{
	Use:   "transpile <file.sgb>",
	Short: "Emit a standalone C translation of a bytecode blob",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranspile,
}

func init() {
	transpileCmd.Flags().StringP("output", "o", "", "output .c path (default: stdout)")
}

func runTranspile(cmd *cobra.Command, args []string) error {
	f, err := loadBlob(args[0])
	if err != nil {
		return err
	}

	src, err := transpile.Emit(f)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), src)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(src), 0o644); err != nil {
		return err
	}
	return extractRuntime(filepath.Dir(outPath))
}

// extractRuntime copies the embedded surge_rt.h/surge_rt.c alongside a
// transpiled .c file, so the generated translation unit's #include
// "surge_rt.h" resolves without the caller having to find this module's
// runtime/native directory by hand.
func extractRuntime(dir string) error {
	entries, err := fs.ReadDir(runtimeembed.NativeRuntimeFS(), "native")
	if err != nil {
		return fmt.Errorf("vmrun: reading embedded runtime: %w", err)
	}
	for _, ent := range entries {
		data, err := fs.ReadFile(runtimeembed.NativeRuntimeFS(), "native/"+ent.Name())
		if err != nil {
			return fmt.Errorf("vmrun: reading embedded %s: %w", ent.Name(), err)
		}
		if err := os.WriteFile(filepath.Join(dir, ent.Name()), data, 0o644); err != nil {
			return fmt.Errorf("vmrun: writing %s: %w", ent.Name(), err)
		}
	}
	return nil
}
