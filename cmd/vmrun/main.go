package main

import (
	"os"

	"github.com/spf13/cobra"

	"surge/internal/version"

	// Registers Start into vm.StartWorkersHook so STARTWORKERS has
	// somewhere to go; vmrun never calls into internal/worker directly.
	_ "surge/internal/worker"
)

var rootCmd = &cobra.Command{
	Use:   "vmrun",
	Short: "Surge bytecode VM runner",
	Long:  `vmrun executes and transpiles bytecode blobs produced by the surge compiler.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupColor(cmd)
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(transpileCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(workersCmd)

	rootCmd.PersistentFlags().String("config", "vmrun.toml", "path to vmrun config file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
