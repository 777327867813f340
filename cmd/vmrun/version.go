package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"surge/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show vmrun build fingerprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := strings.TrimSpace(version.Version)
		if v == "" {
			v = "dev"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vmrun %s\n", v)
		if commit := strings.TrimSpace(version.GitCommit); commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
		}
		return nil
	},
}
