package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"surge/internal/config"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Show the configured worker thread cap",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "worker_limit: %d\n", cfg.Workers())
		return nil
	},
}
