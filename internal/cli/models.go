package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/termexplain/internal/providers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, info := range providers.Catalog {
			fmt.Fprintf(out, "%s:\n", info.Provider)
			for i, m := range info.Models {
				if i == 0 {
					fmt.Fprintf(out, "  - %s (default)\n", m)
					continue
				}
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured provider is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Checking %s (%s)...\n", cfg.Provider, cfg.Model)

		p, err := newProvider(cfg)
		if err != nil {
			code := ExitRuntimeError
			if providers.IsAuthError(err) {
				code = ExitAuthError
			}
			fail(cmd, code, "FAIL: %v", err)
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := providers.Ping(ctx, p); err != nil {
			code := ExitRuntimeError
			if providers.IsAuthError(err) {
				code = ExitAuthError
			}
			fail(cmd, code, "FAIL: %v", err)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s is configured and responding\n", p.Name())
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
}
