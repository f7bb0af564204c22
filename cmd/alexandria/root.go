package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"alexandria/internal/config"
	"alexandria/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var structured bool
	var yamlOutput bool
	var logLevel string
	var daemonURL string

	cmd := &cobra.Command{
		Use:           "alexandria",
		Short:         "Alexandria browses, downloads and supports LBRY content through a local lbrynet daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}

			if yamlOutput {
				outputFormatter = format.YAMLFormatter{}
				structured = true
			} else {
				outputFormatter = format.JSONFormatter{Indent: true}
			}

			if v := strings.TrimSpace(daemonURL); v != "" {
				cfg.DaemonURL = v
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&structured, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "output YAML (wins over --json)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&daemonURL, "daemon-url", "", "lbrynet API address (default from config)")

	cmd.AddCommand(
		newStatusCmd(cfg, &structured),
		newSearchCmd(cfg, &structured),
		newResolveCmd(cfg, &structured),
		newResolveAllCmd(cfg, &structured),
		newDownloadCmd(cfg, &structured),
		newFilesCmd(cfg, &structured),
		newChannelCmd(cfg, &structured),
		newSupportsCmd(cfg, &structured),
		newHistoryCmd(cfg, &structured),
		newUICmd(cfg),
		newConfigCmd(cfg),
		newHashPasswordCmd(),
		newMigrateCmd(cfg, &structured),
	)

	return cmd
}
