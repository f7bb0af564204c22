package main

import (
	"github.com/spf13/cobra"

	"alexandria/internal/config"
	"alexandria/internal/lbrynet"
	"alexandria/internal/library"
)

func newFilesCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var (
		channel string
		reverse bool
		invalid bool
		size    bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List downloaded files, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(cfg, func(daemon *lbrynet.Client) error {
				report, err := library.New(daemon, nil).SizeReport(cmd.Context(), channel, reverse, invalid, workers)
				if err != nil {
					return err
				}
				if *structured {
					if size {
						return writeJSON(report.Summary)
					}
					return writeJSON(report)
				}
				if len(report.Files) == 0 {
					return writePlain("%s\n", library.ErrNoItems)
				}
				if !size {
					if err := writeTable(claimTableHeaders, fileRows(report.Files), claimTableAligns); err != nil {
						return err
					}
				}
				return writePlain("%s\n", report.Summary.Text())
			})
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "only files from this channel")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "newest first")
	cmd.Flags().BoolVar(&invalid, "invalid", false, "only files whose claims no longer resolve online")
	cmd.Flags().BoolVar(&size, "size", false, "only print the totals")
	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "concurrent lookups for --invalid")
	return cmd
}
