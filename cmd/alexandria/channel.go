package main

import (
	"github.com/spf13/cobra"

	"alexandria/internal/channel"
	"alexandria/internal/config"
	"alexandria/internal/lbrynet"
)

func newChannelCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var opts channel.Options

	cmd := &cobra.Command{
		Use:   "channel <name>",
		Short: "List the claims of a channel, oldest first",
		Args:  requireAtLeastArgs(1, "channel name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(cfg, func(daemon *lbrynet.Client) error {
				listing, err := channel.New(daemon, nil).Claims(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(listing)
				}
				if err := writeTable(claimTableHeaders, claimRows(listing.Claims), claimTableAligns); err != nil {
					return err
				}
				return writePlain("%s\n", listing.Summary.Text())
			})
		},
	}

	cmd.Flags().IntVar(&opts.Number, "number", 0, "only the newest N claims")
	cmd.Flags().BoolVar(&opts.Reverse, "reverse", false, "newest first")
	cmd.Flags().Int64Var(&opts.LastHeight, "last-height", channel.DefaultLastHeight, "only claims below this block height")
	return cmd
}
