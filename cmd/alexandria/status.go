package main

import (
	"github.com/spf13/cobra"

	"alexandria/internal/config"
	"alexandria/internal/lbrynet"
)

type statusOutput struct {
	DaemonURL    string `json:"daemon_url"`
	Running      bool   `json:"running"`
	Connection   string `json:"connection,omitempty"`
	Blocks       int64  `json:"blocks"`
	BlocksBehind int64  `json:"blocks_behind"`
}

func newStatusCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether lbrynet is running and synced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(cfg, func(daemon *lbrynet.Client) error {
				st, err := daemon.Status(cmd.Context())
				if err != nil {
					return err
				}
				out := statusOutput{
					DaemonURL:    daemon.BaseURL(),
					Running:      st.IsRunning,
					Connection:   st.ConnectionState.Code,
					Blocks:       st.Wallet.Blocks,
					BlocksBehind: st.Wallet.BlocksBehind,
				}
				if *structured {
					return writeJSON(out)
				}
				return writePlain("daemon_url: %s\nrunning: %t\nconnection: %s\nblocks: %d (%d behind)\n",
					out.DaemonURL, out.Running, firstNonEmpty(out.Connection, "-"), out.Blocks, out.BlocksBehind)
			})
		},
	}
}
