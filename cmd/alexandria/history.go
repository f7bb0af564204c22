package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"alexandria/internal/config"
	"alexandria/internal/format"
	"alexandria/internal/store"
)

func newHistoryCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var (
		kind      string
		limit     int
		clear     bool
		olderThan time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recent searches, lookups and downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				if clear {
					var before time.Time
					if olderThan > 0 {
						before = time.Now().Add(-olderThan)
					}
					n, err := st.ClearHistory(cmd.Context(), before)
					if err != nil {
						return err
					}
					if *structured {
						return writeJSON(map[string]int64{"deleted": n})
					}
					return writePlain("deleted %d events\n", n)
				}

				events, err := st.ListHistory(cmd.Context(), store.HistoryFilter{Kind: kind, Limit: limit})
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(events)
				}
				rows := make([][]string, len(events))
				for i, e := range events {
					rows[i] = []string{
						format.Ago(e.CreatedAt),
						e.Kind,
						firstNonEmpty(e.Title, e.Query),
						firstNonEmpty(e.URI, e.ClaimID),
						e.Detail,
					}
				}
				return writeTable([]string{"When", "Kind", "What", "URI", "Detail"}, rows, nil)
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", fmt.Sprintf("only %s, %s or %s events", store.EventSearch, store.EventResolve, store.EventDownload))
	cmd.Flags().IntVar(&limit, "limit", 0, "number of events (default 50)")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete events instead of listing them")
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "with --clear, only delete events older than this")
	return cmd
}
