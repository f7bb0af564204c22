package main

import (
	"github.com/spf13/cobra"

	"alexandria/internal/config"
	"alexandria/internal/download"
	"alexandria/internal/lbrynet"
	"alexandria/internal/store"
)

func newDownloadCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var (
		q      itemQuery
		dir    string
		ownDir bool
		stream bool
	)

	cmd := &cobra.Command{
		Use:   "download [uri]",
		Short: "Download a stream through lbrynet",
		Args:  requireItem(&q),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := q.query(args)
			return withDaemon(cfg, func(daemon *lbrynet.Client) error {
				res, err := download.New(daemon, nil).Single(cmd.Context(), download.Request{
					URI:      query.URI,
					ClaimID:  query.ClaimID,
					Name:     query.Name,
					Dir:      firstNonEmpty(dir, cfg.DownloadDir),
					OwnDir:   ownDir,
					SaveFile: !stream,
				})
				if err != nil {
					return err
				}
				detail := res.File.DownloadPath
				if stream {
					detail = "stream"
				}
				recordHistory(cmd.Context(), cfg, store.Event{
					Kind:    store.EventDownload,
					Query:   firstNonEmpty(query.URI, query.ClaimID, query.Name),
					ClaimID: res.Claim.ClaimID,
					URI:     res.Claim.CanonicalURL,
					Title:   res.Claim.Title(),
					Detail:  detail,
				})
				if *structured {
					return writeJSON(res)
				}
				return writeLines([]string{
					"canonical_url: " + res.Claim.CanonicalURL,
					"claim_id: " + res.Claim.ClaimID,
					"download_directory: " + res.Dir,
					"download_path: " + firstNonEmpty(res.File.DownloadPath, "-"),
					"streaming_url: " + firstNonEmpty(res.File.StreamingURL, "-"),
				})
			})
		},
	}

	cmd.Flags().StringVar(&q.claimID, "claim-id", "", "select by claim id")
	cmd.Flags().StringVar(&q.name, "name", "", "select by claim name")
	cmd.Flags().StringVar(&dir, "dir", "", "download directory (default download_dir or ~/Downloads)")
	cmd.Flags().BoolVar(&ownDir, "own-dir", cfg.OwnDir, "save into a subdirectory named after the channel")
	cmd.Flags().BoolVar(&stream, "stream", false, "only start the stream, do not save the file")
	return cmd
}
