package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"alexandria/internal/claims"
	"alexandria/internal/config"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
	"alexandria/internal/store"
)

func newSearchCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search claims by free text, highest bid first",
		Args:  requireAtLeastArgs(1, "search text is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize < 1 || pageSize > config.MaxSearchPageSize {
				return fmt.Errorf("%w: page size must be between 1 and %d", search.ErrInvalidQuery, config.MaxSearchPageSize)
			}
			text := strings.Join(args, " ")
			return withDaemon(cfg, func(daemon *lbrynet.Client) error {
				items, err := search.New(daemon, nil).Text(cmd.Context(), search.TextQuery{
					Text:     text,
					Page:     page,
					PageSize: pageSize,
				})
				if err != nil {
					return err
				}
				recordHistory(cmd.Context(), cfg, store.Event{
					Kind:   store.EventSearch,
					Query:  text,
					Detail: fmt.Sprintf("%d results", len(items)),
				})
				if *structured {
					return writeJSON(items)
				}
				lines := make([]string, len(items))
				for i, c := range items {
					lines[i] = claims.ResultLine(c)
				}
				return writeLines(lines)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().IntVar(&pageSize, "page-size", cfg.Search.PageSize, "results per page")
	return cmd
}

func newResolveCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var q itemQuery

	cmd := &cobra.Command{
		Use:   "resolve [uri]",
		Short: "Find one claim by URI, claim id or name",
		Args:  requireItem(&q),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := q.query(args)
			return withDaemon(cfg, func(daemon *lbrynet.Client) error {
				item, err := search.New(daemon, nil).Item(cmd.Context(), query)
				if err != nil {
					return err
				}
				recordHistory(cmd.Context(), cfg, store.Event{
					Kind:    store.EventResolve,
					Query:   firstNonEmpty(query.URI, query.ClaimID, query.Name),
					ClaimID: item.ClaimID,
					URI:     item.CanonicalURL,
					Title:   item.Title(),
				})
				if *structured {
					return writeJSON(item)
				}
				return writeLines(claimDetail(item))
			})
		},
	}

	q.register(cmd, true)
	return cmd
}

func newResolveAllCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var (
		file    string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "resolve-all [uri|claim-id...]",
		Short: "Resolve many URIs or claim ids, one per argument or line of --file",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := append([]string(nil), args...)
			if file != "" {
				fromFile, err := readListFile(file)
				if err != nil {
					return err
				}
				inputs = append(inputs, fromFile...)
			}
			if len(inputs) == 0 {
				return fmt.Errorf("%w: pass URIs, claim ids or --file", search.ErrInvalidQuery)
			}

			return withDaemon(cfg, func(daemon *lbrynet.Client) error {
				resolved, err := search.New(daemon, nil).ResolveAll(cmd.Context(), inputs, workers)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resolved)
				}
				lines := make([]string, len(resolved))
				for i, r := range resolved {
					target := "not found"
					if r.Claim != nil {
						target = r.Claim.CanonicalURL
					}
					lines[i] = fmt.Sprintf("%d/%d; %s -> %s", i+1, len(resolved), r.Original, target)
				}
				return writeLines(lines)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read entries from a file, one per line (- for stdin)")
	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "concurrent lookups; 0 resolves one at a time")
	return cmd
}
