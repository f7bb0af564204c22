package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"alexandria/internal/config"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
	"alexandria/internal/supports"
)

func newSupportsCmd(cfg *config.Config, structured *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supports",
		Short: "Inspect and change the LBC this wallet deposits on claims",
	}

	cmd.AddCommand(
		newSupportsListCmd(cfg, structured),
		newSupportsBaseCmd(cfg, structured),
		newSupportsCreateCmd(cfg, structured),
		newSupportsAbandonCmd(cfg, structured),
		newSupportsAbandonInvalidCmd(cfg, structured),
		newSupportsTargetCmd(cfg, structured),
	)
	return cmd
}

func withSupports(cfg *config.Config, fn func(*supports.Manager) error) error {
	return withDaemon(cfg, func(daemon *lbrynet.Client) error {
		return fn(supports.New(daemon, nil))
	})
}

func writeSupportResult(res supports.Result, structured bool) error {
	if structured {
		return writeJSON(res)
	}
	return writeLines(res.Report())
}

func newSupportsListCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var (
		opts       = supports.DefaultListOptions()
		separate   bool
		noClaims   bool
		noChannels bool
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supports with the claims they back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Combine = !separate
			opts.Claims = !noClaims
			opts.Channels = !noChannels
			return withSupports(cfg, func(m *supports.Manager) error {
				inv, err := m.All(cmd.Context(), workers)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(inv)
				}
				return writeLines(supports.Lines(inv, opts))
			})
		},
	}

	cmd.Flags().BoolVar(&opts.ShowClaimID, "claim-id", false, "show claim ids")
	cmd.Flags().BoolVar(&opts.InvalidOnly, "invalid", false, "only supports on claims that no longer resolve")
	cmd.Flags().BoolVar(&separate, "separate", false, "show the four trending scores instead of their sum")
	cmd.Flags().BoolVar(&noClaims, "no-claims", false, "hide supports on streams")
	cmd.Flags().BoolVar(&noChannels, "no-channels", false, "hide supports on channels")
	cmd.Flags().BoolVar(&opts.Sanitize, "sanitize", false, "strip emoji from titles")
	cmd.Flags().StringVar(&opts.Sep, "sep", opts.Sep, "field separator")
	cmd.Flags().IntVar(&workers, "workers", cfg.Workers, "concurrent lookups; 0 resolves one at a time")
	return cmd
}

// newSupportsItemCmd builds the commands that act on one claim.
func newSupportsItemCmd(cfg *config.Config, structured *bool, use, short string,
	run func(ctx context.Context, m *supports.Manager, q search.Query) (supports.Result, error),
) *cobra.Command {
	var q itemQuery

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  requireItem(&q),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSupports(cfg, func(m *supports.Manager) error {
				res, err := run(cmd.Context(), m, q.query(args))
				if err != nil {
					return err
				}
				return writeSupportResult(res, *structured)
			})
		},
	}
	q.register(cmd, false)
	return cmd
}

func newSupportsBaseCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return newSupportsItemCmd(cfg, structured, "base [uri]", "Show a claim's support without ours",
		func(ctx context.Context, m *supports.Manager, q search.Query) (supports.Result, error) {
			return m.Base(ctx, q)
		})
}

func newSupportsCreateCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var amount float64
	cmd := newSupportsItemCmd(cfg, structured, "create [uri]", "Add support to a claim",
		func(ctx context.Context, m *supports.Manager, q search.Query) (supports.Result, error) {
			if amount <= 0 {
				return supports.Result{}, fmt.Errorf("amount must be positive, got %v", amount)
			}
			return m.Create(ctx, q, amount)
		})
	cmd.Flags().Float64Var(&amount, "amount", 0, "LBC to add")
	return cmd
}

func newSupportsAbandonCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var keep float64
	cmd := newSupportsItemCmd(cfg, structured, "abandon [uri]", "Remove our support from a claim",
		func(ctx context.Context, m *supports.Manager, q search.Query) (supports.Result, error) {
			return m.Abandon(ctx, q, keep)
		})
	cmd.Flags().Float64Var(&keep, "keep", 0, "LBC to keep as support")
	return cmd
}

func newSupportsTargetCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var target float64
	cmd := newSupportsItemCmd(cfg, structured, "target [uri]", "Change our support so the claim's total reaches a target",
		func(ctx context.Context, m *supports.Manager, q search.Query) (supports.Result, error) {
			return m.Target(ctx, q, target)
		})
	cmd.Flags().Float64Var(&target, "target", 0, "total support the claim should have")
	return cmd
}

func newSupportsAbandonInvalidCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var req supports.AbandonInvalidRequest

	cmd := &cobra.Command{
		Use:   "abandon-invalid",
		Short: "Remove our support from a claim that no longer resolves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSupports(cfg, func(m *supports.Manager) error {
				res, err := m.AbandonInvalid(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeSupportResult(res, *structured)
			})
		},
	}

	cmd.Flags().StringVar(&req.ClaimID, "claim-id", "", "claim id of the invalid claim")
	cmd.Flags().StringVar(&req.Name, "name", "", "claim name of the invalid claim")
	cmd.Flags().Float64Var(&req.Keep, "keep", 0, "LBC to keep as support")
	cmd.Flags().IntVar(&req.Workers, "workers", cfg.Workers, "concurrent lookups; 0 resolves one at a time")
	return cmd
}
