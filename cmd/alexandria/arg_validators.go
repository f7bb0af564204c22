package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func requireAtLeastArgs(min int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < min {
			return errors.New(message)
		}
		return nil
	}
}

// itemQuery holds the flags that select one claim.
type itemQuery struct {
	claimID  string
	name     string
	offline  bool
	noRepost bool
}

func (q *itemQuery) register(cmd *cobra.Command, withOffline bool) {
	cmd.Flags().StringVar(&q.claimID, "claim-id", "", "select by claim id")
	cmd.Flags().StringVar(&q.name, "name", "", "select by claim name")
	if withOffline {
		cmd.Flags().BoolVar(&q.offline, "offline", false, "search the files already downloaded")
	}
	cmd.Flags().BoolVar(&q.noRepost, "no-repost", false, "do not follow reposts to the original claim")
}

// requireItem accepts a URI argument or one of --claim-id and --name.
func requireItem(q *itemQuery) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > 1 {
			return errors.New("expected at most one URI")
		}
		if len(args) == 0 && strings.TrimSpace(q.claimID) == "" && strings.TrimSpace(q.name) == "" {
			return errors.New("a URI, --claim-id or --name is required")
		}
		return nil
	}
}
