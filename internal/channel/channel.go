// Package channel lists the claims published by a channel.
package channel

import (
	"context"
	"fmt"
	"log/slog"

	"alexandria/internal/claims"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
)

const (
	// DefaultLastHeight is above any block height the chain will reach soon.
	DefaultLastHeight = 99_000_900
	pageSize          = 50
)

// Daemon is the part of the lbrynet API the channel lister needs.
type Daemon interface {
	ClaimSearch(ctx context.Context, params lbrynet.ClaimSearchParams) (lbrynet.ClaimPage, error)
}

// Lister pages through a channel's claims.
type Lister struct {
	daemon Daemon
	logger *slog.Logger
}

// New creates a channel lister.
func New(daemon Daemon, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lister{daemon: daemon, logger: logger}
}

// Options narrows a channel listing.
type Options struct {
	// Number keeps only the newest claims; 0 lists everything.
	Number  int
	Reverse bool
	// LastHeight only lists claims made below this block height.
	LastHeight int64
}

// Listing is a channel's claims with their totals.
type Listing struct {
	Channel string          `json:"channel" yaml:"channel"`
	Claims  []lbrynet.Claim `json:"claims" yaml:"claims"`
	Summary claims.Summary  `json:"summary" yaml:"summary"`
}

// Claims lists the claims of a channel, oldest first unless reversed.
//
// Hubs stop paging after a fixed number of results, so once a height window
// is exhausted the search restarts below the lowest height seen.
func (l *Lister) Claims(ctx context.Context, channel string, opts Options) (Listing, error) {
	channel = claims.NormalizeChannel(channel)
	if channel == "" {
		return Listing{}, fmt.Errorf("%w: channel is required", search.ErrInvalidQuery)
	}
	lastHeight := opts.LastHeight
	if lastHeight <= 0 {
		lastHeight = DefaultLastHeight
	}

	var found []lbrynet.Claim
	seen := map[string]struct{}{}
	enough := func() bool { return opts.Number > 0 && len(seen) >= opts.Number }

	for !enough() {
		added := 0
		lowest := lastHeight
		for page := 1; ; page++ {
			res, err := l.daemon.ClaimSearch(ctx, lbrynet.ClaimSearchParams{
				Channel:  channel,
				Height:   fmt.Sprintf("<%d", lastHeight),
				OrderBy:  []string{"release_time"},
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return Listing{}, fmt.Errorf("search claims of %s: %w", channel, err)
			}
			for _, c := range res.Items {
				if c.Height > 0 && c.Height < lowest {
					lowest = c.Height
				}
				if _, ok := seen[c.ClaimID]; ok {
					continue
				}
				seen[c.ClaimID] = struct{}{}
				found = append(found, c)
				added++
			}
			l.logger.Debug("channel page", "channel", channel, "page", page, "total_pages", res.TotalPages, "height", lastHeight)
			if enough() || len(res.Items) == 0 || page >= res.TotalPages {
				break
			}
		}
		if added == 0 || lowest >= lastHeight {
			break
		}
		lastHeight = lowest
	}

	sorted := claims.SortAndFilter(found, opts.Number, opts.Reverse)
	return Listing{Channel: channel, Claims: sorted, Summary: claims.SummarizeClaims(sorted)}, nil
}
