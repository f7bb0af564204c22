// Package library lists the files the daemon has downloaded.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alexandria/internal/claims"
	"alexandria/internal/lbrynet"
	"alexandria/internal/search"
)

// ErrNoItems is returned when the daemon lists no files.
var ErrNoItems = errors.New("no items found")

// Daemon is the part of the lbrynet API the library needs.
type Daemon interface {
	search.Daemon
}

// Service reads and checks the local file list.
type Service struct {
	daemon Daemon
	search *search.Service
	logger *slog.Logger
}

// New creates a library service.
func New(daemon Daemon, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{daemon: daemon, search: search.New(daemon, logger), logger: logger}
}

// Sorted returns the downloaded files, oldest first unless reverse.
// A non-empty channel restricts the list to that channel.
func (s *Service) Sorted(ctx context.Context, channel string, reverse bool) ([]lbrynet.File, error) {
	params := lbrynet.FileListParams{PageSize: lbrynet.MaxPageSize}
	if channel != "" {
		channel = claims.NormalizeChannel(channel)
		// file_list only matches channel_name reliably after the channel
		// has been resolved once.
		if _, err := s.search.Channel(ctx, channel); err != nil && !search.IsMiss(err) {
			return nil, err
		}
		params.ChannelName = channel
	}

	page, err := s.daemon.FileList(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		if channel != "" {
			return nil, fmt.Errorf("%w: channel=%s", ErrNoItems, channel)
		}
		return nil, ErrNoItems
	}
	s.logger.Debug("file list", "channel", channel, "items", len(page.Items))
	return claims.SortFiles(page.Items, reverse), nil
}

// Invalid returns the downloaded files whose claims no longer resolve online.
func (s *Service) Invalid(ctx context.Context, channel string, reverse bool, workers int) ([]lbrynet.File, error) {
	files, err := s.Sorted(ctx, channel, reverse)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ClaimID
	}
	missing := make([]bool, len(files))
	err = s.search.ForEachClaimID(ctx, ids, workers, func(i int, c *lbrynet.Claim) {
		missing[i] = c == nil
	})
	if err != nil {
		return nil, err
	}

	var out []lbrynet.File
	for i, f := range files {
		if missing[i] {
			out = append(out, f)
		}
	}
	s.logger.Debug("invalid files", "channel", channel, "checked", len(files), "invalid", len(out))
	return out, nil
}

// Report is a file list with its totals.
type Report struct {
	Files   []lbrynet.File `json:"files" yaml:"files"`
	Summary claims.Summary `json:"summary" yaml:"summary"`
}

// SizeReport totals the size and duration of the downloaded files,
// or only of the invalid ones.
func (s *Service) SizeReport(ctx context.Context, channel string, reverse, invalid bool, workers int) (Report, error) {
	var (
		files []lbrynet.File
		err   error
	)
	if invalid {
		files, err = s.Invalid(ctx, channel, reverse, workers)
	} else {
		files, err = s.Sorted(ctx, channel, reverse)
	}
	if err != nil && !errors.Is(err, ErrNoItems) {
		return Report{}, err
	}
	if files == nil {
		files = []lbrynet.File{}
	}
	return Report{Files: files, Summary: claims.SummarizeFiles(files)}, nil
}
