package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"alexandria/internal/claims"
	"alexandria/internal/lbrynet"
)

var (
	// ErrNotFound is returned when nothing on the network matches a query.
	ErrNotFound = errors.New("no item found")
	// ErrInvalidQuery is returned when a query has no usable field.
	ErrInvalidQuery = errors.New("search by 'URI', 'claim_id' or 'name'")
)

// ResolveError is the daemon's reason for failing to resolve a URI.
type ResolveError struct {
	URI  string
	Name string
	Text string
}

func (e *ResolveError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("resolve %s: %s, %s", e.URI, e.Name, e.Text)
	}
	return fmt.Sprintf("resolve %s: %s", e.URI, e.Text)
}

// Unwrap lets callers treat every resolve failure as a miss.
func (e *ResolveError) Unwrap() error {
	return ErrNotFound
}

// BlockedError reports that a hub hides the claim on behalf of channels.
type BlockedError struct {
	Channels []string
}

func (e *BlockedError) Error() string {
	return "claim blocked by hub; blocking channel: " + strings.Join(e.Channels, " ; ")
}

// Daemon is the part of the lbrynet API the search service needs.
type Daemon interface {
	Resolve(ctx context.Context, uris ...string) (map[string]lbrynet.ResolveEntry, error)
	ClaimSearch(ctx context.Context, params lbrynet.ClaimSearchParams) (lbrynet.ClaimPage, error)
	FileList(ctx context.Context, params lbrynet.FileListParams) (lbrynet.FilePage, error)
}

// Service finds claims on the network or among local files.
type Service struct {
	daemon Daemon
	logger *slog.Logger
}

// New creates a search service.
func New(daemon Daemon, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{daemon: daemon, logger: logger}
}

// Query selects a single item. URI wins over ClaimID, which wins over Name.
type Query struct {
	URI     string
	ClaimID string
	Name    string
	// Offline searches the files already known to the daemon, which is
	// the only way to find claims removed from the network.
	Offline bool
	// FollowRepost returns the original claim when the match is a repost.
	FollowRepost bool
}

// Lookup selects a single item by claim id or name.
type Lookup struct {
	ClaimID      string
	Name         string
	Offline      bool
	FollowRepost bool
}

// Item finds a single claim by URI, claim id or name.
func (s *Service) Item(ctx context.Context, q Query) (lbrynet.Claim, error) {
	q.URI = strings.TrimSpace(q.URI)
	q.ClaimID = strings.TrimSpace(q.ClaimID)
	q.Name = strings.TrimSpace(q.Name)
	if q.URI == "" && q.ClaimID == "" && q.Name == "" {
		return lbrynet.Claim{}, ErrInvalidQuery
	}

	if q.Offline {
		name := q.Name
		if q.URI != "" && name == "" {
			name = q.URI
		}
		return s.ByLookup(ctx, Lookup{ClaimID: q.ClaimID, Name: name, Offline: true})
	}
	if q.URI != "" {
		return s.ByURI(ctx, q.URI, q.FollowRepost)
	}
	return s.ByLookup(ctx, Lookup{ClaimID: q.ClaimID, Name: q.Name, FollowRepost: q.FollowRepost})
}

// ByURI resolves a full or partial URI such as
// lbry://@MyChannel#3/some-video-name#2 or some-video-name.
func (s *Service) ByURI(ctx context.Context, uri string, follow bool) (lbrynet.Claim, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return lbrynet.Claim{}, ErrInvalidQuery
	}

	entries, err := s.daemon.Resolve(ctx, uri)
	if err != nil {
		return lbrynet.Claim{}, err
	}
	entry, ok := entries[uri]
	if !ok {
		return lbrynet.Claim{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if entry.Err != nil {
		return lbrynet.Claim{}, &ResolveError{URI: uri, Name: entry.Err.Name, Text: entry.Err.Text}
	}
	if entry.Claim == nil {
		return lbrynet.Claim{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return s.unwrapRepost(*entry.Claim, follow), nil
}

// ByLookup finds a claim by claim id (preferred) or name.
func (s *Service) ByLookup(ctx context.Context, l Lookup) (lbrynet.Claim, error) {
	if err := claims.ValidateLookup(l.ClaimID, l.Name); err != nil {
		return lbrynet.Claim{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	if l.Offline {
		params := lbrynet.FileListParams{ClaimName: l.Name}
		if l.ClaimID != "" {
			params = lbrynet.FileListParams{ClaimID: l.ClaimID}
		}
		page, err := s.daemon.FileList(ctx, params)
		if err != nil {
			return lbrynet.Claim{}, err
		}
		if page.TotalItems < 1 || len(page.Items) == 0 {
			return lbrynet.Claim{}, notFound(l)
		}
		return page.Items[len(page.Items)-1].AsClaim(), nil
	}

	params := lbrynet.ClaimSearchParams{Name: l.Name}
	if l.ClaimID != "" {
		params = lbrynet.ClaimSearchParams{ClaimID: l.ClaimID}
	}
	page, err := s.daemon.ClaimSearch(ctx, params)
	if err != nil {
		return lbrynet.Claim{}, err
	}
	if page.Blocked != nil && page.Blocked.Total > 0 {
		blocked := &BlockedError{}
		for _, ch := range page.Blocked.Channels {
			blocked.Channels = append(blocked.Channels, claims.StripScheme(ch.Channel.CanonicalURL))
		}
		return lbrynet.Claim{}, blocked
	}
	if page.TotalItems < 1 || len(page.Items) == 0 {
		return lbrynet.Claim{}, notFound(l)
	}

	// Reposts are listed first; the last item is the oldest, the original.
	item := page.Items[len(page.Items)-1]
	return s.unwrapRepost(item, l.FollowRepost), nil
}

// Channel resolves a channel by full or partial name.
func (s *Service) Channel(ctx context.Context, channel string) (lbrynet.Claim, error) {
	channel = claims.NormalizeChannel(channel)
	if channel == "" {
		return lbrynet.Claim{}, fmt.Errorf("%w: channel is required", ErrInvalidQuery)
	}
	return s.ByURI(ctx, channel, false)
}

// TextQuery is a free-text search.
type TextQuery struct {
	Text     string
	Page     int
	PageSize int
}

// Text runs a free-text claim search and orders results by bid.
func (s *Service) Text(ctx context.Context, q TextQuery) ([]lbrynet.Claim, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is required", ErrInvalidQuery)
	}
	page, err := s.daemon.ClaimSearch(ctx, lbrynet.ClaimSearchParams{
		Text:     text,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("text search", "text", text, "items", len(page.Items), "total_items", page.TotalItems)
	return claims.SortByAmount(page.Items), nil
}

func (s *Service) unwrapRepost(c lbrynet.Claim, follow bool) lbrynet.Claim {
	out, wasRepost := claims.CheckRepost(c, follow)
	if wasRepost {
		s.logger.Debug("claim is a repost",
			"canonical_url", c.CanonicalURL,
			"reposted_claim", c.RepostedClaim.CanonicalURL,
			"followed", follow)
	}
	return out
}

func notFound(l Lookup) error {
	if l.ClaimID != "" {
		return fmt.Errorf("%w: claim_id=%s", ErrNotFound, l.ClaimID)
	}
	return fmt.Errorf("%w: name=%s", ErrNotFound, l.Name)
}

// IsMiss reports whether err means the item is not available online,
// as opposed to a failure talking to the daemon.
func IsMiss(err error) bool {
	if err == nil {
		return false
	}
	var blocked *BlockedError
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidQuery) || errors.As(err, &blocked)
}
