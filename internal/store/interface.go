package store

import (
	"context"
	"time"

	"alexandria/internal/lbrynet"
)

// HistoryStore records what the user searched, resolved and downloaded.
type HistoryStore interface {
	RecordEvent(ctx context.Context, e Event) (Event, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]Event, error)
	ClearHistory(ctx context.Context, before time.Time) (int64, error)
}

// CacheStore keeps claims, search results and thumbnails seen before.
type CacheStore interface {
	PutClaims(ctx context.Context, items []lbrynet.Claim) error
	GetClaim(ctx context.Context, claimID string) (*lbrynet.Claim, error)
	PutSearch(ctx context.Context, key, query string, payload []byte) error
	GetSearch(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error)
	PutThumbnail(ctx context.Context, t Thumbnail) error
	GetThumbnail(ctx context.Context, claimID string) (*Thumbnail, error)
}

var (
	_ HistoryStore = (*Store)(nil)
	_ CacheStore   = (*Store)(nil)
)
