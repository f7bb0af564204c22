package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"alexandria/internal/lbrynet"
)

// PutClaims remembers the latest version of each claim.
func (s *Store) PutClaims(ctx context.Context, items []lbrynet.Claim) error {
	if len(items) == 0 {
		return nil
	}
	now := formatTime(s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO claims (claim_id, name, canonical_url, title, channel, value_type, payload, seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(claim_id) DO UPDATE SET
		  name = excluded.name,
		  canonical_url = excluded.canonical_url,
		  title = excluded.title,
		  channel = excluded.channel,
		  value_type = excluded.value_type,
		  payload = excluded.payload,
		  seen_at = excluded.seen_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range items {
		if c.ClaimID == "" {
			continue
		}
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode claim %s: %w", c.ClaimID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.ClaimID, c.Name, nullString(c.CanonicalURL), nullString(c.Title()),
			nullString(c.ChannelName()), nullString(c.ValueType), string(payload), now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetClaim returns a cached claim, or nil when it was never seen.
func (s *Store) GetClaim(ctx context.Context, claimID string) (*lbrynet.Claim, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM claims WHERE claim_id = ?", claimID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c lbrynet.Claim
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("decode cached claim %s: %w", claimID, err)
	}
	return &c, nil
}

// SearchKey identifies a text search independent of case and spacing.
func SearchKey(text string, page, pageSize int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	h := xxhash.New()
	_, _ = h.WriteString(normalized)
	_, _ = h.WriteString("\x00" + strconv.Itoa(page) + "\x00" + strconv.Itoa(pageSize))
	return strconv.FormatUint(h.Sum64(), 16)
}

// PutSearch stores the encoded results of a search.
func (s *Store) PutSearch(ctx context.Context, key, query string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_cache (key, query, payload, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET query = excluded.query, payload = excluded.payload, created_at = excluded.created_at
	`, key, query, string(payload), formatTime(s.now()))
	return err
}

// GetSearch returns cached results younger than ttl.
func (s *Store) GetSearch(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	var payload, createdAt string
	err := s.db.QueryRowContext(ctx, "SELECT payload, created_at FROM search_cache WHERE key = ?", key).Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return nil, false, err
	}
	if ttl <= 0 || s.now().Sub(created) > ttl {
		return nil, false, nil
	}
	return []byte(payload), true, nil
}

// PruneSearches deletes cached searches older than ttl.
func (s *Store) PruneSearches(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := s.now().Add(-ttl)
	res, err := s.db.ExecContext(ctx, "DELETE FROM search_cache WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Thumbnail records where a claim's thumbnail is stored locally.
type Thumbnail struct {
	ClaimID   string    `json:"claim_id"`
	URL       string    `json:"url"`
	Digest    string    `json:"digest"`
	SizeBytes int64     `json:"size_bytes"`
	MediaType string    `json:"media_type,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PutThumbnail records a fetched thumbnail.
func (s *Store) PutThumbnail(ctx context.Context, t Thumbnail) error {
	if t.ClaimID == "" || t.Digest == "" {
		return fmt.Errorf("claim id and digest are required")
	}
	if t.FetchedAt.IsZero() {
		t.FetchedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thumbnails (claim_id, url, digest, size_bytes, media_type, fetched_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(claim_id) DO UPDATE SET
		  url = excluded.url, digest = excluded.digest, size_bytes = excluded.size_bytes,
		  media_type = excluded.media_type, fetched_at = excluded.fetched_at
	`, t.ClaimID, t.URL, t.Digest, t.SizeBytes, nullString(t.MediaType), formatTime(t.FetchedAt))
	return err
}

// GetThumbnail returns the thumbnail record for a claim, or nil.
func (s *Store) GetThumbnail(ctx context.Context, claimID string) (*Thumbnail, error) {
	var t Thumbnail
	var mediaType sql.NullString
	var fetchedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT claim_id, url, digest, size_bytes, media_type, fetched_at FROM thumbnails WHERE claim_id = ?
	`, claimID).Scan(&t.ClaimID, &t.URL, &t.Digest, &t.SizeBytes, &mediaType, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.MediaType = mediaType.String
	if t.FetchedAt, err = parseTime(fetchedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
