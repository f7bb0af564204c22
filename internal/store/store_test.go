package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"alexandria/internal/lbrynet"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRecordAndListHistory(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, e := range []Event{
		{Kind: EventSearch, Query: "alexandria"},
		{Kind: EventResolve, URI: "lbry://@Books#a/moby-dick#1", ClaimID: "cid", Title: "Moby Dick"},
		{Kind: EventDownload, URI: "lbry://@Books#a/moby-dick#1", Detail: "/tmp/moby-dick.mp4"},
	} {
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		got, err := st.RecordEvent(ctx, e)
		if err != nil {
			t.Fatalf("record %s: %v", e.Kind, err)
		}
		if got.ID == 0 {
			t.Fatal("expected event id")
		}
	}

	events, err := st.ListHistory(ctx, HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 || events[0].Kind != EventDownload || events[2].Kind != EventSearch {
		t.Fatalf("expected newest first, got %+v", events)
	}
	if !events[1].CreatedAt.Equal(base.Add(time.Minute)) || events[1].Title != "Moby Dick" {
		t.Fatalf("unexpected resolve event: %+v", events[1])
	}

	events, err = st.ListHistory(ctx, HistoryFilter{Kind: EventSearch, Limit: 10})
	if err != nil {
		t.Fatalf("list searches: %v", err)
	}
	if len(events) != 1 || events[0].Query != "alexandria" {
		t.Fatalf("unexpected searches: %+v", events)
	}

	removed, err := st.ClearHistory(ctx, base.Add(90*time.Second))
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
}

func TestRecordEventRejectsUnknownKind(t *testing.T) {
	st := testStore(t)
	if _, err := st.RecordEvent(context.Background(), Event{Kind: "upload"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := st.ListHistory(context.Background(), HistoryFilter{Kind: "upload"}); err == nil {
		t.Fatal("expected error for unknown filter kind")
	}
}

func TestClaimCache(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	got, err := st.GetClaim(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected nil claim, got %+v, %v", got, err)
	}

	c := lbrynet.Claim{
		ClaimID:        "cid",
		Name:           "moby-dick",
		CanonicalURL:   "lbry://@Books#a/moby-dick#1",
		Amount:         "1.5",
		Value:          lbrynet.ClaimValue{Title: "Moby Dick"},
		SigningChannel: &lbrynet.Claim{Name: "@Books"},
	}
	if err := st.PutClaims(ctx, []lbrynet.Claim{c, {Name: "no id"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	c.Value.Title = "Moby-Dick; or, The Whale"
	if err := st.PutClaims(ctx, []lbrynet.Claim{c}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err = st.GetClaim(ctx, "cid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Title() != "Moby-Dick; or, The Whale" || got.ChannelName() != "@Books" || got.Amount.Float() != 1.5 {
		t.Fatalf("unexpected cached claim: %+v", got)
	}
}

func TestSearchCacheTTL(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	key := SearchKey("  Moby   DICK ", 1, 20)
	if key != SearchKey("moby dick", 1, 20) {
		t.Fatal("expected normalized keys to match")
	}
	if key == SearchKey("moby dick", 2, 20) {
		t.Fatal("expected page to change the key")
	}

	if err := st.PutSearch(ctx, key, "moby dick", []byte(`[{"claim_id":"cid"}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(4 * time.Minute)
	payload, ok, err := st.GetSearch(ctx, key, 5*time.Minute)
	if err != nil || !ok || string(payload) != `[{"claim_id":"cid"}]` {
		t.Fatalf("expected cache hit, got %q %v %v", payload, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := st.GetSearch(ctx, key, 5*time.Minute); ok {
		t.Fatal("expected expired entry to miss")
	}
	if _, ok, _ := st.GetSearch(ctx, key, 0); ok {
		t.Fatal("zero ttl disables the cache")
	}

	removed, err := st.PruneSearches(ctx, 5*time.Minute)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned, got %d", removed)
	}
}

func TestPruneSearchesKeepsSubsecondNewerEntries(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	now := created
	st.now = func() time.Time { return now }

	if err := st.PutSearch(ctx, SearchKey("fresh", 1, 20), "fresh", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	// The cutoff lands on 12:00:00, half a second before the entry.
	now = time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC)
	removed, err := st.PruneSearches(ctx, time.Minute)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected newer entry to survive, pruned %d", removed)
	}

	if got := formatTime(created); got != "2024-03-01T12:00:00.500000000Z" {
		t.Fatalf("unexpected stored time %q", got)
	}
	parsed, err := parseTime(formatTime(created))
	if err != nil || !parsed.Equal(created) {
		t.Fatalf("expected round trip, got %v %v", parsed, err)
	}
}

func TestThumbnails(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.PutThumbnail(ctx, Thumbnail{ClaimID: "cid"}); err == nil {
		t.Fatal("expected error without digest")
	}
	if err := st.PutThumbnail(ctx, Thumbnail{ClaimID: "cid", URL: "https://thumbs.example/a.jpg", Digest: "abc", SizeBytes: 12, MediaType: "image/jpeg"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := st.GetThumbnail(ctx, "cid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Digest != "abc" || got.MediaType != "image/jpeg" || got.FetchedAt.IsZero() {
		t.Fatalf("unexpected thumbnail: %+v", got)
	}
	if got, _ := st.GetThumbnail(ctx, "other"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
