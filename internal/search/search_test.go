package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"alexandria/internal/lbrynet"
	"alexandria/internal/lbrynet/lbrynettest"
)

func newTestService(t *testing.T) (*Service, *lbrynettest.Daemon) {
	t.Helper()
	d := lbrynettest.New(t)
	return New(lbrynet.NewClient(d.URL()), nil), d
}

func TestByURIFollowsRepost(t *testing.T) {
	svc, d := newTestService(t)
	d.Result("resolve", map[string]any{
		"lbry://repost": map[string]any{
			"claim_id":       "r1",
			"name":           "repost",
			"canonical_url":  "lbry://repost#r",
			"reposted_claim": map[string]any{"claim_id": "o1", "name": "original", "canonical_url": "lbry://original#o"},
		},
	})

	got, err := svc.ByURI(context.Background(), "lbry://repost", true)
	if err != nil {
		t.Fatalf("by uri: %v", err)
	}
	if got.ClaimID != "o1" {
		t.Fatalf("expected reposted claim, got %s", got.ClaimID)
	}

	got, err = svc.ByURI(context.Background(), "lbry://repost", false)
	if err != nil {
		t.Fatalf("by uri: %v", err)
	}
	if got.ClaimID != "r1" {
		t.Fatalf("expected repost itself, got %s", got.ClaimID)
	}
}

func TestByURIResolveError(t *testing.T) {
	svc, d := newTestService(t)
	d.Result("resolve", map[string]any{
		"dsnt-exist": map[string]any{"error": map[string]any{"name": "NOT_FOUND", "text": "Could not find claim"}},
	})

	_, err := svc.ByURI(context.Background(), "dsnt-exist", true)
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("expected ResolveError, got %v", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected resolve error to count as not found")
	}
	if !IsMiss(err) {
		t.Fatal("expected resolve error to be a miss")
	}
}

func TestByLookupTakesLastItem(t *testing.T) {
	svc, d := newTestService(t)
	d.Handle("claim_search", func(params json.RawMessage) (any, *lbrynettest.Error) {
		if got := lbrynettest.Param[string](t, params, "name"); got != "LUKAS-LION---1984" {
			t.Errorf("expected name param, got %q", got)
		}
		return map[string]any{
			"total_items": 2,
			"items": []any{
				map[string]any{"claim_id": "newer", "name": "LUKAS-LION---1984"},
				map[string]any{"claim_id": "oldest", "name": "LUKAS-LION---1984"},
			},
		}, nil
	})

	got, err := svc.ByLookup(context.Background(), Lookup{Name: "LUKAS-LION---1984"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ClaimID != "oldest" {
		t.Fatalf("expected last item, got %s", got.ClaimID)
	}
}

func TestByLookupPrefersClaimID(t *testing.T) {
	svc, d := newTestService(t)
	d.Handle("claim_search", func(params json.RawMessage) (any, *lbrynettest.Error) {
		if got := lbrynettest.Param[string](t, params, "name"); got != "" {
			t.Errorf("expected no name when claim id given, got %q", got)
		}
		return map[string]any{"total_items": 1, "items": []any{map[string]any{"claim_id": "cid"}}}, nil
	})

	got, err := svc.ByLookup(context.Background(), Lookup{ClaimID: "cid", Name: "ignored"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ClaimID != "cid" {
		t.Fatalf("unexpected claim %s", got.ClaimID)
	}
}

func TestByLookupBlocked(t *testing.T) {
	svc, d := newTestService(t)
	d.Result("claim_search", map[string]any{
		"total_items": 0,
		"items":       []any{},
		"blocked": map[string]any{
			"total": 1,
			"channels": []any{
				map[string]any{"blocked": 1, "channel": map[string]any{"canonical_url": "lbry://@Moderator#a"}},
			},
		},
	})

	_, err := svc.ByLookup(context.Background(), Lookup{ClaimID: "abc"})
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected BlockedError, got %v", err)
	}
	if len(blocked.Channels) != 1 || blocked.Channels[0] != "@Moderator#a" {
		t.Fatalf("unexpected blocking channels: %v", blocked.Channels)
	}
}

func TestByLookupNotFoundAndInvalid(t *testing.T) {
	svc, d := newTestService(t)
	d.Result("claim_search", map[string]any{"total_items": 0, "items": []any{}})

	if _, err := svc.ByLookup(context.Background(), Lookup{ClaimID: "wwwzyx"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ByLookup(context.Background(), Lookup{Name: "@chan#1/video"}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if len(d.Calls("claim_search")) != 1 {
		t.Fatal("invalid lookup should not reach the daemon")
	}
}

func TestItemOfflineUsesURIAsName(t *testing.T) {
	svc, d := newTestService(t)
	d.Handle("file_list", func(params json.RawMessage) (any, *lbrynettest.Error) {
		if got := lbrynettest.Param[string](t, params, "claim_name"); got != "some-video" {
			t.Errorf("expected claim_name some-video, got %q", got)
		}
		return map[string]any{
			"total_items": 1,
			"items": []any{map[string]any{
				"claim_id":     "local",
				"claim_name":   "some-video",
				"channel_name": "@chan",
				"metadata":     map[string]any{"title": "Local"},
			}},
		}, nil
	})

	got, err := svc.Item(context.Background(), Query{URI: "some-video", Offline: true})
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if got.ClaimID != "local" || got.Title() != "Local" || got.ChannelName() != "@chan" {
		t.Fatalf("unexpected claim: %+v", got)
	}
}

func TestItemRequiresField(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Item(context.Background(), Query{}); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestTextSortsByAmount(t *testing.T) {
	svc, d := newTestService(t)
	d.Result("claim_search", map[string]any{
		"total_items": 3,
		"items": []any{
			map[string]any{"claim_id": "a", "canonical_url": "lbry://a#1", "amount": "0.5"},
			map[string]any{"claim_id": "b", "canonical_url": "lbry://b#2", "amount": "3"},
			map[string]any{"claim_id": "c", "amount": "9"},
		},
	})

	got, err := svc.Text(context.Background(), TextQuery{Text: "alexandria", PageSize: 20})
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if len(got) != 2 || got[0].ClaimID != "b" || got[1].ClaimID != "a" {
		t.Fatalf("unexpected ordering: %+v", got)
	}
	if lbrynettest.Param[int](t, d.Calls("claim_search")[0].Params, "page_size") != 20 {
		t.Fatal("expected page_size to be forwarded")
	}
}

func TestResolveAllFallsBackToClaimID(t *testing.T) {
	svc, d := newTestService(t)
	d.Handle("resolve", func(params json.RawMessage) (any, *lbrynettest.Error) {
		uri := lbrynettest.Param[string](t, params, "urls")
		if uri == "lbry://ok" {
			return map[string]any{uri: map[string]any{"claim_id": "ok-id"}}, nil
		}
		return map[string]any{uri: map[string]any{"error": map[string]any{"name": "NOT_FOUND", "text": "missing"}}}, nil
	})
	d.Handle("claim_search", func(params json.RawMessage) (any, *lbrynettest.Error) {
		if lbrynettest.Param[string](t, params, "claim_id") == "b7c7082fd52a5b932b6f08c83645ac808b6ba801" {
			return map[string]any{"total_items": 1, "items": []any{map[string]any{"claim_id": "b7c7082fd52a5b932b6f08c83645ac808b6ba801"}}}, nil
		}
		return map[string]any{"total_items": 0, "items": []any{}}, nil
	})

	inputs := []string{"lbry://ok", "b7c7082fd52a5b932b6f08c83645ac808b6ba801", "lbry://gone#1"}
	for _, workers := range []int{0, 4} {
		got, err := svc.ResolveAll(context.Background(), inputs, workers)
		if err != nil {
			t.Fatalf("resolve all (workers=%d): %v", workers, err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 results, got %d", len(got))
		}
		if got[0].Original != "lbry://ok" || got[0].Claim == nil || got[0].Claim.ClaimID != "ok-id" {
			t.Fatalf("unexpected first result: %+v", got[0])
		}
		if got[1].Claim == nil || got[1].Claim.ClaimID != inputs[1] {
			t.Fatalf("expected claim id fallback, got %+v", got[1])
		}
		if got[2].Claim != nil {
			t.Fatalf("expected unresolved third entry, got %+v", got[2])
		}
	}
}

func TestResolveAllStopsOnDaemonError(t *testing.T) {
	svc, d := newTestService(t)
	d.Handle("resolve", func(json.RawMessage) (any, *lbrynettest.Error) {
		return nil, lbrynettest.NewError("WalletNotLoaded", "wallet not loaded")
	})

	if _, err := svc.ResolveAll(context.Background(), []string{"a", "b"}, 2); err == nil {
		t.Fatal("expected daemon error to abort")
	}
}
