package lbrynet_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"alexandria/internal/lbrynet"
	"alexandria/internal/lbrynet/lbrynettest"
)

func TestResolveMixesClaimsAndErrors(t *testing.T) {
	d := lbrynettest.New(t)
	d.Result("resolve", map[string]any{
		"lbry://good": map[string]any{
			"claim_id":      "abc",
			"name":          "good",
			"canonical_url": "lbry://@chan#1/good#a",
			"amount":        "1.5",
			"timestamp":     1600000000,
			"value":         map[string]any{"title": "Good", "release_time": "1599999999", "source": map[string]any{"size": "2048"}},
			"meta":          map[string]any{"support_amount": "0.5"},
		},
		"lbry://bad": map[string]any{
			"error": map[string]any{"name": "NOT_FOUND", "text": "Could not find claim at \"lbry://bad\"."},
		},
		"lbry://plain": map[string]any{"error": "something broke"},
	})

	client := lbrynet.NewClient(d.URL())
	entries, err := client.Resolve(context.Background(), "lbry://good", "lbry://bad", "lbry://plain")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	good := entries["lbry://good"]
	if good.Claim == nil || good.Err != nil {
		t.Fatalf("expected claim for good entry, got %+v", good)
	}
	if good.Claim.Value.ReleaseTime != 1599999999 {
		t.Fatalf("expected string release_time to decode, got %d", good.Claim.Value.ReleaseTime)
	}
	if good.Claim.Value.Source.Size != 2048 {
		t.Fatalf("expected size 2048, got %d", good.Claim.Value.Source.Size)
	}
	if good.Claim.Amount.Float() != 1.5 {
		t.Fatalf("expected amount 1.5, got %v", good.Claim.Amount.Float())
	}

	bad := entries["lbry://bad"]
	if bad.Err == nil || bad.Err.Name != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND entry error, got %+v", bad)
	}
	plain := entries["lbry://plain"]
	if plain.Err == nil || plain.Err.Text != "something broke" {
		t.Fatalf("expected plain entry error, got %+v", plain)
	}

	calls := d.Calls("resolve")
	if len(calls) != 1 {
		t.Fatalf("expected one resolve call, got %d", len(calls))
	}
	urls := lbrynettest.Param[[]string](t, calls[0].Params, "urls")
	if len(urls) != 3 {
		t.Fatalf("expected three urls sent, got %v", urls)
	}
}

func TestResolveSingleURISendsString(t *testing.T) {
	d := lbrynettest.New(t)
	d.Result("resolve", map[string]any{"one": map[string]any{"claim_id": "x", "name": "one"}})

	client := lbrynet.NewClient(d.URL())
	if _, err := client.Resolve(context.Background(), "one"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := lbrynettest.Param[string](t, d.Calls("resolve")[0].Params, "urls")
	if got != "one" {
		t.Fatalf("expected single url as string, got %q", got)
	}
}

func TestCallMapsRPCError(t *testing.T) {
	d := lbrynettest.New(t)
	d.Handle("support_create", func(json.RawMessage) (any, *lbrynettest.Error) {
		return nil, lbrynettest.NewError("InsufficientFundsError", "Not enough funds to cover this transaction.")
	})

	client := lbrynet.NewClient(d.URL())
	_, err := client.SupportCreate(context.Background(), "abc", 2)
	var rpcErr *lbrynet.RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %v", err)
	}
	if rpcErr.Name != "InsufficientFundsError" || rpcErr.Method != "support_create" {
		t.Fatalf("unexpected rpc error: %+v", rpcErr)
	}
}

func TestCallMapsHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := lbrynet.NewClient(srv.URL).Ping(context.Background())
	var rpcErr *lbrynet.RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %v", err)
	}
	if rpcErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rpcErr.Status)
	}
}

func TestSupportAmountsFormatted(t *testing.T) {
	d := lbrynettest.New(t)
	d.Result("support_create", map[string]any{"txid": "tx1", "total_input": "1.0", "total_output": "0.9", "total_fee": "0.0001"})
	d.Result("support_abandon", map[string]any{"txid": "tx2", "total_input": "1.0", "total_output": "0.9", "total_fee": "0.0001"})

	client := lbrynet.NewClient(d.URL())
	tx, err := client.SupportCreate(context.Background(), "abc", 0.1)
	if err != nil {
		t.Fatalf("support create: %v", err)
	}
	if tx.Txid != "tx1" || tx.TotalFee.Float() != 0.0001 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if got := lbrynettest.Param[string](t, d.Calls("support_create")[0].Params, "amount"); got != "0.10000000" {
		t.Fatalf("expected 8 decimal amount, got %q", got)
	}

	if _, err := client.SupportAbandon(context.Background(), "abc", 0); err != nil {
		t.Fatalf("support abandon: %v", err)
	}
	if got := lbrynettest.Param[string](t, d.Calls("support_abandon")[0].Params, "keep"); got != "" {
		t.Fatalf("expected no keep param for full abandon, got %q", got)
	}
}

func TestGetReportsEmbeddedError(t *testing.T) {
	d := lbrynettest.New(t)
	d.Result("get", map[string]any{"error": "Failed to download data blobs for sd hash"})

	_, err := lbrynet.NewClient(d.URL()).Get(context.Background(), lbrynet.GetParams{URI: "lbry://x"})
	if err == nil {
		t.Fatal("expected get error")
	}
}

func TestPingUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := lbrynet.NewClient(url).Ping(context.Background())
	if !lbrynet.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
