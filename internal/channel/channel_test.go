package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alexandria/internal/lbrynet"
	"alexandria/internal/lbrynet/lbrynettest"
)

// chain serves claim_search for a channel with n claims at heights 1..n,
// released in the same order, newest first, capped at maxPages pages.
func chain(t *testing.T, d *lbrynettest.Daemon, n, maxPages int) {
	d.Handle("claim_search", func(params json.RawMessage) (any, *lbrynettest.Error) {
		assert.Equal(t, "@Library", lbrynettest.Param[string](t, params, "channel"))
		assert.Equal(t, []string{"release_time"}, lbrynettest.Param[[]string](t, params, "order_by"))
		below, err := strconv.Atoi(strings.TrimPrefix(lbrynettest.Param[string](t, params, "height"), "<"))
		assert.NoError(t, err)
		page := lbrynettest.Param[int](t, params, "page")
		size := lbrynettest.Param[int](t, params, "page_size")

		var all []any
		for h := n; h >= 1; h-- {
			if h >= below {
				continue
			}
			all = append(all, map[string]any{
				"claim_id":  fmt.Sprintf("c%03d", h),
				"height":    h,
				"timestamp": 1000 + h,
				"value":     map[string]any{"release_time": strconv.Itoa(1000 + h)},
			})
		}
		totalPages := (len(all) + size - 1) / size
		if totalPages > maxPages {
			totalPages = maxPages
		}
		start := (page - 1) * size
		if page > totalPages || start >= len(all) {
			return map[string]any{"items": []any{}, "total_pages": totalPages, "total_items": len(all)}, nil
		}
		end := min(start+size, len(all))
		return map[string]any{"items": all[start:end], "total_pages": totalPages, "total_items": len(all)}, nil
	})
}

func TestClaimsPagesThroughChannel(t *testing.T) {
	d := lbrynettest.New(t)
	chain(t, d, 120, 100)
	l := New(lbrynet.NewClient(d.URL()), nil)

	listing, err := l.Claims(context.Background(), "Library", Options{})
	require.NoError(t, err)
	assert.Equal(t, "@Library", listing.Channel)
	require.Len(t, listing.Claims, 120)
	assert.Equal(t, "c001", listing.Claims[0].ClaimID, "oldest first")
	assert.Equal(t, "c120", listing.Claims[119].ClaimID)
	assert.Equal(t, 120, listing.Summary.Claims)
}

func TestClaimsRestartsBelowLowestHeight(t *testing.T) {
	d := lbrynettest.New(t)
	chain(t, d, 120, 1)
	l := New(lbrynet.NewClient(d.URL()), nil)

	listing, err := l.Claims(context.Background(), "@Library", Options{Reverse: true})
	require.NoError(t, err)
	require.Len(t, listing.Claims, 120)
	assert.Equal(t, "c120", listing.Claims[0].ClaimID, "newest first when reversed")
}

func TestClaimsNumberKeepsNewest(t *testing.T) {
	d := lbrynettest.New(t)
	chain(t, d, 120, 100)
	l := New(lbrynet.NewClient(d.URL()), nil)

	listing, err := l.Claims(context.Background(), "@Library", Options{Number: 10})
	require.NoError(t, err)
	require.Len(t, listing.Claims, 10)
	assert.Equal(t, "c111", listing.Claims[0].ClaimID)
	assert.Equal(t, "c120", listing.Claims[9].ClaimID)
	assert.Len(t, d.Calls("claim_search"), 1, "first page already has enough claims")
}

func TestClaimsRequiresChannel(t *testing.T) {
	l := New(lbrynet.NewClient("http://127.0.0.1:1"), nil)
	_, err := l.Claims(context.Background(), " ", Options{})
	assert.Error(t, err)
}
