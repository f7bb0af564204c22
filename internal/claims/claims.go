// Package claims holds the daemon-independent logic applied to claim lists:
// repost unwrapping, release ordering, de-duplication and size summaries.
package claims

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"alexandria/internal/lbrynet"
)

// ErrInvalidLookup is returned when a name or claim id lookup is malformed.
var ErrInvalidLookup = errors.New("search by 'name' or 'claim_id' only")

// CheckRepost returns the reposted claim when c is a repost and follow is
// set. The second result reports whether c was a repost.
func CheckRepost(c lbrynet.Claim, follow bool) (lbrynet.Claim, bool) {
	if c.RepostedClaim == nil {
		return c, false
	}
	if follow {
		return *c.RepostedClaim, true
	}
	return c, true
}

// ReleaseTime returns the publisher's release time, falling back to the
// block timestamp for claims published without one.
func ReleaseTime(c lbrynet.Claim) int64 {
	if c.Value.ReleaseTime != 0 {
		return int64(c.Value.ReleaseTime)
	}
	return int64(c.Timestamp)
}

// FileReleaseTime is ReleaseTime for downloaded files.
func FileReleaseTime(f lbrynet.File) int64 {
	if f.Metadata.ReleaseTime != 0 {
		return int64(f.Metadata.ReleaseTime)
	}
	return int64(f.Timestamp)
}

// SortAndFilter orders claims by release time and removes duplicated claim
// ids. When number is positive only the newest number claims are kept.
// Older claims come first unless reverse is set.
func SortAndFilter(in []lbrynet.Claim, number int, reverse bool) []lbrynet.Claim {
	items := make([]lbrynet.Claim, len(in))
	copy(items, in)
	for i := range items {
		if items[i].Value.ReleaseTime == 0 {
			items[i].Value.ReleaseTime = items[i].Timestamp
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Value.ReleaseTime > items[j].Value.ReleaseTime
	})

	seen := make(map[string]struct{}, len(items))
	unique := make([]lbrynet.Claim, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ClaimID]; ok {
			continue
		}
		seen[item.ClaimID] = struct{}{}
		unique = append(unique, item)
	}

	if number > 0 && len(unique) > number {
		unique = unique[:number]
	}

	if !reverse {
		for i, j := 0, len(unique)-1; i < j; i, j = i+1, j-1 {
			unique[i], unique[j] = unique[j], unique[i]
		}
	}
	return unique
}

// SortFiles orders downloaded files by release time, older first unless
// reverse is set. Files without a release time get their timestamp.
func SortFiles(in []lbrynet.File, reverse bool) []lbrynet.File {
	items := make([]lbrynet.File, len(in))
	copy(items, in)
	for i := range items {
		if items[i].Metadata.ReleaseTime == 0 {
			items[i].Metadata.ReleaseTime = items[i].Timestamp
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if reverse {
			return items[i].Metadata.ReleaseTime > items[j].Metadata.ReleaseTime
		}
		return items[i].Metadata.ReleaseTime < items[j].Metadata.ReleaseTime
	})
	return items
}

// SortByAmount orders search results by their bid, highest first. Claims
// without a canonical URL cannot be opened and are dropped.
func SortByAmount(in []lbrynet.Claim) []lbrynet.Claim {
	out := make([]lbrynet.Claim, 0, len(in))
	for _, c := range in {
		if c.CanonicalURL == "" {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Float() > out[j].Amount.Float()
	})
	return out
}

// ResultLine renders one search result as "(amount) canonical_url".
func ResultLine(c lbrynet.Claim) string {
	return fmt.Sprintf("(%.2f) %s", c.Amount.Float(), c.CanonicalURL)
}

// ValidateLookup checks that a claim id or name lookup carries a bare value.
// Full URIs belong to resolve.
func ValidateLookup(claimID, name string) error {
	if claimID == "" && name == "" {
		return ErrInvalidLookup
	}
	for _, v := range []string{claimID, name} {
		if strings.ContainsAny(v, "#:@") {
			return fmt.Errorf("%w: %q looks like a URI", ErrInvalidLookup, v)
		}
	}
	return nil
}

// StripScheme removes the lbry:// prefix from a URL.
func StripScheme(uri string) string {
	return strings.TrimPrefix(uri, "lbry://")
}

// NormalizeChannel makes sure a channel name starts with @.
func NormalizeChannel(channel string) string {
	channel = strings.TrimSpace(channel)
	if channel == "" || strings.HasPrefix(channel, "@") {
		return channel
	}
	return "@" + channel
}
