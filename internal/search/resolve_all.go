package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"alexandria/internal/lbrynet"
)

// DefaultWorkers is the number of concurrent lookups used for bulk work.
const DefaultWorkers = 32

// Resolution pairs an input URI or claim id with what it resolved to.
// Claim is nil when nothing was found.
type Resolution struct {
	Original string         `json:"original" yaml:"original"`
	Claim    *lbrynet.Claim `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

// ResolveAll resolves a list of URIs or claim ids. Each entry is tried as a
// URI first and as a claim id second. The output keeps the input order.
// With workers <= 0 the entries are resolved one after the other.
func (s *Service) ResolveAll(ctx context.Context, inputs []string, workers int) ([]Resolution, error) {
	out := make([]Resolution, len(inputs))
	if workers <= 0 {
		for i, in := range inputs {
			res, err := s.resolveOne(ctx, in)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := s.resolveOne(gctx, in)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEachClaimID looks up claim ids online concurrently and calls found with
// the index and result. Misses produce a nil claim.
func (s *Service) ForEachClaimID(ctx context.Context, claimIDs []string, workers int, found func(i int, c *lbrynet.Claim)) error {
	lookup := func(ctx context.Context, i int) error {
		c, err := s.ByLookup(ctx, Lookup{ClaimID: claimIDs[i], FollowRepost: true})
		if err != nil {
			if IsMiss(err) {
				found(i, nil)
				return nil
			}
			return err
		}
		found(i, &c)
		return nil
	}

	if workers <= 0 {
		for i := range claimIDs {
			if err := lookup(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range claimIDs {
		g.Go(func() error { return lookup(gctx, i) })
	}
	return g.Wait()
}

func (s *Service) resolveOne(ctx context.Context, in string) (Resolution, error) {
	res := Resolution{Original: in}
	c, err := s.ByURI(ctx, in, true)
	if err == nil {
		res.Claim = &c
		return res, nil
	}
	if !IsMiss(err) {
		return res, err
	}

	c, err = s.ByLookup(ctx, Lookup{ClaimID: in, FollowRepost: true})
	if err == nil {
		res.Claim = &c
		return res, nil
	}
	if !IsMiss(err) {
		return res, err
	}
	s.logger.Debug("unresolved claim", "input", in)
	return res, nil
}
