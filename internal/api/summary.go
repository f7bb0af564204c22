package api

import (
	"alexandria/internal/claims"
	"alexandria/internal/lbrynet"
	"alexandria/internal/store"
)

// Summarize flattens a claim for the web UI.
func Summarize(c lbrynet.Claim) ClaimSummary {
	s := ClaimSummary{
		ClaimID:      c.ClaimID,
		Name:         c.Name,
		Title:        c.Title(),
		CanonicalURL: c.CanonicalURL,
		ValueType:    c.ValueType,
		StreamType:   c.Value.StreamType,
		Amount:       c.Amount.Float(),
		ReleaseTime:  claims.ReleaseTime(c),
		Duration:     c.Value.Duration(),
		Description:  c.Value.Description,
	}
	if c.SigningChannel != nil {
		s.Channel = c.SigningChannel.CanonicalURL
		if s.Channel == "" {
			s.Channel = c.SigningChannel.Name
		}
	}
	if src := c.Value.Source; src != nil {
		s.Size = int64(src.Size)
		s.MediaType = src.MediaType
	}
	if c.Value.Thumbnail != nil {
		s.Thumbnail = c.Value.Thumbnail.URL
	}
	if fee := c.Value.Fee; fee != nil {
		s.FeeAmount = string(fee.Amount)
		s.FeeCurrency = fee.Currency
	}
	return s
}

// SummarizeAll summarizes claims in order.
func SummarizeAll(items []lbrynet.Claim) []ClaimSummary {
	out := make([]ClaimSummary, 0, len(items))
	for _, c := range items {
		out = append(out, Summarize(c))
	}
	return out
}

// FromEvent converts a stored history event.
func FromEvent(e store.Event) HistoryEvent {
	return HistoryEvent{
		ID:        e.ID,
		Kind:      e.Kind,
		Query:     e.Query,
		ClaimID:   e.ClaimID,
		URI:       e.URI,
		Title:     e.Title,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
}
