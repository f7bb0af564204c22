package api

import (
	"time"

	"alexandria/internal/lbrynet"
)

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// StatusResponse reports whether the daemon answers and how far it is synced.
type StatusResponse struct {
	DaemonURL    string `json:"daemon_url"`
	Running      bool   `json:"running"`
	Connection   string `json:"connection,omitempty"`
	Blocks       int64  `json:"blocks,omitempty"`
	BlocksBehind int64  `json:"blocks_behind,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ClaimSummary is the part of a claim the web UI lists.
type ClaimSummary struct {
	ClaimID      string  `json:"claim_id"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	CanonicalURL string  `json:"canonical_url,omitempty"`
	Channel      string  `json:"channel,omitempty"`
	ValueType    string  `json:"value_type,omitempty"`
	StreamType   string  `json:"stream_type,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
	Amount       float64 `json:"amount"`
	ReleaseTime  int64   `json:"release_time,omitempty"`
	Duration     int64   `json:"duration,omitempty"`
	Size         int64   `json:"size,omitempty"`
	Description  string  `json:"description,omitempty"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
	FeeAmount    string  `json:"fee_amount,omitempty"`
	FeeCurrency  string  `json:"fee_currency,omitempty"`
}

// SearchResponse is one page of free-text search results.
type SearchResponse struct {
	Query    string         `json:"query"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Cached   bool           `json:"cached"`
	Items    []ClaimSummary `json:"items"`
}

// ResolveResponse is a single resolved item. Claim carries the full daemon record.
type ResolveResponse struct {
	Summary ClaimSummary  `json:"summary"`
	Claim   lbrynet.Claim `json:"claim"`
}

// DownloadRequest asks the daemon to fetch a stream.
type DownloadRequest struct {
	URI     string `json:"uri,omitempty"`
	ClaimID string `json:"claim_id,omitempty"`
	Name    string `json:"name,omitempty"`
	// Stream starts the stream without writing a file, which is enough for playback.
	Stream bool `json:"stream,omitempty"`
}

// DownloadResponse is the file record after get.
type DownloadResponse struct {
	Summary      ClaimSummary `json:"summary"`
	Directory    string       `json:"download_directory,omitempty"`
	Path         string       `json:"download_path,omitempty"`
	StreamingURL string       `json:"streaming_url,omitempty"`
	MimeType     string       `json:"mime_type,omitempty"`
	Completed    bool         `json:"completed"`
}

// HistoryEvent is one recorded search, resolve or download.
type HistoryEvent struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Query     string    `json:"query,omitempty"`
	ClaimID   string    `json:"claim_id,omitempty"`
	URI       string    `json:"uri,omitempty"`
	Title     string    `json:"title,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
