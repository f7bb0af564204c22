package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Web UI.
	mux.HandleFunc("GET /{$}", s.handleUIIndex)
	mux.Handle("GET /ui/", s.uiAssetHandler())

	// Health check and daemon status.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)

	// Finding items.
	mux.HandleFunc("GET /v1/search", s.handleSearch)
	mux.HandleFunc("GET /v1/resolve", s.handleResolve)

	// Downloads and playback.
	mux.HandleFunc("POST /v1/downloads", s.handleDownload)

	// Local data.
	mux.HandleFunc("GET /v1/history", s.handleHistory)
	mux.HandleFunc("GET /v1/thumbnails/{claim_id}", s.handleThumbnail)

	return mux
}
