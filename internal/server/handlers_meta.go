package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"alexandria/internal/api"
	"alexandria/internal/lbrynet"
	"alexandria/internal/store"
	"alexandria/internal/thumbcache"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus answers 200 even when the daemon is down so the page can say so.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := api.StatusResponse{DaemonURL: s.opts.DaemonURL}
	st, err := s.daemon.Status(r.Context())
	switch {
	case err == nil:
		resp.Running = st.IsRunning
		resp.Connection = st.ConnectionState.Code
		resp.Blocks = st.Wallet.Blocks
		resp.BlocksBehind = st.Wallet.BlocksBehind
	case lbrynet.IsUnavailable(err):
		resp.Error = "lbrynet is not running"
	default:
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, []api.HistoryEvent{})
		return
	}
	limit, err := queryIntDefault(r, "limit", 0)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	switch kind {
	case "", store.EventSearch, store.EventResolve, store.EventDownload:
	default:
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("invalid kind: %s", kind), ErrCodeInvalidQuery))
		return
	}

	events, err := s.store.ListHistory(r.Context(), store.HistoryFilter{Kind: kind, Limit: limit})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	out := make([]api.HistoryEvent, 0, len(events))
	for _, e := range events {
		out = append(out, api.FromEvent(e))
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleThumbnail serves a claim's cached thumbnail, fetching it on first use
// from the url recorded in the claim cache and again when that url changes.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	claimID := strings.TrimSpace(r.PathValue("claim_id"))
	if !validateClaimID(claimID) {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("invalid claim id"), ErrCodeInvalidClaimID))
		return
	}
	if s.thumbs == nil || s.store == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("thumbnails are disabled"), ErrCodeThumbnailNotFound))
		return
	}

	claim, err := s.store.GetClaim(r.Context(), claimID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	currentURL := ""
	if claim != nil && claim.Value.Thumbnail != nil {
		currentURL = strings.TrimSpace(claim.Value.Thumbnail.URL)
	}

	f, thumb, err := s.thumbs.Open(r.Context(), claimID)
	switch {
	case errors.Is(err, thumbcache.ErrNotCached):
		if currentURL == "" {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("no thumbnail for %s", claimID), ErrCodeThumbnailNotFound))
			return
		}
		if _, ferr := s.thumbs.Fetch(r.Context(), claimID, currentURL); ferr != nil {
			s.log().Debug("fetch thumbnail", "claim_id", claimID, "error", ferr)
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("thumbnail unavailable: %w", ferr), ErrCodeThumbnailNotFound))
			return
		}
		f, thumb, err = s.thumbs.Open(r.Context(), claimID)
	case err == nil && currentURL != "" && thumb.URL != currentURL:
		// The claim was updated with a new image; keep serving the old one
		// if the new url cannot be fetched.
		if _, ferr := s.thumbs.Fetch(r.Context(), claimID, currentURL); ferr != nil {
			s.log().Debug("refresh thumbnail", "claim_id", claimID, "error", ferr)
			break
		}
		_ = f.Close()
		f, thumb, err = s.thumbs.Open(r.Context(), claimID)
	}
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	defer f.Close()

	if thumb.MediaType != "" {
		w.Header().Set("Content-Type", thumb.MediaType)
	}
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("ETag", `"`+thumb.Digest+`"`)
	if match := r.Header.Get("If-None-Match"); match == `"`+thumb.Digest+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.log().Debug("write thumbnail", "claim_id", claimID, "error", err)
	}
}
