package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed uiassets/dist/*
var uiFS embed.FS

// The page talks only to this server; media comes from the daemon's streaming url.
const uiContentSecurityPolicy = "default-src 'self'; img-src 'self' data:; media-src *; connect-src 'self'; frame-ancestors 'none'"

func uiDist() (fs.FS, error) {
	return fs.Sub(uiFS, "uiassets/dist")
}

func (s *Server) uiAssetHandler() http.Handler {
	dist, err := uiDist()
	if err != nil {
		return http.NotFoundHandler()
	}

	fileServer := http.StripPrefix("/ui/", http.FileServerFS(dist))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ui/") || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) handleUIIndex(w http.ResponseWriter, r *http.Request) {
	dist, err := uiDist()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	index, err := fs.ReadFile(dist, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Security-Policy", uiContentSecurityPolicy)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(index)
}
