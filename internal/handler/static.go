package handler

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/actuallystonmai/mood-recommender/internal/logging"
)

const indexFile = "index.html"

// Static serves files from assets and falls back to index.html for every
// path that is not a file, so client-side routes load the app.
func (h *Handler) Static(assets fs.FS) http.HandlerFunc {
	fileServer := http.FileServerFS(assets)

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" && name != indexFile {
			if info, err := fs.Stat(assets, name); err == nil && !info.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		serveIndex(w, r, assets)
	}
}

func serveIndex(w http.ResponseWriter, r *http.Request, assets fs.FS) {
	data, err := fs.ReadFile(assets, indexFile)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("index.html missing from assets")
		http.Error(w, "frontend not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
