package driver

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// SPAHandler serves the editor's browser UI from a static directory.
// It serves files when they exist and falls back to index.html for unknown
// routes, enabling HTML5 history-based routing on the client side. Missing
// files that carry an extension are reported as 404 so a stale asset
// reference never receives HTML.
type SPAHandler struct {
	fileSystem fs.FS
	fileServer http.Handler
}

// NewSPAHandler creates a new handler that serves the SPA from the given filesystem.
func NewSPAHandler(fsys fs.FS) *SPAHandler {
	return &SPAHandler{
		fileSystem: fsys,
		fileServer: http.FileServerFS(fsys),
	}
}

// ServeHTTP serves a static file if it exists, otherwise serves index.html.
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	cleanPath := path.Clean(r.URL.Path)
	if cleanPath == "/" {
		cleanPath = "/index.html"
	}

	// Strip leading slash for fs.Open
	filePath := strings.TrimPrefix(cleanPath, "/")

	f, err := h.fileSystem.Open(filePath)
	if err != nil {
		if path.Ext(cleanPath) != "" {
			http.NotFound(w, r)
			return
		}
		// Unknown route: serve index.html and let the client route it
		r.URL.Path = "/"
		h.setCacheHeaders(w, "/index.html")
		h.fileServer.ServeHTTP(w, r)
		return
	}
	f.Close()

	h.setCacheHeaders(w, cleanPath)
	h.fileServer.ServeHTTP(w, r)
}

// setCacheHeaders sets appropriate cache headers based on the file path.
// Hashed bundles under /assets/ get a long cache; index.html gets no-cache.
func (h *SPAHandler) setCacheHeaders(w http.ResponseWriter, filePath string) {
	if strings.HasPrefix(filePath, "/assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else if filePath == "/index.html" {
		w.Header().Set("Cache-Control", "no-cache")
	}
}
