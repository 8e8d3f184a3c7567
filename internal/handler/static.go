package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// SPAHandler serves files from dir and falls back to index.html for
// unknown paths so client-side routes resolve.
type SPAHandler struct {
	dir string
}

// NewSPAHandler creates a static handler rooted at dir
func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{dir: dir}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	urlPath := path.Clean("/" + r.URL.Path)
	if urlPath == "/" {
		urlPath = "/index.html"
	}

	if file := filepath.Join(h.dir, filepath.FromSlash(urlPath)); isFile(file) {
		http.ServeFile(w, r, file)
		return
	}

	if index := filepath.Join(h.dir, "index.html"); isFile(index) {
		http.ServeFile(w, r, index)
		return
	}

	writeText(w, http.StatusNotFound, "Not Found")
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
