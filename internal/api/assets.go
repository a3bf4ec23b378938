package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

var errInvalidAsset = errors.New("invalid asset name")

// AssetHandler serves images and other static files referenced by posts.
type AssetHandler struct {
	dir string
}

// NewAssetHandler creates a handler rooted at the assets directory.
func NewAssetHandler(dir string) *AssetHandler {
	return &AssetHandler{dir: dir}
}

// resolve accepts only a plain file name and returns its path under the
// assets directory.
func (h *AssetHandler) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", errInvalidAsset
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || cleaned == "." || strings.Contains(cleaned, "..") {
		return "", errInvalidAsset
	}
	return filepath.Join(h.dir, cleaned), nil
}

// ServeFile handles GET /assets/{filename}.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	if h.dir == "" {
		http.NotFound(w, r)
		return
	}
	abs, err := h.resolve(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fi, err := os.Stat(abs)
	if err != nil || fi.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
