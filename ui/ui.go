package ui

import (
	"embed"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed all:static
var staticFS embed.FS

// Handler returns an HTTP handler that serves the embedded block assets
func Handler(mountPath string) http.Handler {
	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("Failed to create sub filesystem: %v", err)
	}

	return &uiHandler{
		mountPath: strings.TrimSuffix(mountPath, "/"),
		fs:        fsys,
	}
}

type uiHandler struct {
	mountPath string
	fs        fs.FS
}

func (h *uiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only allow GET and HEAD methods
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Remove mount path prefix from URL path
	urlPath := strings.TrimPrefix(r.URL.Path, h.mountPath)

	// Clean the path to prevent directory traversal
	urlPath = path.Clean(urlPath)
	urlPath = strings.TrimPrefix(urlPath, "/")
	if urlPath == "" || urlPath == "." {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	file, err := h.fs.Open(urlPath)
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Warning: Failed to close file %s: %v", urlPath, err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Set Content-Type based on file extension
	ext := path.Ext(urlPath)
	if ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
	}

	// Embedded assets only change with the binary
	w.Header().Set("Cache-Control", "public, max-age=3600")

	http.ServeContent(w, r, urlPath, stat.ModTime(), file.(io.ReadSeeker))
}
