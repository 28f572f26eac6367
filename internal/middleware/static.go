package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#f4f4f5"/><rect x="60" y="50" width="80" height="100" rx="8" fill="#d4d4d8"/><circle cx="100" cy="85" r="18" fill="#a1a1aa"/><text x="100" y="178" text-anchor="middle" font-family="Arial" font-size="14" fill="#71717a">PRODUCT</text></svg>`

// StaticFileServer serves sample product images, falling back to a
// placeholder for anything missing.
func StaticFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(placeholderSVG))
	})
}
