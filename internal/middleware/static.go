package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

const placeholderAvatar = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" rx="100" fill="#f0f0f0"/><circle cx="100" cy="80" r="36" fill="#999"/><path d="M40 170c0-33.1 26.9-50 60-50s60 16.9 60 50z" fill="#999"/></svg>`

// AvatarServer serves customer images from dir. Unknown files get a
// placeholder so listings never show a broken image.
func AvatarServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(placeholderAvatar))
	})
}
