// Package site serves the embedded prediction frontend.
package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register mounts the frontend at / on r. API routes registered on the same
// router take precedence.
func Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	files := http.FileServer(FS())
	r.Get("/*", files.ServeHTTP)
}
