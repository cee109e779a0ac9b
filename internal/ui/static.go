package ui

import (
	_ "embed"
	"net/http"
)

//go:embed templates/style.css
var stylesheet []byte

// Stylesheet serves the application stylesheet.
func Stylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(stylesheet)
}
