// Package web embeds the HTML templates of the portal pages.
package web

import (
	"embed"
	"html/template"

	"gym_backend/internal/feature/portal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notice kinds, used as CSS classes.
const (
	NoticeError   = "error"
	NoticeSuccess = "success"
)

// Notice is the banner shown above a page.
type Notice struct {
	Kind string
	Text string
}

// Page is the data every template renders.
type Page struct {
	Title     string
	Notice    *Notice
	Values    map[string]string
	Errors    map[string]string
	Dashboard *domain.Dashboard
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
