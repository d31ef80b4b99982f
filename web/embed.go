// Package web holds the server-rendered UI shell.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// PageTemplate is the name every page renders through.
const PageTemplate = "chatbot.html"

// Templates parses the embedded templates for gin's SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.html")
}
