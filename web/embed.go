// Package web embeds the dashboard page templates into the binary.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*
var templates embed.FS

// IndexTemplate renders the dashboard landing page.
var IndexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))
