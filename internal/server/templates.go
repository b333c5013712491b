package server

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// dialogData feeds the dialog template: a title, an optional message, and
// whether to offer the persistent-login opt-in.
type dialogData struct {
	Title        string
	Message      string
	ShowRemember bool
}

// render executes a page template, falling back to a plain 500 when the
// template itself fails mid-write.
func (a *App) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("template execution failed", "template", name, "error", err)
	}
}

func (a *App) renderDialog(w http.ResponseWriter, status int, title, message string) {
	a.render(w, status, "dialog.html", dialogData{Title: title, Message: message})
}
