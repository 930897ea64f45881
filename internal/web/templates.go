// ABOUTME: Template rendering for the web pages
// ABOUTME: Loads templates from the embedded filesystem

package web

import (
	"html/template"
	"net/http"
	"time"

	"github.com/JRahala/beerbot-web/internal/store"
)

type indexData struct {
	Title   string
	Entries []store.LeaderboardEntry
}

type meData struct {
	Title   string
	Account *store.Account
	Summary *store.Summary
	Drinks  []*store.DrinkEvent
}

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	// Accepts both time.Time and *time.Time fields.
	"timefmt": func(v any) string {
		switch t := v.(type) {
		case time.Time:
			return t.UTC().Format("2006-01-02 15:04")
		case *time.Time:
			if t == nil {
				return ""
			}
			return t.UTC().Format("2006-01-02 15:04")
		}
		return ""
	},
	"add1": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.html"))

// render writes the named template, logging and replacing the response
// on failure.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("rendering template failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
