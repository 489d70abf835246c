package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	tplReply             = "reply.html"
	tplOrderConfirmation = "order_confirmation.html"
	tplAlert             = "alert.html"
)

// page is what every template receives
type page struct {
	Subject string
	Brand   string
	SiteURL string
	Link    string
	Data    any
}

var funcMap = template.FuncMap{
	"mad":   document.FormatMAD,
	"date":  formatDate,
	"lines": lines,
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// lines splits text on line breaks, dropping blank runs
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

type renderer struct {
	tpl *template.Template
}

func newRenderer() (*renderer, error) {
	tpl, err := template.New("mail").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &renderer{tpl: tpl}, nil
}

func (r *renderer) render(name string, p page) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, p); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
