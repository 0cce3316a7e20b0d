package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/email"
	"gymbios/internal/adapters/http/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// renderTemplate executes layout.html with the named page template.
// Pages define "title" and "content"; the layout supplies the sidebar.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role, currentEmail := "", ""
	if ok {
		role, currentEmail = sess.Role, sess.Email
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return currentEmail },
		"isLoggedIn":   func() bool { return ok },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"menu":         func() []MenuSection { return MenuFor(role) },
		"renderMarkdown": func(md string) template.HTML {
			html, err := email.RenderMarkdown(md)
			if err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(html)
		},
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"add":   func(a, b int) int { return a + b },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS,
		"templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, err)
		return
	}

	// Render into a buffer so a failed execute never leaves a half-written page.
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("response_write_failed", "template", templateName, "error", err.Error())
	}
}
