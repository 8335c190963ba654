package portal

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"expo-portal/internal/models"
	"expo-portal/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"home",
	"visitors",
	"visitor_card",
	"register",
	"login",
	"dashboard",
	"hall_layout",
	"payment",
	"error",
}

type pages map[string]*template.Template

var funcs = template.FuncMap{
	"money": formatMoney,
	"dict":  dict,
	"qrsrc": qrSource,
}

// qrSource marks a visitor QR image as a trusted img src. Only the PNG data
// URLs the card generator produces and http(s) links are accepted.
func qrSource(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/png;base64,"):
		return template.URL(src)
	case strings.HasPrefix(src, "https://"), strings.HasPrefix(src, "http://"):
		return template.URL(src)
	}
	return ""
}

// dict lets a template pass several named values to a sub-template.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict needs key/value pairs, got %d args", len(kv))
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

func parsePages() (pages, error) {
	p := make(pages, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		p[name] = t
	}
	return p, nil
}

// view is what every page template receives.
type view struct {
	Title    string
	Flash    *session.FlashMessage
	LoggedIn bool
	Company  *models.Company
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := h.pages[name]
	if !ok {
		h.Logger.Error("RENDER", "unknown page "+name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v := view{Title: title, Data: data}
	if s := session.FromContext(r.Context()); s != nil {
		v.Flash = s.Flash(r.Context())
		if company, err := s.Company(r.Context()); err == nil && company != nil {
			v.Company = company
			v.LoggedIn = true
		}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		h.Logger.Error("RENDER", fmt.Sprintf("failed to render %s: %v", name, err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	Heading string
	Message string
	Action  string
}

// renderError shows a page with a single way forward: retry, go back, or
// log in again.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message, action string) {
	h.render(w, r, status, "error", heading, errorPage{Heading: heading, Message: message, Action: action})
}

// formatMoney renders an amount in rupees with thousands separators.
func formatMoney(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := "₹" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
