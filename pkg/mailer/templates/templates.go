package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	VerifyEmail   = "verify_email"
	ResetPassword = "reset_password"
)

// EmailData is the data every email template renders from.
type EmailData struct {
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName string `json:"CompanyName"`
	AppName     string `json:"AppName"`
	SupportURL  string `json:"SupportURL"`

	ResetURL  string `json:"ResetURL"`
	VerifyURL string `json:"VerifyURL"`

	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`
	Time          string    `json:"Time"`
}

// ToMap converts EmailData to the map carried in EmailJob.Data.
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return value
}

// set holds the parsed subject, text and html templates of one email.
type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var registry = mustParse(VerifyEmail, ResetPassword)

func mustParse(names ...string) map[string]set {
	funcs := map[string]any{"default": defaultFn}
	out := make(map[string]set, len(names))
	for _, name := range names {
		subject, text, html := name+".subject.tmpl", name+".text.tmpl", name+".html.tmpl"
		out[name] = set{
			subject: texttpl.Must(texttpl.New(subject).Funcs(funcs).ParseFS(FS, subject)),
			text:    texttpl.Must(texttpl.New(text).Funcs(funcs).ParseFS(FS, text)),
			html:    htmpl.Must(htmpl.New(html).Funcs(funcs).ParseFS(FS, html)),
		}
	}
	return out
}

// Known reports whether name is a registered template.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Render executes the subject, text and html templates of name.
func Render(name string, data any) (subject string, text string, html string, err error) {
	s, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := s.subject.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("exec %s subject: %w", name, err)
	}
	subject = strings.TrimSpace(buf.String())
	buf.Reset()
	if err := s.text.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("exec %s text: %w", name, err)
	}
	text = buf.String()
	buf.Reset()
	if err := s.html.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("exec %s html: %w", name, err)
	}
	return subject, text, buf.String(), nil
}
