// Package report renders a session history into the workshop summary email.
package report

import (
	"embed"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/cbroglie/mustache"

	"github.com/davidbz/workshopai/internal/consumer"
	"github.com/davidbz/workshopai/internal/domain"
)

//go:embed templates/*.mustache
var templates embed.FS

const (
	// DefaultSubject is the subject of the prompt-version report.
	DefaultSubject = "Workshop AI - Latihan Kejelasan Instruksi"
	// DefaultTitle is the heading of the HTML report.
	DefaultTitle = "Latihan Kejelasan Instruksi"

	noFeedback      = "No feedback yet"
	timestampLayout = "02/01/2006 15:04:05"
)

var (
	// ErrNoEntries is returned when the history is empty.
	ErrNoEntries = errors.New("create at least one prompt before sending the report")
	// ErrNoRecipient is returned when no recipient address is set.
	ErrNoRecipient = errors.New("recipient email is required")
)

// Footer is the closing block of the HTML report.
type Footer struct {
	Workshop     string `env:"REPORT_FOOTER_WORKSHOP"     envDefault:"Workshop Pengoptimalan AI"`
	Date         string `env:"REPORT_FOOTER_DATE"         envDefault:"25-28 Februari 2025"`
	Organization string `env:"REPORT_FOOTER_ORGANIZATION" envDefault:"Nusantara Power Services"`
	Facilitator  string `env:"REPORT_FOOTER_FACILITATOR"  envDefault:"Akhmad Guntar"`
	Role         string `env:"REPORT_FOOTER_ROLE"         envDefault:"Workshop Facilitator"`
}

// Report describes one email to render.
type Report struct {
	To      string
	Subject string
	Title   string
	Role    string
	Entries []consumer.Entry
	Footer  Footer
}

// Renderer holds the parsed report templates.
type Renderer struct {
	text *mustache.Template
	html *mustache.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	text, err := parse("templates/report.txt.mustache")
	if err != nil {
		return nil, err
	}

	htmlTmpl, err := parse("templates/report.html.mustache")
	if err != nil {
		return nil, err
	}

	return &Renderer{text: text, html: htmlTmpl}, nil
}

func parse(name string) (*mustache.Template, error) {
	raw, err := templates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	tmpl, err := mustache.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return tmpl, nil
}

// Render builds the email message for r.
func (rd *Renderer) Render(r Report) (*domain.EmailMessage, error) {
	if len(r.Entries) == 0 {
		return nil, ErrNoEntries
	}
	if strings.TrimSpace(r.To) == "" {
		return nil, ErrNoRecipient
	}

	subject := r.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	title := r.Title
	if title == "" {
		title = DefaultTitle
	}

	ctx := map[string]any{
		"title":    title,
		"role":     r.Role,
		"roleHTML": toHTML(r.Role),
		"versions": versions(r.Entries),
		"footer":   r.Footer,
	}

	text, err := rd.text.Render(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render text report: %w", err)
	}

	body, err := rd.html.Render(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}

	return &domain.EmailMessage{
		To:      strings.TrimSpace(r.To),
		Subject: subject,
		Text:    text,
		HTML:    body,
	}, nil
}

func versions(entries []consumer.Entry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for i, entry := range entries {
		feedback := feedbackOf(entry)
		out = append(out, map[string]any{
			"version":      entry.Version,
			"timestamp":    entry.At.Format(timestampLayout),
			"prompt":       entry.Prompt,
			"promptHTML":   toHTML(entry.Prompt),
			"feedback":     orDefault(feedback, noFeedback),
			"feedbackHTML": toHTML(feedback),
			"hasFeedback":  feedback != "",
			"last":         i == len(entries)-1,
		})
	}
	return out
}

// feedbackOf prefers explicit feedback over the model response.
func feedbackOf(entry consumer.Entry) string {
	if entry.Feedback != "" {
		return entry.Feedback
	}
	return entry.Response
}

func toHTML(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
