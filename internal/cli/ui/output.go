package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/davidbz/workshopai/internal/consumer"
	"github.com/davidbz/workshopai/internal/sections"
)

// Printer writes styled output to w.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Success prints a success line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, Styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, Styles.Error.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning line.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintln(p.w, Styles.Warning.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// Info prints a muted line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, Styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Title prints a heading.
func (p *Printer) Title(text string) {
	fmt.Fprintln(p.w, Styles.Title.Render(text))
}

// Boxed prints text inside a rounded border.
func (p *Printer) Boxed(text string) {
	fmt.Fprintln(p.w, Styles.Box.Render(text))
}

// Raw writes text unstyled.
func (p *Printer) Raw(text string) {
	fmt.Fprint(p.w, text)
}

// Sections prints parsed sections as numbered lists.
func (p *Printer) Sections(parsed []sections.Section) {
	for _, section := range parsed {
		fmt.Fprintln(p.w, Styles.Section.Render(section.Name))
		if len(section.Items) == 0 {
			fmt.Fprintln(p.w, Styles.Muted.Render("  (none)"))
			continue
		}
		for i, item := range section.Items {
			fmt.Fprintf(p.w, "  %d. %s\n", i+1, item)
		}
	}
}

// StreamRenderer prints the growing text of one request. Accumulated text
// only ever grows, so each update prints the new suffix.
type StreamRenderer struct {
	printer *Printer
	printed int
}

// NewStreamRenderer creates a renderer writing through printer.
func NewStreamRenderer(printer *Printer) *StreamRenderer {
	return &StreamRenderer{printer: printer}
}

// Handle renders one session event.
func (r *StreamRenderer) Handle(event consumer.Event) {
	switch event.Kind {
	case consumer.EventStarted:
		r.printed = 0
		r.printer.Info("Generating...")
	case consumer.EventDelta:
		r.printSuffix(event.Text)
	case consumer.EventFinished:
		if event.Failed {
			if r.printed > 0 {
				r.printer.Raw("\n")
			}
			r.printer.Error("%s", event.Text)
			return
		}
		r.printSuffix(event.Text)
		if !strings.HasSuffix(event.Text, "\n") {
			r.printer.Raw("\n")
		}
		if len(event.Sections) > 0 {
			r.printer.Sections(event.Sections)
		}
	}
}

func (r *StreamRenderer) printSuffix(text string) {
	if len(text) <= r.printed {
		return
	}
	r.printer.Raw(text[r.printed:])
	r.printed = len(text)
}
