// Package output renders CLI results as styled text, markdown or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode selects how a Renderer formats output.
type Mode string

// OutputMode is an alias kept for callers that spell the type out.
type OutputMode = Mode

// Output modes.
const (
	ModeAuto     Mode = "auto"     // text on a terminal, markdown otherwise
	ModeText     Mode = "text"     // styled terminal output
	ModeMarkdown Mode = "markdown" // plain markdown for agents and pipes
	ModeJSON     Mode = "json"     // machine-readable
)

// Status is the outcome shown by StatusLine.
type Status string

// Statuses.
const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	r := &Renderer{out: out, errOut: errOut, mode: mode, isTTY: isTTY}
	if r.EffectiveMode() == ModeText && isTTY {
		r.styles = NewStyles(out)
	} else {
		r.styles = PlainStyles()
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Mode returns the configured mode, which may be ModeAuto.
func (r *Renderer) Mode() Mode { return r.mode }

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() Mode {
	switch r.mode {
	case ModeText, ModeMarkdown, ModeJSON:
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether stdout is a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Styles returns the active styles. Styles are no-ops unless output is a
// styled terminal.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the stdout writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the stderr writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to stdout.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to stdout.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return
	case ModeMarkdown:
		r.Println(FormatHeader(level, text))
		r.Println("")
	default:
		r.Println(r.styles.Header.Render(text))
		if level <= 1 {
			r.Println(r.styles.Muted.Render(strings.Repeat("─", len([]rune(text)))))
		}
	}
}

// Success writes a success message. Suppressed in JSON mode.
func (r *Renderer) Success(msg string) {
	switch r.EffectiveMode() {
	case ModeJSON:
	case ModeMarkdown:
		r.Printf("**OK** %s\n", msg)
	default:
		r.Println(r.styles.Success.Render("✓ " + msg))
	}
}

// Warning writes a warning message to stderr.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
		return
	}
	_, _ = fmt.Fprintf(r.errOut, "Warning: %s\n", msg)
}

// Error writes an error message to stderr.
func (r *Renderer) Error(msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+msg))
		return
	}
	_, _ = fmt.Fprintf(r.errOut, "Error: %s\n", msg)
}

// Muted writes de-emphasized text. Suppressed in JSON mode.
func (r *Renderer) Muted(msg string) {
	switch r.EffectiveMode() {
	case ModeJSON:
	case ModeMarkdown:
		r.Printf("_%s_\n", msg)
	default:
		r.Println(r.styles.Muted.Render(msg))
	}
}

// StatusLine writes one line summarizing the outcome for a named item.
func (r *Renderer) StatusLine(name string, status Status, detail string) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return
	case ModeMarkdown:
		line := fmt.Sprintf("- %s: **%s**", name, status)
		if detail != "" {
			line += " (" + detail + ")"
		}
		r.Println(line)
	default:
		var mark string
		switch status {
		case StatusOK:
			mark = r.styles.Success.Render("✓")
		case StatusFailed:
			mark = r.styles.Error.Render("✗")
		default:
			mark = r.styles.Muted.Render("-")
		}
		line := fmt.Sprintf("%s %s", mark, r.styles.Path.Render(name))
		if detail != "" {
			line += "  " + r.styles.Muted.Render(detail)
		}
		r.Println(line)
	}
}

// JSON writes v as indented JSON to stdout.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
