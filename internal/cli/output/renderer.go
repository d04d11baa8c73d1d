// Package output provides rendering helpers for CLI commands.
//
// A Renderer adapts command output to where it lands: styled text on a
// terminal, plain markdown for pipes and CI logs, or JSON for machines.
// Mode auto picks text or markdown from TTY detection.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how command output is rendered.
type Mode string

// Rendering modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting the TTY state from the output
// writer.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state. Tests
// use this to pin down the effective mode regardless of where they run.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	r := &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
	}
	if r.colorEnabled() {
		r.styles = newColorStyles()
	} else {
		r.styles = newPlainStyles()
	}
	return r
}

// colorEnabled reports whether output should carry ANSI styling. Markdown
// and JSON stay byte-clean for pipes.
func (r *Renderer) colorEnabled() bool {
	return r.EffectiveMode() == ModeText && r.isTTY && !termenv.EnvNoColor()
}

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether primary output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Writer returns the destination for primary output.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the destination for error output.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Styles returns the style set matching the renderer's color state.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Println writes a line to primary output.
func (r *Renderer) Println(a ...interface{}) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to primary output.
func (r *Renderer) Printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header in the current mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		r.Println("")
		return
	}
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(text))
}

// Success writes a confirmation line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render("✓ " + msg))
}

// Warning writes a cautionary line to error output so pipes reading
// primary output stay clean.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// StatusLine writes an indented per-item status line, such as one file of
// a multi-file operation.
func (r *Renderer) StatusLine(name, status, detail string) {
	var symbol string
	switch status {
	case "success":
		symbol = r.styles.Success.Render("✓")
	case "error":
		symbol = r.styles.Error.Render("✗")
	case "warning":
		symbol = r.styles.Warning.Render("!")
	default:
		symbol = r.styles.Muted.Render("-")
	}
	if detail != "" {
		r.Printf("  %s %s %s\n", symbol, name, r.styles.Muted.Render("("+detail+")"))
		return
	}
	r.Printf("  %s %s\n", symbol, name)
}

// JSON writes v as indented JSON to primary output.
func (r *Renderer) JSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
