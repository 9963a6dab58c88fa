package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Console prints human-oriented messages. Progress goes to out, failures to
// errOut.
type Console struct {
	out    io.Writer
	errOut io.Writer
	st     styles
	errSt  styles
}

// NewConsole returns a Console writing to out and errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{
		out:    out,
		errOut: errOut,
		st:     newStyles(lipgloss.NewRenderer(out)),
		errSt:  newStyles(lipgloss.NewRenderer(errOut)),
	}
}

// Out returns the progress writer.
func (c *Console) Out() io.Writer { return c.out }

func (c *Console) Success(msg string) {
	fmt.Fprintf(c.out, "%s %s\n", c.st.success.Render(GlyphSuccess), msg)
}

func (c *Console) Info(msg string) {
	fmt.Fprintf(c.out, "%s %s\n", c.st.info.Render(GlyphInfo), msg)
}

func (c *Console) Warning(msg string) {
	fmt.Fprintf(c.out, "%s %s\n", c.st.warning.Render(GlyphWarning), c.st.warning.UnsetBold().Render(msg))
}

// Failure prints a single failure line to the error writer.
func (c *Console) Failure(msg string) {
	fmt.Fprintf(c.errOut, "%s %s\n", c.errSt.failure.Render(GlyphFailure), c.errSt.failure.UnsetBold().Render(msg))
}

// Title prints an underlined heading surrounded by blank lines.
func (c *Console) Title(text string) {
	fmt.Fprintf(c.out, "\n%s\n\n", c.st.title.Render(text))
}

// Field prints an indented "Label: value" line.
func (c *Console) Field(label, value string) {
	fmt.Fprintf(c.out, "  %s %s\n", c.st.label.Render(label+":"), value)
}

// Check renders a pass/fail marker with text, green for ok and the given
// severity otherwise.
func (c *Console) Check(ok bool, okText, badText string) string {
	if ok {
		return c.st.success.UnsetBold().Render(GlyphSuccess + " " + okText)
	}
	return c.st.failure.UnsetBold().Render(GlyphFailure + " " + badText)
}

// Accent highlights text such as a domain name.
func (c *Console) Accent(text string) string { return c.st.accent.Render(text) }

// Muted dims secondary text.
func (c *Console) Muted(text string) string { return c.st.muted.Render(text) }

// Banner prints a framed success message.
func (c *Console) Banner(msg string) {
	rule := c.st.success.UnsetBold().Render("═══════════════════════════════════════════")
	fmt.Fprintf(c.out, "\n%s\n%s %s\n%s\n\n", rule, c.st.success.Render(GlyphSuccess), c.st.success.Render(msg), rule)
}

// Blank prints an empty line.
func (c *Console) Blank() { fmt.Fprintln(c.out) }
