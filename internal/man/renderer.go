package man

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NoTTYStyle renders pages and lists without ANSI escapes
const NoTTYStyle = "notty"

// Renderer handles terminal output for man pages.
type Renderer struct {
	out   io.Writer
	style string
}

// NewRenderer creates a new renderer with the given output writer.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// WithStyle fixes the glamour style ("dark", "light", "notty") instead of
// detecting it from the terminal. NoTTYStyle also turns off list colours.
func (r *Renderer) WithStyle(style string) *Renderer {
	r.style = style
	return r
}

// RenderPage renders a man page to the terminal with markdown formatting.
// Pages fall back to plain markdown when glamour cannot render them.
func (r *Renderer) RenderPage(page *ManPage) error {
	content, err := page.GetContent()
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}

	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(100))
	if err == nil {
		if rendered, err := tr.Render(content); err == nil {
			fmt.Fprint(r.out, rendered)
			return nil
		}
	}

	fmt.Fprintf(r.out, "\n%s\n\n", content)
	return nil
}

// RenderList renders the list of available man pages.
func (r *Renderer) RenderList() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.color("1;36", "Available Topics"))
	fmt.Fprintln(r.out, r.color("36", strings.Repeat("-", 72)))
	fmt.Fprintln(r.out)

	for _, page := range ListPages() {
		fmt.Fprintf(r.out, "  %s", r.color("1;33", page.Name))
		if len(page.Aliases) > 0 {
			fmt.Fprintf(r.out, " %s", r.color("2", "("+strings.Join(page.Aliases, ", ")+")"))
		}
		fmt.Fprintln(r.out)
		fmt.Fprintf(r.out, "    %s\n\n", page.Description)
	}
}

// RenderNotFound renders a "topic not found" message, suggesting topics
// that share a prefix with the request.
func (r *Renderer) RenderNotFound(topic string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.color("1;31", "Topic not found: "+topic))
	if near := suggest(topic); len(near) > 0 {
		fmt.Fprintf(r.out, "Did you mean: %s?\n", strings.Join(near, ", "))
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Use 'zigzag man --list' to see available topics.")
	fmt.Fprintln(r.out)
}

func (r *Renderer) color(code, s string) string {
	if r.style == NoTTYStyle {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// suggest returns page names or aliases starting with the first letters of topic
func suggest(topic string) []string {
	topic = strings.ToLower(topic)
	if len(topic) > 3 {
		topic = topic[:3]
	}
	if topic == "" {
		return nil
	}

	var out []string
	for _, page := range ListPages() {
		candidates := append([]string{page.Name}, page.Aliases...)
		for _, c := range candidates {
			if strings.HasPrefix(c, topic) {
				out = append(out, page.Name)
				break
			}
		}
	}
	return out
}
