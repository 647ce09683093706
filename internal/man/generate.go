package man

import (
	"fmt"
	"strings"

	"github.com/rcbops/gotest-zigzag/internal/options"
)

// optionsMarker is replaced by a table of the registered options, so the
// page always matches the flags `zigzag run` accepts
const optionsMarker = "<!-- generated:options -->"

func expandGenerated(content string) string {
	if !strings.Contains(content, optionsMarker) {
		return content
	}
	return strings.ReplaceAll(content, optionsMarker, optionsTable())
}

func optionsTable() string {
	var b strings.Builder
	b.WriteString("| option | type | default | purpose |\n")
	b.WriteString("|--------|------|---------|---------|\n")
	for _, opt := range options.Registry {
		kind := "string"
		if opt.Kind == options.KindBool {
			kind = "bool"
		}
		def := opt.Default
		if def == "" {
			def = "-"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", opt.Name, kind, def, strings.ReplaceAll(opt.Help, "|", "\\|"))
	}
	return strings.TrimRight(b.String(), "\n")
}
