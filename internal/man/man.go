// Package man provides documentation pages accessible via `zigzag man <topic>`.
package man

import (
	"embed"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// ManPage represents a documentation topic.
type ManPage struct {
	Name        string
	Title       string
	Description string
	Aliases     []string
}

// GetContent reads and returns the markdown content for this page, with
// generated sections filled in.
func (p *ManPage) GetContent() (string, error) {
	data, err := contentFS.ReadFile("content/" + p.Name + ".md")
	if err != nil {
		return "", err
	}
	return expandGenerated(string(data)), nil
}

// Pages is the registry of all man pages
var Pages = map[string]*ManPage{
	"quickstart": {
		Name:        "quickstart",
		Title:       "Quick Start",
		Description: "Run go tests with zigzag and upload the results",
		Aliases:     []string{"quick", "start"},
	},
	"options": {
		Name:        "options",
		Title:       "Options",
		Description: "Command-line flags, zigzag.yaml and precedence",
		Aliases:     []string{"flags", "settings", "ini"},
	},
	"config": {
		Name:        "config",
		Title:       "Config File",
		Description: "The JSON config file and its schema",
		Aliases:     []string{"schema", "env"},
	},
	"marks": {
		Name:        "marks",
		Title:       "Marks",
		Description: "Attaching test_id, jira and step marks to tests",
		Aliases:     []string{"mark", "steps", "properties"},
	},
	"upload": {
		Name:        "upload",
		Title:       "Upload",
		Description: "Uploading JUnit results to qTest",
		Aliases:     []string{"qtest"},
	},
	"receiver": {
		Name:        "receiver",
		Title:       "Receiver",
		Description: "Local stand-in for the qTest auto-test-logs endpoint",
		Aliases:     []string{"server", "mock"},
	},
}

// aliasMap maps aliases to canonical page names
var aliasMap map[string]string

func init() {
	aliasMap = make(map[string]string)
	for name, page := range Pages {
		aliasMap[name] = name
		for _, alias := range page.Aliases {
			aliasMap[alias] = name
		}
	}
}

// GetPage returns a man page by name or alias.
func GetPage(name string) *ManPage {
	canonical, ok := aliasMap[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return Pages[canonical]
}

// ListPages returns all available man pages in reading order.
func ListPages() []*ManPage {
	order := []string{
		"quickstart",
		"options",
		"config",
		"marks",
		"upload",
		"receiver",
	}

	pages := make([]*ManPage, 0, len(order))
	for _, name := range order {
		if page, ok := Pages[name]; ok {
			pages = append(pages, page)
		}
	}
	return pages
}
