// Package docs provides the built-in documentation topics and their
// terminal rendering. Topics are markdown files embedded into the
// binary so the manual is available offline and matches the build.
package docs

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/dibs-cli/dibs/pkg/errors"
)

//go:embed topics/*.md
var topicFS embed.FS

// Topic is a single documentation page.
type Topic struct {
	Name    string
	Content string
}

// List returns the names of all available topics, sorted.
func List() []string {
	entries, err := fs.ReadDir(topicFS, "topics")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Get retrieves a topic by name.
func Get(name string) (*Topic, error) {
	name = strings.TrimPrefix(name, "--")
	name = strings.TrimPrefix(name, "-")

	raw, err := topicFS.ReadFile("topics/" + name + ".md")
	if err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "no documentation topic %q", name).
			WithHint("run 'dibs docs' to list available topics")
	}
	return &Topic{Name: name, Content: string(raw)}, nil
}

// Renderer formats topic content for the terminal.
type Renderer struct {
	Style string // "dark", "light", "notty", "auto", or path to custom style
	Width int    // terminal width (0 = auto-detect)
}

// NewRenderer creates a markdown renderer with auto style detection.
func NewRenderer() *Renderer {
	return &Renderer{Style: "auto"}
}

// Render converts markdown to terminal output. On any rendering
// problem the raw markdown is returned unchanged.
func (r *Renderer) Render(content string) string {
	var options []glamour.TermRendererOption

	style := r.Style
	if style == "" || style == "auto" {
		style = detectStyle(os.Stdout)
	}
	if style == "notty" {
		options = append(options, glamour.WithStylePath("notty"))
	} else if style != "auto" {
		options = append(options, glamour.WithStylePath(style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}

	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// detectStyle picks a glamour style from the environment and terminal
// capabilities. Piped output and NO_COLOR get the plain "notty" style.
func detectStyle(output *os.File) string {
	if os.Getenv("NO_COLOR") != "" {
		return "notty"
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return "notty"
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return "notty"
	}
	return "auto"
}
