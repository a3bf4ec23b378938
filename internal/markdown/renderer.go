// Package markdown renders post bodies to HTML with goldmark.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/folio/internal/navigation"
)

// Options tunes HTML output.
type Options struct {
	// UnsafeHTML passes raw HTML in the body through to the output.
	UnsafeHTML bool
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
}

// Renderer converts markdown to HTML. Heading ids are produced by
// navigation.Slugify so they match the outline anchors exactly. A Renderer is
// safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a renderer with GFM, linkify and task list extensions.
func NewRenderer(opts Options) *Renderer {
	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.UnsafeHTML {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return &Renderer{md: goldmark.New(engineOptions...)}
}

// Render converts body to HTML.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	ctx := parser.NewContext(parser.WithIDs(anchorIDs{}))
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// anchorIDs is a parser.IDs that never de-duplicates: the first element with a
// repeated id wins when the browser resolves the anchor.
type anchorIDs struct{}

func (anchorIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(navigation.Slugify(string(value)))
}

func (anchorIDs) Put(_ []byte) {}
