// Package markdown renders wiki entries from Markdown to HTML.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown source into HTML. Implementations must not
// modify the input.
type Renderer interface {
	Render(markdown []byte) ([]byte, error)
}

type Options struct {
	Extensions []string
	Unsafe     bool
	HardWraps  bool
}

type Option func(*Options)

// WithExtensions selects goldmark extensions by name. Unknown names are
// ignored.
func WithExtensions(names ...string) Option {
	return func(o *Options) {
		o.Extensions = names
	}
}

// WithUnsafe lets raw HTML embedded in entries through to the output.
func WithUnsafe(unsafe bool) Option {
	return func(o *Options) {
		o.Unsafe = unsafe
	}
}

func WithHardWraps(hardWraps bool) Option {
	return func(o *Options) {
		o.HardWraps = hardWraps
	}
}

// GoldmarkRenderer is safe for concurrent use.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
}

func NewGoldmarkRenderer(opts ...Option) *GoldmarkRenderer {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &GoldmarkRenderer{
		engine: newEngine(o),
	}
}

func (r *GoldmarkRenderer) Render(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func newEngine(o Options) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if o.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if o.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(collectExtensions(o.Extensions)...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}
