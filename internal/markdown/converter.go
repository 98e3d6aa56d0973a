package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter compiles markdown documents with link cards enabled.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds a GFM converter with the link card extension and any
// additional extensions. Raw HTML in documents is passed through.
func NewConverter(cards *LinkCard, extra ...goldmark.Extender) *Converter {
	exts := append([]goldmark.Extender{extension.GFM, cards}, extra...)
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert renders source to HTML. A link whose metadata could not be resolved
// because of a storage failure fails the whole document.
func (c *Converter) Convert(ctx context.Context, source []byte) ([]byte, error) {
	pc := NewParserContext(ctx)
	var buf bytes.Buffer
	if err := c.md.Convert(source, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}
	if err := Errors(pc); err != nil {
		return nil, fmt.Errorf("failed to resolve link cards: %w", err)
	}
	return buf.Bytes(), nil
}
