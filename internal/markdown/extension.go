// Package markdown adds link cards to goldmark. A link whose destination is
// "@:" followed by a URL, such as [Docs](@:https://example.com), is replaced
// by a card built from the target page's metadata.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"

	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/extractor"
	"github.com/user/linkcard/internal/monitoring"
	"github.com/user/linkcard/internal/render"
	"github.com/user/linkcard/internal/usecase"
)

// Marker prefixes the destination of a link that should become a card.
const Marker = "@:"

// LinkCard is the goldmark extension.
type LinkCard struct {
	resolver    usecase.MetadataResolver
	target      entity.Target
	classPrefix string
	cards       render.CardRenderer
	logger      *zap.Logger
	metrics     *monitoring.Metrics
}

type Option func(*LinkCard)

// WithTarget sets the anchor target of every card. The value is not checked.
func WithTarget(target entity.Target) Option {
	return func(e *LinkCard) {
		e.target = target
	}
}

// WithClassPrefix switches cards from inline styles to "<prefix>-*" classes.
func WithClassPrefix(prefix string) Option {
	return func(e *LinkCard) {
		e.classPrefix = prefix
	}
}

// WithRenderer replaces the built-in card layout.
func WithRenderer(r render.CardRenderer) Option {
	return func(e *LinkCard) {
		if r != nil {
			e.cards = r
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *LinkCard) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(e *LinkCard) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// New creates the extension around resolver.
func New(resolver usecase.MetadataResolver, opts ...Option) *LinkCard {
	e := &LinkCard{
		resolver: resolver,
		target:   entity.DefaultTarget,
		cards:    render.NewDefault(extractor.DefaultLogo),
		logger:   zap.NewNop(),
		metrics:  monitoring.NewNopMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *LinkCard) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&cardTransformer{ext: e}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&cardHTMLRenderer{ext: e}, 500),
	))
}

func (e *LinkCard) options(o Overrides, href, linkTitle string) entity.CardOptions {
	opts := entity.CardOptions{
		Href:        href,
		LinkTitle:   linkTitle,
		Target:      e.target,
		ClassPrefix: e.classPrefix,
	}
	if o.Target != "" {
		opts.Target = o.Target
	}
	if o.ClassPrefix != "" {
		opts.ClassPrefix = o.ClassPrefix
	}
	return opts
}

type cardTransformer struct {
	ext *LinkCard
}

func (t *cardTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	ctx := requestContext(pc)
	overrides := overridesFrom(ctx)

	// Replacing a node detaches its siblings from the walk, so collect first.
	var links []*ast.Link
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if bytes.HasPrefix(link.Destination, []byte(Marker)) {
			links = append(links, link)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, link := range links {
		href := strings.TrimPrefix(string(link.Destination), Marker)
		meta, err := t.ext.resolver.Resolve(ctx, href)
		if err != nil {
			t.ext.logger.Error("Failed to resolve link card", zap.String("url", href), zap.Error(err))
			recordError(pc, err)
			continue
		}
		if meta == nil {
			continue
		}

		parent := link.Parent()
		if parent == nil {
			continue
		}
		card := &CardNode{
			Metadata: meta,
			Options:  t.ext.options(overrides, href, plainText(link, source)),
		}
		parent.ReplaceChild(parent, link, card)
	}
}

// plainText concatenates the text of n's descendants, dropping markup.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

type cardHTMLRenderer struct {
	ext *LinkCard
}

func (r *cardHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindCard, r.renderCard)
}

func (r *cardHTMLRenderer) renderCard(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*CardNode)
	_, _ = w.WriteString(r.ext.cards.Render(n.Metadata, n.Options))
	r.ext.metrics.IncCardsRendered()
	return ast.WalkSkipChildren, nil
}
