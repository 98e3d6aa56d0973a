package markdown

import (
	"context"
	"errors"

	"github.com/yuin/goldmark/parser"

	"github.com/user/linkcard/internal/entity"
)

var (
	requestContextKey = parser.NewContextKey()
	errorsKey         = parser.NewContextKey()
)

// Overrides replace the extension's configured card options for a single
// document. Zero fields keep the configured value.
type Overrides struct {
	Target      entity.Target
	ClassPrefix string
}

type overridesKey struct{}

// WithOverrides attaches per-document card options to ctx.
func WithOverrides(ctx context.Context, o Overrides) context.Context {
	return context.WithValue(ctx, overridesKey{}, o)
}

func overridesFrom(ctx context.Context) Overrides {
	o, _ := ctx.Value(overridesKey{}).(Overrides)
	return o
}

// NewParserContext returns a goldmark parser context carrying ctx down to the
// metadata resolver.
func NewParserContext(ctx context.Context) parser.Context {
	pc := parser.NewContext()
	pc.Set(requestContextKey, ctx)
	return pc
}

func requestContext(pc parser.Context) context.Context {
	if ctx, ok := pc.Get(requestContextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

func recordError(pc parser.Context, err error) {
	errs, _ := pc.Get(errorsKey).([]error)
	pc.Set(errorsKey, append(errs, err))
}

// Errors returns the resolver failures recorded while parsing with pc, joined
// into one error, or nil.
func Errors(pc parser.Context) error {
	errs, _ := pc.Get(errorsKey).([]error)
	return errors.Join(errs...)
}
