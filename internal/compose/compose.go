// Package compose builds the single line of text returned for every request.
package compose

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/otherjamesbrown/color-service/internal/glyph"
	"github.com/otherjamesbrown/color-service/internal/identity"
)

// DefaultText is echoed when no custom text argument is given.
const DefaultText = "Hi there!"

// TimestampLayout renders the UTC request time.
const TimestampLayout = time.RFC3339Nano

const tracerName = "github.com/otherjamesbrown/color-service/internal/compose"

// IdentityResolver resolves the namespace and hostname for one request.
type IdentityResolver interface {
	Resolve() (identity.Identity, error)
}

// Line is the per-request view assembled from the resolvers.
type Line struct {
	Timestamp time.Time
	Namespace string
	Hostname  string
	Glyph     string
	Text      string
}

// String formats the line as
// "[<timestamp>][<namespace>][<hostname>] <glyph> -- <text>\n".
func (l Line) String() string {
	return fmt.Sprintf("[%s][%s][%s] %s -- %s\n",
		l.Timestamp.UTC().Format(TimestampLayout),
		l.Namespace,
		l.Hostname,
		l.Glyph,
		l.Text,
	)
}

// Composer holds the values fixed at startup and resolves the rest per call.
type Composer struct {
	color    string
	glyph    string
	text     string
	resolver IdentityResolver
	now      func() time.Time
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a Composer for the given color name and custom text.
func New(color, text string, resolver IdentityResolver, opts ...Option) *Composer {
	c := &Composer{
		color:    color,
		glyph:    glyph.For(color),
		text:     text,
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Color returns the color name captured at startup.
func (c *Composer) Color() string { return c.color }

// Glyph returns the glyph resolved from the color name.
func (c *Composer) Glyph() string { return c.glyph }

// Text returns the custom text captured at startup.
func (c *Composer) Text() string { return c.text }

// Compose resolves identity and stamps the current UTC time.
func (c *Composer) Compose(ctx context.Context) (Line, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "compose.line")
	defer span.End()

	id, err := c.resolver.Resolve()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve identity")
		return Line{}, fmt.Errorf("resolve identity: %w", err)
	}

	span.SetAttributes(
		attribute.String("color_service.namespace", id.Namespace),
		attribute.String("color_service.hostname", id.Hostname),
		attribute.String("color_service.color", c.color),
	)

	return Line{
		Timestamp: c.now().UTC(),
		Namespace: id.Namespace,
		Hostname:  id.Hostname,
		Glyph:     c.glyph,
		Text:      c.text,
	}, nil
}
