// Package template renders text/template bodies with helpers that format
// and convert Jalali dates.
package template

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/config"
	"github.com/nowwaveradio/jdatetime/internal/formatter"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
	"github.com/nowwaveradio/jdatetime/internal/parser"
	"github.com/nowwaveradio/jdatetime/internal/presets"
)

// Engine holds the named templates from the configuration
type Engine struct {
	templates map[string]*template.Template
	locales   map[string]locale.Tag
	config    *config.Config
	formatter *formatter.Formatter
	parser    *parser.Parser
	presets   *presets.Resolver
	zone      jdate.Zone
	now       func() time.Time
}

// Data is the value templates execute against
type Data struct {
	Today  jdate.Date
	Now    jdate.DateTime
	Locale string
	Custom map[string]interface{}
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine using the calendar settings and presets of cfg
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	resolver, err := presets.NewResolver(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}
	zone, err := cfg.Zone()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		templates: make(map[string]*template.Template),
		locales:   make(map[string]locale.Tag),
		config:    cfg,
		formatter: formatter.New(formatter.WithDefaultLocale(cfg.Locale())),
		parser:    parser.New(parser.WithTwoDigitYearPivot(cfg.Calendar.TwoDigitYearPivot)),
		presets:   resolver,
		zone:      zone,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// LoadTemplates parses every template in the configuration
func (e *Engine) LoadTemplates() error {
	e.templates = make(map[string]*template.Template)
	e.locales = make(map[string]locale.Tag)

	for name, tc := range e.config.Templates {
		tag, err := locale.Parse(tc.Locale)
		if err != nil {
			return fmt.Errorf("loading template %s: invalid locale: %w", name, err)
		}
		if err := e.AddTemplate(name, tc.Body, tag); err != nil {
			return fmt.Errorf("loading template %s: %w", name, err)
		}
	}
	return nil
}

// AddTemplate parses body under name. A non-None tag becomes the default
// locale while the template renders.
func (e *Engine) AddTemplate(name, body string, tag locale.Tag) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("template body is required")
	}

	// Functions are rebound per render; this map only satisfies the parser
	tmpl, err := template.New(name).Funcs(e.funcMap(context.Background())).Parse(body)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	e.templates[name] = tmpl
	e.locales[name] = tag
	return nil
}

// Render executes a named template
func (e *Engine) Render(ctx context.Context, name string, custom map[string]interface{}) (string, error) {
	tmpl, exists := e.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}
	if tag := e.locales[name]; tag != locale.None {
		ctx = locale.WithLocale(ctx, tag)
	}
	return e.execute(ctx, tmpl, custom)
}

// RenderString parses and executes an ad hoc template body
func (e *Engine) RenderString(ctx context.Context, body string, custom map[string]interface{}) (string, error) {
	tmpl, err := template.New("inline").Funcs(e.funcMap(ctx)).Parse(body)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	return e.execute(ctx, tmpl, custom)
}

func (e *Engine) execute(ctx context.Context, tmpl *template.Template, custom map[string]interface{}) (string, error) {
	bound, err := tmpl.Clone()
	if err != nil {
		return "", err
	}
	bound.Funcs(e.funcMap(ctx))

	data, err := e.buildData(ctx, custom)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := bound.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func (e *Engine) buildData(ctx context.Context, custom map[string]interface{}) (Data, error) {
	now, err := e.current(ctx)
	if err != nil {
		return Data{}, err
	}
	if custom == nil {
		custom = make(map[string]interface{})
	}
	return Data{
		Today:  now.Date(),
		Now:    now,
		Locale: e.renderLocale(ctx).String(),
		Custom: custom,
	}, nil
}

// renderLocale is the context locale, then the configured default, then the system locale
func (e *Engine) renderLocale(ctx context.Context) locale.Tag {
	if tag := locale.Resolve(ctx, locale.None, e.formatter.DefaultLocale()); tag != locale.None {
		return tag
	}
	return locale.Detect()
}

// current returns the engine clock in the configured zone, or as a naive
// local wall clock without one
func (e *Engine) current(ctx context.Context) (jdate.DateTime, error) {
	t := e.now()
	opts := []jdate.Option{jdate.WithContextLocale(ctx)}
	if e.zone == nil {
		return jdate.DateTimeFromGregorian(jdate.FromGregorianDateTime{Time: t.Local(), Naive: true}, opts...)
	}
	utc, err := jdate.FromTime(t.UTC(), opts...)
	if err != nil {
		return jdate.DateTime{}, err
	}
	return utc.AsTimezone(e.zone)
}

// Validate executes a template against the current date to catch errors
// that only show up at execution time
func (e *Engine) Validate(name string) error {
	_, err := e.Render(context.Background(), name, map[string]interface{}{"test": "value"})
	if err != nil {
		return fmt.Errorf("template %s validation failed: %w", name, err)
	}
	return nil
}

// List returns the names of all loaded templates in sorted order
func (e *Engine) List() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a template with the given name exists
func (e *Engine) Has(name string) bool {
	_, exists := e.templates[name]
	return exists
}
