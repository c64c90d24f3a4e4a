// Package processor runs conversions over single inputs and batches:
// Gregorian to Jalali, Jalali to Gregorian, and Jalali reformatting.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/config"
	"github.com/nowwaveradio/jdatetime/internal/dateutil"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/formatter"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
	"github.com/nowwaveradio/jdatetime/internal/logger"
	"github.com/nowwaveradio/jdatetime/internal/parser"
)

// Mode selects the direction of a conversion
type Mode string

const (
	ModeToJalali    Mode = "to-jalali"
	ModeToGregorian Mode = "to-gregorian"
	ModeReformat    Mode = "reformat"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeToJalali, ModeToGregorian, ModeReformat:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s, %s or %s)", s, ModeToJalali, ModeToGregorian, ModeReformat)
}

// Options describes one conversion. Empty fields fall back to the
// configuration: InputPattern to ISO and the common Jalali layouts,
// InputLayout to the common Gregorian layouts, OutputPattern to
// calendar.default_format and OutputLayout to calendar.gregorian_layout.
type Options struct {
	Mode          Mode
	InputPattern  string     // directive pattern for Jalali input
	InputLayout   string     // Go layout or YYYY-MM-DD style pattern for Gregorian input
	OutputPattern string     // directive pattern for Jalali output
	OutputLayout  string     // Go layout or YYYY-MM-DD style pattern for Gregorian output
	Locale        locale.Tag // output locale; None uses the processor default
}

// Recorder receives conversion metrics
type Recorder interface {
	ObserveConversion(mode string, start time.Time, err error)
	ObserveBatch(size int)
}

// Processor converts inputs according to Options
type Processor struct {
	config    *config.Config
	parser    *parser.Parser
	formatter *formatter.Formatter
	zone      jdate.Zone
	recorder  Recorder
	logger    *slog.Logger
}

// Result contains the outcome of a single input
type Result struct {
	Index    int           `json:"index"`
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Success  bool          `json:"success"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    error         `json:"-"`
	Duration time.Duration `json:"-"`
}

// BatchResult contains the results of processing several inputs
type BatchResult struct {
	Total         int           `json:"total"`
	Processed     int           `json:"processed"`
	Successful    int           `json:"successful"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	Results       []Result      `json:"results"`
	TotalDuration time.Duration `json:"-"`
}

// Option configures a Processor
type Option func(*Processor)

// WithLogger replaces the global logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(p *Processor) { p.recorder = r }
}

// New creates a Processor using the calendar settings of cfg
func New(cfg *config.Config, opts ...Option) (*Processor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	zone, err := cfg.Zone()
	if err != nil {
		return nil, fmt.Errorf("loading time zone: %w", err)
	}

	p := &Processor{
		config: cfg,
		parser: parser.New(
			parser.WithTwoDigitYearPivot(cfg.Calendar.TwoDigitYearPivot),
		),
		formatter: formatter.New(formatter.WithDefaultLocale(cfg.Locale())),
		zone:      zone,
		logger:    logger.Get().Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Formatter returns the formatter used for Jalali output
func (p *Processor) Formatter() *formatter.Formatter {
	return p.formatter
}

// Parser returns the parser used for Jalali input
func (p *Processor) Parser() *parser.Parser {
	return p.parser
}

// Process converts a single input. Blank input is skipped.
func (p *Processor) Process(ctx context.Context, input string, opts Options) Result {
	return p.processOne(ctx, 0, input, opts)
}

func (p *Processor) processOne(ctx context.Context, index int, input string, opts Options) Result {
	start := time.Now()
	result := Result{Index: index, Input: input}

	text := strings.TrimSpace(input)
	if text == "" {
		result.Skipped = true
		return result
	}

	output, err := p.convert(ctx, text, opts)
	result.Duration = time.Since(start)
	if p.recorder != nil {
		p.recorder.ObserveConversion(string(opts.Mode), start, err)
	}
	if err != nil {
		result.Error = err
		attrs := append(errorutil.InputContext(index, input), errorutil.PatternContext(opts.InputPattern, "")...)
		attrs = append(attrs, errorutil.LocaleContext(string(opts.Locale))...)
		errorutil.LogWarning(p.logger, string(opts.Mode), err, attrs...)
		return result
	}

	result.Output = output
	result.Success = true
	return result
}

// ProcessBatch converts every input in order. Processing stops early when
// ctx is done or, with processing.stop_on_error, at the first failure; the
// remaining inputs are reported as skipped. The error is non-nil when any
// input failed or ctx ended the batch.
func (p *Processor) ProcessBatch(ctx context.Context, inputs []string, opts Options) (*BatchResult, error) {
	startTime := time.Now()

	batchResult := &BatchResult{
		Total:   len(inputs),
		Results: make([]Result, 0, len(inputs)),
	}
	if p.recorder != nil {
		p.recorder.ObserveBatch(len(inputs))
	}

	chunkSize := p.config.Processing.BatchSize
	if chunkSize <= 0 {
		chunkSize = len(inputs)
	}

	p.logger.Info("Starting batch processing",
		slog.String("mode", string(opts.Mode)),
		slog.Int("total_inputs", len(inputs)),
		slog.Int("batch_size", chunkSize))

	var stopErr error
	for i, input := range inputs {
		if stopErr == nil {
			if err := ctx.Err(); err != nil {
				stopErr = err
			}
		}
		if stopErr != nil {
			batchResult.Results = append(batchResult.Results, Result{Index: i, Input: input, Skipped: true})
			batchResult.Skipped++
			continue
		}

		if chunkSize > 0 && i > 0 && i%chunkSize == 0 {
			p.logger.Debug("Batch chunk completed",
				slog.Int("processed", i),
				slog.Int("total_inputs", len(inputs)))
		}

		result := p.processOne(ctx, i, input, opts)
		batchResult.Results = append(batchResult.Results, result)

		switch {
		case result.Skipped:
			batchResult.Skipped++
		case result.Success:
			batchResult.Processed++
			batchResult.Successful++
		default:
			batchResult.Processed++
			batchResult.Failed++
			if p.config.Processing.StopOnError {
				stopErr = fmt.Errorf("stopped at input %d: %w", i, result.Error)
			}
		}
	}

	batchResult.TotalDuration = time.Since(startTime)

	p.logger.Info("Batch processing completed",
		slog.Int("total_inputs", batchResult.Total),
		slog.Int("successful", batchResult.Successful),
		slog.Int("failed", batchResult.Failed),
		slog.Int("skipped", batchResult.Skipped),
		slog.Duration("total_duration", batchResult.TotalDuration))

	if stopErr != nil {
		return batchResult, stopErr
	}
	if batchResult.Failed > 0 {
		return batchResult, fmt.Errorf("%d of %d inputs failed", batchResult.Failed, batchResult.Total)
	}
	return batchResult, nil
}

func (p *Processor) convert(ctx context.Context, text string, opts Options) (string, error) {
	switch opts.Mode {
	case ModeToJalali:
		t, err := p.parseGregorian(text, opts.InputLayout)
		if err != nil {
			return "", err
		}
		dt, err := p.toJalali(t)
		if err != nil {
			return "", err
		}
		return p.formatJalali(ctx, dt, opts), nil

	case ModeToGregorian:
		dt, err := p.parseJalali(ctx, text, opts.InputPattern)
		if err != nil {
			return "", err
		}
		return dt.Gregorian().Format(p.outputLayout(opts.OutputLayout)), nil

	case ModeReformat:
		dt, err := p.parseJalali(ctx, text, opts.InputPattern)
		if err != nil {
			return "", err
		}
		return p.formatJalali(ctx, dt, opts), nil
	}
	return "", fmt.Errorf("%w: mode %q", errorutil.ErrUnsupported, opts.Mode)
}

// ToJalali converts a Gregorian instant or wall clock. Times in UTC are
// treated as naive wall clocks; any other location makes the value aware.
func (p *Processor) ToJalali(t time.Time) (jdate.DateTime, error) {
	return p.toJalali(t)
}

func (p *Processor) toJalali(t time.Time) (jdate.DateTime, error) {
	return jdate.DateTimeFromGregorian(jdate.FromGregorianDateTime{
		Time:  t,
		Naive: t.Location() == time.UTC,
	})
}

func (p *Processor) parseGregorian(text, layout string) (time.Time, error) {
	if layout == "" {
		return dateutil.ParseFlexibleGregorian(text)
	}
	return time.Parse(GoLayout(layout), text)
}

// parseJalali tries ISO first and then the common layouts when no pattern is given
func (p *Processor) parseJalali(ctx context.Context, text, pattern string) (jdate.DateTime, error) {
	if pattern != "" {
		return p.parser.ParseContext(ctx, text, pattern)
	}
	if dt, err := p.parser.ParseISO(text); err == nil {
		return dt, nil
	}
	d, err := dateutil.ParseFlexibleDate(text)
	if err != nil {
		return jdate.DateTime{}, err
	}
	return jdate.Combine(d, jdate.Midnight), nil
}

func (p *Processor) formatJalali(ctx context.Context, dt jdate.DateTime, opts Options) string {
	if opts.Locale != locale.None {
		dt = dt.AsLocale(opts.Locale)
	}
	pattern := opts.OutputPattern
	if pattern == "" {
		pattern = p.config.Calendar.DefaultFormat
	}
	return p.formatter.FormatContext(ctx, dt, pattern)
}

func (p *Processor) outputLayout(layout string) string {
	if layout == "" {
		layout = p.config.Calendar.GregorianLayout
	}
	return GoLayout(layout)
}

// Order matters - YYYY before YY, MM before M, DD before D
var goLayoutReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"M", "1",
	"DD", "02",
	"D", "2",
)

// GoLayout converts a YYYY-MM-DD style pattern to a Go time layout. Strings
// that already contain the reference year are returned unchanged.
func GoLayout(userFormat string) string {
	if strings.Contains(userFormat, "06") {
		return userFormat
	}
	return goLayoutReplacer.Replace(userFormat)
}
