package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nowwaveradio/jdatetime/internal/config"
	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/formatter"
	"github.com/nowwaveradio/jdatetime/internal/httpapi"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
	"github.com/nowwaveradio/jdatetime/internal/logger"
	"github.com/nowwaveradio/jdatetime/internal/parser"
	"github.com/nowwaveradio/jdatetime/internal/presets"
	"github.com/nowwaveradio/jdatetime/internal/processor"
	"github.com/nowwaveradio/jdatetime/internal/template"
)

const version = "1.0.0"

var (
	configFile   = flag.String("config", "jdate.toml", "Path to the configuration file")
	envFile      = flag.String("env-file", ".env", "Environment file loaded before the configuration")
	localeName   = flag.String("locale", "", "Output locale (en_US or fa_IR); overrides calendar.default_locale")
	pattern      = flag.String("pattern", "", "Output directive pattern or preset name")
	inputPattern = flag.String("input-pattern", "", "Directive pattern for Jalali input (default ISO)")
	layout       = flag.String("layout", "", "Gregorian layout, Go style or YYYY-MM-DD style")
	mode         = flag.String("mode", string(processor.ModeToJalali), "Batch mode: to-jalali, to-gregorian or reformat")
	inputFile    = flag.String("file", "", "Batch input file, one value per line (default stdin)")
	stopOnError  = flag.Bool("stop-on-error", false, "Stop a batch at the first failing line")
	showVersion  = flag.Bool("version", false, "Show version information")
	help         = flag.Bool("help", false, "Show help information")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jdate v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Converts, formats and parses Jalali (Solar Hijri) dates.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] COMMAND [ARGS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  today                 Print today's Jalali date\n")
		fmt.Fprintf(os.Stderr, "  now                   Print the current Jalali date and time\n")
		fmt.Fprintf(os.Stderr, "  to-jalali DATE        Convert a Gregorian date\n")
		fmt.Fprintf(os.Stderr, "  to-gregorian DATE     Convert a Jalali date\n")
		fmt.Fprintf(os.Stderr, "  format DATE           Reformat a Jalali date with -pattern\n")
		fmt.Fprintf(os.Stderr, "  parse TEXT            Parse TEXT with -input-pattern and print ISO 8601\n")
		fmt.Fprintf(os.Stderr, "  batch                 Convert every line of -file or stdin\n")
		fmt.Fprintf(os.Stderr, "  render NAME           Render a configured template\n")
		fmt.Fprintf(os.Stderr, "  serve                 Run the HTTP API\n")
		fmt.Fprintf(os.Stderr, "  presets               List format presets\n")
		fmt.Fprintf(os.Stderr, "  version               Show version information\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nDirectives:\n")
		for _, verb := range directive.Verbs() {
			if spec, ok := directive.Lookup(verb); ok {
				fmt.Fprintf(os.Stderr, "  %%%c    %s\n", verb, spec.Description)
			}
		}
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s to-jalali 2025-06-28\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -locale fa_IR -pattern long today\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -input-pattern \"%%d/%%m/%%Y\" parse 07/04/1404\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode to-gregorian -file dates.txt batch\n", os.Args[0])
	}
}

// app carries what every command needs
type app struct {
	cfg     *config.Config
	locale  locale.Tag
	presets *presets.Resolver
	logger  *slog.Logger
	stdout  io.Writer
}

// loadConfiguration loads the configuration file, falling back to the
// defaults when it does not exist, and validates the result
func loadConfiguration(configPath string) (*config.Config, error) {
	cleanPath := filepath.Clean(configPath)

	cfg, err := config.LoadConfig(cleanPath)
	if errors.Is(err, config.ErrFileNotFound) {
		cfg = config.DefaultConfig()
		cfg.ApplyEnvironmentOverrides()
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", cleanPath, err)
	}

	if *stopOnError {
		cfg.Processing.StopOnError = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	tag, err := locale.Parse(*localeName)
	if err != nil {
		return nil, fmt.Errorf("invalid -locale: %w", err)
	}
	if tag != locale.None {
		cfg.Calendar.DefaultLocale = string(tag)
	}

	resolver, err := presets.NewResolver(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		locale:  cfg.Locale(),
		presets: resolver,
		logger:  logger.Get().Logger,
		stdout:  os.Stdout,
	}, nil
}

// outputPattern resolves -pattern, falling back to fallback
func (a *app) outputPattern(fallback string) (string, locale.Tag, error) {
	name := *pattern
	if name == "" {
		name = fallback
	}
	return a.presets.Pattern(name)
}

func (a *app) formatter() formatter.FormatterInterface {
	return formatter.New(formatter.WithDefaultLocale(a.locale))
}

func (a *app) processor() (*processor.Processor, error) {
	return processor.New(a.cfg, processor.WithLogger(a.logger))
}

func (a *app) options(m processor.Mode) (processor.Options, error) {
	opts := processor.Options{
		Mode:         m,
		InputPattern: *inputPattern,
		InputLayout:  *layout,
		OutputLayout: *layout,
	}
	if *pattern != "" {
		p, tag, err := a.presets.Pattern(*pattern)
		if err != nil {
			return opts, err
		}
		opts.OutputPattern = p
		opts.Locale = tag
	}
	// a Gregorian layout describes the input of to-jalali and the output of to-gregorian
	if m == processor.ModeToJalali {
		opts.OutputLayout = ""
	} else {
		opts.InputLayout = ""
	}
	return opts, nil
}

func (a *app) now() (jdate.DateTime, error) {
	zone, err := a.cfg.Zone()
	if err != nil {
		return jdate.DateTime{}, err
	}
	return jdate.Now(zone), nil
}

func (a *app) runNow(ctx context.Context, fallback string) error {
	dt, err := a.now()
	if err != nil {
		return err
	}
	p, tag, err := a.outputPattern(fallback)
	if err != nil {
		return err
	}
	if tag != locale.None {
		dt = dt.AsLocale(tag)
	}
	fmt.Fprintln(a.stdout, a.formatter().FormatContext(ctx, dt, p))
	return nil
}

func (a *app) runConvert(ctx context.Context, m processor.Mode, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s needs exactly one date argument", m)
	}
	proc, err := a.processor()
	if err != nil {
		return err
	}
	opts, err := a.options(m)
	if err != nil {
		return err
	}

	result := proc.Process(ctx, args[0], opts)
	if result.Skipped {
		return fmt.Errorf("%s: empty input", m)
	}
	if result.Error != nil {
		return result.Error
	}
	fmt.Fprintln(a.stdout, result.Output)
	return nil
}

func (a *app) runParse(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("parse needs exactly one text argument")
	}
	p := parser.New(parser.WithTwoDigitYearPivot(a.cfg.Calendar.TwoDigitYearPivot))

	var (
		dt  jdate.DateTime
		err error
	)
	if *inputPattern == "" {
		dt, err = p.ParseISO(args[0])
	} else {
		dt, err = p.ParseContext(ctx, args[0], *inputPattern)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, dt.ISOFormat())
	return nil
}

// readLines returns the lines of -file or stdin
func readLines(path string, stdin io.Reader) ([]string, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = errorutil.ReadFile(path, "read batch input")
		if err != nil {
			return nil, err
		}
	} else {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdin); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		data = buf.Bytes()
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func (a *app) runBatch(ctx context.Context) ([]string, error) {
	m, err := processor.ParseMode(*mode)
	if err != nil {
		return nil, err
	}
	lines, err := readLines(*inputFile, os.Stdin)
	if err != nil {
		return nil, errorutil.LogAndReturn(a.logger, "read batch input", err, errorutil.FileContext(*inputFile)...)
	}
	proc, err := a.processor()
	if err != nil {
		return nil, err
	}
	opts, err := a.options(m)
	if err != nil {
		return nil, err
	}

	batch, batchErr := proc.ProcessBatch(ctx, lines, opts)
	for _, r := range batch.Results {
		switch {
		case r.Success:
			fmt.Fprintln(a.stdout, r.Output)
		case r.Skipped:
			fmt.Fprintln(a.stdout)
		default:
			fmt.Fprintf(os.Stderr, "line %d: %v\n", r.Index+1, r.Error)
			fmt.Fprintln(a.stdout)
		}
	}

	summary := []string{
		fmt.Sprintf("Lines: %d", batch.Total),
		fmt.Sprintf("Converted: %d", batch.Successful),
		fmt.Sprintf("Failed: %d", batch.Failed),
		fmt.Sprintf("Skipped: %d", batch.Skipped),
		fmt.Sprintf("Duration: %.3fs", batch.TotalDuration.Seconds()),
	}
	return summary, batchErr
}

func (a *app) runRender(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("render needs exactly one template name")
	}
	engine, err := template.NewEngine(a.cfg)
	if err != nil {
		return err
	}
	if err := engine.LoadTemplates(); err != nil {
		return err
	}
	if !engine.Has(args[0]) {
		return fmt.Errorf("template %q not found (available: %s)", args[0], strings.Join(engine.List(), ", "))
	}

	out, err := engine.Render(ctx, args[0], nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, out)
	return nil
}

func (a *app) runServe(ctx context.Context) error {
	srv, err := httpapi.New(a.cfg, httpapi.WithLogger(a.logger))
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

func (a *app) runPresets() error {
	if err := a.presets.Validate(); err != nil {
		return err
	}
	for _, name := range a.presets.List() {
		preset, _ := a.presets.FindFormat(name)
		line := fmt.Sprintf("%-12s %s", name, preset.Pattern)
		if aliases := a.presets.Aliases(name); len(aliases) > 0 {
			line += fmt.Sprintf("  (aliases: %s)", strings.Join(aliases, ", "))
		}
		if preset.Description != "" {
			line += "  " + preset.Description
		}
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}

// run executes one command and returns lines for the execution summary
func (a *app) run(ctx context.Context, command string, args []string) ([]string, error) {
	switch command {
	case "today":
		return nil, a.runNow(ctx, a.cfg.Calendar.DefaultFormat)
	case "now":
		return nil, a.runNow(ctx, "%Y/%m/%d %H:%M:%S")
	case "to-jalali", "convert":
		return nil, a.runConvert(ctx, processor.ModeToJalali, args)
	case "to-gregorian":
		return nil, a.runConvert(ctx, processor.ModeToGregorian, args)
	case "format":
		return nil, a.runConvert(ctx, processor.ModeReformat, args)
	case "parse":
		return nil, a.runParse(ctx, args)
	case "batch":
		return a.runBatch(ctx)
	case "render":
		return nil, a.runRender(ctx, args)
	case "serve":
		return nil, a.runServe(ctx)
	case "presets":
		return nil, a.runPresets()
	}
	return nil, fmt.Errorf("unknown command %q", command)
}

func main() {
	startTime := time.Now()
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	command := flag.Arg(0)
	if *showVersion || command == "version" {
		fmt.Printf("jdate v%s\n", version)
		os.Exit(0)
	}
	if command == "" {
		fmt.Fprintf(os.Stderr, "Error: a command is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	// a missing .env file is normal; only a malformed one is reported
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", *envFile, err)
	}

	cfg, err := loadConfiguration(*configFile)
	if err != nil {
		err = errorutil.LogAndWrap(logger.Get().Logger, "load configuration", err, errorutil.ConfigContext(*configFile)...)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	log := logger.Get()
	defer log.Close()

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	var results []string
	err = errorutil.ExecuteWithLogging(log.Logger, command, func() error {
		var runErr error
		results, runErr = a.run(ctx, command, flag.Args()[1:])
		return runErr
	}, errorutil.ConfigContext(*configFile)...)
	if err != nil {
		exitCode = 1
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		results = append(results, "Error: "+err.Error())
	}

	if command == "batch" || command == "serve" {
		log.LogExecutionSummary(startTime, *configFile, command, results, exitCode)
	}

	if exitCode != 0 {
		stop()
		log.Close()
		os.Exit(exitCode)
	}
}
