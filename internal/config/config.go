// Package config loads the jdate TOML configuration: calendar defaults,
// named format presets, templates, batch processing, the HTTP server and
// logging. Values from the file are merged over defaults and then
// overridden by JDATETIME_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nowwaveradio/jdatetime/internal/constants"
	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/errorutil"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
	"github.com/nowwaveradio/jdatetime/internal/logger"
)

// envPrefix prefixes every environment override
const envPrefix = "JDATETIME_"

// Config represents the main configuration structure
type Config struct {
	Calendar   CalendarConfig            `toml:"calendar"`
	Formats    map[string]FormatConfig   `toml:"formats"`
	Templates  map[string]TemplateConfig `toml:"templates"`
	Processing ProcessingConfig          `toml:"processing"`
	Server     ServerConfig              `toml:"server"`
	Logging    logger.Config             `toml:"logging"`
}

// CalendarConfig holds the defaults applied when a value or request does
// not specify them. An empty DefaultLocale probes the system locale and an
// empty Timezone means the local zone. DefaultFormat is a directive pattern;
// GregorianLayout is a Go time layout used for Gregorian output.
type CalendarConfig struct {
	DefaultLocale     string `toml:"default_locale"`
	Timezone          string `toml:"timezone"`
	TwoDigitYearPivot int    `toml:"two_digit_year_pivot"`
	DefaultFormat     string `toml:"default_format"`
	GregorianLayout   string `toml:"gregorian_layout"`
}

// FormatConfig is a named format preset
type FormatConfig struct {
	Pattern     string   `toml:"pattern"`
	Aliases     []string `toml:"aliases"`
	Locale      string   `toml:"locale"`
	Description string   `toml:"description"`
}

// TemplateConfig is a named text/template body rendered with the Jalali helpers
type TemplateConfig struct {
	Body   string `toml:"body"`
	Locale string `toml:"locale"`
}

// ProcessingConfig controls batch conversion
type ProcessingConfig struct {
	BatchSize   int  `toml:"batch_size"`
	StopOnError bool `toml:"stop_on_error"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	ListenAddr          string `toml:"listen_addr"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	MetricsEnabled      bool   `toml:"metrics_enabled"`
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e ConfigError) Error() string {
	if e.Field != "" {
		return "config." + e.Field + ": " + e.Message
	}
	return e.Message
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

var (
	ErrFileNotFound  = errors.New("configuration file not found")
	ErrInvalidFormat = errors.New("invalid configuration file format")
)

// LoadConfig reads and parses a TOML configuration file
func LoadConfig(filepath string) (*Config, error) {
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filepath)
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - %v", ErrInvalidFormat, filepath, err)
	}

	config.ApplyEnvironmentOverrides()
	return config, nil
}

// Parse decodes TOML data and merges it over the defaults. Environment
// overrides are not applied.
func Parse(data []byte) (*Config, error) {
	var loaded Config
	md, err := toml.Decode(string(data), &loaded)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	return mergeWithDefaults(&loaded, DefaultConfig(), md), nil
}

// Validate checks every section and reports all failures at once
func (c *Config) Validate() error {
	err := errorutil.ValidateConfig("jdate", func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
		c.validateCalendar(vb)
		c.validateFormats(vb)

		vb.InRange("processing.batch_size", c.Processing.BatchSize, 1, constants.MaxBatchSize)

		vb.RequiredString("server.listen_addr", c.Server.ListenAddr)
		vb.RequiredInt("server.read_timeout_seconds", c.Server.ReadTimeoutSeconds)
		vb.RequiredInt("server.write_timeout_seconds", c.Server.WriteTimeoutSeconds)

		return vb.ValidIf(c.Logging.Enabled, func(vb *errorutil.ValidationBuilder) *errorutil.ValidationBuilder {
			return vb.
				OneOf("logging.level", strings.ToLower(c.Logging.Level), []string{"debug", "info", "warn", "warning", "error"}).
				Check("logging.filename_pattern", c.Logging.FilenamePattern, filenamePatternError(c.Logging.FilenamePattern)).
				Custom("logging.max_files", c.Logging.MaxFiles, func(v interface{}) bool { return v.(int) >= 0 }, "must not be negative")
		})
	})
	if err != nil {
		return ConfigError{Message: err.Error(), Err: err}
	}
	return nil
}

func (c *Config) validateCalendar(vb *errorutil.ValidationBuilder) {
	_, localeErr := locale.Parse(c.Calendar.DefaultLocale)
	vb.Check("calendar.default_locale", c.Calendar.DefaultLocale, localeErr)
	if c.Calendar.Timezone != "" {
		_, zoneErr := jdate.LoadZone(c.Calendar.Timezone)
		vb.Check("calendar.timezone", c.Calendar.Timezone, zoneErr)
	}
	vb.InRange("calendar.two_digit_year_pivot", c.Calendar.TwoDigitYearPivot, 0, 99)
	validatePattern(vb, "calendar.default_format", c.Calendar.DefaultFormat)
}

func (c *Config) validateFormats(vb *errorutil.ValidationBuilder) {
	for name, format := range c.Formats {
		validatePattern(vb, "formats."+name+".pattern", format.Pattern)
		_, err := locale.Parse(format.Locale)
		vb.Check("formats."+name+".locale", format.Locale, err)
	}

	for name, tmpl := range c.Templates {
		vb.RequiredString("templates."+name+".body", tmpl.Body)
		_, err := locale.Parse(tmpl.Locale)
		vb.Check("templates."+name+".locale", tmpl.Locale, err)
	}
}

// filenamePatternError adds a known-good pattern to the validation message
func filenamePatternError(pattern string) error {
	if err := logger.ValidateFilenamePattern(pattern); err != nil {
		return fmt.Errorf("%w (for example %q)", err, logger.GetSafeFilenamePatterns()[0])
	}
	return nil
}

func validatePattern(vb *errorutil.ValidationBuilder, field, pattern string) {
	vb.RequiredString(field, pattern)
	if unknown := directive.Unknown(pattern); len(unknown) > 0 {
		vb.Check(field, pattern, fmt.Errorf("unknown directives %s", strings.Join(unknown, ", ")))
	}
}

// Locale returns the configured default locale, or None when the system
// locale should be probed
func (c *Config) Locale() locale.Tag {
	tag, err := locale.Parse(c.Calendar.DefaultLocale)
	if err != nil {
		return locale.None
	}
	return tag
}

// Zone returns the configured zone, or nil for the local zone
func (c *Config) Zone() (jdate.Zone, error) {
	if c.Calendar.Timezone == "" {
		return nil, nil
	}
	z, err := jdate.LoadZone(c.Calendar.Timezone)
	if err != nil {
		return nil, ConfigError{Field: "calendar.timezone", Message: err.Error(), Err: err}
	}
	return z, nil
}

// DefaultConfig returns a Config struct with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Calendar: CalendarConfig{
			TwoDigitYearPivot: constants.TwoDigitYearPivot,
			DefaultFormat:     "%Y-%m-%d",
			GregorianLayout:   "2006-01-02",
		},
		Formats: map[string]FormatConfig{
			"iso": {
				Pattern:     "%Y-%m-%d",
				Description: "ISO 8601 calendar date",
			},
			"long": {
				Pattern:     "%A %d %B %Y",
				Aliases:     []string{"full"},
				Description: "weekday, day, month name and year",
			},
		},
		Templates: make(map[string]TemplateConfig),
		Processing: ProcessingConfig{
			BatchSize: constants.DefaultBatchSize,
		},
		Server: ServerConfig{
			ListenAddr:          constants.DefaultListenAddr,
			ReadTimeoutSeconds:  constants.DefaultReadTimeoutSeconds,
			WriteTimeoutSeconds: constants.DefaultWriteTimeoutSeconds,
			MetricsEnabled:      true,
		},
		Logging: logger.Config{
			Enabled:         false,
			Directory:       "logs",
			FilenamePattern: constants.DefaultLogFilenamePattern,
			Level:           "info",
			MaxFiles:        constants.DefaultMaxLogFiles,
			MaxSizeMB:       constants.DefaultMaxLogSizeMB,
		},
	}
}

// mergeWithDefaults takes a loaded config and merges it with default values.
// Non-zero values override defaults; booleans and the pivot,
// whose zero value is meaningful, override whenever the key is present.
func mergeWithDefaults(loaded, defaults *Config, md toml.MetaData) *Config {
	result := *defaults

	// Calendar
	if loaded.Calendar.DefaultLocale != "" {
		result.Calendar.DefaultLocale = loaded.Calendar.DefaultLocale
	}
	if loaded.Calendar.Timezone != "" {
		result.Calendar.Timezone = loaded.Calendar.Timezone
	}
	if md.IsDefined("calendar", "two_digit_year_pivot") {
		result.Calendar.TwoDigitYearPivot = loaded.Calendar.TwoDigitYearPivot
	}
	if loaded.Calendar.DefaultFormat != "" {
		result.Calendar.DefaultFormat = loaded.Calendar.DefaultFormat
	}
	if loaded.Calendar.GregorianLayout != "" {
		result.Calendar.GregorianLayout = loaded.Calendar.GregorianLayout
	}

	// Formats and templates extend the defaults; a file entry replaces a default of the same name
	result.Formats = make(map[string]FormatConfig, len(defaults.Formats)+len(loaded.Formats))
	for name, format := range defaults.Formats {
		result.Formats[name] = format
	}
	for name, format := range loaded.Formats {
		result.Formats[name] = format
	}
	result.Templates = make(map[string]TemplateConfig, len(defaults.Templates)+len(loaded.Templates))
	for name, tmpl := range defaults.Templates {
		result.Templates[name] = tmpl
	}
	for name, tmpl := range loaded.Templates {
		result.Templates[name] = tmpl
	}

	// Processing
	if loaded.Processing.BatchSize > 0 {
		result.Processing.BatchSize = loaded.Processing.BatchSize
	}
	if md.IsDefined("processing", "stop_on_error") {
		result.Processing.StopOnError = loaded.Processing.StopOnError
	}

	// Server
	if loaded.Server.ListenAddr != "" {
		result.Server.ListenAddr = loaded.Server.ListenAddr
	}
	if loaded.Server.ReadTimeoutSeconds > 0 {
		result.Server.ReadTimeoutSeconds = loaded.Server.ReadTimeoutSeconds
	}
	if loaded.Server.WriteTimeoutSeconds > 0 {
		result.Server.WriteTimeoutSeconds = loaded.Server.WriteTimeoutSeconds
	}
	if md.IsDefined("server", "metrics_enabled") {
		result.Server.MetricsEnabled = loaded.Server.MetricsEnabled
	}

	// Logging
	if md.IsDefined("logging", "enabled") {
		result.Logging.Enabled = loaded.Logging.Enabled
	}
	if md.IsDefined("logging", "console_output") {
		result.Logging.ConsoleOutput = loaded.Logging.ConsoleOutput
	}
	if loaded.Logging.Directory != "" {
		result.Logging.Directory = loaded.Logging.Directory
	}
	if loaded.Logging.FilenamePattern != "" {
		result.Logging.FilenamePattern = loaded.Logging.FilenamePattern
	}
	if loaded.Logging.Level != "" {
		result.Logging.Level = loaded.Logging.Level
	}
	if md.IsDefined("logging", "max_files") {
		result.Logging.MaxFiles = loaded.Logging.MaxFiles
	}
	if loaded.Logging.MaxSizeMB > 0 {
		result.Logging.MaxSizeMB = loaded.Logging.MaxSizeMB
	}

	return &result
}

// ApplyEnvironmentOverrides checks for JDATETIME_* variables and overrides
// config values. Malformed numbers are ignored.
func (c *Config) ApplyEnvironmentOverrides() {
	c.applyOverrides(os.Getenv)
}

func (c *Config) applyOverrides(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(envPrefix + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v := getenv(envPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("CALENDAR_DEFAULT_LOCALE", &c.Calendar.DefaultLocale)
	str("CALENDAR_TIMEZONE", &c.Calendar.Timezone)
	num("CALENDAR_TWO_DIGIT_YEAR_PIVOT", &c.Calendar.TwoDigitYearPivot)
	str("CALENDAR_DEFAULT_FORMAT", &c.Calendar.DefaultFormat)

	num("PROCESSING_BATCH_SIZE", &c.Processing.BatchSize)
	flag("PROCESSING_STOP_ON_ERROR", &c.Processing.StopOnError)

	str("SERVER_LISTEN_ADDR", &c.Server.ListenAddr)
	flag("SERVER_METRICS_ENABLED", &c.Server.MetricsEnabled)

	flag("LOGGING_ENABLED", &c.Logging.Enabled)
	str("LOGGING_DIRECTORY", &c.Logging.Directory)
	str("LOGGING_LEVEL", &c.Logging.Level)

	// Formats and templates are maps and are only set from the file
}

// SaveConfig writes a Config struct to a TOML file
func SaveConfig(config *Config, filepath string) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	if err := errorutil.SafeWriteFile(filepath, data, "save config", false); err != nil {
		return err
	}
	return nil
}
