// Package logger provides file-based structured logging for the jdate tools.
// Log file names are directive patterns expanded with the current Jalali
// date, so "jdate-%Y%m%d.log" becomes "jdate-14040407.log" and a new file
// starts when the Jalali day changes.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nowwaveradio/jdatetime/internal/constants"
	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/formatter"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// Config represents logging configuration
type Config struct {
	Enabled         bool   `toml:"enabled"`
	Directory       string `toml:"directory"`
	FilenamePattern string `toml:"filename_pattern"`
	Level           string `toml:"level"`
	MaxFiles        int    `toml:"max_files"`
	MaxSizeMB       int    `toml:"max_size_mb"`
	ConsoleOutput   bool   `toml:"console_output"`
}

// Logger wraps slog.Logger with file management. The slog handler writes
// through the Logger so every record passes the rotation check.
type Logger struct {
	*slog.Logger
	config  Config
	console io.Writer
	now     func() time.Time

	mu       sync.Mutex
	file     *os.File
	fileName string
	fileSize int64
}

var (
	// Global logger instance
	globalLogger *Logger
	once         sync.Once
)

// file names never carry locale-dependent text
var filenameFormatter = formatter.New(formatter.WithDefaultLocale(locale.English))

// Initialize creates and configures the global logger instance
func Initialize(config Config) error {
	var initErr error
	once.Do(func() {
		globalLogger, initErr = NewLogger(config)
	})
	return initErr
}

// Get returns the global logger instance
func Get() *Logger {
	if globalLogger == nil {
		// Fallback to a console-only logger on stderr; stdout carries command output
		consoleLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		globalLogger = &Logger{Logger: consoleLogger, console: os.Stderr, now: time.Now}
	}
	return globalLogger
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config Config) (*Logger, error) {
	return newLogger(config, os.Stderr, time.Now)
}

// NewLoggerWithWriter creates a logger whose console output goes to w
func NewLoggerWithWriter(config Config, w io.Writer) (*Logger, error) {
	return newLogger(config, w, time.Now)
}

func newLogger(config Config, console io.Writer, now func() time.Time) (*Logger, error) {
	l := &Logger{
		config: config,
		now:    now,
	}

	if config.ConsoleOutput || !config.Enabled {
		// Fallback to the console if no file is configured
		l.console = console
	}

	if config.Enabled {
		logDir := expandLogDirectory(config.Directory)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		if err := l.openLogFile(); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}

	l.Logger = slog.New(slog.NewTextHandler(l, &slog.HandlerOptions{
		Level:       parseLogLevel(config.Level),
		ReplaceAttr: replaceAttr,
	}))

	l.Info("Logger initialized",
		slog.String("log_file", l.fileName),
		slog.String("level", config.Level),
		slog.Bool("console", config.ConsoleOutput))

	return l, nil
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	// Custom time format
	if a.Key == slog.TimeKey {
		return slog.String(slog.TimeKey, a.Value.Time().Format("2006-01-02T15:04:05.000-07:00"))
	}
	// Shorten source paths for readability
	if a.Key == slog.SourceKey {
		if source, ok := a.Value.Any().(*slog.Source); ok {
			return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(source.File), source.Line))
		}
	}
	return a
}

// openLogFile creates or opens the log file for the current Jalali date.
// Callers hold mu or own l exclusively.
func (l *Logger) openLogFile() error {
	logDir := expandLogDirectory(l.config.Directory)
	filePath := filepath.Join(logDir, generateLogFilename(l.config.FilenamePattern, l.now()))

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	l.file = file
	l.fileName = filePath
	l.fileSize = info.Size()
	return nil
}

// expandLogDirectory expands the log directory path with platform-specific defaults
func expandLogDirectory(dir string) string {
	if dir == "" {
		dir = "logs"
	}

	if filepath.IsAbs(dir) {
		return dir
	}

	if dir == "logs" || strings.HasPrefix(dir, "./") {
		return dir
	}

	// Platform-specific default directories
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "NowWaveRadio", "jdatetime", "logs")
		}
	case "darwin", "linux":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".nowwaveradio", "jdatetime", "logs")
		}
	}

	return "logs"
}

// generateLogFilename expands the directive pattern with the Jalali date of now
func generateLogFilename(pattern string, now time.Time) string {
	if pattern == "" {
		pattern = constants.DefaultLogFilenamePattern
	}

	dt, err := jdate.FromTime(now)
	if err != nil {
		// now lies outside the Jalali range; keep only the literal text
		return literalText(pattern)
	}
	return filenameFormatter.Format(dt, pattern)
}

// datedPattern reports whether pattern expands to a different name over time
func datedPattern(pattern string) bool {
	if pattern == "" {
		pattern = constants.DefaultLogFilenamePattern
	}
	return directive.HasVerb(directive.Tokenize(pattern), directive.Verbs()...)
}

// literalText drops every directive from pattern
func literalText(pattern string) string {
	var b strings.Builder
	for _, tok := range directive.Tokenize(pattern) {
		if tok.Kind == directive.Literal {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

// globPattern turns a filename pattern into a glob matching every file it
// can produce: literals are escaped and each directive becomes "*"
func globPattern(pattern string) string {
	if pattern == "" {
		pattern = constants.DefaultLogFilenamePattern
	}

	var b strings.Builder
	wildcard := false
	for _, tok := range directive.Tokenize(pattern) {
		if tok.Kind == directive.Directive {
			if !wildcard {
				b.WriteByte('*')
			}
			wildcard = true
			continue
		}
		wildcard = false
		for _, r := range tok.Text {
			if strings.ContainsRune(`*?[\`, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseLogLevel converts string level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// checkRotation rotates when the file outgrew MaxSizeMB or the Jalali date
// in the file name changed. Callers hold mu.
func (l *Logger) checkRotation() error {
	if l.file == nil || !l.config.Enabled {
		return nil
	}

	maxSize := int64(l.config.MaxSizeMB) * 1024 * 1024
	if maxSize > 0 && l.fileSize >= maxSize {
		return l.rotate()
	}

	if datedPattern(l.config.FilenamePattern) && filepath.Base(l.fileName) != generateLogFilename(l.config.FilenamePattern, l.now()) {
		return l.rotate()
	}

	return nil
}

// rotate reopens the log file. A size rotation within the same day moves the
// full file aside with a numeric suffix. Callers hold mu.
func (l *Logger) rotate() error {
	previous := l.fileName
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	current := filepath.Join(expandLogDirectory(l.config.Directory), generateLogFilename(l.config.FilenamePattern, l.now()))
	if current == previous {
		if err := os.Rename(previous, nextBackupName(previous)); err != nil {
			return err
		}
	}

	if err := l.openLogFile(); err != nil {
		return err
	}

	if l.config.MaxFiles > 0 {
		l.cleanOldFiles()
	}
	return nil
}

// nextBackupName returns the first unused name of the form base.N.ext
func nextBackupName(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// cleanOldFiles keeps the MaxFiles most recently modified log files
func (l *Logger) cleanOldFiles() {
	logDir := filepath.Dir(l.fileName)
	glob := globPattern(l.config.FilenamePattern)

	matches, err := filepath.Glob(filepath.Join(logDir, glob))
	if err != nil {
		return
	}
	// size-rotated backups carry a numeric suffix before the extension
	ext := filepath.Ext(glob)
	if backups, err := filepath.Glob(filepath.Join(logDir, strings.TrimSuffix(glob, ext)+".*"+ext)); err == nil {
		matches = append(matches, backups...)
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}

	seen := make(map[string]bool, len(matches))
	files := make([]fileInfo, 0, len(matches))
	for _, match := range matches {
		if seen[match] {
			continue
		}
		seen[match] = true
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: match, modTime: info.ModTime()})
	}

	// Newest first; the active file always survives
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].path == l.fileName {
			return true
		}
		if files[j].path == l.fileName {
			return false
		}
		return files[i].modTime.After(files[j].modTime)
	})

	for i := l.config.MaxFiles; i < len(files); i++ {
		os.Remove(files[i].path)
	}
}

// Write implements io.Writer for the slog handler with a rotation check
func (l *Logger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkRotation(); err != nil {
		// Report the rotation error but keep logging
		fmt.Fprintf(os.Stderr, "Log rotation error: %v\n", err)
	}

	if l.console != nil {
		if n, err = l.console.Write(p); err != nil {
			return n, err
		}
	}
	if l.file != nil {
		n, err = l.file.Write(p)
		l.fileSize += int64(n)
	}
	return len(p), err
}

// FileName returns the path of the active log file, or "" when file logging is off
func (l *Logger) FileName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fileName
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// LogExecutionSummary logs a formatted execution summary for a CLI run
func (l *Logger) LogExecutionSummary(startTime time.Time, configFile string, command string, results []string, exitCode int) {
	duration := time.Since(startTime)

	l.Info("=== EXECUTION SUMMARY ===")
	l.Info("Execution details",
		slog.Time("start_time", startTime),
		slog.String("config_file", configFile),
		slog.String("command", command),
		slog.Duration("total_duration", duration),
		slog.Int("exit_code", exitCode))

	for _, result := range results {
		l.Info(result)
	}
}
