package logger

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fixedClock returns a now func pinned to t; set moves it
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// 2025-06-28 is 1404-04-07 (Tir 7)
var tir7 = time.Date(2025, 6, 28, 12, 0, 0, 0, time.UTC)

func TestCrossPlatformPathHandling(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"relative path", "logs", "logs"},
		{"current directory relative", "./logs", "./logs"},
		{"empty path uses default", "", "logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandLogDirectory(tt.input); got != tt.want {
				t.Errorf("expandLogDirectory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	abs := filepath.Join(t.TempDir(), "abs-logs")
	if got := expandLogDirectory(abs); got != abs {
		t.Errorf("expandLogDirectory(%q) = %q, want unchanged", abs, got)
	}
}

func TestLoggerInitialization(t *testing.T) {
	tempDir := t.TempDir()

	blocker := filepath.Join(tempDir, "not-a-directory")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	tests := []struct {
		name   string
		config Config
		want   bool // should succeed
	}{
		{
			name: "valid config with file logging",
			config: Config{
				Enabled:         true,
				Directory:       tempDir,
				FilenamePattern: "test-%Y%m%d.log",
				Level:           "info",
				MaxFiles:        5,
				MaxSizeMB:       1,
				ConsoleOutput:   true,
			},
			want: true,
		},
		{
			name: "console only logging",
			config: Config{
				Enabled:       false,
				ConsoleOutput: true,
				Level:         "debug",
			},
			want: true,
		},
		{
			name: "file logging under a regular file",
			config: Config{
				Enabled:   true,
				Directory: filepath.Join(blocker, "logs"),
				Level:     "info",
			},
			want: false,
		},
		{
			name: "valid config with month name pattern",
			config: Config{
				Enabled:         true,
				Directory:       tempDir,
				FilenamePattern: "custom-%Y-%B-%d-%H%M.log",
				Level:           "warn",
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := newLogger(tt.config, io.Discard, time.Now)

			if tt.want && err != nil {
				t.Errorf("NewLogger() failed unexpectedly: %v", err)
				return
			}
			if !tt.want && err == nil {
				t.Errorf("NewLogger() succeeded unexpectedly")
			}
			if logger != nil {
				logger.Close()
			}
		})
	}
}

func TestLogFilenameGeneration(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		now     time.Time
		want    string
	}{
		{
			name:    "basic daily pattern",
			pattern: "app-%Y%m%d.log",
			now:     tir7,
			want:    "app-14040407.log",
		},
		{
			name:    "hourly pattern",
			pattern: "app-%Y%m%d-%H%M.log",
			now:     tir7,
			want:    "app-14040407-1200.log",
		},
		{
			name:    "month names stay English",
			pattern: "app-%Y-%B-%-d.log",
			now:     tir7,
			want:    "app-1404-Tir-7.log",
		},
		{
			name:    "last day of a leap year",
			pattern: "app-%Y%m%d.log",
			now:     time.Date(2025, 3, 20, 23, 30, 0, 0, time.UTC),
			want:    "app-14031230.log",
		},
		{
			name:    "empty pattern uses default",
			pattern: "",
			now:     tir7,
			want:    "jdate-14040407.log",
		},
		{
			name:    "no directives",
			pattern: "static.log",
			now:     tir7,
			want:    "static.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generateLogFilename(tt.pattern, tt.now); got != tt.want {
				t.Errorf("generateLogFilename(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestGlobPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"jdate-%Y%m%d.log", "jdate-*.log"},
		{"jdate-%Y-%m-%d.log", "jdate-*-*-*.log"},
		{"a*b-%Y.log", `a\*b-*.log`},
		{"static.log", "static.log"},
		{"", "jdate-*.log"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := globPattern(tt.pattern); got != tt.want {
				t.Errorf("globPattern(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestDatedPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"", true},
		{"jdate-%Y%m%d.log", true},
		{"app-%j.log", true},
		{"static.log", false},
		{"100%%.log", false},
	}

	for _, tt := range tests {
		if got := datedPattern(tt.pattern); got != tt.want {
			t.Errorf("datedPattern(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestLogLevelParsing(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSizeRotation(t *testing.T) {
	tempDir := t.TempDir()
	clock := &fixedClock{t: tir7}

	logger, err := newLogger(Config{
		Enabled:         true,
		Directory:       tempDir,
		FilenamePattern: "size-%Y%m%d.log",
		Level:           "info",
		MaxSizeMB:       1,
	}, io.Discard, clock.now)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	largeMessage := strings.Repeat("x", 50_000)
	for i := 0; i < 30; i++ {
		logger.Info("Large log message", slog.String("content", largeMessage), slog.Int("iteration", i))
	}

	for _, name := range []string{"size-14040407.log", "size-14040407.1.log"} {
		if _, err := os.Stat(filepath.Join(tempDir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	info, err := os.Stat(filepath.Join(tempDir, "size-14040407.1.log"))
	if err == nil && info.Size() < 1024*1024 {
		t.Errorf("Rotated file is %d bytes, want at least 1 MiB", info.Size())
	}
}

func TestDateRotation(t *testing.T) {
	tempDir := t.TempDir()
	clock := &fixedClock{t: time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)}

	logger, err := newLogger(Config{
		Enabled:         true,
		Directory:       tempDir,
		FilenamePattern: "day-%Y%m%d.log",
		Level:           "info",
	}, io.Discard, clock.now)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Info("last day of 1403")
	clock.set(time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC))
	logger.Info("first day of 1404")

	if got, want := filepath.Base(logger.FileName()), "day-14040101.log"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}

	old, err := os.ReadFile(filepath.Join(tempDir, "day-14031230.log"))
	if err != nil {
		t.Fatalf("Failed to read previous day's log: %v", err)
	}
	if !strings.Contains(string(old), "last day of 1403") || strings.Contains(string(old), "first day of 1404") {
		t.Errorf("Previous day's log has unexpected content:\n%s", old)
	}

	current, err := os.ReadFile(filepath.Join(tempDir, "day-14040101.log"))
	if err != nil {
		t.Fatalf("Failed to read current log: %v", err)
	}
	if !strings.Contains(string(current), "first day of 1404") {
		t.Errorf("Current log is missing the new message:\n%s", current)
	}
}

func TestCleanOldFiles(t *testing.T) {
	tempDir := t.TempDir()

	base := time.Now().Add(-10 * 24 * time.Hour)
	for i := 1; i <= 5; i++ {
		path := filepath.Join(tempDir, fmt.Sprintf("keep-1403120%d.log", i))
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", path, err)
		}
		modTime := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatalf("Failed to set times on %s: %v", path, err)
		}
	}
	unrelated := filepath.Join(tempDir, "other.txt")
	if err := os.WriteFile(unrelated, []byte("keep me"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", unrelated, err)
	}

	logger, err := newLogger(Config{
		Enabled:         true,
		Directory:       tempDir,
		FilenamePattern: "keep-%Y%m%d.log",
		MaxFiles:        2,
	}, io.Discard, (&fixedClock{t: tir7}).now)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.mu.Lock()
	logger.cleanOldFiles()
	logger.mu.Unlock()

	remaining, _ := filepath.Glob(filepath.Join(tempDir, "keep-*.log"))
	if len(remaining) != 2 {
		t.Fatalf("Expected 2 log files after cleanup, got %d: %v", len(remaining), remaining)
	}
	for _, name := range []string{"keep-14040407.log", "keep-14031205.log"} {
		if _, err := os.Stat(filepath.Join(tempDir, name)); err != nil {
			t.Errorf("Expected %s to survive cleanup: %v", name, err)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("Cleanup removed an unrelated file: %v", err)
	}
}

func TestConcurrentLogging(t *testing.T) {
	tempDir := t.TempDir()

	logger, err := newLogger(Config{
		Enabled:         true,
		Directory:       tempDir,
		FilenamePattern: "concurrent-%Y%m%d.log",
		Level:           "info",
	}, io.Discard, (&fixedClock{t: tir7}).now)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	const goroutines, messages = 10, 50
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < messages; i++ {
				logger.Info("concurrent message", slog.Int("goroutine", id), slog.Int("message", i))
			}
		}(g)
	}
	wg.Wait()
	logger.Close()

	content, err := os.ReadFile(filepath.Join(tempDir, "concurrent-14040407.log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if got := strings.Count(string(content), "concurrent message"); got != goroutines*messages {
		t.Errorf("Found %d messages, want %d", got, goroutines*messages)
	}
}

func TestExecutionSummaryLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLoggerWithWriter(Config{Level: "info", ConsoleOutput: true}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.LogExecutionSummary(time.Now().Add(-time.Second), "jdate.toml", "convert", []string{"converted 3 values"}, 0)

	output := buf.String()
	for _, want := range []string{"EXECUTION SUMMARY", "command=convert", "config_file=jdate.toml", "exit_code=0", "converted 3 values"} {
		if !strings.Contains(output, want) {
			t.Errorf("Summary output missing %q:\n%s", want, output)
		}
	}
}

func TestLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLoggerWithWriter(Config{Level: "debug", ConsoleOutput: true}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debug("debug message", slog.String("pattern", "%Y-%m-%d"))

	output := buf.String()
	if !strings.Contains(output, "level=DEBUG") || !strings.Contains(output, "pattern=%Y-%m-%d") {
		t.Errorf("Unexpected console output:\n%s", output)
	}
	if logger.FileName() != "" {
		t.Errorf("FileName() = %q, want empty for console-only logger", logger.FileName())
	}
}
