package errorutil

import (
	"fmt"
	"log/slog"
	"time"
)

func attrsToAny(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, attr := range attrs {
		out[i] = attr
	}
	return out
}

func withError(err error, attrs []slog.Attr) []any {
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.String("error", err.Error()))
	all = append(all, attrs...)
	return attrsToAny(all)
}

// LogAndWrap logs an error with structured context and returns it wrapped
// with the operation name
func LogAndWrap(logger *slog.Logger, operation string, err error, attrs ...slog.Attr) error {
	if logger == nil || err == nil {
		return err
	}

	logger.Error(operation+" failed", withError(err, attrs)...)
	return fmt.Errorf("%s: %w", operation, err)
}

// LogWarning logs a non-fatal error as warning without wrapping.
// Used for batch items that fail while the rest of the batch continues.
func LogWarning(logger *slog.Logger, operation string, err error, attrs ...slog.Attr) {
	if logger == nil || err == nil {
		return
	}

	logger.Warn("Non-fatal error in "+operation, withError(err, attrs)...)
}

// LogAndReturn logs an error and returns it without additional wrapping
func LogAndReturn(logger *slog.Logger, operation string, err error, attrs ...slog.Attr) error {
	if logger == nil || err == nil {
		return err
	}

	logger.Error(operation+" failed", withError(err, attrs)...)
	return err
}

// ExecuteWithLogging wraps a function call with operation logging.
// Start and completion are logged at debug level with the duration.
func ExecuteWithLogging(logger *slog.Logger, operation string, fn func() error, attrs ...slog.Attr) error {
	if logger == nil {
		return fn()
	}

	start := time.Now()
	logger.Debug("Starting "+operation, attrsToAny(attrs)...)

	err := fn()

	completion := make([]slog.Attr, 0, len(attrs)+1)
	completion = append(completion, attrs...)
	completion = append(completion, slog.Duration("duration", time.Since(start)))

	if err != nil {
		logger.Error("Failed "+operation, withError(err, completion)...)
		return fmt.Errorf("%s: %w", operation, err)
	}

	logger.Debug("Completed "+operation, attrsToAny(completion)...)
	return nil
}

// Common context helpers for frequently used attributes

// PatternContext describes a directive pattern and, when known, the input it was applied to
func PatternContext(pattern, text string) []slog.Attr {
	attrs := make([]slog.Attr, 0, 2)
	if pattern != "" {
		attrs = append(attrs, slog.String("pattern", pattern))
	}
	if text != "" {
		attrs = append(attrs, slog.String("text", text))
	}
	return attrs
}

func LocaleContext(tag string) []slog.Attr {
	if tag == "" {
		return nil
	}
	return []slog.Attr{slog.String("locale", tag)}
}

// InputContext identifies one item of a batch
func InputContext(index int, input string) []slog.Attr {
	return []slog.Attr{slog.Int("index", index), slog.String("input", input)}
}

func ConfigContext(configFile string) []slog.Attr {
	if configFile == "" {
		return nil
	}
	return []slog.Attr{slog.String("config_file", configFile)}
}

func FileContext(filePath string) []slog.Attr {
	if filePath == "" {
		return nil
	}
	return []slog.Attr{slog.String("file_path", filePath)}
}
