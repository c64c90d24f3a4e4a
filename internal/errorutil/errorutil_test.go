package errorutil

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRangeError(t *testing.T) {
	err := CheckRange("month", 13, 1, 12)
	if err == nil {
		t.Fatal("CheckRange(13, 1, 12) returned nil")
	}
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("CheckRange error does not wrap ErrOutOfRange: %v", err)
	}
	if got, want := err.Error(), "month must be in 1..12, got 13"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if err := CheckRange("day", 30, 1, 30); err != nil {
		t.Errorf("CheckRange(30, 1, 30) = %v, want nil", err)
	}

	custom := &RangeError{Field: "day", Message: "day is out of range for month"}
	if custom.Error() != "day is out of range for month" {
		t.Errorf("Error() = %q, want the custom message", custom.Error())
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  string
	}{
		{
			name:  "no match",
			cause: nil,
			want:  `time data "21 " does not match format "%y"`,
		},
		{
			name:  "range",
			cause: &RangeError{Message: "day is out of range for month"},
			want:  `time data "21 " does not match format "%y": day is out of range for month`,
		},
		{
			name:  "inconsistent colon",
			cause: InconsistentColonError("+01:3000"),
			want:  `inconsistent use of : in "+01:3000"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewParseError("21 ", "%y", tt.cause)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}

	if err := NewParseError("x", "%Y", nil); !errors.Is(err, ErrNoMatch) {
		t.Errorf("NewParseError with nil cause does not wrap ErrNoMatch")
	}
}

func TestValidationBuilder(t *testing.T) {
	err := NewValidationBuilder("calendar").
		RequiredString("default_format", "  ").
		RequiredInt("batch_size", 0).
		InRange("two_digit_year_pivot", 120, 0, 99).
		OneOf("level", "loud", []string{"debug", "info"}).
		OneOf("level_empty", "", []string{"debug"}).
		Check("timezone", "Mars/Base", fmt.Errorf("unknown time zone Mars/Base")).
		Check("locale", "fa_IR", nil).
		ValidIf(false, func(vb *ValidationBuilder) *ValidationBuilder {
			return vb.RequiredString("skipped", "")
		}).
		Build()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Build() = %v, want *ValidationError", err)
	}

	wantFields := []string{"default_format", "batch_size", "two_digit_year_pivot", "level", "timezone"}
	gotFields := verr.Fields()
	if strings.Join(gotFields, ",") != strings.Join(wantFields, ",") {
		t.Errorf("Fields() = %v, want %v", gotFields, wantFields)
	}

	if !strings.HasPrefix(err.Error(), "calendar validation failed: default_format: is required; ") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !strings.Contains(err.Error(), "two_digit_year_pivot: must be between 0 and 99, got 120") {
		t.Errorf("Error() = %q, missing range message", err.Error())
	}

	if err := NewValidationBuilder("empty").Build(); err != nil {
		t.Errorf("Build() with no failures = %v, want nil", err)
	}
}

func TestValidateConfig(t *testing.T) {
	err := ValidateConfig("server", func(vb *ValidationBuilder) *ValidationBuilder {
		return vb.Custom("listen_addr", "8080", func(v interface{}) bool {
			return strings.Contains(v.(string), ":")
		}, "must be host:port")
	})
	if err == nil || err.Error() != "server configuration validation failed: listen_addr: must be host:port" {
		t.Errorf("ValidateConfig() = %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"nil", nil, http.StatusOK, "ok"},
		{"parse", NewParseError("x", "%Y", nil), http.StatusBadRequest, "parse_error"},
		{"offset", NewParseError("x", "%z", fmt.Errorf("%w: +2500", ErrMalformedOffset)), http.StatusBadRequest, "parse_error"},
		{"range", NewRangeError("year", 0, 1, 9377), http.StatusUnprocessableEntity, "out_of_range"},
		{"wrapped range", fmt.Errorf("convert: %w", NewRangeError("year", 0, 1, 9377)), http.StatusUnprocessableEntity, "out_of_range"},
		{"range inside parse", NewParseError("1392-12-30", "%Y-%m-%d", NewRangeError("day", 30, 1, 29)), http.StatusBadRequest, "parse_error"},
		{"gregorian layout", fmt.Errorf("to-jalali: %w", &time.ParseError{Layout: "2006-01-02", Value: "bogus"}), http.StatusBadRequest, "parse_error"},
		{"not comparable", ErrNotComparable, http.StatusUnprocessableEntity, "not_comparable"},
		{"unsupported", ErrUnsupported, http.StatusNotImplemented, "unsupported"},
		{"validation", NewValidationBuilder("req").RequiredString("pattern", "").Build(), http.StatusBadRequest, "invalid_request"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err, "convert")
			if got.StatusCode != tt.status || got.Code != tt.code {
				t.Errorf("ClassifyError(%v) = %d %s, want %d %s", tt.err, got.StatusCode, got.Code, tt.status, tt.code)
			}
		})
	}

	if !IsClientError(ErrNoMatch) || IsClientError(errors.New("boom")) {
		t.Error("IsClientError misclassified")
	}
}

func TestLogAndWrap(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cause := NewParseError("x", "%Y", nil)
	err := LogAndWrap(logger, "parse", cause, PatternContext("%Y", "x")...)
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("LogAndWrap lost the cause: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "parse: ") {
		t.Errorf("LogAndWrap() = %q, want operation prefix", err.Error())
	}

	output := buf.String()
	for _, want := range []string{`msg="parse failed"`, "pattern=%Y", "text=x"} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q:\n%s", want, output)
		}
	}

	if LogAndWrap(nil, "parse", cause) != cause {
		t.Error("LogAndWrap with nil logger should return the error unchanged")
	}
	if LogAndWrap(logger, "parse", nil) != nil {
		t.Error("LogAndWrap with nil error should return nil")
	}
}

func TestExecuteWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := ExecuteWithLogging(logger, "batch", func() error { return nil }, InputContext(3, "1403/01/01")...); err != nil {
		t.Errorf("ExecuteWithLogging() = %v, want nil", err)
	}
	if !strings.Contains(buf.String(), `msg="Completed batch"`) || !strings.Contains(buf.String(), "index=3") {
		t.Errorf("missing completion log:\n%s", buf.String())
	}

	err := ExecuteWithLogging(logger, "batch", func() error { return ErrUnsupported })
	if !errors.Is(err, ErrUnsupported) || err.Error() != "batch: unsupported operation" {
		t.Errorf("ExecuteWithLogging() = %v", err)
	}
}

func TestFileOps(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "input.txt")

	if err := SafeWriteFile(filepath.Join(dir, "nested", "out.txt"), []byte("1403-12-30"), "write", true); err != nil {
		t.Fatalf("SafeWriteFile() = %v", err)
	}
	if err := os.WriteFile(file, []byte("1402-01-01\n"), 0644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	data, err := ReadFile(file, "read input")
	if err != nil || string(data) != "1402-01-01\n" {
		t.Errorf("ReadFile() = %q, %v", data, err)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.txt"), "read input")
	var opErr *FileOpError
	if !errors.As(err, &opErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) = %v, want FileOpError wrapping ErrNotExist", err)
	}

	if err := ValidateFileExists(dir, "read input"); err == nil {
		t.Error("ValidateFileExists(directory) = nil, want error")
	}
	if err := ValidateDirectory(file, "logs", false); err == nil {
		t.Error("ValidateDirectory(file) = nil, want error")
	}
	if err := ValidateDirectory(filepath.Join(dir, "created"), "logs", true); err != nil {
		t.Errorf("ValidateDirectory(create) = %v", err)
	}
}
