package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
)

// FilenameValidationError represents an error in filename pattern validation
type FilenameValidationError struct {
	Pattern           string
	InvalidChars      []rune
	UnknownDirectives []string
	Platform          string
	Suggestion        string
}

func (e *FilenameValidationError) Error() string {
	if len(e.UnknownDirectives) > 0 {
		return fmt.Sprintf("invalid filename pattern %q uses unknown directives: %s",
			e.Pattern, strings.Join(e.UnknownDirectives, ", "))
	}

	charList := make([]string, len(e.InvalidChars))
	for i, char := range e.InvalidChars {
		charList[i] = fmt.Sprintf("'%c'", char)
	}

	msg := fmt.Sprintf("invalid filename pattern %q contains invalid characters: %s",
		e.Pattern, strings.Join(charList, ", "))

	if e.Platform != "all" {
		msg += fmt.Sprintf(" (invalid on %s)", e.Platform)
	}

	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}

	return msg
}

// sampleTime is rendered through the pattern to see what directives expand to
var sampleTime = jdate.MustDateTime(1403, 12, 30, 23, 59, 59, 0)

// ValidateFilenamePattern checks that a log filename pattern only uses known
// directives and that the names it expands to are safe on this platform.
// %c, %x and %X expand to '/' and ':' even when the pattern text has none
func ValidateFilenamePattern(pattern string) error {
	if pattern == "" {
		return nil // Empty pattern uses default, which is safe
	}

	if unknown := directive.Unknown(pattern); len(unknown) > 0 {
		return &FilenameValidationError{
			Pattern:           pattern,
			UnknownDirectives: unknown,
			Platform:          "all",
		}
	}

	rendered := filenameFormatter.Format(sampleTime, pattern)

	var filenameOnly string
	if isAbsolutePath(pattern) {
		filenameOnly = extractFilename(rendered)
	} else {
		if separators := findSeparators(rendered); len(separators) > 0 {
			return &FilenameValidationError{
				Pattern:      pattern,
				InvalidChars: separators,
				Platform:     "all",
				Suggestion:   getSuggestionForFilename(pattern, pattern, separators),
			}
		}
		filenameOnly = rendered
	}

	invalidChars := findInvalidCharsInFilename(filenameOnly)
	if len(invalidChars) > 0 {
		platform := "all"
		if runtime.GOOS == "windows" {
			platform = "Windows"
		}

		return &FilenameValidationError{
			Pattern:      pattern,
			InvalidChars: invalidChars,
			Platform:     platform,
			Suggestion:   getSuggestionForFilename(pattern, extractFilename(pattern), invalidChars),
		}
	}

	return nil
}

func findSeparators(s string) []rune {
	var found []rune
	for _, sep := range []rune{'/', '\\'} {
		if strings.ContainsRune(s, sep) {
			found = append(found, sep)
		}
	}
	return found
}

// isAbsolutePath determines if a pattern represents a full path vs a filename pattern
func isAbsolutePath(pattern string) bool {
	// Unix absolute path
	if strings.HasPrefix(pattern, "/") {
		return true
	}
	// Windows absolute path (C:\, D:\, etc.)
	if len(pattern) >= 3 && pattern[1] == ':' && (pattern[2] == '\\' || pattern[2] == '/') {
		return true
	}
	// UNC path (\\server\share)
	return strings.HasPrefix(pattern, "\\\\")
}

// findInvalidCharsInFilename returns invalid characters found in the filename part only
func findInvalidCharsInFilename(filename string) []rune {
	var invalid []rune

	if strings.ContainsRune(filename, '\x00') {
		invalid = append(invalid, '\x00')
	}

	if runtime.GOOS == "windows" {
		for _, char := range []rune{'<', '>', ':', '"', '|', '?', '*'} {
			if strings.ContainsRune(filename, char) {
				invalid = append(invalid, char)
			}
		}
	}

	return invalid
}

// compositeExpansions spells out the composites so a suggestion can replace
// their separators
var compositeExpansions = strings.NewReplacer(
	"%c", "%a %b %d %H-%M-%S %Y",
	"%x", "%m-%d-%y",
	"%X", "%H-%M-%S",
)

// getSuggestionForFilename provides a safe alternative pattern, keeping the
// directory part of full paths
func getSuggestionForFilename(fullPattern, filename string, invalidChars []rune) string {
	suggestion := compositeExpansions.Replace(filename)

	// Replace common problematic characters with safe alternatives
	replacements := map[rune]string{
		'/':  "-", // %m/%d/%Y -> %m-%d-%Y
		'\\': "-",
		':':  "-", // %H:%M:%S -> %H-%M-%S
		'|':  "-",
		'*':  "X",
		'?':  "X",
		'<':  "",
		'>':  "",
		'"':  "",
	}

	for _, char := range invalidChars {
		if replacement, exists := replacements[char]; exists {
			suggestion = strings.ReplaceAll(suggestion, string(char), replacement)
		}
	}

	for strings.Contains(suggestion, "--") {
		suggestion = strings.ReplaceAll(suggestion, "--", "-")
	}

	if !isAbsolutePath(fullPattern) {
		return suggestion
	}
	dir := extractDirectory(fullPattern)
	if dir == "" {
		return suggestion
	}
	return dir + string(filepath.Separator) + suggestion
}

// extractFilename extracts the filename from a pattern, handling both Unix and Windows paths
func extractFilename(pattern string) string {
	if strings.Contains(pattern, "\\") {
		parts := strings.Split(pattern, "\\")
		return parts[len(parts)-1]
	}
	return filepath.Base(pattern)
}

// extractDirectory extracts the directory from a pattern, handling both Unix and Windows paths
func extractDirectory(pattern string) string {
	if strings.Contains(pattern, "\\") {
		parts := strings.Split(pattern, "\\")
		if len(parts) <= 1 {
			return ""
		}
		return strings.Join(parts[:len(parts)-1], "\\")
	}
	dir := filepath.Dir(pattern)
	if dir == "." {
		return ""
	}
	return dir
}

// GetSafeFilenamePatterns returns a list of recommended safe patterns
func GetSafeFilenamePatterns() []string {
	return []string{
		"jdate-%Y%m%d.log",         // Compact Jalali date
		"jdate-%Y-%m-%d.log",       // ISO-style with dashes
		"jdate-%Y.%m.%d.log",       // Dot-separated
		"jdate_%Y_%m_%d.log",       // Underscores
		"jdate-%Y%m%d-%H%M%S.log",  // With time (compact)
		"jdate-%Y-%B-%d.log",       // Month name
		"jdate-%Y-%m-%d-%H-%M.log", // With time (readable)
	}
}

// GetUnsafeFilenamePatterns returns examples of patterns to avoid
func GetUnsafeFilenamePatterns() map[string]string {
	return map[string]string{
		"jdate-%m/%d/%Y.log": "Forward slashes create subdirectories",
		"jdate-%x.log":       "%x expands to slashes",
		"jdate-%H:%M:%S.log": "Colons invalid on Windows",
		"jdate-%X.log":       "%X expands to colons",
		"jdate-%Y|%m.log":    "Pipes invalid on Windows",
		"jdate-*-%Y%m%d.log": "Asterisks invalid on Windows",
		"jdate-%Q.log":       "Unknown directive",
		"jdate\\%Y\\%m.log":  "Backslashes create subdirectories",
	}
}
