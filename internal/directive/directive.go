// Package directive holds the closed table of strftime-style directives
// and the tokenizer shared by the formatter and the parser.
//
// A pattern is scanned once into literal runs and directive tokens.
// Composite directives (%c, %x, %X) are expanded in place so consumers only
// ever see primitive directives.
package directive

import (
	"strings"
	"unicode/utf8"
)

// Kind distinguishes the two token shapes
type Kind int

const (
	Literal Kind = iota
	Directive
)

// Token is one element of a tokenized pattern
type Token struct {
	Kind Kind
	// Text is the literal run for Literal tokens and the directive as
	// written ("%d", "%-d") for Directive tokens
	Text string
	Verb byte
	// NoPad is set for the %-X form
	NoPad bool
}

// Spec describes one directive of the table
type Spec struct {
	Verb        byte
	Description string
	// Width is the zero-padded width of numeric directives; 0 for names and offsets
	Width int
	// NoPad reports whether the %-X form is accepted
	NoPad bool
	// Composite is the sub-pattern of %c, %x and %X
	Composite string
}

var table = map[byte]Spec{
	'a': {Verb: 'a', Description: "abbreviated weekday name"},
	'A': {Verb: 'A', Description: "full weekday name"},
	'b': {Verb: 'b', Description: "abbreviated month name"},
	'B': {Verb: 'B', Description: "full month name"},
	'c': {Verb: 'c', Description: "date and time", Composite: "%a %b %d %H:%M:%S %Y"},
	'd': {Verb: 'd', Description: "day of month", Width: 2, NoPad: true},
	'f': {Verb: 'f', Description: "microsecond", Width: 6},
	'H': {Verb: 'H', Description: "hour (24-hour clock)", Width: 2, NoPad: true},
	'I': {Verb: 'I', Description: "hour (12-hour clock)", Width: 2, NoPad: true},
	'j': {Verb: 'j', Description: "day of year", Width: 3},
	'm': {Verb: 'm', Description: "month", Width: 2, NoPad: true},
	'M': {Verb: 'M', Description: "minute", Width: 2, NoPad: true},
	'p': {Verb: 'p', Description: "AM or PM label"},
	'S': {Verb: 'S', Description: "second", Width: 2, NoPad: true},
	'w': {Verb: 'w', Description: "weekday number, Saturday is 0", Width: 1},
	'W': {Verb: 'W', Description: "week number of the year"},
	'x': {Verb: 'x', Description: "date", Composite: "%m/%d/%y"},
	'X': {Verb: 'X', Description: "time", Composite: "%H:%M:%S"},
	'y': {Verb: 'y', Description: "two-digit year", Width: 2},
	'Y': {Verb: 'Y', Description: "year", Width: 4},
	'z': {Verb: 'z', Description: "UTC offset as +HHMM[SS[.ffffff]]"},
	'Z': {Verb: 'Z', Description: "time zone name"},
}

// Lookup returns the table entry for verb
func Lookup(verb byte) (Spec, bool) {
	s, ok := table[verb]
	return s, ok
}

// Known reports whether verb is in the table
func Known(verb byte) bool {
	_, ok := table[verb]
	return ok
}

// Verbs returns every verb in table order, used for help output
func Verbs() []byte {
	return []byte("aAbBcdfHIjmMpSwWxXyYzZ")
}

// Tokenize scans pattern once. %% becomes a literal percent, a trailing
// lone % stays literal, and unknown directives are kept verbatim as literal
// text. Adjacent literal text is merged into one token.
func Tokenize(pattern string) []Token {
	var tokens []Token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, Token{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch != '%' || i+1 >= len(pattern) {
			lit.WriteByte(ch)
			continue
		}

		next := pattern[i+1]
		switch {
		case next == '%':
			lit.WriteByte('%')
			i++

		case next == '-' && i+2 < len(pattern):
			verb := pattern[i+2]
			if spec, ok := table[verb]; ok && spec.NoPad {
				flush()
				tokens = append(tokens, Token{Kind: Directive, Text: pattern[i : i+3], Verb: verb, NoPad: true})
				i += 2
			} else {
				lit.WriteString(pattern[i : i+2])
				i++
			}

		default:
			spec, ok := table[next]
			switch {
			case !ok:
				lit.WriteString(pattern[i : i+2])
			case spec.Composite != "":
				for _, tok := range Tokenize(spec.Composite) {
					if tok.Kind == Literal {
						lit.WriteString(tok.Text)
						continue
					}
					flush()
					tokens = append(tokens, tok)
				}
			default:
				flush()
				tokens = append(tokens, Token{Kind: Directive, Text: pattern[i : i+2], Verb: next})
			}
			i++
		}
	}
	flush()
	return tokens
}

// Unknown returns the %X sequences of pattern that are not in the table,
// in order of appearance
func Unknown(pattern string) []string {
	var out []string
	for i := 0; i < len(pattern)-1; i++ {
		if pattern[i] != '%' {
			continue
		}
		next := pattern[i+1]
		switch {
		case next == '%':
		case next == '-' && i+2 < len(pattern):
			if spec, ok := table[pattern[i+2]]; !ok || !spec.NoPad {
				out = append(out, pattern[i:i+3])
			}
			i++
		case !Known(next):
			_, size := utf8.DecodeRuneInString(pattern[i+1:])
			out = append(out, pattern[i:i+1+size])
		}
		i++
	}
	return out
}

// HasVerb reports whether any directive token of tokens uses one of verbs
func HasVerb(tokens []Token, verbs ...byte) bool {
	for _, tok := range tokens {
		if tok.Kind != Directive {
			continue
		}
		for _, v := range verbs {
			if tok.Verb == v {
				return true
			}
		}
	}
	return false
}
