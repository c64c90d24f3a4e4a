package parser

import (
	"regexp"
	"strings"

	"github.com/nowwaveradio/jdatetime/internal/directive"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// nameClass matches Latin and Persian month and weekday names, including
// the zero width joiners used inside compound Persian names
const nameClass = `([\p{L}\x{200C}\x{200D}]+)`

const offsetGroup = `(Z|[+-][0-9]{2}:?[0-5][0-9](?::?[0-5][0-9](?:\.[0-9]{1,6})?)?)?`

var groups = map[byte]string{
	'a': nameClass,
	'A': nameClass,
	'b': nameClass,
	'B': nameClass,
	'd': `([0-9]{1,2})`,
	'f': `([0-9]{1,6})`,
	'H': `([0-9]{1,2})`,
	'I': `([0-9]{1,2})`,
	'j': `([0-9]{1,3})`,
	'm': `([0-9]{1,2})`,
	'M': `([0-9]{1,2})`,
	'S': `([0-9]{1,2})`,
	'w': `([0-6])`,
	'W': `([0-9]{1,2})`,
	'y': `([0-9]{2})`,
	'Y': `([0-9]{4})`,
	'z': offsetGroup,
	'Z': `([A-Za-z][A-Za-z0-9_+\-/]*)?`,
}

// meridiemGroup alternates the AM/PM labels of every catalog
var meridiemGroup = func() string {
	var labels []string
	for _, names := range locale.Catalogs() {
		labels = append(labels, regexp.QuoteMeta(names.AM), regexp.QuoteMeta(names.PM))
	}
	return `((?i:` + strings.Join(labels, "|") + `))`
}()

// Pattern is a compiled directive pattern. Capture group i holds the
// value of Directives[i].
type Pattern struct {
	source     string
	re         *regexp.Regexp
	Directives []directive.Token
}

// Compile turns a directive pattern into an anchored regular expression.
// Literal text is matched exactly; unknown directives are literal text.
func Compile(pattern string) (*Pattern, error) {
	tokens := directive.Tokenize(locale.NormalizeDigits(pattern))

	var b strings.Builder
	b.WriteString("^")
	var directives []directive.Token
	for _, tok := range tokens {
		if tok.Kind == directive.Literal {
			b.WriteString(regexp.QuoteMeta(tok.Text))
			continue
		}
		group := groups[tok.Verb]
		if tok.Verb == 'p' {
			group = meridiemGroup
		}
		b.WriteString(group)
		directives = append(directives, tok)
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	return &Pattern{source: pattern, re: re, Directives: directives}, nil
}

// String returns the pattern as written
func (p *Pattern) String() string {
	return p.source
}

// Expr returns the generated regular expression
func (p *Pattern) Expr() string {
	return p.re.String()
}

// match returns one captured value per directive; text must already be
// digit-normalized
func (p *Pattern) match(text string) ([]string, bool) {
	m := p.re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}
