package template

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nowwaveradio/jdatetime/internal/dateutil"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// funcMap binds the date helpers to ctx so jformat sees the render locale
func (e *Engine) funcMap(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		// jformat renders a Date, DateTime, time.Time or Jalali string
		// with a directive pattern or preset name
		"jformat": func(value interface{}, pattern string) (string, error) {
			dt, err := e.toDateTime(ctx, value)
			if err != nil {
				return "", err
			}
			resolved, tag, err := e.presets.Pattern(pattern)
			if err != nil {
				return "", err
			}
			if tag != locale.None {
				dt = dt.AsLocale(tag)
			}
			return e.formatter.FormatContext(ctx, dt, resolved), nil
		},
		// jalali converts a time.Time or Gregorian date string
		"jalali": func(value interface{}) (jdate.DateTime, error) {
			switch v := value.(type) {
			case time.Time:
				return jdate.FromTime(v)
			case string:
				t, err := dateutil.ParseFlexibleGregorian(v)
				if err != nil {
					return jdate.DateTime{}, err
				}
				return jdate.DateTimeFromGregorian(jdate.FromGregorianDateTime{Time: t, Naive: true})
			}
			return jdate.DateTime{}, fmt.Errorf("jalali: unsupported value of type %T", value)
		},
		// gregorian converts a Jalali value to time.Time
		"gregorian": func(value interface{}) (time.Time, error) {
			dt, err := e.toDateTime(ctx, value)
			if err != nil {
				return time.Time{}, err
			}
			return dt.Gregorian(), nil
		},
		"jtoday": func() (jdate.Date, error) {
			now, err := e.current(ctx)
			return now.Date(), err
		},
		"jnow": func() (jdate.DateTime, error) {
			return e.current(ctx)
		},
		"adddays": func(d jdate.Date, n int) (jdate.Date, error) {
			return d.AddDays(n)
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"join": func(sep string, items []string) string {
			return strings.Join(items, sep)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}
}

// toDateTime accepts the Jalali value shapes templates pass around
func (e *Engine) toDateTime(ctx context.Context, value interface{}) (jdate.DateTime, error) {
	switch v := value.(type) {
	case jdate.DateTime:
		return v, nil
	case jdate.Date:
		return jdate.Combine(v, jdate.Midnight), nil
	case time.Time:
		return jdate.FromTime(v)
	case string:
		if dt, err := e.parser.ParseISO(v); err == nil {
			return dt, nil
		}
		d, err := dateutil.ParseFlexibleDate(v)
		if err != nil {
			return jdate.DateTime{}, err
		}
		return jdate.Combine(d, jdate.Midnight), nil
	}
	return jdate.DateTime{}, fmt.Errorf("unsupported date value of type %T", value)
}
