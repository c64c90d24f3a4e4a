package jdate

import (
	"context"

	"github.com/nowwaveradio/jdatetime/internal/locale"
)

// components is the mutable staging area every constructor and Replace
// call goes through before validation
type components struct {
	year, month, day                  int
	hour, minute, second, microsecond int
	zone                              Zone
	fold                              int
	locale                            locale.Tag
}

// Option adjusts a value while it is being constructed or replaced.
// Date constructors ignore the time-of-day, zone and fold options.
type Option func(*components)

// WithLocale attaches a locale tag
func WithLocale(tag locale.Tag) Option {
	return func(c *components) { c.locale = tag }
}

// WithContextLocale attaches the default locale carried by ctx, if any
func WithContextLocale(ctx context.Context) Option {
	return func(c *components) {
		if tag := locale.FromContext(ctx); tag != locale.None {
			c.locale = tag
		}
	}
}

// WithZone attaches a time zone; nil makes the value naive
func WithZone(z Zone) Option {
	return func(c *components) { c.zone = z }
}

// WithFold selects the earlier (0) or later (1) instant of a repeated wall time
func WithFold(fold int) Option {
	return func(c *components) { c.fold = fold }
}

func WithYear(year int) Option {
	return func(c *components) { c.year = year }
}

func WithMonth(month int) Option {
	return func(c *components) { c.month = month }
}

func WithDay(day int) Option {
	return func(c *components) { c.day = day }
}

func WithHour(hour int) Option {
	return func(c *components) { c.hour = hour }
}

func WithMinute(minute int) Option {
	return func(c *components) { c.minute = minute }
}

func WithSecond(second int) Option {
	return func(c *components) { c.second = second }
}

func WithMicrosecond(microsecond int) Option {
	return func(c *components) { c.microsecond = microsecond }
}

func (c *components) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
}
