// Package feel implements the standard library of FEEL, the expression
// language of DMN decision models.
//
// A [Library] provides the built-in functions under their FEEL names, e.g.
// "sublist" or "years and months duration". Every function is total: invalid
// input yields [Unknown] instead of an error. The [Profile] chosen at
// construction decides how numbers and temporal values are represented.
//
//	l := feel.New(feel.Default)
//	d := l.Call("date", feel.String("2016-08-01"))
//	l.Call("add", d, l.Call("duration", feel.String("P1M"))) // 2016-09-01
package feel

import (
	"fmt"
	"log/slog"
	"maps"
)

// Profile selects the number and temporal representations of a Library.
type Profile int

const (
	// Default computes with decimals and backs temporal values by Calendar.
	Default Profile = iota
	// MixedFloatTemporal computes with float64 and backs dates, times and
	// date and times by LocalDate, OffsetTime and ZonedDateTime.
	MixedFloatTemporal
	// UniformTemporal computes with decimals and backs all temporal values
	// by Zoned.
	UniformTemporal
)

func (p Profile) String() string {
	switch p {
	case MixedFloatTemporal:
		return "MixedFloatTemporal"
	case UniformTemporal:
		return "UniformTemporal"
	default:
		return "Default"
	}
}

// Library is the standard library of one profile. It is immutable and safe
// for concurrent use.
type Library struct {
	profile   Profile
	config    Config
	numbers   NumericStrategy
	temporal  TemporalStrategy
	functions Functions
	logger    *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithConfig sets the configuration. It never fails: a zero precision or an
// empty, inverted or out of range year range is silently replaced by the
// default. Use NewWithConfig to reject such a configuration instead.
func WithConfig(c Config) Option {
	return func(l *Library) {
		def := DefaultConfig()
		if c.Precision == 0 {
			c.Precision = def.Precision
		}
		unset := c.MinYear == 0 && c.MaxYear == 0
		if unset || c.MinYear > c.MaxYear || c.MinYear < def.MinYear || c.MaxYear > def.MaxYear {
			c.MinYear, c.MaxYear = def.MinYear, def.MaxYear
		}
		l.config = c
	}
}

// WithLogger sets the logger receiving diagnostics about failed calls.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFunctions installs additional functions, replacing built-in functions
// of the same name.
func WithFunctions(functions Functions) Option {
	return func(l *Library) {
		for name, fn := range functions {
			l.functions[normalizeName(name)] = fn
		}
	}
}

// New returns the library of the given profile.
func New(profile Profile, opts ...Option) *Library {
	l := &Library{
		profile:   profile,
		config:    DefaultConfig(),
		functions: maps.Clone(defaultFunctions),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	switch profile {
	case MixedFloatTemporal:
		l.numbers = FloatStrategy{}
		l.temporal = mixedStrategy{}
	case UniformTemporal:
		l.numbers = NewDecimalStrategy(l.config.Precision)
		l.temporal = uniformStrategy{}
	default:
		l.profile = Default
		l.numbers = NewDecimalStrategy(l.config.Precision)
		l.temporal = calendarStrategy{}
	}
	return l
}

// NewWithConfig returns the library of the given profile using config, or
// an error if config does not pass Validate.
func NewWithConfig(profile Profile, config Config, opts ...Option) (*Library, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	set := func(l *Library) { l.config = config }
	return New(profile, append([]Option{set}, opts...)...), nil
}

func (l *Library) Profile() Profile {
	return l.profile
}

func (l *Library) Config() Config {
	return l.config
}

// Numbers returns the numeric strategy of the profile.
func (l *Library) Numbers() NumericStrategy {
	return l.numbers
}

// Temporal returns the temporal strategy of the profile.
func (l *Library) Temporal() TemporalStrategy {
	return l.temporal
}

// Number parses a numeric literal, returning Unknown if it is invalid.
func (l *Library) Number(text string) Value {
	n, err := l.numbers.Parse(text)
	if err != nil {
		return Unknown
	}
	return n
}

// Int returns i as a number of the profile.
func (l *Library) Int(i int64) Number {
	return l.numbers.FromInt(i)
}

// Format renders v canonically. Unknown renders as "null".
func (l *Library) Format(v Value) string {
	if IsUnknown(v) {
		return "null"
	}
	if n, ok := v.(Number); ok {
		return l.numbers.Format(n)
	}
	return v.String()
}
