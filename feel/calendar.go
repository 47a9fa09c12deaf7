package feel

import (
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v3"
)

// FieldUndefined marks a Calendar field that does not apply to its kind,
// such as the year of a time.
const FieldUndefined = math.MinInt32

// Calendar is the backing type of dates, times and date and times in the
// Default profile. It has the shape of an XML Schema calendar extended by a
// zone id, so that offsets and named zones stay distinguishable.
type Calendar struct {
	Schema Kind
	Year   int64
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	// Fraction is the fractional second in [0, 1), nil when zero.
	Fraction *apd.Decimal
	Zone     Zone
}

func (c Calendar) Kind() Kind { return c.Schema }
func (c Calendar) Equal(other Value) (eq bool, ok bool) {
	return temporalEqual(c, other)
}
func (c Calendar) String() string {
	return formatTemporal(c.Schema, c.fields())
}

func (c Calendar) fields() Fields {
	f := Fields{Zone: c.Zone}
	if c.Schema != KindTime {
		f.Year, f.Month, f.Day = c.Year, c.Month, c.Day
	}
	if c.Schema != KindDate {
		f.Hour, f.Minute, f.Second = c.Hour, c.Minute, c.Second
		f.Nanosecond = nanosOf(c.Fraction)
	}
	return f
}

func nanosOf(frac *apd.Decimal) int {
	if frac == nil {
		return 0
	}
	ctx := apd.BaseContext.WithPrecision(19)
	ctx.Rounding = apd.RoundDown
	var n apd.Decimal
	if _, err := ctx.Mul(&n, frac, apd.New(1, 9)); err != nil {
		return 0
	}
	if _, err := ctx.RoundToIntegralValue(&n, &n); err != nil {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(i)
}

func fractionOf(nanos int) *apd.Decimal {
	if nanos == 0 {
		return nil
	}
	var d apd.Decimal
	d.Reduce(apd.New(int64(nanos), -9))
	return &d
}

type calendarStrategy struct{}

func (calendarStrategy) MakeDate(f Fields) (Value, error) {
	return Calendar{
		Schema: KindDate,
		Year:   f.Year, Month: f.Month, Day: f.Day,
		Hour: FieldUndefined, Minute: FieldUndefined, Second: FieldUndefined,
	}, nil
}

func (calendarStrategy) MakeTime(f Fields) (Value, error) {
	return Calendar{
		Schema: KindTime,
		Year:   FieldUndefined, Month: FieldUndefined, Day: FieldUndefined,
		Hour: f.Hour, Minute: f.Minute, Second: f.Second,
		Fraction: fractionOf(f.Nanosecond),
		Zone:     f.Zone,
	}, nil
}

func (calendarStrategy) MakeDateTime(f Fields) (Value, error) {
	return Calendar{
		Schema: KindDateTime,
		Year:   f.Year, Month: f.Month, Day: f.Day,
		Hour: f.Hour, Minute: f.Minute, Second: f.Second,
		Fraction: fractionOf(f.Nanosecond),
		Zone:     f.Zone,
	}, nil
}

func (calendarStrategy) Decompose(v Value) (Fields, Kind, error) {
	c, ok := v.(Calendar)
	if !ok {
		return Fields{}, 0, fmt.Errorf("%w: %T", errForeignTemporal, v)
	}
	return c.fields(), c.Schema, nil
}
