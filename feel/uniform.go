package feel

import (
	"fmt"
	"time"
)

// timeEpochYear is the date component of every time in the UniformTemporal
// profile.
const timeEpochYear = -999_999_999

// Zoned is the single backing type of the UniformTemporal profile. Dates
// are pinned to midnight UTC and times to January 1st of timeEpochYear.
type Zoned struct {
	kind Kind
	Time time.Time
	Zone Zone
}

func (z Zoned) Kind() Kind { return z.kind }
func (z Zoned) Equal(other Value) (eq bool, ok bool) {
	return temporalEqual(z, other)
}
func (z Zoned) String() string {
	return formatTemporal(z.kind, z.fields())
}

func (z Zoned) fields() Fields {
	f := fieldsOfTime(z.Time, z.Zone)
	switch z.kind {
	case KindDate:
		return f.datePart()
	case KindTime:
		return f.clockPart()
	default:
		return f
	}
}

type uniformStrategy struct{}

func (uniformStrategy) MakeDate(f Fields) (Value, error) {
	t := time.Date(int(f.Year), time.Month(f.Month), f.Day, 0, 0, 0, 0, time.UTC)
	return Zoned{kind: KindDate, Time: t}, nil
}

func (uniformStrategy) MakeTime(f Fields) (Value, error) {
	t := time.Date(timeEpochYear, time.January, 1, f.Hour, f.Minute, f.Second, f.Nanosecond, f.Zone.location())
	return Zoned{kind: KindTime, Time: t, Zone: f.Zone}, nil
}

func (uniformStrategy) MakeDateTime(f Fields) (Value, error) {
	t := time.Date(int(f.Year), time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, f.Nanosecond, f.Zone.location())
	return Zoned{kind: KindDateTime, Time: t, Zone: f.Zone}, nil
}

func (uniformStrategy) Decompose(v Value) (Fields, Kind, error) {
	z, ok := v.(Zoned)
	if !ok || z.kind == KindUnknown {
		return Fields{}, 0, fmt.Errorf("%w: %T", errForeignTemporal, v)
	}
	return z.fields(), z.kind, nil
}
