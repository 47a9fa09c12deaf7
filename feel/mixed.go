package feel

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// LocalDate is a date without time of day or zone.
type LocalDate civil.Date

func (d LocalDate) Kind() Kind { return KindDate }
func (d LocalDate) Equal(other Value) (eq bool, ok bool) {
	return temporalEqual(d, other)
}
func (d LocalDate) String() string {
	return formatDate(d.fields())
}
func (d LocalDate) fields() Fields {
	return Fields{Year: int64(d.Year), Month: int(d.Month), Day: d.Day}
}

// OffsetTime is a time of day with an optional zone.
type OffsetTime struct {
	Local civil.Time
	Zone  Zone
}

func (t OffsetTime) Kind() Kind { return KindTime }
func (t OffsetTime) Equal(other Value) (eq bool, ok bool) {
	return temporalEqual(t, other)
}
func (t OffsetTime) String() string {
	return formatClock(t.fields())
}
func (t OffsetTime) fields() Fields {
	return Fields{
		Hour: t.Local.Hour, Minute: t.Local.Minute, Second: t.Local.Second, Nanosecond: t.Local.Nanosecond,
		Zone: t.Zone,
	}
}

// ZonedDateTime is a date and time. Time is expressed in the location of
// Zone, or in UTC if the value has no zone.
type ZonedDateTime struct {
	Time time.Time
	Zone Zone
}

func (t ZonedDateTime) Kind() Kind { return KindDateTime }
func (t ZonedDateTime) Equal(other Value) (eq bool, ok bool) {
	return temporalEqual(t, other)
}
func (t ZonedDateTime) String() string {
	return formatTemporal(KindDateTime, t.fields())
}
func (t ZonedDateTime) fields() Fields {
	return fieldsOfTime(t.Time, t.Zone)
}

type mixedStrategy struct{}

func (mixedStrategy) MakeDate(f Fields) (Value, error) {
	d := civil.Date{Year: int(f.Year), Month: time.Month(f.Month), Day: f.Day}
	if !d.IsValid() {
		return nil, fmt.Errorf("invalid date %s", formatDate(f))
	}
	return LocalDate(d), nil
}

func (mixedStrategy) MakeTime(f Fields) (Value, error) {
	t := civil.Time{Hour: f.Hour, Minute: f.Minute, Second: f.Second, Nanosecond: f.Nanosecond}
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid time %s", formatClock(f))
	}
	return OffsetTime{Local: t, Zone: f.Zone}, nil
}

func (mixedStrategy) MakeDateTime(f Fields) (Value, error) {
	t := time.Date(int(f.Year), time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, f.Nanosecond, f.Zone.location())
	return ZonedDateTime{Time: t, Zone: f.Zone}, nil
}

func (mixedStrategy) Decompose(v Value) (Fields, Kind, error) {
	switch t := v.(type) {
	case LocalDate:
		return t.fields(), KindDate, nil
	case OffsetTime:
		return t.fields(), KindTime, nil
	case ZonedDateTime:
		return t.fields(), KindDateTime, nil
	default:
		return Fields{}, 0, fmt.Errorf("%w: %T", errForeignTemporal, v)
	}
}
