package feel

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cnxtech/jdmn/feel/internal/overflow"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	nanosPerSecond   = 1_000_000_000
)

var errDurationOverflow = errors.New("duration overflow")

// YearsMonthsDuration is a duration counted in whole months.
type YearsMonthsDuration struct {
	Months int64
}

func (d YearsMonthsDuration) Kind() Kind { return KindYearsMonthsDuration }
func (d YearsMonthsDuration) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(YearsMonthsDuration)
	if !ok {
		return false, false
	}
	return d == o, true
}

func (d YearsMonthsDuration) String() string {
	sign, months := splitSign(d.Months)
	years, months := months/12, months%12
	switch {
	case years == 0:
		return fmt.Sprintf("%sP%dM", sign, months)
	case months == 0:
		return fmt.Sprintf("%sP%dY", sign, years)
	default:
		return fmt.Sprintf("%sP%dY%dM", sign, years, months)
	}
}

// DaysTimeDuration is a duration counted in seconds and nanoseconds. Both
// fields carry the same sign.
type DaysTimeDuration struct {
	Seconds int64
	Nanos   int32
}

// NewDaysTimeDuration normalizes seconds and nanos so that both carry the
// same sign and |nanos| < 1e9.
func NewDaysTimeDuration(seconds int64, nanos int64) (DaysTimeDuration, error) {
	carry := nanos / nanosPerSecond
	nanos %= nanosPerSecond
	seconds, ok := overflow.Add64(seconds, carry)
	if !ok {
		return DaysTimeDuration{}, errDurationOverflow
	}
	switch {
	case seconds > 0 && nanos < 0:
		seconds--
		nanos += nanosPerSecond
	case seconds < 0 && nanos > 0:
		seconds++
		nanos -= nanosPerSecond
	}
	return DaysTimeDuration{Seconds: seconds, Nanos: int32(nanos)}, nil
}

func (d DaysTimeDuration) Kind() Kind { return KindDaysTimeDuration }
func (d DaysTimeDuration) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(DaysTimeDuration)
	if !ok {
		return false, false
	}
	return d == o, true
}

func (d DaysTimeDuration) cmp(o DaysTimeDuration) int {
	switch {
	case d.Seconds < o.Seconds:
		return -1
	case d.Seconds > o.Seconds:
		return 1
	case d.Nanos < o.Nanos:
		return -1
	case d.Nanos > o.Nanos:
		return 1
	default:
		return 0
	}
}

func (d DaysTimeDuration) String() string {
	sign, secs := splitSign(d.Seconds)
	nanos := int64(d.Nanos)
	if nanos < 0 {
		sign, nanos = "-", -nanos
	}
	days := secs / secondsPerDay
	secs %= secondsPerDay
	hours := secs / secondsPerHour
	secs %= secondsPerHour
	minutes := secs / secondsPerMinute
	secs %= secondsPerMinute

	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte('P')
	if days != 0 {
		b.WriteString(strconv.FormatUint(days, 10) + "D")
	}
	if hours != 0 || minutes != 0 || secs != 0 || nanos != 0 {
		b.WriteByte('T')
		if hours != 0 {
			b.WriteString(strconv.FormatUint(hours, 10) + "H")
		}
		if minutes != 0 {
			b.WriteString(strconv.FormatUint(minutes, 10) + "M")
		}
		if secs != 0 || nanos != 0 {
			b.WriteString(strconv.FormatUint(secs, 10))
			b.WriteString(fraction(int(nanos)))
			b.WriteByte('S')
		}
	}
	if days == 0 && b.Len() == len(sign)+1 {
		return "PT0S"
	}
	return b.String()
}

// splitSign returns the sign prefix and the magnitude of i.
func splitSign(i int64) (string, uint64) {
	if i < 0 {
		return "-", uint64(-(i + 1)) + 1
	}
	return "", uint64(i)
}

// fraction renders nanos as a fractional second without trailing zeros,
// or the empty string for zero.
func fraction(nanos int) string {
	if nanos == 0 {
		return ""
	}
	return "." + strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
}

var durationLiteral = regexp.MustCompile(`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d+))?S)?)?$`)

// parseDuration parses an ISO 8601 duration. Year and month components make
// a YearsMonthsDuration, day and time components a DaysTimeDuration; a
// literal mixing both is rejected.
func parseDuration(text string) (Value, error) {
	m := durationLiteral.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("invalid duration %q", text)
	}
	negative := m[1] == "-"
	yearMonth := m[2] != "" || m[3] != ""
	dayTime := m[4] != "" || m[5] != "" || m[6] != "" || m[7] != ""
	if strings.Contains(text, "T") && m[5] == "" && m[6] == "" && m[7] == "" {
		return nil, fmt.Errorf("invalid duration %q: empty time part", text)
	}
	switch {
	case yearMonth && dayTime:
		return nil, fmt.Errorf("invalid duration %q: mixes years and months with days and time", text)
	case !yearMonth && !dayTime:
		return nil, fmt.Errorf("invalid duration %q: no components", text)
	}

	var components [6]int64
	for i := range components {
		if m[i+2] == "" {
			continue
		}
		v, err := strconv.ParseInt(m[i+2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", text, err)
		}
		components[i] = v
	}

	if yearMonth {
		months, ok := overflow.Mul64(components[0], 12)
		if ok {
			months, ok = overflow.Add64(months, components[1])
		}
		if !ok {
			return nil, errDurationOverflow
		}
		if negative {
			months = -months
		}
		return YearsMonthsDuration{Months: months}, nil
	}

	seconds := int64(0)
	for i, unit := range []int64{secondsPerDay, secondsPerHour, secondsPerMinute, 1} {
		part, ok := overflow.Mul64(components[i+2], unit)
		if ok {
			seconds, ok = overflow.Add64(seconds, part)
		}
		if !ok {
			return nil, errDurationOverflow
		}
	}
	var nanos int64
	if f := m[8]; f != "" {
		if len(f) > 9 {
			f = f[:9]
		}
		nanos, _ = strconv.ParseInt(f+strings.Repeat("0", 9-len(f)), 10, 64)
	}
	if negative {
		seconds, nanos = -seconds, -nanos
	}
	return NewDaysTimeDuration(seconds, nanos)
}

// Accessors on the wrong duration kind return an error so that they yield
// Unknown.

func years(d Value) (int64, error) {
	ym, ok := d.(YearsMonthsDuration)
	if !ok {
		return 0, fmt.Errorf("years: expected years and months duration, got %s", d.Kind())
	}
	return ym.Months / 12, nil
}

func months(d Value) (int64, error) {
	ym, ok := d.(YearsMonthsDuration)
	if !ok {
		return 0, fmt.Errorf("months: expected years and months duration, got %s", d.Kind())
	}
	return ym.Months % 12, nil
}

func daysTimeField(name string, d Value, unit, modulus int64) (int64, error) {
	dt, ok := d.(DaysTimeDuration)
	if !ok {
		return 0, fmt.Errorf("%s: expected days and time duration, got %s", name, d.Kind())
	}
	v := dt.Seconds / unit
	if modulus != 0 {
		v %= modulus
	}
	return v, nil
}

func days(d Value) (int64, error) {
	return daysTimeField("days", d, secondsPerDay, 0)
}

func hours(d Value) (int64, error) {
	return daysTimeField("hours", d, secondsPerHour, 24)
}

func minutes(d Value) (int64, error) {
	return daysTimeField("minutes", d, secondsPerMinute, 60)
}

func seconds(d Value) (int64, error) {
	return daysTimeField("seconds", d, 1, 60)
}

// monthsBetween counts the whole months between the dates of two calendar
// positions. The time of day is ignored and partial months are truncated
// towards zero.
func monthsBetween(from, to Fields) (int64, error) {
	fromMonths, ok := overflow.Mul64(from.Year, 12)
	if !ok {
		return 0, errDurationOverflow
	}
	toMonths, ok := overflow.Mul64(to.Year, 12)
	if !ok {
		return 0, errDurationOverflow
	}
	total := (toMonths + int64(to.Month)) - (fromMonths + int64(from.Month))
	switch {
	case total > 0 && to.Day < from.Day:
		total--
	case total < 0 && to.Day > from.Day:
		total++
	}
	return total, nil
}

func addDaysTime(a, b DaysTimeDuration) (DaysTimeDuration, error) {
	s, ok := overflow.Add64(a.Seconds, b.Seconds)
	if !ok {
		return DaysTimeDuration{}, errDurationOverflow
	}
	return NewDaysTimeDuration(s, int64(a.Nanos)+int64(b.Nanos))
}

func negateDaysTime(d DaysTimeDuration) (DaysTimeDuration, error) {
	s, ok := overflow.Neg64(d.Seconds)
	if !ok {
		return DaysTimeDuration{}, errDurationOverflow
	}
	return DaysTimeDuration{Seconds: s, Nanos: -d.Nanos}, nil
}
