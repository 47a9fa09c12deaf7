package feel

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cnxtech/jdmn/feel/internal/overflow"
)

type zoneKind uint8

const (
	zoneNone zoneKind = iota
	zoneOffset
	zoneNamed
)

const maxOffsetSeconds = 18 * secondsPerHour

// Zone is the time zone of a Time or DateTime: none, a fixed UTC offset or
// a named zone id. An offset zone and a named zone are distinct even if
// they denote the same offset.
type Zone struct {
	kind   zoneKind
	offset int32
	id     string
}

// OffsetZone returns a fixed offset zone. The offset is given in seconds
// east of UTC and is limited to ±18 hours.
func OffsetZone(seconds int) (Zone, error) {
	if seconds < -maxOffsetSeconds || seconds > maxOffsetSeconds {
		return Zone{}, fmt.Errorf("zone offset %ds out of range", seconds)
	}
	return Zone{kind: zoneOffset, offset: int32(seconds)}, nil
}

// NamedZone returns the zone with the given IANA id.
func NamedZone(id string) (Zone, error) {
	if id == "" || id == "Local" {
		return Zone{}, fmt.Errorf("invalid zone id %q", id)
	}
	if _, err := time.LoadLocation(id); err != nil {
		return Zone{}, err
	}
	return Zone{kind: zoneNamed, id: id}, nil
}

// IsNone reports whether the zone is absent.
func (z Zone) IsNone() bool {
	return z.kind == zoneNone
}

// Offset returns the fixed offset in seconds, if z is an offset zone.
func (z Zone) Offset() (int, bool) {
	return int(z.offset), z.kind == zoneOffset
}

// ID returns the zone id, if z is a named zone.
func (z Zone) ID() (string, bool) {
	return z.id, z.kind == zoneNamed
}

func (z Zone) String() string {
	switch z.kind {
	case zoneOffset:
		if z.offset == 0 {
			return "Z"
		}
		sign, secs := splitSign(int64(z.offset))
		if sign == "" {
			sign = "+"
		}
		s := fmt.Sprintf("%s%02d:%02d", sign, secs/secondsPerHour, secs%secondsPerHour/secondsPerMinute)
		if secs%secondsPerMinute != 0 {
			s += fmt.Sprintf(":%02d", secs%secondsPerMinute)
		}
		return s
	case zoneNamed:
		return "@" + z.id
	default:
		return ""
	}
}

func (z Zone) location() *time.Location {
	switch z.kind {
	case zoneOffset:
		return time.FixedZone(z.String(), int(z.offset))
	case zoneNamed:
		loc, err := time.LoadLocation(z.id)
		if err == nil {
			return loc
		}
	}
	return time.UTC
}

// Fields is the profile independent decomposition of a temporal value.
// Dates leave the clock fields zero and carry no zone; times leave the date
// fields zero.
type Fields struct {
	Year       int64
	Month      int
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	Zone       Zone
}

func (f Fields) datePart() Fields {
	return Fields{Year: f.Year, Month: f.Month, Day: f.Day}
}

func (f Fields) clockPart() Fields {
	return Fields{Hour: f.Hour, Minute: f.Minute, Second: f.Second, Nanosecond: f.Nanosecond, Zone: f.Zone}
}

// TemporalStrategy builds and decomposes the date, time and date and time
// values of one profile. Fields passed to the Make methods are validated.
type TemporalStrategy interface {
	MakeDate(f Fields) (Value, error)
	MakeTime(f Fields) (Value, error)
	MakeDateTime(f Fields) (Value, error)
	// Decompose returns the fields and kind of a temporal value built by
	// this strategy. Values of other profiles are rejected.
	Decompose(v Value) (Fields, Kind, error)
}

var errForeignTemporal = errors.New("temporal value of another profile")

// temporal is implemented by the backing types of all profiles.
type temporal interface {
	Value
	fields() Fields
}

func temporalEqual(a temporal, other Value) (eq bool, ok bool) {
	b, ok := other.(temporal)
	if !ok || a.Kind() != b.Kind() {
		return false, false
	}
	return equalFields(a.Kind(), a.fields(), b.fields()), true
}

func isLeapYear(y int64) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysIn(y int64, m int) int {
	switch m {
	case 2:
		if isLeapYear(y) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

// daysFromCivil returns the number of days since 1970-01-01 of the given
// proleptic Gregorian date.
func daysFromCivil(y int64, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (int64(m) + 9) % 12
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(z int64) (int64, int, int) {
	z += 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if m > 12 {
		m -= 12
	}
	y := yoe + era*400
	if m <= 2 {
		y++
	}
	return y, int(m), int(d)
}

// weekday returns the ISO day of week, 1 for Monday to 7 for Sunday.
func weekday(f Fields) int64 {
	return floorMod(daysFromCivil(f.Year, f.Month, f.Day)+3, 7) + 1
}

// localSeconds returns the seconds since 1970-01-01T00:00:00 of the wall
// clock reading of f, ignoring its zone. Times are placed on 1970-01-01.
func localSeconds(f Fields, kind Kind) int64 {
	var days int64
	if kind != KindTime {
		days = daysFromCivil(f.Year, f.Month, f.Day)
	}
	return days*secondsPerDay + int64(f.Hour)*secondsPerHour + int64(f.Minute)*secondsPerMinute + int64(f.Second)
}

// offsetAt returns the UTC offset in effect for f.
func offsetAt(f Fields, kind Kind) int64 {
	switch f.Zone.kind {
	case zoneOffset:
		return int64(f.Zone.offset)
	case zoneNamed:
		y, m, d := f.Year, f.Month, f.Day
		if kind == KindTime {
			y, m, d = 1970, 1, 1
		}
		t := time.Date(int(y), time.Month(m), d, f.Hour, f.Minute, f.Second, f.Nanosecond, f.Zone.location())
		_, off := t.Zone()
		return int64(off)
	default:
		return 0
	}
}

// epochSeconds returns the instant of f as seconds since the Unix epoch, or
// its local reading if f has no zone.
func epochSeconds(f Fields, kind Kind) int64 {
	return localSeconds(f, kind) - offsetAt(f, kind)
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareFields orders two temporal values of the same kind. ok is false if
// exactly one of them carries a zone.
func compareFields(kind Kind, a, b Fields) (int, bool) {
	if kind == KindDate {
		if c := compareInts(a.Year, b.Year); c != 0 {
			return c, true
		}
		if c := compareInts(int64(a.Month), int64(b.Month)); c != 0 {
			return c, true
		}
		return compareInts(int64(a.Day), int64(b.Day)), true
	}
	if a.Zone.IsNone() != b.Zone.IsNone() {
		return 0, false
	}
	if c := compareInts(epochSeconds(a, kind), epochSeconds(b, kind)); c != 0 {
		return c, true
	}
	return compareInts(int64(a.Nanosecond), int64(b.Nanosecond)), true
}

// equalFields compares two temporal values of the same kind. Values with
// different zone kinds are never equal.
func equalFields(kind Kind, a, b Fields) bool {
	if kind != KindDate && a.Zone.kind != b.Zone.kind {
		return false
	}
	c, ok := compareFields(kind, a, b)
	return ok && c == 0
}

func formatDate(f Fields) string {
	sign, y := splitSign(f.Year)
	return fmt.Sprintf("%s%04d-%02d-%02d", sign, y, f.Month, f.Day)
}

func formatClock(f Fields) string {
	return fmt.Sprintf("%02d:%02d:%02d", f.Hour, f.Minute, f.Second) + fraction(f.Nanosecond) + f.Zone.String()
}

func formatTemporal(kind Kind, f Fields) string {
	switch kind {
	case KindDate:
		return formatDate(f)
	case KindTime:
		return formatClock(f)
	default:
		return formatDate(f) + "T" + formatClock(f)
	}
}

var (
	dateLiteral = regexp.MustCompile(`^(-?)(\d{4,})-(\d{2})-(\d{2})$`)
	timeLiteral = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(?:\.(\d+))?(Z|[+-]\d{2}:\d{2}(?::\d{2})?)?(?:@([^@\s]+))?$`)
)

func parseDateText(text string) (Fields, error) {
	m := dateLiteral.FindStringSubmatch(text)
	if m == nil {
		return Fields{}, fmt.Errorf("invalid date %q", text)
	}
	digits := m[2]
	if len(digits) > 4 && digits[0] == '0' {
		return Fields{}, fmt.Errorf("invalid date %q: year with leading zero", text)
	}
	year, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Fields{}, fmt.Errorf("invalid date %q: %w", text, err)
	}
	if m[1] == "-" {
		year = -year
	}
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])
	return Fields{Year: year, Month: month, Day: day}, nil
}

func parseOffset(text string) (Zone, error) {
	if text == "Z" {
		return OffsetZone(0)
	}
	sign := 1
	if text[0] == '-' {
		sign = -1
	}
	parts := strings.Split(text[1:], ":")
	unit := secondsPerHour
	secs := 0
	for i, p := range parts {
		v, _ := strconv.Atoi(p)
		if i > 0 && v >= 60 {
			return Zone{}, fmt.Errorf("invalid zone offset %q", text)
		}
		secs += v * unit
		unit /= 60
	}
	return OffsetZone(sign * secs)
}

func parseClockText(text string) (Fields, error) {
	m := timeLiteral.FindStringSubmatch(text)
	if m == nil {
		return Fields{}, fmt.Errorf("invalid time %q", text)
	}
	var f Fields
	f.Hour, _ = strconv.Atoi(m[1])
	f.Minute, _ = strconv.Atoi(m[2])
	f.Second, _ = strconv.Atoi(m[3])
	if frac := m[4]; frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		f.Nanosecond, _ = strconv.Atoi(frac + strings.Repeat("0", 9-len(frac)))
	}
	var err error
	switch {
	case m[5] != "" && m[6] != "":
		return Fields{}, fmt.Errorf("invalid time %q: both zone offset and zone id", text)
	case m[5] != "":
		f.Zone, err = parseOffset(m[5])
	case m[6] != "":
		f.Zone, err = NamedZone(m[6])
	}
	if err != nil {
		return Fields{}, fmt.Errorf("invalid time %q: %w", text, err)
	}
	return f, nil
}

func (l *Library) checkDate(f Fields) error {
	if f.Year < l.config.MinYear || f.Year > l.config.MaxYear {
		return fmt.Errorf("year %d out of range [%d, %d]", f.Year, l.config.MinYear, l.config.MaxYear)
	}
	if f.Month < 1 || f.Month > 12 {
		return fmt.Errorf("month %d out of range", f.Month)
	}
	if f.Day < 1 || f.Day > daysIn(f.Year, f.Month) {
		return fmt.Errorf("day %d out of range for %d-%02d", f.Day, f.Year, f.Month)
	}
	return nil
}

func checkClock(f Fields) error {
	if f.Hour < 0 || f.Hour > 23 || f.Minute < 0 || f.Minute > 59 || f.Second < 0 || f.Second > 59 {
		return fmt.Errorf("invalid time %02d:%02d:%02d", f.Hour, f.Minute, f.Second)
	}
	if f.Nanosecond < 0 || f.Nanosecond >= nanosPerSecond {
		return fmt.Errorf("invalid fractional second %d", f.Nanosecond)
	}
	return nil
}

func (l *Library) makeDate(f Fields) (Value, error) {
	f = f.datePart()
	if err := l.checkDate(f); err != nil {
		return nil, err
	}
	return l.temporal.MakeDate(f)
}

func (l *Library) makeTime(f Fields) (Value, error) {
	f = f.clockPart()
	if err := checkClock(f); err != nil {
		return nil, err
	}
	return l.temporal.MakeTime(f)
}

// makeDateTime validates f and resolves the wall clock of named zones,
// moving readings inside a transition gap forward.
func (l *Library) makeDateTime(f Fields) (Value, error) {
	if err := l.checkDate(f); err != nil {
		return nil, err
	}
	if err := checkClock(f); err != nil {
		return nil, err
	}
	if f.Zone.kind == zoneNamed {
		t := time.Date(int(f.Year), time.Month(f.Month), f.Day, f.Hour, f.Minute, f.Second, f.Nanosecond, f.Zone.location())
		f = fieldsOfTime(t, f.Zone)
		if err := l.checkDate(f); err != nil {
			return nil, err
		}
	}
	return l.temporal.MakeDateTime(f)
}

func fieldsOfTime(t time.Time, zone Zone) Fields {
	y, m, d := t.Date()
	return Fields{
		Year: int64(y), Month: int(m), Day: d,
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond(),
		Zone: zone,
	}
}

// decompose returns the fields of a temporal value of this library's
// profile.
func (l *Library) decompose(v Value) (Fields, Kind, error) {
	return l.temporal.Decompose(v)
}

func (l *Library) decomposeKind(v Value, kinds ...Kind) (Fields, Kind, error) {
	f, kind, err := l.decompose(v)
	if err != nil {
		return Fields{}, 0, err
	}
	for _, k := range kinds {
		if k == kind {
			return f, kind, nil
		}
	}
	return Fields{}, 0, fmt.Errorf("unexpected %s %v", kind, v)
}

func (l *Library) dateFromText(text string) (Value, error) {
	f, err := parseDateText(text)
	if err != nil {
		return nil, err
	}
	return l.makeDate(f)
}

func (l *Library) timeFromText(text string) (Value, error) {
	f, err := parseClockText(text)
	if err != nil {
		return nil, err
	}
	return l.makeTime(f)
}

func (l *Library) dateTimeFromText(text string) (Value, error) {
	datePart, clockPart, hasClock := strings.Cut(text, "T")
	d, err := parseDateText(datePart)
	if err != nil {
		return nil, err
	}
	if !hasClock {
		return l.makeDateTime(d)
	}
	c, err := parseClockText(clockPart)
	if err != nil {
		return nil, err
	}
	c.Year, c.Month, c.Day = d.Year, d.Month, d.Day
	return l.makeDateTime(c)
}

// dateOf converts a date or date and time into a date.
func (l *Library) dateOf(v Value) (Value, error) {
	f, _, err := l.decomposeKind(v, KindDate, KindDateTime)
	if err != nil {
		return nil, err
	}
	return l.makeDate(f)
}

// timeOf converts a temporal value into a time. Dates become midnight UTC.
func (l *Library) timeOf(v Value) (Value, error) {
	f, kind, err := l.decompose(v)
	if err != nil {
		return nil, err
	}
	if kind == KindDate {
		utc, _ := OffsetZone(0)
		return l.makeTime(Fields{Zone: utc})
	}
	return l.makeTime(f)
}

func (l *Library) timeFromParts(hour, minute, second Number, offset Value) (Value, error) {
	h, err := l.wholeNumber(hour)
	if err != nil {
		return nil, err
	}
	m, err := l.wholeNumber(minute)
	if err != nil {
		return nil, err
	}
	s, nanos, err := l.numbers.Split(second)
	if err != nil {
		return nil, err
	}
	if nanos < 0 || s < 0 || s > 59 {
		return nil, fmt.Errorf("invalid second %s", l.numbers.Format(second))
	}
	f := Fields{Hour: int(h), Minute: int(m), Second: int(s), Nanosecond: int(nanos)}
	if !IsUnknown(offset) {
		d, ok := offset.(DaysTimeDuration)
		if !ok {
			return nil, fmt.Errorf("time offset: expected days and time duration, got %s", offset.Kind())
		}
		if d.Nanos != 0 || d.Seconds < -maxOffsetSeconds || d.Seconds > maxOffsetSeconds {
			return nil, fmt.Errorf("time offset %s out of range", d)
		}
		f.Zone, _ = OffsetZone(int(d.Seconds))
	}
	return l.makeTime(f)
}

func (l *Library) dateFromParts(year, month, day Number) (Value, error) {
	y, err := l.wholeNumber(year)
	if err != nil {
		return nil, err
	}
	m, err := l.wholeNumber(month)
	if err != nil {
		return nil, err
	}
	d, err := l.wholeNumber(day)
	if err != nil {
		return nil, err
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return nil, fmt.Errorf("invalid date %d-%d-%d", y, m, d)
	}
	return l.makeDate(Fields{Year: y, Month: int(m), Day: int(d)})
}

func (l *Library) dateTimeFromParts(date, clock Value) (Value, error) {
	d, _, err := l.decomposeKind(date, KindDate, KindDateTime)
	if err != nil {
		return nil, err
	}
	c, _, err := l.decomposeKind(clock, KindTime)
	if err != nil {
		return nil, err
	}
	c.Year, c.Month, c.Day = d.Year, d.Month, d.Day
	return l.makeDateTime(c)
}

// wholeNumber converts an integral number to an int64.
func (l *Library) wholeNumber(n Number) (int64, error) {
	integral, err := l.numbers.IsInteger(n)
	if err != nil {
		return 0, err
	}
	if !integral {
		return 0, fmt.Errorf("expected an integer, got %s", l.numbers.Format(n))
	}
	return l.numbers.Int(n)
}

// field applies get to the fields of a temporal value of one of kinds.
func (l *Library) field(v Value, get func(Fields) int64, kinds ...Kind) (Value, error) {
	f, _, err := l.decomposeKind(v, kinds...)
	if err != nil {
		return nil, err
	}
	return l.numbers.FromInt(get(f)), nil
}

func (l *Library) timeOffset(v Value) (Value, error) {
	f, _, err := l.decomposeKind(v, KindTime, KindDateTime)
	if err != nil {
		return nil, err
	}
	secs, ok := f.Zone.Offset()
	if !ok {
		return Unknown, nil
	}
	return DaysTimeDuration{Seconds: int64(secs)}, nil
}

func (l *Library) timezone(v Value) (Value, error) {
	f, _, err := l.decomposeKind(v, KindTime, KindDateTime)
	if err != nil {
		return nil, err
	}
	id, ok := f.Zone.ID()
	if !ok {
		return Unknown, nil
	}
	return String(id), nil
}

func (l *Library) yearsAndMonthsDuration(from, to Value) (Value, error) {
	a, _, err := l.decomposeKind(from, KindDate, KindDateTime)
	if err != nil {
		return nil, err
	}
	b, _, err := l.decomposeKind(to, KindDate, KindDateTime)
	if err != nil {
		return nil, err
	}
	m, err := monthsBetween(a, b)
	if err != nil {
		return nil, err
	}
	return YearsMonthsDuration{Months: m}, nil
}

// addMonths moves the calendar position of f by months, clamping the day to
// the length of the target month.
func addMonths(f Fields, months int64) (Fields, error) {
	base, ok := overflow.Mul64(f.Year, 12)
	if ok {
		base, ok = overflow.Add64(base, int64(f.Month-1))
	}
	if ok {
		base, ok = overflow.Add64(base, months)
	}
	if !ok {
		return Fields{}, errDurationOverflow
	}
	f.Year = floorDiv(base, 12)
	f.Month = int(floorMod(base, 12)) + 1
	f.Day = min(f.Day, daysIn(f.Year, f.Month))
	return f, nil
}

// addSeconds moves the wall clock of f by d. Named zones move along the time
// line; other values move their local reading. Times wrap around midnight.
func addSeconds(f Fields, kind Kind, d DaysTimeDuration) (Fields, error) {
	nanos := int64(f.Nanosecond) + int64(d.Nanos)
	secs, ok := overflow.Add64(localSeconds(f, kind), d.Seconds)
	if !ok {
		return Fields{}, errDurationOverflow
	}
	secs += floorDiv(nanos, nanosPerSecond)
	nanos = floorMod(nanos, nanosPerSecond)

	if kind == KindTime {
		secs = floorMod(secs, secondsPerDay)
		return Fields{
			Hour: int(secs / secondsPerHour), Minute: int(secs % secondsPerHour / secondsPerMinute), Second: int(secs % secondsPerMinute),
			Nanosecond: int(nanos), Zone: f.Zone,
		}, nil
	}
	if f.Zone.kind == zoneNamed {
		instant := secs - offsetAt(f, kind)
		return fieldsOfTime(time.Unix(instant, nanos).In(f.Zone.location()), f.Zone), nil
	}
	y, m, day := civilFromDays(floorDiv(secs, secondsPerDay))
	rem := floorMod(secs, secondsPerDay)
	return Fields{
		Year: y, Month: m, Day: day,
		Hour: int(rem / secondsPerHour), Minute: int(rem % secondsPerHour / secondsPerMinute), Second: int(rem % secondsPerMinute),
		Nanosecond: int(nanos), Zone: f.Zone,
	}, nil
}
