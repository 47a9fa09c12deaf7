package feel_test

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cnxtech/jdmn/feel"
	"github.com/cnxtech/jdmn/testdata/assert"
)

func TestBackingTypes(t *testing.T) {
	tests := []struct {
		profile  feel.Profile
		date     any
		time     any
		dateTime any
	}{
		{feel.Default, feel.Calendar{}, feel.Calendar{}, feel.Calendar{}},
		{feel.MixedFloatTemporal, feel.LocalDate{}, feel.OffsetTime{}, feel.ZonedDateTime{}},
		{feel.UniformTemporal, feel.Zoned{}, feel.Zoned{}, feel.Zoned{}},
	}

	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			l := feel.New(tt.profile, feel.WithLogger(quietLogger()))
			check := func(v feel.Value, want any, kind feel.Kind) {
				t.Helper()
				if v.Kind() != kind {
					t.Fatalf("expected %s, got %s %v", kind, v.Kind(), v)
				}
				if gotT, wantT := typeName(v), typeName(want); gotT != wantT {
					t.Errorf("expected backing type %s, got %s", wantT, gotT)
				}
			}
			check(l.Call("date", feel.String("2016-08-01")), tt.date, feel.KindDate)
			check(l.Call("time", feel.String("10:00:00Z")), tt.time, feel.KindTime)
			check(l.Call("date and time", feel.String("2016-08-01T10:00:00Z")), tt.dateTime, feel.KindDateTime)
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case feel.Calendar:
		return "Calendar"
	case feel.LocalDate:
		return "LocalDate"
	case feel.OffsetTime:
		return "OffsetTime"
	case feel.ZonedDateTime:
		return "ZonedDateTime"
	case feel.Zoned:
		return "Zoned"
	default:
		return "other"
	}
}

func TestMixedBacking(t *testing.T) {
	l := feel.New(feel.MixedFloatTemporal, feel.WithLogger(quietLogger()))

	d := l.Call("date", feel.String("2016-08-01")).(feel.LocalDate)
	if civil.Date(d) != (civil.Date{Year: 2016, Month: time.August, Day: 1}) {
		t.Errorf("unexpected date %v", civil.Date(d))
	}

	dt := l.Call("date and time", feel.String("2016-08-01T10:00:00@Europe/Paris")).(feel.ZonedDateTime)
	if got := dt.Time.UTC().Hour(); got != 8 {
		t.Errorf("expected 08:00 UTC, got %d", got)
	}
}

func TestUniformBacking(t *testing.T) {
	l := feel.New(feel.UniformTemporal, feel.WithLogger(quietLogger()))

	tm := l.Call("time", feel.String("10:15:00+01:00")).(feel.Zoned)
	if y := tm.Time.Year(); y != -999_999_999 {
		t.Errorf("expected time on year -999999999, got %d", y)
	}
	d := l.Call("date", feel.String("2016-08-01")).(feel.Zoned)
	if d.Time.Location() != time.UTC || d.Time.Hour() != 0 {
		t.Errorf("expected date at midnight UTC, got %v", d.Time)
	}
}

func TestCalendarFields(t *testing.T) {
	l := feel.New(feel.Default, feel.WithLogger(quietLogger()))

	tm := l.Call("time", feel.String("10:15:30.125")).(feel.Calendar)
	if tm.Year != feel.FieldUndefined || tm.Day != feel.FieldUndefined {
		t.Errorf("expected undefined date fields, got %d-%d", tm.Year, tm.Day)
	}
	if tm.Fraction == nil || tm.Fraction.String() != "0.125" {
		t.Errorf("expected fraction 0.125, got %v", tm.Fraction)
	}

	d := l.Call("date", feel.String("2016-08-01")).(feel.Calendar)
	if d.Hour != feel.FieldUndefined {
		t.Errorf("expected undefined hour, got %d", d.Hour)
	}
}

func TestForeignValues(t *testing.T) {
	def := feel.New(feel.Default, feel.WithLogger(quietLogger()))
	mixed := feel.New(feel.MixedFloatTemporal, feel.WithLogger(quietLogger()))

	date := def.Call("date", feel.String("2016-08-01"))
	assert.FEELEqual(t, feel.Unknown, mixed.Call("year", date))
	assert.FEELEqual(t, feel.Unknown, mixed.Call("add", def.Number("1"), mixed.Number("1")))
}

func TestZone(t *testing.T) {
	utc, err := feel.OffsetZone(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := utc.String(); got != "Z" {
		t.Errorf("expected Z, got %s", got)
	}

	odd, err := feel.OffsetZone(-(5*3600 + 30*60 + 15))
	if err != nil {
		t.Fatal(err)
	}
	if got := odd.String(); got != "-05:30:15" {
		t.Errorf("expected -05:30:15, got %s", got)
	}

	if _, err := feel.OffsetZone(19 * 3600); err == nil {
		t.Error("expected offset beyond 18 hours to be rejected")
	}
	for _, id := range []string{"", "Local", "Mars/Olympus"} {
		if _, err := feel.NamedZone(id); err == nil {
			t.Errorf("expected zone id %q to be rejected", id)
		}
	}

	paris, err := feel.NamedZone("Europe/Paris")
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := paris.ID(); !ok || id != "Europe/Paris" {
		t.Errorf("unexpected zone id %q", id)
	}
	if _, ok := paris.Offset(); ok {
		t.Error("named zone should not report an offset")
	}
}

func TestYearRange(t *testing.T) {
	l := feel.New(feel.Default,
		feel.WithConfig(feel.Config{Precision: 34, MinYear: 1, MaxYear: 9999}),
		feel.WithLogger(quietLogger()))

	assert.FEELEqual(t, feel.Unknown, l.Call("date", feel.String("10000-01-01")))
	assert.FEELEqual(t, feel.Unknown, l.Call("date", feel.String("0000-01-01")))
	assert.FEELEqual(t, feel.Unknown, l.Call("add", l.Call("date", feel.String("9999-12-31")), l.Call("duration", feel.String("P1D"))))
	if v := l.Call("date", feel.String("9999-12-31")); feel.IsUnknown(v) {
		t.Error("expected 9999-12-31 to be within range")
	}
}

func TestTemporalAcrossProfiles(t *testing.T) {
	tests := []struct {
		name     string
		function string
		args     []string
		want     bool
	}{
		{"named zone times compare by instant", "lessThan", []string{"time:10:00:00@Europe/Paris", "time:10:00:00@America/New_York"}, true},
		{"named zone date and times equal by instant", "equal", []string{"dateTime:2016-08-01T12:00:00@Europe/Paris", "dateTime:2016-08-01T11:00:00@Europe/London"}, true},
		{"dates ignore time of day", "equal", []string{"date:2016-08-01", "dateOf:2016-08-01T23:59:59"}, true},
	}

	for _, profile := range profiles {
		l := feel.New(profile, feel.WithLogger(quietLogger()))
		for _, tt := range tests {
			t.Run(profile.String()+"/"+tt.name, func(t *testing.T) {
				args := make([]feel.Value, 0, len(tt.args))
				for _, a := range tt.args {
					args = append(args, buildTemporal(l, a))
				}
				assert.FEELEqual(t, feel.Boolean(tt.want), l.Call(tt.function, args...))
			})
		}
	}
}

func buildTemporal(l *feel.Library, spec string) feel.Value {
	kind, text, _ := strings.Cut(spec, ":")
	switch kind {
	case "date":
		return l.Call("date", feel.String(text))
	case "time":
		return l.Call("time", feel.String(text))
	case "dateTime":
		return l.Call("date and time", feel.String(text))
	case "dateOf":
		return l.Call("date", l.Call("date and time", feel.String(text)))
	default:
		return feel.Unknown
	}
}
