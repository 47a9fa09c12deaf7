package feel_test

import (
	"testing"

	"github.com/cnxtech/jdmn/feel"
	"github.com/cnxtech/jdmn/testdata/assert"
)

func TestNumberRoundTrip(t *testing.T) {
	texts := []string{"0", "-0.5", "12345.678", "1e-7", "9007199254740993", "-123456789.000001", "3.14159265358979"}
	for _, profile := range profiles {
		l := feel.New(profile, feel.WithLogger(quietLogger()))
		for _, text := range texts {
			t.Run(profile.String()+"/"+text, func(t *testing.T) {
				n := l.Number(text)
				if feel.IsUnknown(n) {
					t.Fatalf("could not parse %q", text)
				}
				assert.FEELEqual(t, n, l.Number(l.Format(n)))
				assert.FEELEqual(t, n, l.Call("number", l.Call("string", n)))
			})
		}
	}
}

func TestModuloFollowsDivisor(t *testing.T) {
	operands := []string{"7", "-7", "7.5", "-7.5", "0", "3", "-3", "0.25"}
	for _, profile := range profiles {
		l := feel.New(profile, feel.WithLogger(quietLogger()))
		zero := l.Number("0")
		for _, a := range operands {
			for _, b := range operands {
				if b == "0" {
					continue
				}
				dividend, divisor := l.Number(a), l.Number(b)
				r := l.Call("modulo", dividend, divisor)
				if feel.IsUnknown(r) {
					t.Errorf("%s: modulo(%s, %s) is unknown", profile, a, b)
					continue
				}
				negative := l.Call("less than", divisor, zero)
				if l.Call("equal", r, zero) == feel.Boolean(false) && l.Call("less than", r, zero) != negative {
					t.Errorf("%s: modulo(%s, %s) = %s does not follow the sign of the divisor", profile, a, b, l.Format(r))
				}
				if l.Call("less than", l.Call("abs", r), l.Call("abs", divisor)) != feel.Boolean(true) {
					t.Errorf("%s: modulo(%s, %s) = %s exceeds the divisor", profile, a, b, l.Format(r))
				}
			}
		}
	}
}

func TestExtremeYears(t *testing.T) {
	for _, profile := range profiles {
		l := feel.New(profile, feel.WithLogger(quietLogger()))
		for _, year := range []string{"999999999", "-999999999"} {
			t.Run(profile.String()+"/"+year, func(t *testing.T) {
				d := l.Call("date", l.Number(year), l.Number("12"), l.Number("31"))
				assert.FEELEqual(t, feel.String(year+"-12-31"), l.Call("string", d))
			})
		}
	}
}

func TestDateAndTimeFromDate(t *testing.T) {
	for _, profile := range profiles {
		l := feel.New(profile, feel.WithLogger(quietLogger()))
		t.Run(profile.String(), func(t *testing.T) {
			fromText := l.Call("date and time", feel.String("2016-08-01"))
			fromParts := l.Call("date and time", l.Call("date", feel.String("2016-08-01")), l.Call("time", feel.String("00:00:00")))
			assert.FEELEqual(t, feel.Boolean(true), l.Call("equal", fromText, fromParts))
		})
	}
}

func TestZoneIdentity(t *testing.T) {
	for _, profile := range profiles {
		l := feel.New(profile, feel.WithLogger(quietLogger()))
		t.Run(profile.String(), func(t *testing.T) {
			offset := l.Call("date and time", feel.String("2016-08-01T10:00:00+00:00"))
			utc := l.Call("date and time", feel.String("2016-08-01T10:00:00Z"))
			named := l.Call("date and time", feel.String("2016-08-01T10:00:00@Etc/UTC"))

			assert.FEELEqual(t, feel.Boolean(true), l.Call("equal", offset, utc))
			assert.FEELEqual(t, feel.Boolean(false), l.Call("equal", offset, named))
			assert.FEELEqual(t, feel.Boolean(false), l.Call("equal", utc, named))
		})
	}
}
