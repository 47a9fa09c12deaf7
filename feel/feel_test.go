package feel_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/cnxtech/jdmn/feel"
	"github.com/cnxtech/jdmn/testdata"
	"github.com/cnxtech/jdmn/testdata/assert"
)

var profiles = []feel.Profile{feel.Default, feel.MixedFloatTemporal, feel.UniformTemporal}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runFEELTest calls a single function and validates the result.
func runFEELTest(t *testing.T, l *feel.Library, test testdata.FEELTest) {
	defer func() {
		if err := recover(); err != nil {
			t.Fatal(err)
		}
	}()

	args := test.Inputs(l)
	for i, a := range test.Args {
		if a.Type != "" && a.Type != "null" && feel.IsUnknown(args[i]) {
			t.Fatalf("argument %d of type %s %q did not build", i+1, a.Type, a.Text)
		}
	}
	expected := test.Expected.Value(l)
	if test.Expected.Type != "" && feel.IsUnknown(expected) {
		t.Fatalf("expected value of type %s %q did not build", test.Expected.Type, test.Expected.Text)
	}

	actual := l.Call(test.Function, args...)
	assert.FEELEqual(t, expected, actual)
}

func TestFEELTestSuites(t *testing.T) {
	for _, profile := range profiles {
		t.Run(profile.String(), func(t *testing.T) {
			l := feel.New(profile, feel.WithLogger(quietLogger()))
			for _, group := range testdata.GetFEELTests() {
				t.Run(group.Name, func(t *testing.T) {
					for _, test := range group.Tests {
						t.Run(test.Name, func(t *testing.T) {
							runFEELTest(t, l, test)
						})
					}
				})
			}
		})
	}
}

func TestProfileString(t *testing.T) {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.String())
	}
	if got := strings.Join(names, ","); got != "Default,MixedFloatTemporal,UniformTemporal" {
		t.Errorf("unexpected profile names %q", got)
	}
}
