package feel_test

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/cnxtech/jdmn/feel"
	"github.com/google/go-cmp/cmp"
)

func TestFunctionNames(t *testing.T) {
	l := feel.New(feel.Default)

	for _, name := range []string{"years and months duration", "yearsAndMonthsDuration", " string length "} {
		if _, ok := l.Lookup(name); !ok {
			t.Errorf("lookup %q failed", name)
		}
	}
	if _, ok := l.Lookup("no such function"); ok {
		t.Error("lookup of an unknown function succeeded")
	}

	names := l.Names()
	if !slices.IsSorted(names) {
		t.Error("names are not sorted")
	}
	for _, want := range []string{"all", "any", "sublist", "dateAndTime", "stddev", "getEntries", "indexOf"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing function %q", want)
		}
	}
}

func TestProfilesShareFunctions(t *testing.T) {
	want := feel.New(feel.Default).Names()
	for _, profile := range profiles[1:] {
		if diff := cmp.Diff(want, feel.New(profile).Names()); diff != "" {
			t.Errorf("%s: unexpected functions (-want +got):\n%s", profile, diff)
		}
	}
}

func TestCallIsTotal(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := feel.New(feel.Default,
		feel.WithLogger(logger),
		feel.WithFunctions(feel.Functions{
			"explode": func(l *feel.Library, args []feel.Value) (feel.Value, error) {
				panic("boom")
			},
		}))

	tests := []struct {
		name string
		call func() feel.Value
		log  string
	}{
		{"panic", func() feel.Value { return l.Call("explode") }, "feel function panicked"},
		{"unknown function", func() feel.Value { return l.Call("missing") }, "unknown feel function"},
		{"failed call", func() feel.Value { return l.Call("substring", feel.String("abc")) }, "feel function failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := tt.call(); !feel.IsUnknown(r) {
				t.Errorf("expected unknown, got %v", r)
			}
			if !strings.Contains(logs.String(), tt.log) {
				t.Errorf("expected log %q, got %q", tt.log, logs.String())
			}
		})
	}

	// every function tolerates missing, unknown and mistyped arguments
	inputs := [][]feel.Value{
		nil,
		{feel.Unknown},
		{nil, nil},
		{feel.String("x"), feel.Boolean(true), feel.List{nil}},
		{feel.List{feel.Unknown}, feel.Unknown, feel.Unknown, feel.Unknown},
	}
	var faults bytes.Buffer
	for _, profile := range profiles {
		l := feel.New(profile, feel.WithLogger(slog.New(slog.NewTextHandler(&faults, &slog.HandlerOptions{Level: slog.LevelError}))))
		for _, name := range l.Names() {
			for _, args := range inputs {
				func() {
					defer func() {
						if err := recover(); err != nil {
							t.Errorf("%s %s%v panicked: %v", profile, name, args, err)
						}
					}()
					l.Call(name, args...)
				}()
			}
		}
	}
	if faults.Len() > 0 {
		t.Errorf("unexpected error logs:\n%s", faults.String())
	}
}

func TestWithFunctions(t *testing.T) {
	l := feel.New(feel.Default,
		feel.WithLogger(quietLogger()),
		feel.WithFunctions(feel.Functions{
			"string length": func(l *feel.Library, args []feel.Value) (feel.Value, error) {
				return l.Int(-1), nil
			},
			"shout": func(l *feel.Library, args []feel.Value) (feel.Value, error) {
				return l.Call("upper case", args...), nil
			},
		}))

	if got := l.Format(l.Call("stringLength", feel.String("abc"))); got != "-1" {
		t.Errorf("expected overridden string length -1, got %s", got)
	}
	if got := l.Call("shout", feel.String("hey")); got != feel.String("HEY") {
		t.Errorf("expected HEY, got %v", got)
	}

	// other libraries keep the built-in functions
	d := feel.New(feel.Default)
	if got := d.Format(d.Call("string length", feel.String("abc"))); got != "3" {
		t.Errorf("expected string length 3, got %s", got)
	}
	if _, ok := d.Lookup("shout"); ok {
		t.Error("custom function leaked into another library")
	}
}

func TestConcurrentCalls(t *testing.T) {
	l := feel.New(feel.UniformTemporal, feel.WithLogger(quietLogger()))
	var wg sync.WaitGroup
	results := make([]feel.Value, 16)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = l.Call("upper case", l.Call("string", l.Call("add",
				l.Call("date and time", feel.String("2016-08-01T10:00:00@Europe/Paris")),
				l.Call("duration", feel.String("P1M")))))
		}()
	}
	wg.Wait()

	for i, r := range results {
		if r != feel.String("2016-09-01T10:00:00@EUROPE/PARIS") {
			t.Fatalf("result %d: unexpected %v", i, r)
		}
	}
}
