package feel_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cnxtech/jdmn/feel"
	"github.com/google/go-cmp/cmp"
)

// TestParseConfig verifies parsing of YAML and JSON settings.
func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    feel.Config
		wantErr bool
	}{
		{
			name: "empty keeps defaults",
			data: "",
			want: feel.DefaultConfig(),
		},
		{
			name: "yaml",
			data: "precision: 16\nmin_year: 1\nmax_year: 9999\n",
			want: feel.Config{Precision: 16, MinYear: 1, MaxYear: 9999},
		},
		{
			name: "json",
			data: `{"precision": 20}`,
			want: feel.Config{Precision: 20, MinYear: -999_999_999, MaxYear: 999_999_999},
		},
		{
			name:    "zero precision",
			data:    "precision: 0",
			wantErr: true,
		},
		{
			name:    "inverted year range",
			data:    "min_year: 2000\nmax_year: 1000",
			wantErr: true,
		},
		{
			name:    "year beyond range",
			data:    "max_year: 1000000000",
			wantErr: true,
		},
		{
			name:    "malformed",
			data:    "precision: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feel.ParseConfig([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

// TestLoadConfig verifies loading settings from files.
func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(t *testing.T, name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("yaml", func(t *testing.T) {
		cfg, err := feel.LoadConfig(write(t, "feel.yaml", "precision: 12\n"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Precision != 12 {
			t.Errorf("expected precision 12, got %d", cfg.Precision)
		}
	})

	t.Run("json", func(t *testing.T) {
		cfg, err := feel.LoadConfig(write(t, "feel.JSON", `{"min_year": -9999, "max_year": 9999}`))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.MinYear != -9999 || cfg.MaxYear != 9999 {
			t.Errorf("expected years -9999..9999, got %d..%d", cfg.MinYear, cfg.MaxYear)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := feel.LoadConfig(write(t, "feel.toml", "precision = 12"))
		if err == nil || !strings.Contains(err.Error(), "unsupported config file extension") {
			t.Errorf("expected unsupported extension error, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := feel.LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

// TestWithConfig verifies that libraries fall back to defaults for invalid
// settings.
func TestWithConfig(t *testing.T) {
	l := feel.New(feel.Default, feel.WithConfig(feel.Config{MinYear: 5, MaxYear: 1}))
	if diff := cmp.Diff(feel.DefaultConfig(), l.Config()); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	want := feel.Config{Precision: 8, MinYear: -10, MaxYear: 10}
	l = feel.New(feel.Default, feel.WithConfig(want))
	if diff := cmp.Diff(want, l.Config()); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
	if err := l.Config().Validate(); err != nil {
		t.Error(err)
	}
}

// TestNewWithConfig verifies that invalid settings are rejected.
func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  feel.Config
		wantErr bool
	}{
		{name: "defaults", config: feel.DefaultConfig()},
		{name: "narrow range", config: feel.Config{Precision: 8, MinYear: 1, MaxYear: 9999}},
		{name: "zero precision", config: feel.Config{MinYear: 1, MaxYear: 9999}, wantErr: true},
		{name: "inverted year range", config: feel.Config{Precision: 8, MinYear: 5, MaxYear: 1}, wantErr: true},
		{name: "year beyond range", config: feel.Config{Precision: 8, MaxYear: 1_000_000_000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := feel.NewWithConfig(feel.UniformTemporal, tt.config, feel.WithLogger(quietLogger()))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %+v", tt.config)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.config, l.Config()); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
			if l.Profile() != feel.UniformTemporal {
				t.Errorf("expected profile %s, got %s", feel.UniformTemporal, l.Profile())
			}
		})
	}
}
