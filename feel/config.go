package feel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultPrecision = 34
	defaultMaxYear   = 999_999_999
)

// Config holds the settings of a Library. It is fixed at construction.
type Config struct {
	// Precision is the number of significant digits of decimal arithmetic.
	Precision uint32 `yaml:"precision" json:"precision"`
	// MinYear and MaxYear bound the year of dates and date and times.
	MinYear int64 `yaml:"min_year" json:"min_year"`
	MaxYear int64 `yaml:"max_year" json:"max_year"`
}

// DefaultConfig returns 34 digits of precision, matching IEEE 754
// decimal128, and years from -999999999 to 999999999.
func DefaultConfig() Config {
	return Config{
		Precision: defaultPrecision,
		MinYear:   -defaultMaxYear,
		MaxYear:   defaultMaxYear,
	}
}

// Validate reports whether c can be used by a Library.
func (c Config) Validate() error {
	var errs []error
	if c.Precision == 0 {
		errs = append(errs, errors.New("precision must be positive"))
	}
	if c.MinYear > c.MaxYear {
		errs = append(errs, fmt.Errorf("min_year %d is after max_year %d", c.MinYear, c.MaxYear))
	}
	if c.MinYear < -defaultMaxYear || c.MaxYear > defaultMaxYear {
		errs = append(errs, fmt.Errorf("year range exceeds ±%d", defaultMaxYear))
	}
	return errors.Join(errs...)
}

// LoadConfig loads a configuration file. Supported extensions: .yaml, .yml,
// .json
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
		return ParseConfig(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// ParseConfig parses YAML or JSON data. Omitted settings keep their
// defaults.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
