package feel

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// compilePattern translates the s, m and i flags into inline flags and
// compiles pattern.
func compilePattern(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 's', 'm', 'i':
			if !strings.ContainsRune(inline.String(), f) {
				inline.WriteRune(f)
			}
		default:
			return nil, fmt.Errorf("invalid regular expression flag %q", f)
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// expandTemplate converts a replacement string using $N group references
// and backslash escapes into the template syntax of regexp.Expand.
func expandTemplate(replacement string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		switch c {
		case '\\':
			if i+1 >= len(replacement) || (replacement[i+1] != '\\' && replacement[i+1] != '$') {
				return "", fmt.Errorf("invalid escape in replacement %q", replacement)
			}
			i++
			if replacement[i] == '$' {
				b.WriteString("$$")
			} else {
				b.WriteByte('\\')
			}
		case '$':
			j := i + 1
			for j < len(replacement) && replacement[j] >= '0' && replacement[j] <= '9' {
				j++
			}
			if j == i+1 {
				return "", fmt.Errorf("invalid group reference in replacement %q", replacement)
			}
			b.WriteString("${" + replacement[i+1:j] + "}")
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func matches(input, pattern, flags string) (Value, error) {
	re, err := compilePattern(pattern, flags)
	if err != nil {
		return nil, err
	}
	return Boolean(re.MatchString(input)), nil
}

func replace(input, pattern, replacement, flags string) (Value, error) {
	re, err := compilePattern(pattern, flags)
	if err != nil {
		return nil, err
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("pattern %q matches the empty string", pattern)
	}
	template, err := expandTemplate(replacement)
	if err != nil {
		return nil, err
	}
	return String(re.ReplaceAllString(input, template)), nil
}

func split(s, delimiter string) (Value, error) {
	re, err := regexp.Compile(delimiter)
	if err != nil {
		return nil, err
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("delimiter %q matches the empty string", delimiter)
	}
	parts := re.Split(s, -1)
	result := make(List, 0, len(parts))
	for _, p := range parts {
		result = append(result, String(p))
	}
	return result, nil
}

// substring returns the code points of s starting at the 1-based position
// start; a negative start counts from the end. Positions outside s are
// clamped.
func substring(s string, start int64, length *int64) String {
	runes := []rune(s)
	n := int64(len(runes))
	var from int64
	if start > 0 {
		from = start - 1
	} else {
		from = n + start
	}
	from = min(max(from, 0), n)
	to := n
	if length != nil {
		if *length <= 0 {
			return ""
		}
		to = min(from+*length, n)
		if to < from {
			// overflow of from + length
			to = n
		}
	}
	return String(runes[from:to])
}

func substringBefore(s, match string) String {
	i := strings.Index(s, match)
	if i < 0 {
		return ""
	}
	return String(s[:i])
}

func substringAfter(s, match string) String {
	if match == "" {
		return String(s)
	}
	i := strings.Index(s, match)
	if i < 0 {
		return ""
	}
	return String(s[i+len(match):])
}

func stringLength(s string) int64 {
	return int64(utf8.RuneCountInString(s))
}

func upperCase(s string) String {
	return String(cases.Upper(language.Und).String(s))
}

func lowerCase(s string) String {
	return String(cases.Lower(language.Und).String(s))
}
