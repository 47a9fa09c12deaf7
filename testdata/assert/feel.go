package assert

import (
	"testing"

	"github.com/cnxtech/jdmn/feel"
	"github.com/google/go-cmp/cmp"
)

// FEELEqual reports an error if actual is not the same value as expected.
// Two Unknown values are the same.
func FEELEqual(t *testing.T, expected, actual feel.Value) {
	t.Helper()
	if feel.IsUnknown(expected) && feel.IsUnknown(actual) {
		return
	}
	if feel.IsUnknown(expected) != feel.IsUnknown(actual) || expected.Kind() != actual.Kind() || !feel.Identical(expected, actual) {
		t.Errorf("unexpected result (-expected +actual):\n%s", cmp.Diff(describe(expected), describe(actual)))
	}
}

func describe(v feel.Value) string {
	if feel.IsUnknown(v) {
		return "null"
	}
	return v.Kind().String() + " " + v.String()
}
