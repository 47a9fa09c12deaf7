// Package overflow provides int64 arithmetic that reports overflow
// instead of wrapping around.
package overflow

import "math"

// Add64 returns a+b and whether the result fits into an int64.
func Add64(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) == (b > 0) {
		return c, true
	}
	return c, false
}

// Sub64 returns a-b and whether the result fits into an int64.
func Sub64(a, b int64) (int64, bool) {
	c := a - b
	if (c < a) == (b > 0) {
		return c, true
	}
	return c, false
}

// Mul64 returns a*b and whether the result fits into an int64.
func Mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return c, false
	}
	if c/b != a {
		return c, false
	}
	return c, true
}

// Neg64 returns -a and whether the result fits into an int64.
func Neg64(a int64) (int64, bool) {
	if a == math.MinInt64 {
		return a, false
	}
	return -a, true
}
