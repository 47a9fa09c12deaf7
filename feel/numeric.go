package feel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Number is a numeric Value. A Library produces either Decimal or Double
// numbers, depending on its profile, never both.
type Number interface {
	Value
	number()
}

// Decimal is an arbitrary precision decimal number.
type Decimal struct {
	Value *apd.Decimal
}

func (d Decimal) Kind() Kind { return KindNumber }
func (d Decimal) number()    {}
func (d Decimal) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(Decimal)
	if !ok {
		return false, false
	}
	return d.Value.Cmp(o.Value) == 0, true
}
func (d Decimal) String() string {
	return d.Value.Text('f')
}

// Double is an IEEE-754 binary floating point number.
type Double float64

func (d Double) Kind() Kind { return KindNumber }
func (d Double) number()    {}
func (d Double) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(Double)
	if !ok {
		return false, false
	}
	return d == o, true
}
func (d Double) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

var errForeignNumber = errors.New("number of another profile")

// NumericStrategy implements arithmetic for one number representation.
//
// Every method returns an error instead of a non-finite or otherwise
// unrepresentable result.
type NumericStrategy interface {
	// Parse converts a plain numeric literal, e.g. "-12.5" or "1e3".
	Parse(text string) (Number, error)
	FromInt(i int64) Number
	// FromParts builds whole + nanos/1e9. Both parts carry the same sign.
	FromParts(whole int64, nanos int32) Number
	Format(n Number) string

	// Int truncates n towards zero.
	Int(n Number) (int64, error)
	// Split truncates n to nanosecond resolution and returns its whole and
	// fractional parts, both carrying the sign of n.
	Split(n Number) (whole int64, nanos int32, err error)
	IsInteger(n Number) (bool, error)
	Cmp(a, b Number) (int, error)

	Add(a, b Number) (Number, error)
	Subtract(a, b Number) (Number, error)
	Multiply(a, b Number) (Number, error)
	Divide(a, b Number) (Number, error)
	Negate(n Number) (Number, error)

	Floor(n Number) (Number, error)
	Ceiling(n Number) (Number, error)
	Abs(n Number) (Number, error)
	Sqrt(n Number) (Number, error)
	// Log is the natural logarithm.
	Log(n Number) (Number, error)
	Exp(n Number) (Number, error)
	// Decimal rounds n half up to scale digits after the decimal point.
	Decimal(n Number, scale int32) (Number, error)
	// Modulo is the floored remainder; its sign follows the divisor.
	Modulo(dividend, divisor Number) (Number, error)
	// IntModulo applies Modulo to the truncated operands.
	IntModulo(dividend, divisor Number) (Number, error)
}

// DecimalStrategy implements NumericStrategy on apd decimals.
type DecimalStrategy struct {
	ctx *apd.Context
}

// NewDecimalStrategy returns a strategy computing with the given number of
// significant digits, rounding half even.
func NewDecimalStrategy(precision uint32) DecimalStrategy {
	ctx := apd.BaseContext.WithPrecision(precision)
	ctx.Rounding = apd.RoundHalfEven
	return DecimalStrategy{ctx: ctx}
}

func (s DecimalStrategy) context() *apd.Context {
	if s.ctx == nil {
		return NewDecimalStrategy(defaultPrecision).ctx
	}
	return s.ctx
}

func (s DecimalStrategy) decimal(n Number) (*apd.Decimal, error) {
	d, ok := n.(Decimal)
	if !ok || d.Value == nil {
		return nil, fmt.Errorf("%w: %T", errForeignNumber, n)
	}
	return d.Value, nil
}

func (s DecimalStrategy) operands(a, b Number) (*apd.Decimal, *apd.Decimal, error) {
	x, err := s.decimal(a)
	if err != nil {
		return nil, nil, err
	}
	y, err := s.decimal(b)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func finite(d *apd.Decimal) (Number, error) {
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("non-finite result %s", d.Text('f'))
	}
	return Decimal{Value: d}, nil
}

func (s DecimalStrategy) Parse(text string) (Number, error) {
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, err
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("invalid number %q", text)
	}
	var rounded apd.Decimal
	if _, err := s.context().Round(&rounded, d); err != nil {
		return nil, err
	}
	return Decimal{Value: &rounded}, nil
}

func (s DecimalStrategy) FromInt(i int64) Number {
	return Decimal{Value: apd.New(i, 0)}
}

func (s DecimalStrategy) FromParts(whole int64, nanos int32) Number {
	if nanos == 0 {
		return s.FromInt(whole)
	}
	var result apd.Decimal
	// exact with the default precision for any int64 plus nine digits
	_, _ = apd.BaseContext.Add(&result, apd.New(whole, 0), apd.New(int64(nanos), -9))
	result.Reduce(&result)
	return Decimal{Value: &result}
}

func (s DecimalStrategy) Format(n Number) string {
	d, err := s.decimal(n)
	if err != nil {
		return n.String()
	}
	return d.Text('f')
}

func (s DecimalStrategy) truncate(d *apd.Decimal) (*apd.Decimal, error) {
	ctx := *s.context()
	ctx.Rounding = apd.RoundDown
	var intPart apd.Decimal
	if _, err := ctx.RoundToIntegralValue(&intPart, d); err != nil {
		return nil, err
	}
	return &intPart, nil
}

func (s DecimalStrategy) Int(n Number) (int64, error) {
	d, err := s.decimal(n)
	if err != nil {
		return 0, err
	}
	intPart, err := s.truncate(d)
	if err != nil {
		return 0, err
	}
	return intPart.Int64()
}

func (s DecimalStrategy) Split(n Number) (int64, int32, error) {
	d, err := s.decimal(n)
	if err != nil {
		return 0, 0, err
	}
	intPart, err := s.truncate(d)
	if err != nil {
		return 0, 0, err
	}
	whole, err := intPart.Int64()
	if err != nil {
		return 0, 0, err
	}
	var frac apd.Decimal
	ctx := apd.BaseContext.WithPrecision(64)
	if _, err := ctx.Sub(&frac, d, intPart); err != nil {
		return 0, 0, err
	}
	if _, err := ctx.Mul(&frac, &frac, apd.New(1, 9)); err != nil {
		return 0, 0, err
	}
	fracInt, err := s.truncate(&frac)
	if err != nil {
		return 0, 0, err
	}
	nanos, err := fracInt.Int64()
	if err != nil {
		return 0, 0, err
	}
	return whole, int32(nanos), nil
}

func (s DecimalStrategy) IsInteger(n Number) (bool, error) {
	d, err := s.decimal(n)
	if err != nil {
		return false, err
	}
	intPart, err := s.truncate(d)
	if err != nil {
		return false, err
	}
	return intPart.Cmp(d) == 0, nil
}

func (s DecimalStrategy) Cmp(a, b Number) (int, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return 0, err
	}
	return x.Cmp(y), nil
}

func (s DecimalStrategy) Add(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	if _, err := s.context().Add(&result, x, y); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Subtract(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	if _, err := s.context().Sub(&result, x, y); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Multiply(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	if _, err := s.context().Mul(&result, x, y); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Divide(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, errors.New("division by zero")
	}
	var result apd.Decimal
	if _, err := s.context().Quo(&result, x, y); err != nil {
		return nil, err
	}
	result.Reduce(&result)
	return finite(&result)
}

func (s DecimalStrategy) Negate(n Number) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	result.Neg(d)
	return Decimal{Value: &result}, nil
}

func (s DecimalStrategy) Floor(n Number) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	if _, err := s.context().Floor(&result, d); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Ceiling(n Number) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	if _, err := s.context().Ceil(&result, d); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Abs(n Number) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	result.Abs(d)
	return Decimal{Value: &result}, nil
}

func (s DecimalStrategy) Sqrt(n Number) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	if d.Negative && !d.IsZero() {
		return nil, fmt.Errorf("square root of negative number %s", d.Text('f'))
	}
	var result apd.Decimal
	if _, err := s.context().Sqrt(&result, d); err != nil {
		return nil, err
	}
	result.Reduce(&result)
	return finite(&result)
}

func (s DecimalStrategy) Log(n Number) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("logarithm of non-positive number %s", d.Text('f'))
	}
	var result apd.Decimal
	if _, err := s.context().Ln(&result, d); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Exp(n Number) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	var result apd.Decimal
	if _, err := s.context().Exp(&result, d); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Decimal(n Number, scale int32) (Number, error) {
	d, err := s.decimal(n)
	if err != nil {
		return nil, err
	}
	digits := int64(d.NumDigits()) + int64(d.Exponent) + int64(scale)
	ctx := s.context().WithPrecision(uint32(max(digits+1, int64(s.context().Precision))))
	ctx.Rounding = apd.RoundHalfUp
	var result apd.Decimal
	if _, err := ctx.Quantize(&result, d, -scale); err != nil {
		return nil, err
	}
	return finite(&result)
}

func (s DecimalStrategy) Modulo(dividend, divisor Number) (Number, error) {
	x, y, err := s.operands(dividend, divisor)
	if err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, errors.New("modulo by zero")
	}
	// Rem needs room for every digit of the integer quotient.
	digits := int64(x.NumDigits()) + int64(x.Exponent) - int64(y.Exponent) + 1
	ctx := s.context().WithPrecision(uint32(max(digits, int64(s.context().Precision))))
	var result apd.Decimal
	if _, err := ctx.Rem(&result, x, y); err != nil {
		return nil, err
	}
	if !result.IsZero() && result.Negative != y.Negative {
		if _, err := s.context().Add(&result, &result, y); err != nil {
			return nil, err
		}
	}
	return finite(&result)
}

func (s DecimalStrategy) IntModulo(dividend, divisor Number) (Number, error) {
	x, y, err := s.operands(dividend, divisor)
	if err != nil {
		return nil, err
	}
	tx, err := s.truncate(x)
	if err != nil {
		return nil, err
	}
	ty, err := s.truncate(y)
	if err != nil {
		return nil, err
	}
	return s.Modulo(Decimal{Value: tx}, Decimal{Value: ty})
}

// FloatStrategy implements NumericStrategy on float64.
type FloatStrategy struct{}

func (FloatStrategy) float(n Number) (float64, error) {
	d, ok := n.(Double)
	if !ok {
		return 0, fmt.Errorf("%w: %T", errForeignNumber, n)
	}
	return float64(d), nil
}

func (s FloatStrategy) operands(a, b Number) (float64, float64, error) {
	x, err := s.float(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := s.float(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func double(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite result %v", f)
	}
	return Double(f), nil
}

func (FloatStrategy) Parse(text string) (Number, error) {
	if strings.ContainsAny(text, "xX_") {
		return nil, fmt.Errorf("invalid number %q", text)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return double(f)
}

func (FloatStrategy) FromInt(i int64) Number {
	return Double(float64(i))
}

func (FloatStrategy) FromParts(whole int64, nanos int32) Number {
	return Double(float64(whole) + float64(nanos)/1e9)
}

func (s FloatStrategy) Format(n Number) string {
	return n.String()
}

func (s FloatStrategy) Int(n Number) (int64, error) {
	f, err := s.float(n)
	if err != nil {
		return 0, err
	}
	f = math.Trunc(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v out of integer range", f)
	}
	return int64(f), nil
}

func (s FloatStrategy) Split(n Number) (int64, int32, error) {
	f, err := s.float(n)
	if err != nil {
		return 0, 0, err
	}
	whole, err := s.Int(n)
	if err != nil {
		return 0, 0, err
	}
	nanos := math.Round((f - math.Trunc(f)) * 1e9)
	if math.Abs(nanos) >= 1e9 {
		return whole, 0, nil
	}
	return whole, int32(nanos), nil
}

func (s FloatStrategy) IsInteger(n Number) (bool, error) {
	f, err := s.float(n)
	if err != nil {
		return false, err
	}
	return f == math.Trunc(f), nil
}

func (s FloatStrategy) Cmp(a, b Number) (int, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return 0, err
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

func (s FloatStrategy) Add(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	return double(x + y)
}

func (s FloatStrategy) Subtract(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	return double(x - y)
}

func (s FloatStrategy) Multiply(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	return double(x * y)
}

func (s FloatStrategy) Divide(a, b Number) (Number, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errors.New("division by zero")
	}
	return double(x / y)
}

func (s FloatStrategy) Negate(n Number) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	return Double(-f), nil
}

func (s FloatStrategy) Floor(n Number) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	return Double(math.Floor(f)), nil
}

func (s FloatStrategy) Ceiling(n Number) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	return Double(math.Ceil(f)), nil
}

func (s FloatStrategy) Abs(n Number) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	return Double(math.Abs(f)), nil
}

func (s FloatStrategy) Sqrt(n Number) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	return double(math.Sqrt(f))
}

func (s FloatStrategy) Log(n Number) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	if f <= 0 {
		return nil, fmt.Errorf("logarithm of non-positive number %v", f)
	}
	return double(math.Log(f))
}

func (s FloatStrategy) Exp(n Number) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	return double(math.Exp(f))
}

func (s FloatStrategy) Decimal(n Number, scale int32) (Number, error) {
	f, err := s.float(n)
	if err != nil {
		return nil, err
	}
	// round via the shortest decimal representation to avoid binary
	// artifacts such as 1.005 rounding down
	d, _, err := apd.NewFromString(strconv.FormatFloat(f, 'g', -1, 64))
	if err != nil {
		return nil, err
	}
	rounded, err := NewDecimalStrategy(defaultPrecision).Decimal(Decimal{Value: d}, scale)
	if err != nil {
		return nil, err
	}
	r, err := strconv.ParseFloat(rounded.String(), 64)
	if err != nil {
		return nil, err
	}
	return double(r)
}

func (s FloatStrategy) Modulo(dividend, divisor Number) (Number, error) {
	x, y, err := s.operands(dividend, divisor)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errors.New("modulo by zero")
	}
	r := math.Mod(x, y)
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return double(r)
}

func (s FloatStrategy) IntModulo(dividend, divisor Number) (Number, error) {
	x, y, err := s.operands(dividend, divisor)
	if err != nil {
		return nil, err
	}
	return s.Modulo(Double(math.Trunc(x)), Double(math.Trunc(y)))
}

// parseGrouped parses text written with the given grouping and decimal
// separators. grouping is one of "", " ", ",", "."; decimal is one of
// "", ".", ",".
func parseGrouped(s NumericStrategy, text, grouping, decimal string) (Number, error) {
	switch grouping {
	case "", " ", ",", ".":
	default:
		return nil, fmt.Errorf("invalid grouping separator %q", grouping)
	}
	switch decimal {
	case "", ".", ",":
	default:
		return nil, fmt.Errorf("invalid decimal separator %q", decimal)
	}
	if grouping != "" && grouping == decimal {
		return nil, fmt.Errorf("grouping and decimal separator are both %q", grouping)
	}
	if grouping != "" {
		text = strings.ReplaceAll(text, grouping, "")
	}
	if decimal != "" && decimal != "." {
		if strings.Contains(text, ".") {
			return nil, fmt.Errorf("unexpected '.' in %q", text)
		}
		text = strings.ReplaceAll(text, decimal, ".")
	}
	return s.Parse(text)
}
