package feel

import (
	"fmt"
	"strings"

	"github.com/cnxtech/jdmn/feel/internal/overflow"
)

func (l *Library) equal(a, b Value) Value {
	if IsUnknown(a) || IsUnknown(b) {
		if IsUnknown(a) && IsUnknown(b) {
			return Boolean(true)
		}
		return Unknown
	}
	eq, ok := a.Equal(b)
	if !ok {
		return Unknown
	}
	return Boolean(eq)
}

// compare orders two values of the same comparable kind.
func (l *Library) compare(a, b Value) (int, error) {
	switch x := a.(type) {
	case Number:
		if y, ok := b.(Number); ok {
			return l.numbers.Cmp(x, y)
		}
	case String:
		if y, ok := b.(String); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case YearsMonthsDuration:
		if y, ok := b.(YearsMonthsDuration); ok {
			return compareInts(x.Months, y.Months), nil
		}
	case DaysTimeDuration:
		if y, ok := b.(DaysTimeDuration); ok {
			return x.cmp(y), nil
		}
	case temporal:
		fa, ka, err := l.decompose(a)
		if err != nil {
			return 0, err
		}
		fb, kb, err := l.decompose(b)
		if err != nil {
			return 0, err
		}
		if ka == kb {
			if c, ok := compareFields(ka, fa, fb); ok {
				return c, nil
			}
		}
	}
	return 0, fmt.Errorf("can not compare %s %v with %s %v", orUnknown(a).Kind(), a, orUnknown(b).Kind(), b)
}

// ordering evaluates a comparison operator; holds reports whether the
// result of compare satisfies it.
func (l *Library) ordering(a, b Value, holds func(c int) bool) (Value, error) {
	if IsUnknown(a) || IsUnknown(b) {
		return Unknown, nil
	}
	c, err := l.compare(a, b)
	if err != nil {
		return nil, err
	}
	return Boolean(holds(c)), nil
}

func (l *Library) add(a, b Value) (Value, error) {
	if IsUnknown(a) || IsUnknown(b) {
		return Unknown, nil
	}
	switch x := a.(type) {
	case Number:
		if y, ok := b.(Number); ok {
			return l.numbers.Add(x, y)
		}
	case String:
		if y, ok := b.(String); ok {
			return x + y, nil
		}
	case YearsMonthsDuration:
		switch y := b.(type) {
		case YearsMonthsDuration:
			m, ok := overflow.Add64(x.Months, y.Months)
			if !ok {
				return nil, errDurationOverflow
			}
			return YearsMonthsDuration{Months: m}, nil
		case temporal:
			return l.shift(b, x)
		}
	case DaysTimeDuration:
		switch y := b.(type) {
		case DaysTimeDuration:
			return addDaysTime(x, y)
		case temporal:
			return l.shift(b, x)
		}
	case temporal:
		switch b.(type) {
		case YearsMonthsDuration, DaysTimeDuration:
			return l.shift(a, b)
		}
	}
	return nil, fmt.Errorf("can not add %s and %s", a.Kind(), b.Kind())
}

func (l *Library) subtract(a, b Value) (Value, error) {
	if IsUnknown(a) || IsUnknown(b) {
		return Unknown, nil
	}
	switch x := a.(type) {
	case Number:
		if y, ok := b.(Number); ok {
			return l.numbers.Subtract(x, y)
		}
	case YearsMonthsDuration, DaysTimeDuration:
		if b.Kind() == a.Kind() {
			neg, err := l.negate(b)
			if err != nil {
				return nil, err
			}
			return l.add(a, neg)
		}
	case temporal:
		switch b.(type) {
		case YearsMonthsDuration, DaysTimeDuration:
			neg, err := l.negate(b)
			if err != nil {
				return nil, err
			}
			return l.shift(a, neg)
		case temporal:
			return l.difference(x, b)
		}
	}
	return nil, fmt.Errorf("can not subtract %s from %s", b.Kind(), a.Kind())
}

func (l *Library) multiply(a, b Value) (Value, error) {
	if IsUnknown(a) || IsUnknown(b) {
		return Unknown, nil
	}
	if _, ok := a.(Number); ok {
		a, b = b, a
	}
	n, ok := b.(Number)
	if !ok {
		return nil, fmt.Errorf("can not multiply %s and %s", a.Kind(), b.Kind())
	}
	switch x := a.(type) {
	case Number:
		return l.numbers.Multiply(x, n)
	case YearsMonthsDuration, DaysTimeDuration:
		return l.scaleDuration(x, n, l.numbers.Multiply)
	}
	return nil, fmt.Errorf("can not multiply %s and %s", a.Kind(), b.Kind())
}

func (l *Library) divide(a, b Value) (Value, error) {
	if IsUnknown(a) || IsUnknown(b) {
		return Unknown, nil
	}
	switch x := a.(type) {
	case Number:
		if y, ok := b.(Number); ok {
			return l.numbers.Divide(x, y)
		}
	case YearsMonthsDuration, DaysTimeDuration:
		switch y := b.(type) {
		case Number:
			return l.scaleDuration(x, y, l.numbers.Divide)
		case YearsMonthsDuration, DaysTimeDuration:
			if a.Kind() == b.Kind() {
				return l.numbers.Divide(l.durationNumber(x), l.durationNumber(y))
			}
		}
	}
	return nil, fmt.Errorf("can not divide %s by %s", a.Kind(), b.Kind())
}

func (l *Library) negate(v Value) (Value, error) {
	switch x := v.(type) {
	case Number:
		return l.numbers.Negate(x)
	case YearsMonthsDuration:
		m, ok := overflow.Neg64(x.Months)
		if !ok {
			return nil, errDurationOverflow
		}
		return YearsMonthsDuration{Months: m}, nil
	case DaysTimeDuration:
		return negateDaysTime(x)
	}
	if IsUnknown(v) {
		return Unknown, nil
	}
	return nil, fmt.Errorf("can not negate %s", v.Kind())
}

// durationNumber returns months or seconds of a duration as a number.
func (l *Library) durationNumber(d Value) Number {
	if ym, ok := d.(YearsMonthsDuration); ok {
		return l.numbers.FromInt(ym.Months)
	}
	dt := d.(DaysTimeDuration)
	return l.numbers.FromParts(dt.Seconds, dt.Nanos)
}

func (l *Library) scaleDuration(d Value, n Number, op func(a, b Number) (Number, error)) (Value, error) {
	scaled, err := op(l.durationNumber(d), n)
	if err != nil {
		return nil, err
	}
	if _, ok := d.(YearsMonthsDuration); ok {
		m, err := l.numbers.Int(scaled)
		if err != nil {
			return nil, err
		}
		return YearsMonthsDuration{Months: m}, nil
	}
	secs, nanos, err := l.numbers.Split(scaled)
	if err != nil {
		return nil, err
	}
	return NewDaysTimeDuration(secs, int64(nanos))
}

// shift adds a duration to a date, time or date and time. Years and months
// do not apply to times.
func (l *Library) shift(t, d Value) (Value, error) {
	f, kind, err := l.decompose(t)
	if err != nil {
		return nil, err
	}
	switch dur := d.(type) {
	case YearsMonthsDuration:
		if kind == KindTime {
			return nil, fmt.Errorf("can not add %s to time", dur)
		}
		f, err = addMonths(f, dur.Months)
	case DaysTimeDuration:
		f, err = addSeconds(f, kind, dur)
	}
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindDate:
		return l.makeDate(f)
	case KindTime:
		return l.makeTime(f)
	default:
		return l.makeDateTime(f)
	}
}

// difference returns a - b as a days and time duration. Both must be of the
// same kind and either both or neither carry a zone.
func (l *Library) difference(a, b Value) (Value, error) {
	fa, ka, err := l.decompose(a)
	if err != nil {
		return nil, err
	}
	fb, kb, err := l.decompose(b)
	if err != nil {
		return nil, err
	}
	if ka != kb {
		return nil, fmt.Errorf("can not subtract %s from %s", kb, ka)
	}
	if ka != KindDate && fa.Zone.IsNone() != fb.Zone.IsNone() {
		return nil, fmt.Errorf("can not subtract %v from %v", b, a)
	}
	secs, ok := overflow.Sub64(epochSeconds(fa, ka), epochSeconds(fb, kb))
	if !ok {
		return nil, errDurationOverflow
	}
	return NewDaysTimeDuration(secs, int64(fa.Nanosecond-fb.Nanosecond))
}
