package feel

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
)

// Function implements a library function. Implementations return an error
// for invalid input; Call turns it into Unknown.
type Function = func(l *Library, args []Value) (Value, error)

type Functions map[string]Function

// normalizeName maps both the spaced and the camel case spelling of a
// function name, e.g. "years and months duration", to its key.
func normalizeName(name string) string {
	return strcase.ToLowerCamel(strings.TrimSpace(name))
}

// Lookup returns the function registered under name.
func (l *Library) Lookup(name string) (Function, bool) {
	fn, ok := l.functions[normalizeName(name)]
	return fn, ok
}

// Names returns the sorted names of all functions.
func (l *Library) Names() []string {
	var names []string
	for name := range l.functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Call invokes the named function. It never fails: unknown functions,
// invalid arguments and internal faults all yield Unknown.
func (l *Library) Call(name string, args ...Value) (result Value) {
	fn, ok := l.Lookup(name)
	if !ok {
		l.logger.Warn("unknown feel function", "function", name)
		return Unknown
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("feel function panicked", "function", name, "panic", r)
			result = Unknown
		}
	}()
	v, err := fn(l, args)
	if err != nil {
		l.logger.Debug("feel function failed", "function", name, "err", err)
		return Unknown
	}
	return orUnknown(v)
}

func arity(args []Value, lo, hi int) error {
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		switch {
		case lo == hi:
			return fmt.Errorf("expected %d parameters, got %d", lo, len(args))
		case hi < 0:
			return fmt.Errorf("expected at least %d parameters, got %d", lo, len(args))
		default:
			return fmt.Errorf("expected %d to %d parameters, got %d", lo, hi, len(args))
		}
	}
	return nil
}

// optionalInt returns the i-th argument as an integer, nil if it is absent.
func (l *Library) optionalInt(args []Value, i int) (*int64, error) {
	n, ok, err := arg[Number](args, i)
	if err != nil || !ok {
		return nil, err
	}
	v, err := l.numbers.Int(n)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func unary(op func(NumericStrategy, Number) (Number, error)) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		n, ok, err := arg[Number](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return op(l.numbers, n)
	}
}

func binary(op func(NumericStrategy, Number, Number) (Number, error)) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		a, ok, err := arg[Number](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		b, ok, err := arg[Number](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		return op(l.numbers, a, b)
	}
}

func aggregate(op func(l *Library, list List) (Value, error)) Function {
	return func(l *Library, args []Value) (Value, error) {
		list, ok := listArgs(args)
		if !ok {
			return Unknown, nil
		}
		return op(l, list)
	}
}

func logic(op func(List) Value) Function {
	return func(l *Library, args []Value) (Value, error) {
		list, ok := listArgs(args)
		if !ok {
			return Unknown, nil
		}
		return op(list), nil
	}
}

func parity(want int64) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		n, ok, err := arg[Number](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		i, err := l.wholeNumber(n)
		if err != nil {
			return nil, err
		}
		return Boolean(floorMod(i, 2) == want), nil
	}
}

func stringPredicate(test func(s, match string) bool) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		s, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		match, ok, err := arg[String](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		return Boolean(test(string(s), string(match))), nil
	}
}

func stringBinary(op func(s, match string) String) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		s, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		match, ok, err := arg[String](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		return op(string(s), string(match)), nil
	}
}

func stringUnary(op func(s string) String) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		s, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return op(string(s)), nil
	}
}

// accessor returns a function reading one field of a temporal value of
// one of kinds.
func accessor(get func(Fields) int64, kinds ...Kind) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		if IsUnknown(args[0]) {
			return Unknown, nil
		}
		return l.field(args[0], get, kinds...)
	}
}

func durationAccessor(get func(Value) (int64, error)) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		if IsUnknown(args[0]) {
			return Unknown, nil
		}
		v, err := get(args[0])
		if err != nil {
			return nil, err
		}
		return l.numbers.FromInt(v), nil
	}
}

func temporalUnary(op func(l *Library, v Value) (Value, error)) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		if IsUnknown(args[0]) {
			return Unknown, nil
		}
		return op(l, args[0])
	}
}

func listUnary(op func(list List) List) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		list, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return op(list), nil
	}
}

func listPositional(op func(list List, pos int64, args []Value) List, extra int) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2+extra, 2+extra); err != nil {
			return nil, err
		}
		list, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		pos, ok, err := arg[Number](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		p, err := l.wholeNumber(pos)
		if err != nil {
			return nil, err
		}
		return op(list, p, args[2:]), nil
	}
}

func variadicLists(op func(lists []Value) (List, error)) Function {
	return func(l *Library, args []Value) (Value, error) {
		return op(args)
	}
}

func comparison(holds func(c int) bool) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		return l.ordering(args[0], args[1], holds)
	}
}

func operator(op func(l *Library, a, b Value) (Value, error)) Function {
	return func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		return op(l, args[0], args[1])
	}
}

// defaultFunctions holds the built-in functions keyed by their normalized
// name.
var defaultFunctions = Functions{
	// Conversion functions
	"number": func(l *Library, args []Value) (Value, error) {
		if len(args) != 1 && len(args) != 3 {
			return nil, fmt.Errorf("expected one or three parameters, got %d", len(args))
		}
		text, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		if len(args) == 1 {
			return l.numbers.Parse(string(text))
		}
		grouping, _, err := arg[String](args, 1)
		if err != nil {
			return nil, err
		}
		decimal, _, err := arg[String](args, 2)
		if err != nil {
			return nil, err
		}
		return parseGrouped(l.numbers, string(text), string(grouping), string(decimal))
	},
	"string": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		if IsUnknown(args[0]) {
			return Unknown, nil
		}
		return String(l.Format(args[0])), nil
	},
	"date": func(l *Library, args []Value) (Value, error) {
		switch len(args) {
		case 1:
			if IsUnknown(args[0]) {
				return Unknown, nil
			}
			if s, ok := args[0].(String); ok {
				return l.dateFromText(string(s))
			}
			return l.dateOf(args[0])
		case 3:
			var parts [3]Number
			for i := range parts {
				n, ok, err := arg[Number](args, i)
				if err != nil || !ok {
					return Unknown, err
				}
				parts[i] = n
			}
			return l.dateFromParts(parts[0], parts[1], parts[2])
		}
		return nil, fmt.Errorf("expected one or three parameters, got %d", len(args))
	},
	"time": func(l *Library, args []Value) (Value, error) {
		switch len(args) {
		case 1:
			if IsUnknown(args[0]) {
				return Unknown, nil
			}
			if s, ok := args[0].(String); ok {
				return l.timeFromText(string(s))
			}
			return l.timeOf(args[0])
		case 3, 4:
			var parts [3]Number
			for i := range parts {
				n, ok, err := arg[Number](args, i)
				if err != nil || !ok {
					return Unknown, err
				}
				parts[i] = n
			}
			var offset Value = Unknown
			if len(args) == 4 {
				offset = args[3]
			}
			return l.timeFromParts(parts[0], parts[1], parts[2], offset)
		}
		return nil, fmt.Errorf("expected one, three or four parameters, got %d", len(args))
	},
	"dateAndTime": func(l *Library, args []Value) (Value, error) {
		switch len(args) {
		case 1:
			s, ok, err := arg[String](args, 0)
			if err != nil || !ok {
				return Unknown, err
			}
			return l.dateTimeFromText(string(s))
		case 2:
			if IsUnknown(args[0]) || IsUnknown(args[1]) {
				return Unknown, nil
			}
			return l.dateTimeFromParts(args[0], args[1])
		}
		return nil, fmt.Errorf("expected one or two parameters, got %d", len(args))
	},
	"duration": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		s, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return parseDuration(string(s))
	},
	"yearsAndMonthsDuration": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		if IsUnknown(args[0]) || IsUnknown(args[1]) {
			return Unknown, nil
		}
		return l.yearsAndMonthsDuration(args[0], args[1])
	},

	// Boolean functions
	"all": logic(and),
	"and": logic(and),
	"any": logic(or),
	"or":  logic(or),
	"not": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		return not(args[0]), nil
	},

	// Numeric functions
	"decimal": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		n, ok, err := arg[Number](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		scale, ok, err := arg[Number](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		s, err := l.wholeNumber(scale)
		if err != nil {
			return nil, err
		}
		if s < math.MinInt16 || s > math.MaxInt16 {
			return nil, fmt.Errorf("scale %d out of range", s)
		}
		return l.numbers.Decimal(n, int32(s))
	},
	"floor":     unary(NumericStrategy.Floor),
	"ceiling":   unary(NumericStrategy.Ceiling),
	"abs":       unary(NumericStrategy.Abs),
	"sqrt":      unary(NumericStrategy.Sqrt),
	"log":       unary(NumericStrategy.Log),
	"exp":       unary(NumericStrategy.Exp),
	"modulo":    binary(NumericStrategy.Modulo),
	"intModulo": binary(NumericStrategy.IntModulo),
	"odd":       parity(1),
	"even":      parity(0),

	// Aggregate functions
	"min": aggregate(func(l *Library, list List) (Value, error) {
		return l.extreme(list, -1)
	}),
	"max": aggregate(func(l *Library, list List) (Value, error) {
		return l.extreme(list, 1)
	}),
	"sum":     aggregate((*Library).sum),
	"product": aggregate((*Library).product),
	"mean": aggregate(func(l *Library, list List) (Value, error) {
		return l.mean(list)
	}),
	"median": aggregate((*Library).median),
	"stddev": aggregate((*Library).stddev),
	"mode":   aggregate((*Library).mode),

	// String functions
	"contains":        stringPredicate(strings.Contains),
	"startsWith":      stringPredicate(strings.HasPrefix),
	"endsWith":        stringPredicate(strings.HasSuffix),
	"substringBefore": stringBinary(substringBefore),
	"substringAfter":  stringBinary(substringAfter),
	"upperCase":       stringUnary(upperCase),
	"lowerCase":       stringUnary(lowerCase),
	"stringLength": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		s, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return l.numbers.FromInt(stringLength(string(s))), nil
	},
	"substring": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 3); err != nil {
			return nil, err
		}
		s, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		start, ok, err := arg[Number](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		from, err := l.numbers.Int(start)
		if err != nil {
			return nil, err
		}
		length, err := l.optionalInt(args, 2)
		if err != nil {
			return nil, err
		}
		return substring(string(s), from, length), nil
	},
	"replace": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 3, 4); err != nil {
			return nil, err
		}
		var parts [3]String
		for i := range parts {
			s, ok, err := arg[String](args, i)
			if err != nil || !ok {
				return Unknown, err
			}
			parts[i] = s
		}
		flags, _, err := arg[String](args, 3)
		if err != nil {
			return nil, err
		}
		return replace(string(parts[0]), string(parts[1]), string(parts[2]), string(flags))
	},
	"matches": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 3); err != nil {
			return nil, err
		}
		input, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		pattern, ok, err := arg[String](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		flags, _, err := arg[String](args, 2)
		if err != nil {
			return nil, err
		}
		return matches(string(input), string(pattern), string(flags))
	},
	"split": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		s, ok, err := arg[String](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		delimiter, ok, err := arg[String](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		return split(string(s), string(delimiter))
	},

	// Temporal accessors
	"year":       accessor(func(f Fields) int64 { return f.Year }, KindDate, KindDateTime),
	"month":      accessor(func(f Fields) int64 { return int64(f.Month) }, KindDate, KindDateTime),
	"day":        accessor(func(f Fields) int64 { return int64(f.Day) }, KindDate, KindDateTime),
	"weekday":    accessor(weekday, KindDate, KindDateTime),
	"hour":       accessor(func(f Fields) int64 { return int64(f.Hour) }, KindTime, KindDateTime),
	"minute":     accessor(func(f Fields) int64 { return int64(f.Minute) }, KindTime, KindDateTime),
	"second":     accessor(func(f Fields) int64 { return int64(f.Second) }, KindTime, KindDateTime),
	"timeOffset": temporalUnary((*Library).timeOffset),
	"timezone":   temporalUnary((*Library).timezone),

	// Duration accessors
	"years":   durationAccessor(years),
	"months":  durationAccessor(months),
	"days":    durationAccessor(days),
	"hours":   durationAccessor(hours),
	"minutes": durationAccessor(minutes),
	"seconds": durationAccessor(seconds),

	// List functions
	"listContains": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		list, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return listContains(list, args[1]), nil
	},
	"count": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		list, _, err := arg[List](args, 0)
		if err != nil {
			return nil, err
		}
		return l.numbers.FromInt(int64(len(list))), nil
	},
	"append": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, -1); err != nil {
			return nil, err
		}
		list, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return appendItems(list, args[1:]), nil
	},
	"sublist": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 3); err != nil {
			return nil, err
		}
		list, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		start, ok, err := arg[Number](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		from, err := l.numbers.Int(start)
		if err != nil {
			return nil, err
		}
		length, err := l.optionalInt(args, 2)
		if err != nil {
			return nil, err
		}
		return sublist(list, from, length), nil
	},
	"concatenate": variadicLists(concatenate),
	"union":       variadicLists(union),
	"insertBefore": listPositional(func(list List, pos int64, rest []Value) List {
		return insertBefore(list, pos, rest[0])
	}, 1),
	"remove": listPositional(func(list List, pos int64, _ []Value) List {
		return remove(list, pos)
	}, 0),
	"reverse":        listUnary(reverse),
	"distinctValues": listUnary(distinct),
	"flatten":        listUnary(flatten),
	"indexOf": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		list, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return l.indexOf(list, args[1]), nil
	},
	"sort": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 2); err != nil {
			return nil, err
		}
		list, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		precedes, ok, err := arg[Lambda](args, 1)
		if err != nil {
			return nil, err
		}
		if !ok {
			precedes = func(args ...Value) Value {
				v, err := l.ordering(args[0], args[1], func(c int) bool { return c < 0 })
				if err != nil {
					return Unknown
				}
				return v
			}
		}
		return sortList(list, precedes), nil
	},

	// Context functions
	"getValue": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		c, ok, err := arg[Context](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		key, ok, err := arg[String](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		return getValue(c, string(key)), nil
	},
	"getEntries": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		c, ok, err := arg[Context](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return getEntries(c), nil
	},
	"context": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		entries, ok, err := arg[List](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		return contextOf(entries)
	},
	"contextPut": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 3, 3); err != nil {
			return nil, err
		}
		c, ok, err := arg[Context](args, 0)
		if err != nil || !ok {
			return Unknown, err
		}
		key, ok, err := arg[String](args, 1)
		if err != nil || !ok {
			return Unknown, err
		}
		return c.With(string(key), args[2]), nil
	},
	"contextMerge": func(l *Library, args []Value) (Value, error) {
		contexts, ok := listArgs(args)
		if !ok {
			return Unknown, nil
		}
		return contextMerge(contexts)
	},

	// Operators
	"equal": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		return l.equal(args[0], args[1]), nil
	},
	"notEqual": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 2, 2); err != nil {
			return nil, err
		}
		return not(l.equal(args[0], args[1])), nil
	},
	"lessThan":     comparison(func(c int) bool { return c < 0 }),
	"lessEqual":    comparison(func(c int) bool { return c <= 0 }),
	"greaterThan":  comparison(func(c int) bool { return c > 0 }),
	"greaterEqual": comparison(func(c int) bool { return c >= 0 }),
	"add":          operator((*Library).add),
	"subtract":     operator((*Library).subtract),
	"multiply":     operator((*Library).multiply),
	"divide":       operator((*Library).divide),
	"negate": func(l *Library, args []Value) (Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}
		return l.negate(args[0])
	},
}
