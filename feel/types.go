package feel

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindUnknown Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindDate
	KindTime
	KindDateTime
	KindYearsMonthsDuration
	KindDaysTimeDuration
	KindList
	KindContext
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "date and time"
	case KindYearsMonthsDuration:
		return "years and months duration"
	case KindDaysTimeDuration:
		return "days and time duration"
	case KindList:
		return "list"
	case KindContext:
		return "context"
	case KindFunction:
		return "function"
	default:
		return "null"
	}
}

// Value is implemented by every value the standard library operates on.
type Value interface {
	Kind() Kind
	// Equal reports whether the receiver equals other.
	//
	// ok is false if the two values can not be compared, e.g. because
	// one of them is Unknown or they are of unrelated kinds.
	Equal(other Value) (eq bool, ok bool)
	fmt.Stringer
}

type unknown struct{}

// Unknown is the absent value. Functions return it for invalid input
// and propagate it through most operations.
var Unknown Value = unknown{}

func (unknown) Kind() Kind                      { return KindUnknown }
func (unknown) Equal(other Value) (bool, bool) { return false, false }
func (unknown) String() string                  { return "null" }

// IsUnknown reports whether v is Unknown. A nil Value counts as Unknown.
func IsUnknown(v Value) bool {
	return v == nil || v.Kind() == KindUnknown
}

// Identical reports whether a and b are the same value. Unlike Equal,
// two Unknown values are identical. It is the equality used by list
// functions such as union, indexOf and distinct values.
func Identical(a, b Value) bool {
	if IsUnknown(a) || IsUnknown(b) {
		return IsUnknown(a) && IsUnknown(b)
	}
	eq, ok := a.Equal(b)
	return ok && eq
}

type Boolean bool

func (b Boolean) Kind() Kind { return KindBoolean }
func (b Boolean) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(Boolean)
	if !ok {
		return false, false
	}
	return b == o, true
}
func (b Boolean) String() string {
	return strconv.FormatBool(bool(b))
}

type String string

func (s String) Kind() Kind { return KindString }
func (s String) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(String)
	if !ok {
		return false, false
	}
	return s == o, true
}
func (s String) String() string {
	return string(s)
}

// List is an ordered sequence of values. Elements may be Unknown or
// nested lists.
type List []Value

func (l List) Kind() Kind { return KindList }
func (l List) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(List)
	if !ok {
		return false, false
	}
	return slices.EqualFunc(l, o, Identical), true
}
func (l List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(literal(e))
	}
	b.WriteByte(']')
	return b.String()
}

// Entry is a single key/value pair of a Context.
type Entry struct {
	Key   string
	Value Value
}

// Context is an ordered string keyed map. Keys keep their insertion order.
//
// A Context is immutable; With returns a modified copy.
type Context struct {
	keys   []string
	values map[string]Value
}

// NewContext builds a context from entries. A repeated key keeps its first
// position and takes the last value.
func NewContext(entries ...Entry) Context {
	c := Context{values: make(map[string]Value, len(entries))}
	for _, e := range entries {
		if _, ok := c.values[e.Key]; !ok {
			c.keys = append(c.keys, e.Key)
		}
		c.values[e.Key] = orUnknown(e.Value)
	}
	return c
}

func (c Context) Kind() Kind { return KindContext }

// Get returns the value stored under key.
func (c Context) Get(key string) (Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of entries.
func (c Context) Len() int {
	return len(c.keys)
}

// Keys returns the keys in insertion order.
func (c Context) Keys() []string {
	return slices.Clone(c.keys)
}

// Entries returns all entries in insertion order.
func (c Context) Entries() []Entry {
	entries := make([]Entry, 0, len(c.keys))
	for _, k := range c.keys {
		entries = append(entries, Entry{Key: k, Value: c.values[k]})
	}
	return entries
}

// With returns a copy of c with key set to v.
func (c Context) With(key string, v Value) Context {
	return NewContext(append(c.Entries(), Entry{Key: key, Value: v})...)
}

func (c Context) Equal(other Value) (eq bool, ok bool) {
	o, ok := other.(Context)
	if !ok {
		return false, false
	}
	if len(c.keys) != len(o.keys) {
		return false, true
	}
	for k, v := range c.values {
		ov, found := o.values[k]
		if !found || !Identical(v, ov) {
			return false, true
		}
	}
	return true, true
}
func (c Context) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		// strings.Builder Write implementation does not return error
		_, _ = fmt.Fprintf(&b, "%s: %s", k, literal(c.values[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// Lambda is a function value, such as the ordering predicate passed to sort.
type Lambda func(args ...Value) Value

func (f Lambda) Kind() Kind                            { return KindFunction }
func (f Lambda) Equal(other Value) (eq bool, ok bool) { return false, false }
func (f Lambda) String() string                        { return "function" }

// literal renders v the way it appears nested in a list or context.
func literal(v Value) string {
	if IsUnknown(v) {
		return "null"
	}
	if s, ok := v.(String); ok {
		return strconv.Quote(string(s))
	}
	return v.String()
}

func orUnknown(v Value) Value {
	if v == nil {
		return Unknown
	}
	return v
}

// arg returns the i-th argument as T.
//
// ok is false if the argument is missing or Unknown; err is set if it is
// present but of another type.
func arg[T Value](args []Value, i int) (v T, ok bool, err error) {
	if i >= len(args) || IsUnknown(args[i]) {
		return v, false, nil
	}
	v, ok = args[i].(T)
	if !ok {
		return v, false, fmt.Errorf("argument %d: unexpected %s %v", i+1, args[i].Kind(), args[i])
	}
	return v, true, nil
}

// listArgs implements the variadic sugar of aggregate functions: a single
// list argument is used as is, anything else is wrapped into a list.
func listArgs(args []Value) (List, bool) {
	if len(args) == 0 {
		return nil, false
	}
	if len(args) == 1 {
		if IsUnknown(args[0]) {
			return nil, false
		}
		if l, ok := args[0].(List); ok {
			return l, true
		}
	}
	return List(slices.Clone(args)), true
}
