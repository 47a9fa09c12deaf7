package feel

import (
	"errors"
	"fmt"
	"slices"
)

var errEmptyList = errors.New("empty list")

// position converts a 1-based or negative from the end position into a
// 0-based index. ok is false if the position is outside the list.
func position(n int, pos int64) (int, bool) {
	var i int64
	switch {
	case pos > 0:
		i = pos - 1
	case pos < 0:
		i = int64(n) + pos
	default:
		return 0, false
	}
	if i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}

func listContains(list List, v Value) Boolean {
	return Boolean(slices.ContainsFunc(list, func(e Value) bool { return Identical(e, v) }))
}

func appendItems(list List, items []Value) List {
	if len(items) == 0 {
		items = []Value{Unknown}
	}
	result := make(List, 0, len(list)+len(items))
	result = append(result, list...)
	for _, item := range items {
		result = append(result, orUnknown(item))
	}
	return result
}

// sublist returns length elements starting at position start. A missing
// length selects the rest of the list; a start outside the list selects
// nothing.
func sublist(list List, start int64, length *int64) List {
	from, ok := position(len(list), start)
	if !ok {
		return List{}
	}
	to := len(list)
	if length != nil {
		if *length <= 0 {
			return List{}
		}
		if *length < int64(to-from) {
			to = from + int(*length)
		}
	}
	return slices.Clone(list[from:to])
}

func concatenate(lists []Value) (List, error) {
	result := List{}
	for i, v := range lists {
		l, ok := v.(List)
		if !ok {
			return nil, fmt.Errorf("argument %d: expected list, got %s", i+1, orUnknown(v).Kind())
		}
		result = append(result, l...)
	}
	return result, nil
}

func insertBefore(list List, pos int64, item Value) List {
	i, ok := position(len(list), pos)
	if !ok {
		return slices.Clone(list)
	}
	return slices.Insert(slices.Clone(list), i, orUnknown(item))
}

func remove(list List, pos int64) List {
	i, ok := position(len(list), pos)
	if !ok {
		return slices.Clone(list)
	}
	return slices.Delete(slices.Clone(list), i, i+1)
}

func reverse(list List) List {
	result := slices.Clone(list)
	slices.Reverse(result)
	return result
}

func (l *Library) indexOf(list List, match Value) List {
	result := List{}
	for i, e := range list {
		if Identical(e, match) {
			result = append(result, l.numbers.FromInt(int64(i+1)))
		}
	}
	return result
}

func distinct(list List) List {
	result := List{}
	for _, e := range list {
		if !listContains(result, e) {
			result = append(result, e)
		}
	}
	return result
}

func union(lists []Value) (List, error) {
	all, err := concatenate(lists)
	if err != nil {
		return nil, err
	}
	return distinct(all), nil
}

// flatten descends into nested lists; other values, contexts included, are
// kept as they are.
func flatten(list List) List {
	result := List{}
	for _, e := range list {
		if nested, ok := e.(List); ok {
			result = append(result, flatten(nested)...)
		} else {
			result = append(result, orUnknown(e))
		}
	}
	return result
}

// sortList sorts a copy of list stably. precedes(a, b) reports whether a
// goes before b; when it does not, equal values tie and all other pairs
// order a after b.
func sortList(list List, precedes Lambda) List {
	result := slices.Clone(list)
	slices.SortStableFunc(result, func(a, b Value) int {
		if before, ok := precedes(a, b).(Boolean); ok && bool(before) {
			return -1
		}
		if Identical(a, b) {
			return 0
		}
		return 1
	})
	return result
}

func (l *Library) numbersOf(list List) ([]Number, error) {
	if len(list) == 0 {
		return nil, errEmptyList
	}
	numbers := make([]Number, 0, len(list))
	for i, e := range list {
		n, ok := e.(Number)
		if !ok {
			return nil, fmt.Errorf("element %d: expected number, got %s", i+1, orUnknown(e).Kind())
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// extreme returns the element n for which cmp(n, current) is want against
// all others.
func (l *Library) extreme(list List, want int) (Value, error) {
	numbers, err := l.numbersOf(list)
	if err != nil {
		return nil, err
	}
	result := numbers[0]
	for _, n := range numbers[1:] {
		c, err := l.numbers.Cmp(n, result)
		if err != nil {
			return nil, err
		}
		if c == want {
			result = n
		}
	}
	return result, nil
}

func (l *Library) fold(list List, op func(a, b Number) (Number, error)) (Number, error) {
	numbers, err := l.numbersOf(list)
	if err != nil {
		return nil, err
	}
	result := numbers[0]
	for _, n := range numbers[1:] {
		if result, err = op(result, n); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (l *Library) sum(list List) (Value, error) {
	return l.fold(list, l.numbers.Add)
}

func (l *Library) product(list List) (Value, error) {
	return l.fold(list, l.numbers.Multiply)
}

func (l *Library) mean(list List) (Number, error) {
	total, err := l.fold(list, l.numbers.Add)
	if err != nil {
		return nil, err
	}
	return l.numbers.Divide(total, l.numbers.FromInt(int64(len(list))))
}

func (l *Library) sorted(list List) ([]Number, error) {
	numbers, err := l.numbersOf(list)
	if err != nil {
		return nil, err
	}
	numbers = slices.Clone(numbers)
	var cmpErr error
	slices.SortStableFunc(numbers, func(a, b Number) int {
		c, err := l.numbers.Cmp(a, b)
		if err != nil {
			cmpErr = err
		}
		return c
	})
	return numbers, cmpErr
}

func (l *Library) median(list List) (Value, error) {
	numbers, err := l.sorted(list)
	if err != nil {
		return nil, err
	}
	mid := len(numbers) / 2
	if len(numbers)%2 == 1 {
		return numbers[mid], nil
	}
	total, err := l.numbers.Add(numbers[mid-1], numbers[mid])
	if err != nil {
		return nil, err
	}
	return l.numbers.Divide(total, l.numbers.FromInt(2))
}

// stddev is the sample standard deviation.
func (l *Library) stddev(list List) (Value, error) {
	numbers, err := l.numbersOf(list)
	if err != nil {
		return nil, err
	}
	if len(numbers) < 2 {
		return nil, fmt.Errorf("standard deviation of %d values", len(numbers))
	}
	avg, err := l.mean(list)
	if err != nil {
		return nil, err
	}
	squares := l.numbers.FromInt(0)
	for _, n := range numbers {
		diff, err := l.numbers.Subtract(n, avg)
		if err != nil {
			return nil, err
		}
		sq, err := l.numbers.Multiply(diff, diff)
		if err != nil {
			return nil, err
		}
		if squares, err = l.numbers.Add(squares, sq); err != nil {
			return nil, err
		}
	}
	variance, err := l.numbers.Divide(squares, l.numbers.FromInt(int64(len(numbers)-1)))
	if err != nil {
		return nil, err
	}
	return l.numbers.Sqrt(variance)
}

// mode returns all values sharing the highest frequency, in order of their
// first occurrence.
func (l *Library) mode(list List) (Value, error) {
	numbers, err := l.numbersOf(list)
	if err != nil {
		return nil, err
	}
	var values []Number
	var counts []int
	for _, n := range numbers {
		found := false
		for i, v := range values {
			c, err := l.numbers.Cmp(n, v)
			if err != nil {
				return nil, err
			}
			if c == 0 {
				counts[i]++
				found = true
				break
			}
		}
		if !found {
			values = append(values, n)
			counts = append(counts, 1)
		}
	}
	top := slices.Max(counts)
	result := List{}
	for i, v := range values {
		if counts[i] == top {
			result = append(result, v)
		}
	}
	return result, nil
}

func getValue(c Context, key string) Value {
	v, ok := c.Get(key)
	if !ok {
		return Unknown
	}
	return v
}

// getEntries returns the entries of c as a list of contexts with the keys
// "key" and "value".
func getEntries(c Context) List {
	result := List{}
	for _, e := range c.Entries() {
		result = append(result, NewContext(Entry{Key: "key", Value: String(e.Key)}, Entry{Key: "value", Value: e.Value}))
	}
	return result
}

// contextOf builds a context from a list of contexts with the keys "key"
// and "value".
func contextOf(entries List) (Context, error) {
	result := make([]Entry, 0, len(entries))
	for i, e := range entries {
		c, ok := e.(Context)
		if !ok {
			return Context{}, fmt.Errorf("entry %d: expected context, got %s", i+1, orUnknown(e).Kind())
		}
		k, _ := c.Get("key")
		key, ok := k.(String)
		if !ok {
			return Context{}, fmt.Errorf("entry %d: missing string key", i+1)
		}
		v, ok := c.Get("value")
		if !ok {
			return Context{}, fmt.Errorf("entry %d: missing value", i+1)
		}
		result = append(result, Entry{Key: string(key), Value: v})
	}
	return NewContext(result...), nil
}

func contextMerge(contexts List) (Context, error) {
	var entries []Entry
	for i, e := range contexts {
		c, ok := e.(Context)
		if !ok {
			return Context{}, fmt.Errorf("argument %d: expected context, got %s", i+1, orUnknown(e).Kind())
		}
		entries = append(entries, c.Entries()...)
	}
	return NewContext(entries...), nil
}
