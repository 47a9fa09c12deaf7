package feel

// and is the three-valued conjunction over list. False dominates; an empty
// list or a list without a deciding false that holds Unknown or non-boolean
// elements yields Unknown.
func and(list List) Value {
	if len(list) == 0 {
		return Unknown
	}
	undecided := false
	for _, e := range list {
		b, ok := e.(Boolean)
		switch {
		case !ok:
			undecided = true
		case !bool(b):
			return Boolean(false)
		}
	}
	if undecided {
		return Unknown
	}
	return Boolean(true)
}

// or is the three-valued disjunction over list; true dominates.
func or(list List) Value {
	if len(list) == 0 {
		return Unknown
	}
	undecided := false
	for _, e := range list {
		b, ok := e.(Boolean)
		switch {
		case !ok:
			undecided = true
		case bool(b):
			return Boolean(true)
		}
	}
	if undecided {
		return Unknown
	}
	return Boolean(false)
}

func not(v Value) Value {
	b, ok := v.(Boolean)
	if !ok {
		return Unknown
	}
	return !b
}
