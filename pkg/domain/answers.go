package domain

import "sort"

// Answers maps a question id to the selected option token.
type Answers map[string]string

// Get returns the recorded value, or "" when the question is unanswered.
func (a Answers) Get(id string) string {
	if a == nil {
		return ""
	}
	return a[id]
}

// Is reports whether question id was answered with value.
func (a Answers) Is(id, value string) bool {
	v, ok := a[id]
	return ok && v == value
}

// Has reports whether question id has an answer.
func (a Answers) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Keys returns the answered ids in lexical order.
func (a Answers) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
