package model

import (
	"fmt"
	"strings"
)

// NameSet tracks accepted names case-insensitively.
type NameSet map[string]bool

func (s NameSet) Has(name string) bool {
	return s[strings.ToLower(name)]
}

func (s NameSet) Add(name string) {
	s[strings.ToLower(name)] = true
}

// UniqueName resolves raw into a name that does not collide case-insensitively
// with anything in used, then records it. An empty raw becomes
// "<prefix> <ordinal>"; a colliding candidate gets " (2)", " (3)", ... with the
// base truncated to leave room for the suffix. The numbered-suffix walk is
// unbounded only in theory; real collisions exhaust within the collection size.
func UniqueName(raw string, used NameSet, prefix string, maxLength, ordinal int) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		base = fmt.Sprintf("%s %d", prefix, ordinal)
	}
	base = Truncate(base, maxLength)

	candidate := base
	for suffixIndex := 2; used.Has(candidate); suffixIndex++ {
		suffix := fmt.Sprintf(" (%d)", suffixIndex)
		candidate = strings.TrimSpace(Truncate(base, maxLength-len(suffix)) + suffix)
	}
	used.Add(candidate)
	return candidate
}

// NextDefaultName returns the first "<prefix> N" (N in 1..999) not already
// used by existing, falling back to a timestamp suffix. The fallback can still
// collide under pathological input; accepted as-is.
func NextDefaultName(existing []string, prefix string) string {
	used := NameSet{}
	for _, name := range existing {
		used.Add(strings.TrimSpace(name))
	}
	for i := 1; i <= 999; i++ {
		candidate := fmt.Sprintf("%s %d", prefix, i)
		if !used.Has(candidate) {
			return candidate
		}
	}
	return fmt.Sprintf("%s %d", prefix, Now())
}

// OptionNames returns the current option names in display order.
func (m *DecisionModel) OptionNames() []string {
	out := make([]string, len(m.Options))
	for i, o := range m.Options {
		out[i] = o.Name
	}
	return out
}

// CriterionNames returns the current criterion names in display order.
func (m *DecisionModel) CriterionNames() []string {
	out := make([]string, len(m.Criteria))
	for i, c := range m.Criteria {
		out[i] = c.Name
	}
	return out
}
