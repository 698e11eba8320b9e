// Package ingredient holds the deduplicated ingredient collection of a session
// and the normalization rule shared by model output and manual entry.
package ingredient

import "strings"

// ParseList splits comma-separated text into trimmed, non-empty names with
// exact duplicates removed. First-occurrence order is preserved.
func ParseList(text string) []string {
	parts := strings.Split(text, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

// Set is a case-sensitive, insertion-ordered set of ingredient names.
// It is not safe for concurrent use; the owning session serializes access.
type Set struct {
	order []string
	index map[string]struct{}
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{index: make(map[string]struct{})}
}

// AddOne trims name and inserts it. It reports whether the name was new;
// empty or whitespace-only input is ignored.
func (s *Set) AddOne(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.order = append(s.order, name)
	return true
}

// Add merges names into the set.
func (s *Set) Add(names ...string) {
	for _, n := range names {
		s.AddOne(n)
	}
}

// AddText merges manually entered comma-separated text and returns only the
// names that were not already present.
func (s *Set) AddText(text string) []string {
	added := make([]string, 0)
	for _, n := range ParseList(text) {
		if s.AddOne(n) {
			added = append(added, n)
		}
	}
	return added
}

// Remove deletes name if present.
func (s *Set) Remove(name string) {
	if _, ok := s.index[name]; !ok {
		return
	}
	delete(s.index, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether name is in the set. The match is exact.
func (s *Set) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of names.
func (s *Set) Len() int { return len(s.order) }

// Snapshot returns a copy of the names in first-seen order.
func (s *Set) Snapshot() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
