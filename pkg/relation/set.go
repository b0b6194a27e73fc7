// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package relation

// Set is an unordered collection of comparable values.
//
// A nil Set behaves as an empty set for all read operations. Mutating
// methods (Add, Del) require a non-nil Set; use NewSet or Clone to obtain
// one. Relation getters return Sets that the caller owns outright, so
// mutating them never affects the Relation they came from.
type Set[T comparable] map[T]struct{}

// NewSet returns a Set containing the given values.
func NewSet[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Add inserts v and reports whether it was newly added.
func (s Set[T]) Add(v T) bool {
	if s.Has(v) {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Del removes v and reports whether it was present.
func (s Set[T]) Del(v T) bool {
	if !s.Has(v) {
		return false
	}
	delete(s, v)
	return true
}

// Len returns the number of values in the set.
func (s Set[T]) Len() int {
	return len(s)
}

// Slice returns the values in unspecified order.
func (s Set[T]) Slice() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// Clone returns an independent copy. Cloning a nil Set yields an empty,
// non-nil Set that is safe to mutate.
func (s Set[T]) Clone() Set[T] {
	out := make(Set[T], len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Union returns a new Set containing the values of both sets.
func (s Set[T]) Union(other Set[T]) Set[T] {
	out := make(Set[T], len(s)+len(other))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range other {
		out[v] = struct{}{}
	}
	return out
}

// Equal reports whether both sets contain exactly the same values.
// A nil Set equals an empty one.
func (s Set[T]) Equal(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}
