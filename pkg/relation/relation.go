// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package relation provides an immutable bidirectional multimap.
//
// A Relation[L, R] maps left keys to sets of right keys and simultaneously
// maintains the inverse mapping, so both Forward and Reverse lookups are
// O(1). Every update returns a new value; existing values are never mutated.
// This makes a Relation safe to share across goroutines with no
// synchronization: concurrent workers each build their own value and a
// coordinator combines them with Union afterwards.
//
// # Set Semantics
//
// Edges have no multiplicity. Inserting the same (left, right) pair twice
// yields a Relation structurally equal to inserting it once.
//
// # Structural Sharing
//
// Updates copy only the rows and columns they touch; untouched inner sets
// are shared between the old and new value. Inner sets are never written in
// place by any code path, which is what makes the sharing sound.
package relation

// Edge is a single (left, right) pair of a Relation.
type Edge[L, R comparable] struct {
	Left  L
	Right R
}

// Relation is an immutable bidirectional multimap between comparable key
// types.
//
// The zero value is the empty relation and is ready to use. All operations
// are total: looking up an unknown key yields an empty set, never an error.
//
// Invariant: for every pair (l, r), r ∈ Forward(l) ⇔ l ∈ Reverse(r).
//
// Thread Safety: a Relation value is deeply immutable and safe for
// concurrent use without synchronization.
type Relation[L, R comparable] struct {
	forward map[L]Set[R]
	reverse map[R]Set[L]
}

// New returns the empty relation. Equivalent to the zero value; provided
// for call sites that read better with an explicit constructor.
func New[L, R comparable]() Relation[L, R] {
	return Relation[L, R]{}
}

// Add returns a new Relation with the edge (left, right) inserted into both
// the forward and reverse index. Adding an existing edge returns a
// structurally equal value.
func (r Relation[L, R]) Add(left L, right R) Relation[L, R] {
	return r.AddAll(left, []R{right})
}

// AddAll returns a new Relation with an edge from left to each element of
// rights. An empty rights slice returns the receiver unchanged: a left key
// is only ever recorded once it has at least one edge.
func (r Relation[L, R]) AddAll(left L, rights []R) Relation[L, R] {
	if len(rights) == 0 {
		return r
	}

	fwd := cloneRows(r.forward)
	rev := cloneRows(r.reverse)

	row := r.forward[left].Clone()
	for _, right := range rights {
		if !row.Add(right) {
			continue
		}
		col := rev[right].Clone()
		col.Add(left)
		rev[right] = col
	}
	fwd[left] = row

	return Relation[L, R]{forward: fwd, reverse: rev}
}

// Forward returns the set of right keys related to left. The result is a
// copy owned by the caller; it is empty (never nil panics, never an error)
// when left is unknown.
func (r Relation[L, R]) Forward(left L) Set[R] {
	return r.forward[left].Clone()
}

// Reverse returns the set of left keys related to right. The result is a
// copy owned by the caller; empty when right is unknown.
func (r Relation[L, R]) Reverse(right R) Set[L] {
	return r.reverse[right].Clone()
}

// Has reports whether the edge (left, right) is present.
func (r Relation[L, R]) Has(left L, right R) bool {
	return r.forward[left].Has(right)
}

// LeftKeys returns the distinct left keys with at least one edge.
func (r Relation[L, R]) LeftKeys() Set[L] {
	out := make(Set[L], len(r.forward))
	for l := range r.forward {
		out[l] = struct{}{}
	}
	return out
}

// RightKeys returns the distinct right keys with at least one edge.
func (r Relation[L, R]) RightKeys() Set[R] {
	out := make(Set[R], len(r.reverse))
	for right := range r.reverse {
		out[right] = struct{}{}
	}
	return out
}

// Edges enumerates every edge in unspecified order. Two structurally equal
// Relations enumerate the same edge set regardless of how they were built;
// only the ordering may differ.
func (r Relation[L, R]) Edges() []Edge[L, R] {
	out := make([]Edge[L, R], 0, r.Size())
	for l, row := range r.forward {
		for right := range row {
			out = append(out, Edge[L, R]{Left: l, Right: right})
		}
	}
	return out
}

// Size returns the number of edges.
func (r Relation[L, R]) Size() int {
	n := 0
	for _, row := range r.forward {
		n += len(row)
	}
	return n
}

// IsEmpty reports whether the relation has no edges.
func (r Relation[L, R]) IsEmpty() bool {
	return len(r.forward) == 0
}

// Union returns the edge-set union of both relations.
//
// Union is commutative and associative at the edge-set level, and the empty
// relation is its identity. When one side is empty the other is returned
// as-is, so folding many partial relations into an accumulator does not
// copy until there is something to merge.
func (r Relation[L, R]) Union(other Relation[L, R]) Relation[L, R] {
	if other.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return other
	}

	fwd := cloneRows(r.forward)
	for l, row := range other.forward {
		merged := fwd[l].Clone()
		for right := range row {
			merged[right] = struct{}{}
		}
		fwd[l] = merged
	}

	rev := cloneRows(r.reverse)
	for right, col := range other.reverse {
		merged := rev[right].Clone()
		for l := range col {
			merged[l] = struct{}{}
		}
		rev[right] = merged
	}

	return Relation[L, R]{forward: fwd, reverse: rev}
}

// RemoveLeft returns a new Relation with every row keyed by a member of
// lefts dropped, on both sides of the bidirectional map: the reverse
// entries for the dropped edges disappear too.
//
// Edges where a member of lefts appears only as a right-side value are NOT
// touched. This is deliberate (the operation removes rows, it does not
// scrub right-side references to the same values elsewhere) and callers
// depend on the asymmetry: after removing a source for recompilation, other
// rows still pointing at it keep their edges until the caller re-records
// them. Do not "fix" this by reclassifying or deleting right-side matches.
func (r Relation[L, R]) RemoveLeft(lefts Set[L]) Relation[L, R] {
	if lefts.Len() == 0 || r.IsEmpty() {
		return r
	}

	removed := false
	fwd := make(map[L]Set[R], len(r.forward))
	for l, row := range r.forward {
		if lefts.Has(l) {
			removed = true
			continue
		}
		fwd[l] = row
	}
	if !removed {
		return r
	}

	rev := cloneRows(r.reverse)
	for l := range lefts {
		row, ok := r.forward[l]
		if !ok {
			continue
		}
		for right := range row {
			col := rev[right].Clone()
			col.Del(l)
			if len(col) == 0 {
				delete(rev, right)
			} else {
				rev[right] = col
			}
		}
	}

	return Relation[L, R]{forward: fwd, reverse: rev}
}

// Equal reports structural equality: both relations hold exactly the same
// edge set. Construction order is irrelevant.
func (r Relation[L, R]) Equal(other Relation[L, R]) bool {
	if len(r.forward) != len(other.forward) {
		return false
	}
	for l, row := range r.forward {
		if !row.Equal(other.forward[l]) {
			return false
		}
	}
	return true
}

// cloneRows shallow-copies the outer map. Inner sets are shared with the
// source; callers must Clone any inner set before writing to it.
func cloneRows[K comparable, V comparable](rows map[K]Set[V]) map[K]Set[V] {
	out := make(map[K]Set[V], len(rows))
	for k, v := range rows {
		out[k] = v
	}
	return out
}
