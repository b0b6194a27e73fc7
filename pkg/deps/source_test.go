// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package deps

import (
	"testing"

	"github.com/AleutianAI/deptrace/pkg/relation"
)

func TestSource_Zero(t *testing.T) {
	var s Source

	if !s.IsEmpty() {
		t.Error("zero Source should be empty")
	}
	if !s.Equal(NewSource()) {
		t.Error("zero Source should equal NewSource()")
	}
	if s.Internal.Forward("a").Len() != 0 || s.External.Forward("a").Len() != 0 {
		t.Error("lookups on empty Source should yield empty sets")
	}
}

func TestSource_Add(t *testing.T) {
	s := NewSource().
		AddInternal("b", []SourceID{"a", "c"}).
		AddExternal("b", "lib.X").
		AddExternal("a", "lib.Y")

	if !s.Internal.Forward("b").Equal(relation.NewSet[SourceID]("a", "c")) {
		t.Errorf("Internal.Forward(b) = %v", s.Internal.Forward("b").Slice())
	}
	if !s.Internal.Reverse("a").Equal(relation.NewSet[SourceID]("b")) {
		t.Errorf("Internal.Reverse(a) = %v", s.Internal.Reverse("a").Slice())
	}
	if !s.External.Reverse("lib.X").Equal(relation.NewSet[SourceID]("b")) {
		t.Errorf("External.Reverse(lib.X) = %v", s.External.Reverse("lib.X").Slice())
	}
}

func TestSource_RemoveLeft(t *testing.T) {
	s := NewSource().
		AddInternal("b", []SourceID{"a"}).
		AddInternal("c", []SourceID{"b"}).
		AddExternal("b", "lib.X").
		AddExternal("c", "lib.X")

	got := s.RemoveLeft(relation.NewSet[SourceID]("b"))

	if got.Internal.Forward("b").Len() != 0 || got.External.Forward("b").Len() != 0 {
		t.Error("rows keyed by b should be gone from both relations")
	}
	if !got.Internal.Has("c", "b") {
		t.Error("c's edge pointing at removed b should survive")
	}
	if !got.External.Reverse("lib.X").Equal(relation.NewSet[SourceID]("c")) {
		t.Errorf("External.Reverse(lib.X) = %v, expected {c}", got.External.Reverse("lib.X").Slice())
	}
	// Receiver untouched.
	if !s.External.Has("b", "lib.X") {
		t.Error("RemoveLeft mutated the receiver")
	}
}

func TestSource_Union(t *testing.T) {
	a := NewSource().AddInternal("b", []SourceID{"a"}).AddExternal("b", "lib.X")
	b := NewSource().AddInternal("c", []SourceID{"a"}).AddExternal("b", "lib.Y")

	got := a.Union(b)

	if !got.Internal.Reverse("a").Equal(relation.NewSet[SourceID]("b", "c")) {
		t.Errorf("Internal.Reverse(a) = %v", got.Internal.Reverse("a").Slice())
	}
	if !got.External.Forward("b").Equal(relation.NewSet[ClassName]("lib.X", "lib.Y")) {
		t.Errorf("External.Forward(b) = %v", got.External.Forward("b").Slice())
	}
	if !got.Equal(b.Union(a)) {
		t.Error("Source.Union should be commutative")
	}
	if !a.Union(NewSource()).Equal(a) {
		t.Error("empty Source should be the identity of Union")
	}
}
