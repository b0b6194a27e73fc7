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

func TestRelations_Empty(t *testing.T) {
	r := Empty()

	if !r.IsEmpty() {
		t.Error("Empty() should report IsEmpty")
	}
	if r.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, expected 0", r.EdgeCount())
	}
	if r.AllSources().Len() != 0 || r.AllProducts().Len() != 0 ||
		r.AllBinaryDeps().Len() != 0 || r.AllInternalDeps().Len() != 0 ||
		r.AllExternalDeps().Len() != 0 {
		t.Error("all projections of Empty() should be empty")
	}
	if r.Products("a.java").Len() != 0 || r.Produced("A.class").Len() != 0 ||
		r.BinaryDeps("a.java").Len() != 0 || r.UsesBinary("rt.jar").Len() != 0 ||
		r.InternalDeps("a.java").Len() != 0 || r.UsesInternal("a.java").Len() != 0 ||
		r.ExternalDeps("a.java").Len() != 0 || r.UsesExternal("lib.X").Len() != 0 ||
		r.ClassNames("a.java").Len() != 0 || r.DefinesClass("com.A").Len() != 0 {
		t.Error("every read accessor on Empty() should yield an empty set")
	}
	if !r.Equal(Empty()) {
		t.Error("Empty() should equal itself")
	}
}

// TestRelations_BuildSequence walks one realistic accumulate → query →
// prune sequence, checking each intermediate value.
func TestRelations_BuildSequence(t *testing.T) {
	// Step 1: compiling A produced P1 holding class com.A.
	r1 := Empty().AddProduct("A", "P1", "com.A")

	t.Run("product and class recorded", func(t *testing.T) {
		if !r1.Products("A").Equal(relation.NewSet[ProductID]("P1")) {
			t.Errorf("Products(A) = %v", r1.Products("A").Slice())
		}
		if !r1.Produced("P1").Equal(relation.NewSet[SourceID]("A")) {
			t.Errorf("Produced(P1) = %v", r1.Produced("P1").Slice())
		}
		if !r1.ClassNames("A").Equal(relation.NewSet[ClassName]("com.A")) {
			t.Errorf("ClassNames(A) = %v", r1.ClassNames("A").Slice())
		}
		if !r1.DefinesClass("com.A").Equal(relation.NewSet[SourceID]("A")) {
			t.Errorf("DefinesClass(com.A) = %v", r1.DefinesClass("com.A").Slice())
		}
		if !r1.AllSources().Equal(relation.NewSet[SourceID]("A")) {
			t.Error("A should appear in AllSources after its first product")
		}
	})

	// Step 2: B depends on A, through inheritance.
	r2 := r1.AddInternalDeps("B", []SourceID{"A"}, []SourceID{"A"})

	t.Run("internal dep visible direct and inherited", func(t *testing.T) {
		if !r2.InternalDeps("B").Equal(relation.NewSet[SourceID]("A")) {
			t.Errorf("InternalDeps(B) = %v", r2.InternalDeps("B").Slice())
		}
		if !r2.UsesInternal("A").Equal(relation.NewSet[SourceID]("B")) {
			t.Errorf("UsesInternal(A) = %v", r2.UsesInternal("A").Slice())
		}
		inherited := r2.PublicInherited().Internal.Forward("B")
		if !inherited.Equal(relation.NewSet[SourceID]("A")) {
			t.Errorf("inherited internal deps of B = %v, expected {A}", inherited.Slice())
		}
	})

	// Step 3: B also references lib.X, not through inheritance.
	r3 := r2.AddExternalDep("B", "lib.X", false)

	t.Run("non-inherited external dep stays out of inherited view", func(t *testing.T) {
		if !r3.ExternalDeps("B").Has("lib.X") {
			t.Errorf("ExternalDeps(B) = %v, expected to contain lib.X", r3.ExternalDeps("B").Slice())
		}
		if !r3.UsesExternal("lib.X").Equal(relation.NewSet[SourceID]("B")) {
			t.Errorf("UsesExternal(lib.X) = %v", r3.UsesExternal("lib.X").Slice())
		}
		if r3.PublicInherited().External.Forward("B").Has("lib.X") {
			t.Error("lib.X must not appear in the inherited external view")
		}
	})

	// Step 4: B is invalidated and its rows dropped for recompilation.
	r4 := r3.RemoveSources(relation.NewSet[SourceID]("B"))

	t.Run("naive removal preserves dangling right-side references", func(t *testing.T) {
		if r4.InternalDeps("B").Len() != 0 {
			t.Errorf("InternalDeps(B) = %v, expected empty", r4.InternalDeps("B").Slice())
		}
		if r4.ExternalDeps("B").Len() != 0 {
			t.Errorf("ExternalDeps(B) = %v, expected empty", r4.ExternalDeps("B").Slice())
		}
		// A's row lists B as a dependent only through the reverse index of
		// edges B owned, which were dropped with B's rows. But edges owned
		// by OTHER sources that point at B must survive; build one to pin
		// the contract.
		r := r3.AddInternalDeps("C", []SourceID{"B"}, nil).
			RemoveSources(relation.NewSet[SourceID]("B"))
		if !r.UsesInternal("B").Equal(relation.NewSet[SourceID]("C")) {
			t.Errorf("UsesInternal(B) = %v, expected {C} to dangle", r.UsesInternal("B").Slice())
		}
		if !r.InternalDeps("C").Has("B") {
			t.Error("C's forward edge at removed B should survive")
		}
	})
}

func TestRelations_AddExternalDep_Inherited(t *testing.T) {
	r := Empty().AddExternalDep("B", "api.Base", true)

	if !r.ExternalDeps("B").Has("api.Base") {
		t.Error("inherited external dep should also be a direct one")
	}
	if !r.PublicInherited().External.Forward("B").Has("api.Base") {
		t.Error("inherited external dep missing from inherited view")
	}
	if !r.UsesExternal("api.Base").Equal(relation.NewSet[SourceID]("B")) {
		t.Errorf("UsesExternal(api.Base) = %v", r.UsesExternal("api.Base").Slice())
	}
}

// TestRelations_AddInternalDeps_NoAutoFold pins the documented asymmetry
// between the two dependency entry points: the internal variant records the
// sets exactly as given and never folds inherited into direct.
func TestRelations_AddInternalDeps_NoAutoFold(t *testing.T) {
	// Caller violates the precondition: inherited not listed in direct.
	r := Empty().AddInternalDeps("B", []SourceID{"C"}, []SourceID{"A"})

	if r.InternalDeps("B").Has("A") {
		t.Error("direct view must not receive the inherited set automatically")
	}
	if !r.PublicInherited().Internal.Forward("B").Equal(relation.NewSet[SourceID]("A")) {
		t.Error("inherited view should hold exactly what was passed")
	}
	// The model accepted the broken value silently: that is the contract.
	if !r.InternalDeps("B").Equal(relation.NewSet[SourceID]("C")) {
		t.Errorf("InternalDeps(B) = %v, expected {C}", r.InternalDeps("B").Slice())
	}
}

// TestRelations_InheritedSubsetMaintained runs a realistic call sequence
// with a well-behaved caller and checks the inherited ⊆ direct invariant
// holds for every source afterwards.
func TestRelations_InheritedSubsetMaintained(t *testing.T) {
	r := Empty().
		AddProduct("A", "A.class", "com.A").
		AddProduct("B", "B.class", "com.B").
		AddProduct("C", "C.class", "com.C").
		AddInternalDeps("B", []SourceID{"A"}, []SourceID{"A"}).
		AddInternalDeps("C", []SourceID{"A", "B"}, []SourceID{"B"}).
		AddExternalDep("C", "lib.Base", true).
		AddExternalDep("C", "lib.Util", false).
		AddExternalDep("A", "lib.IO", false)

	r = r.Union(
		Empty().
			AddProduct("D", "D.class", "com.D").
			AddInternalDeps("D", []SourceID{"C"}, []SourceID{"C"}),
	)
	r = r.RemoveSources(relation.NewSet[SourceID]("B"))

	inh := r.PublicInherited()
	dir := r.Direct()
	for src := range inh.Internal.LeftKeys() {
		for dep := range inh.Internal.Forward(src) {
			if !dir.Internal.Has(src, dep) {
				t.Errorf("inherited internal edge (%s, %s) missing from direct", src, dep)
			}
		}
	}
	for src := range inh.External.LeftKeys() {
		for dep := range inh.External.Forward(src) {
			if !dir.External.Has(src, dep) {
				t.Errorf("inherited external edge (%s, %s) missing from direct", src, dep)
			}
		}
	}
}

// TestRelations_Union_NoReclassification pins the naive union contract: an
// external dependency target that collides with a class name merged in
// from another group stays an external dependency.
func TestRelations_Union_NoReclassification(t *testing.T) {
	left := Empty().AddExternalDep("C", "com.D", false)
	right := Empty().AddProduct("D", "D.class", "com.D")

	for name, merged := range map[string]Relations{
		"left ∪ right": left.Union(right),
		"right ∪ left": right.Union(left),
	} {
		if !merged.UsesExternal("com.D").Equal(relation.NewSet[SourceID]("C")) {
			t.Errorf("%s: UsesExternal(com.D) = %v, expected {C}",
				name, merged.UsesExternal("com.D").Slice())
		}
		if !merged.ExternalDeps("C").Has("com.D") {
			t.Errorf("%s: external edge was reclassified away", name)
		}
		if !merged.DefinesClass("com.D").Equal(relation.NewSet[SourceID]("D")) {
			t.Errorf("%s: DefinesClass(com.D) = %v", name, merged.DefinesClass("com.D").Slice())
		}
		if merged.InternalDeps("C").Has("D") {
			t.Errorf("%s: union invented an internal edge", name)
		}
	}
}

func TestRelations_Union_Laws(t *testing.T) {
	a := Empty().
		AddProduct("A", "A.class", "com.A").
		AddBinaryDep("A", "rt.jar")
	b := Empty().
		AddProduct("B", "B.class", "com.B").
		AddInternalDeps("B", []SourceID{"A"}, []SourceID{"A"})
	c := Empty().
		AddExternalDep("C", "lib.X", false)

	if !a.Union(b).Equal(b.Union(a)) {
		t.Error("Union should be commutative")
	}
	if !a.Union(b).Union(c).Equal(a.Union(b.Union(c))) {
		t.Error("Union should be associative")
	}
	if !a.Union(Empty()).Equal(a) || !Empty().Union(a).Equal(a) {
		t.Error("Empty() should be the identity of Union")
	}
}

func TestRelations_BinaryDeps(t *testing.T) {
	r := Empty().
		AddBinaryDep("A", "rt.jar").
		AddBinaryDep("B", "rt.jar").
		AddBinaryDep("A", "guava.jar")

	if !r.BinaryDeps("A").Equal(relation.NewSet[BinaryID]("rt.jar", "guava.jar")) {
		t.Errorf("BinaryDeps(A) = %v", r.BinaryDeps("A").Slice())
	}
	if !r.UsesBinary("rt.jar").Equal(relation.NewSet[SourceID]("A", "B")) {
		t.Errorf("UsesBinary(rt.jar) = %v", r.UsesBinary("rt.jar").Slice())
	}
	if !r.AllBinaryDeps().Equal(relation.NewSet[BinaryID]("rt.jar", "guava.jar")) {
		t.Errorf("AllBinaryDeps = %v", r.AllBinaryDeps().Slice())
	}
}

func TestRelations_RoundTrip(t *testing.T) {
	r := Empty().
		AddProduct("A", "A.class", "com.A").
		AddProduct("A", "A$1.class", "com.A$1").
		AddProduct("B", "B.class", "com.B").
		AddBinaryDep("A", "rt.jar").
		AddInternalDeps("B", []SourceID{"A"}, []SourceID{"A"}).
		AddExternalDep("B", "lib.X", false).
		AddExternalDep("A", "api.Base", true)

	rebuilt := New(r.SrcProd(), r.BinaryDep(), r.Direct(), r.PublicInherited(), r.Classes())

	if !rebuilt.Equal(r) {
		t.Error("reassembling from the five components should be lossless")
	}
	if !r.Equal(rebuilt) {
		t.Error("structural equality should be symmetric")
	}
}

func TestRelations_Immutability(t *testing.T) {
	base := Empty().AddProduct("A", "A.class", "com.A")

	_ = base.AddProduct("B", "B.class", "com.B")
	_ = base.AddBinaryDep("A", "rt.jar")
	_ = base.AddInternalDeps("C", []SourceID{"A"}, nil)
	_ = base.AddExternalDep("A", "lib.X", true)
	_ = base.RemoveSources(relation.NewSet[SourceID]("A"))

	want := Empty().AddProduct("A", "A.class", "com.A")
	if !base.Equal(want) {
		t.Error("mutators leaked into the receiver")
	}
}
