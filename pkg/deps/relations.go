// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package deps

import "github.com/AleutianAI/deptrace/pkg/relation"

// Relations aggregates every dependency relation tracked for one
// compilation group.
//
// # Components
//
//   - srcProd: source → product artifacts it generated
//   - binaryDep: source → binary (untracked) artifacts it depends on
//   - direct: every in-group and external dependency, of any origin
//   - publicInherited: the subset of direct arising from a publicly
//     visible supertype or interface relationship
//   - classes: source → fully-qualified class names it generated
//
// # Lifecycle
//
// Start from Empty, accumulate with the Add* methods once per analyzed
// source, combine partial results across compilation groups with Union,
// and prune sources scheduled for recompilation with RemoveSources. All
// methods return new values and never fail: unknown keys yield empty
// results.
//
// Thread Safety: Relations is deeply immutable and safe for concurrent use
// without synchronization.
type Relations struct {
	srcProd         relation.Relation[SourceID, ProductID]
	binaryDep       relation.Relation[SourceID, BinaryID]
	direct          Source
	publicInherited Source
	classes         relation.Relation[SourceID, ClassName]
}

// Empty returns the identity Relations value: every component relation is
// empty, and it is the identity of Union.
func Empty() Relations {
	return Relations{}
}

// New assembles a Relations from its five component relations, typically
// ones extracted from another value via the structural accessors. For any
// value r, New(r.SrcProd(), r.BinaryDep(), r.Direct(), r.PublicInherited(),
// r.Classes()) is structurally equal to r.
func New(
	srcProd relation.Relation[SourceID, ProductID],
	binaryDep relation.Relation[SourceID, BinaryID],
	direct Source,
	publicInherited Source,
	classes relation.Relation[SourceID, ClassName],
) Relations {
	return Relations{
		srcProd:         srcProd,
		binaryDep:       binaryDep,
		direct:          direct,
		publicInherited: publicInherited,
		classes:         classes,
	}
}

// =============================================================================
// Structural accessors (persistence layer surface)
// =============================================================================

// SrcProd returns the source → product relation.
func (r Relations) SrcProd() relation.Relation[SourceID, ProductID] {
	return r.srcProd
}

// BinaryDep returns the source → binary dependency relation.
func (r Relations) BinaryDep() relation.Relation[SourceID, BinaryID] {
	return r.binaryDep
}

// Direct returns the Source holding every in-group and external
// dependency, direct or inherited.
func (r Relations) Direct() Source {
	return r.direct
}

// PublicInherited returns the Source holding only dependencies introduced
// through a publicly visible supertype or interface.
func (r Relations) PublicInherited() Source {
	return r.publicInherited
}

// Classes returns the source → generated class name relation.
func (r Relations) Classes() relation.Relation[SourceID, ClassName] {
	return r.classes
}

// =============================================================================
// Read API
// =============================================================================

// AllSources returns every source with at least one recorded product.
func (r Relations) AllSources() relation.Set[SourceID] {
	return r.srcProd.LeftKeys()
}

// AllProducts returns every recorded product artifact.
func (r Relations) AllProducts() relation.Set[ProductID] {
	return r.srcProd.RightKeys()
}

// AllBinaryDeps returns every recorded binary dependency target.
func (r Relations) AllBinaryDeps() relation.Set[BinaryID] {
	return r.binaryDep.RightKeys()
}

// AllInternalDeps returns every in-group source that something depends on.
func (r Relations) AllInternalDeps() relation.Set[SourceID] {
	return r.direct.Internal.RightKeys()
}

// AllExternalDeps returns every external class name that something depends
// on.
func (r Relations) AllExternalDeps() relation.Set[ClassName] {
	return r.direct.External.RightKeys()
}

// ClassNames returns the fully-qualified class names generated by src.
func (r Relations) ClassNames(src SourceID) relation.Set[ClassName] {
	return r.classes.Forward(src)
}

// DefinesClass returns the sources that generated the class name. The
// result is typically a single source but the model does not guarantee it.
func (r Relations) DefinesClass(name ClassName) relation.Set[SourceID] {
	return r.classes.Reverse(name)
}

// Products returns the artifacts generated by src.
func (r Relations) Products(src SourceID) relation.Set[ProductID] {
	return r.srcProd.Forward(src)
}

// Produced returns the sources that generated the product.
func (r Relations) Produced(prod ProductID) relation.Set[SourceID] {
	return r.srcProd.Reverse(prod)
}

// BinaryDeps returns the binary artifacts src depends on.
func (r Relations) BinaryDeps(src SourceID) relation.Set[BinaryID] {
	return r.binaryDep.Forward(src)
}

// UsesBinary returns the sources depending on the binary artifact.
func (r Relations) UsesBinary(dep BinaryID) relation.Set[SourceID] {
	return r.binaryDep.Reverse(dep)
}

// InternalDeps returns the in-group sources src depends on. This is the
// direct view: because inherited dependencies are a subset of direct ones,
// it covers direct and inherited combined.
func (r Relations) InternalDeps(src SourceID) relation.Set[SourceID] {
	return r.direct.Internal.Forward(src)
}

// UsesInternal returns the in-group sources that depend on dep.
func (r Relations) UsesInternal(dep SourceID) relation.Set[SourceID] {
	return r.direct.Internal.Reverse(dep)
}

// ExternalDeps returns the external class names src depends on.
func (r Relations) ExternalDeps(src SourceID) relation.Set[ClassName] {
	return r.direct.External.Forward(src)
}

// UsesExternal returns the sources that depend on the external class name.
func (r Relations) UsesExternal(dep ClassName) relation.Set[SourceID] {
	return r.direct.External.Reverse(dep)
}

// =============================================================================
// Write API
// =============================================================================

// AddProduct returns a new Relations recording that compiling src generated
// the artifact prod holding the class name. A source gains its first
// product here, so this call is also what makes it appear in AllSources.
func (r Relations) AddProduct(src SourceID, prod ProductID, name ClassName) Relations {
	out := r
	out.srcProd = r.srcProd.Add(src, prod)
	out.classes = r.classes.Add(src, name)
	return out
}

// AddBinaryDep returns a new Relations recording that src depends on the
// binary artifact dependsOn.
func (r Relations) AddBinaryDep(src SourceID, dependsOn BinaryID) Relations {
	out := r
	out.binaryDep = r.binaryDep.Add(src, dependsOn)
	return out
}

// AddExternalDep returns a new Relations recording that src depends on the
// externally compiled class dependsOn.
//
// The edge is always added to the direct external relation; when inherited
// is true it is additionally added to the inherited external relation.
// Direct is the superset capturing every reference and inherited is the
// strictly narrower classification, so a single call keeps the
// inherited ⊆ direct invariant for external edges by construction — the
// caller never records an inherited edge twice.
func (r Relations) AddExternalDep(src SourceID, dependsOn ClassName, inherited bool) Relations {
	out := r
	out.direct = r.direct.AddExternal(src, dependsOn)
	if inherited {
		out.publicInherited = r.publicInherited.AddExternal(src, dependsOn)
	}
	return out
}

// AddInternalDeps returns a new Relations recording src's in-group
// dependencies: directDependsOn goes to the direct internal relation and
// inheritedDependsOn to the inherited internal relation, both exactly as
// given.
//
// Precondition (caller-enforced, not validated):
// inheritedDependsOn ⊆ directDependsOn. Unlike AddExternalDep, this call
// does NOT fold the inherited set into the direct set; the caller must
// list every inherited dependency in directDependsOn too. Passing an
// inherited source that is missing from directDependsOn silently breaks
// the inherited ⊆ direct invariant for src, which surfaces later as
// under-recompilation in the consuming invalidation engine.
func (r Relations) AddInternalDeps(src SourceID, directDependsOn, inheritedDependsOn []SourceID) Relations {
	out := r
	out.direct = r.direct.AddInternal(src, directDependsOn)
	out.publicInherited = r.publicInherited.AddInternal(src, inheritedDependsOn)
	return out
}

// Union returns the component-wise union of both values.
//
// Union is naive: if a class name recorded in the classes relation of one
// side matches an external dependency target of the other, the external
// edge is NOT reclassified into an internal one. Reconciling such overlaps
// after merging compilation groups is the caller's responsibility.
func (r Relations) Union(other Relations) Relations {
	return Relations{
		srcProd:         r.srcProd.Union(other.srcProd),
		binaryDep:       r.binaryDep.Union(other.binaryDep),
		direct:          r.direct.Union(other.direct),
		publicInherited: r.publicInherited.Union(other.publicInherited),
		classes:         r.classes.Union(other.classes),
	}
}

// RemoveSources returns a new Relations with the rows keyed by sources
// dropped from every component relation. Callers use it to clear stale
// entries for sources about to be recompiled, before re-adding fresh ones.
//
// Removal is naive in the same way Relation.RemoveLeft is: edges held by
// other sources that point AT a removed source survive, on both the
// forward and reverse index. Internal edges are not externalized and
// dangling references remain until the caller re-records the removed
// sources.
func (r Relations) RemoveSources(sources relation.Set[SourceID]) Relations {
	return Relations{
		srcProd:         r.srcProd.RemoveLeft(sources),
		binaryDep:       r.binaryDep.RemoveLeft(sources),
		direct:          r.direct.RemoveLeft(sources),
		publicInherited: r.publicInherited.RemoveLeft(sources),
		classes:         r.classes.RemoveLeft(sources),
	}
}

// Equal reports structural equality over all five component relations.
func (r Relations) Equal(other Relations) bool {
	return r.srcProd.Equal(other.srcProd) &&
		r.binaryDep.Equal(other.binaryDep) &&
		r.direct.Equal(other.direct) &&
		r.publicInherited.Equal(other.publicInherited) &&
		r.classes.Equal(other.classes)
}

// IsEmpty reports whether every component relation is empty.
func (r Relations) IsEmpty() bool {
	return r.srcProd.IsEmpty() &&
		r.binaryDep.IsEmpty() &&
		r.direct.IsEmpty() &&
		r.publicInherited.IsEmpty() &&
		r.classes.IsEmpty()
}

// EdgeCount returns the total number of edges across all five components.
// Inherited edges count separately from their direct counterparts.
func (r Relations) EdgeCount() int {
	return r.srcProd.Size() +
		r.binaryDep.Size() +
		r.direct.Internal.Size() + r.direct.External.Size() +
		r.publicInherited.Internal.Size() + r.publicInherited.External.Size() +
		r.classes.Size()
}
