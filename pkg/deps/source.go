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

// Source pairs the two relations that make up one kind of dependency edge:
// Internal (in-group source → in-group source) and External (in-group
// source → qualified class name outside the group).
//
// Relations uses Source twice: once for all direct dependencies and once
// for the inheritance-only subset. When paired that way the caller must
// keep the inherited Source an edge-wise subset of the direct one; see
// Relations.AddInternalDeps.
//
// The zero value is the empty Source.
type Source struct {
	// Internal relates a source to the in-group sources it depends on.
	Internal relation.Relation[SourceID, SourceID]

	// External relates a source to the qualified names of externally
	// compiled classes it depends on.
	External relation.Relation[SourceID, ClassName]
}

// NewSource returns the empty Source.
func NewSource() Source {
	return Source{}
}

// AddInternal returns a new Source with edges from src to each element of
// dependsOn added to the internal relation.
func (s Source) AddInternal(src SourceID, dependsOn []SourceID) Source {
	return Source{
		Internal: s.Internal.AddAll(src, dependsOn),
		External: s.External,
	}
}

// AddExternal returns a new Source with one edge from src to the external
// class dependsOn added to the external relation.
func (s Source) AddExternal(src SourceID, dependsOn ClassName) Source {
	return Source{
		Internal: s.Internal,
		External: s.External.Add(src, dependsOn),
	}
}

// RemoveLeft returns a new Source with the rows keyed by srcs dropped from
// both relations. Same asymmetric semantics as Relation.RemoveLeft: edges
// pointing at a member of srcs from some other row are preserved.
func (s Source) RemoveLeft(srcs relation.Set[SourceID]) Source {
	return Source{
		Internal: s.Internal.RemoveLeft(srcs),
		External: s.External.RemoveLeft(srcs),
	}
}

// Union returns the component-wise union of both Sources.
func (s Source) Union(other Source) Source {
	return Source{
		Internal: s.Internal.Union(other.Internal),
		External: s.External.Union(other.External),
	}
}

// Equal reports structural equality of both component relations.
func (s Source) Equal(other Source) bool {
	return s.Internal.Equal(other.Internal) && s.External.Equal(other.External)
}

// IsEmpty reports whether both component relations are empty.
func (s Source) IsEmpty() bool {
	return s.Internal.IsEmpty() && s.External.IsEmpty()
}
