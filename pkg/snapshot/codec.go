// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package snapshot persists dependency relations between compiler runs.
//
// Snapshots are stored in an embedded BadgerDB. Each payload is canonical
// JSON (struct field order plus sorted edge lists) wrapped in an envelope
// carrying a BLAKE3 checksum, so equal relations always produce identical
// bytes and corruption is detected on load.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"

	"lukechampine.com/blake3"

	"github.com/AleutianAI/deptrace/pkg/deps"
	"github.com/AleutianAI/deptrace/pkg/relation"
)

// codecVersion identifies the wire layout. Bump on incompatible change.
const codecVersion = 1

// wireEdge is one (left, right) pair of a relation.
type wireEdge struct {
	Left  string `json:"l"`
	Right string `json:"r"`
}

// wireSource is the two-relation source dependency group.
type wireSource struct {
	Internal []wireEdge `json:"internal"`
	External []wireEdge `json:"external"`
}

// wireRelations is the versioned on-disk form of deps.Relations.
type wireRelations struct {
	Version         int        `json:"version"`
	SrcProd         []wireEdge `json:"src_prod"`
	BinaryDep       []wireEdge `json:"binary_dep"`
	Direct          wireSource `json:"direct"`
	PublicInherited wireSource `json:"public_inherited"`
	Classes         []wireEdge `json:"classes"`
}

// encodeEdges flattens a relation to a sorted edge list. Sorting makes the
// encoding canonical: equal relations yield identical bytes.
func encodeEdges[L, R ~string](rel relation.Relation[L, R]) []wireEdge {
	edges := rel.Edges()
	out := make([]wireEdge, len(edges))
	for i, e := range edges {
		out[i] = wireEdge{Left: string(e.Left), Right: string(e.Right)}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Right < out[j].Right
	})
	return out
}

func decodeEdges[L, R ~string](edges []wireEdge) relation.Relation[L, R] {
	rel := relation.New[L, R]()
	for _, e := range edges {
		rel = rel.Add(L(e.Left), R(e.Right))
	}
	return rel
}

func encodeSource(s deps.Source) wireSource {
	return wireSource{
		Internal: encodeEdges(s.Internal),
		External: encodeEdges(s.External),
	}
}

func decodeSource(w wireSource) deps.Source {
	return deps.Source{
		Internal: decodeEdges[deps.SourceID, deps.SourceID](w.Internal),
		External: decodeEdges[deps.SourceID, deps.ClassName](w.External),
	}
}

// Encode serializes rel to canonical JSON.
//
// Outputs:
//
//	[]byte - Canonical payload. Structurally equal relations encode to
//	identical bytes.
//	error - Non-nil only on a marshalling failure, which indicates a bug.
func Encode(rel deps.Relations) ([]byte, error) {
	w := wireRelations{
		Version:         codecVersion,
		SrcProd:         encodeEdges(rel.SrcProd()),
		BinaryDep:       encodeEdges(rel.BinaryDep()),
		Direct:          encodeSource(rel.Direct()),
		PublicInherited: encodeSource(rel.PublicInherited()),
		Classes:         encodeEdges(rel.Classes()),
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode deserializes a payload produced by Encode.
//
// Outputs:
//
//	deps.Relations - The decoded relations.
//	error - ErrCorrupt when the payload is not valid JSON,
//	ErrUnsupportedVersion when written by an incompatible codec.
func Decode(data []byte) (deps.Relations, error) {
	var w wireRelations
	if err := json.Unmarshal(data, &w); err != nil {
		return deps.Empty(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if w.Version != codecVersion {
		return deps.Empty(), fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, w.Version, codecVersion)
	}

	return deps.New(
		decodeEdges[deps.SourceID, deps.ProductID](w.SrcProd),
		decodeEdges[deps.SourceID, deps.BinaryID](w.BinaryDep),
		decodeSource(w.Direct),
		decodeSource(w.PublicInherited),
		decodeEdges[deps.SourceID, deps.ClassName](w.Classes),
	), nil
}

// Checksum returns the BLAKE3 hash of a payload as raw bytes.
func Checksum(data []byte) []byte {
	sum := blake3.Sum256(data)
	return sum[:]
}
