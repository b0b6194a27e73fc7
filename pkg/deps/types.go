// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package deps models the dependency relations an incremental compiler
// records for each compiled source file: the products it produced, its
// binary dependencies, its in-group source dependencies (split into direct
// and inherited), its external class dependencies, and the class names it
// generated.
//
// Everything is exposed both forward (source → dependency) and reverse
// (dependency → dependents), because the consuming invalidation engine
// walks the graph backward from a changed file to find everything affected.
//
// # Value Semantics
//
// Relations and Source are immutable values. Every mutator returns a new
// value; nothing is ever updated in place. Worker goroutines compiling
// different source files can each accumulate an independent partial
// Relations with zero synchronization, and a coordinator merges them with
// Union (or MergeAll) afterwards.
//
// # Caller-Owned Invariants
//
// This package trusts its callers. In particular, AddInternalDeps does not
// validate that the inherited set is a subset of the direct set, and Union
// and RemoveSources are deliberately naive (no reclassification, no
// scrubbing of dangling references). The individual methods document the
// consequences of violating these contracts.
package deps

// SourceID identifies a compiled source file inside the current
// compilation group. Path-like and opaque: the model only ever compares
// and hashes it.
type SourceID string

// ProductID identifies an artifact generated from compiling a source file,
// such as a class file. Path-like and opaque.
type ProductID string

// BinaryID identifies a compiled artifact dependency that has no tracked
// source in any known compilation group. Path-like and opaque.
type BinaryID string

// ClassName is a fully-qualified class name, used both for the classes a
// source generates and for external dependency targets.
type ClassName string
