// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package invalidate computes, from a set of changed inputs, the transitive
// set of sources an incremental compiler must recompile.
//
// The walk consumes only the read side of deps.Relations: it seeds from
// changed sources, products, binaries, and external class names, then
// follows reverse dependency edges (UsesInternal, plus UsesExternal through
// each affected source's generated class names) until a fixpoint, a
// configured limit, or context cancellation.
//
// The walk itself is a pure in-memory computation; limits mark the result
// Truncated instead of failing, and unknown seeds simply contribute
// nothing.
package invalidate

import (
	"context"
	"time"

	"github.com/AleutianAI/deptrace/pkg/deps"
	"github.com/AleutianAI/deptrace/pkg/relation"
)

// Seeds names the changed inputs an invalidation walk starts from. Any
// combination of the four kinds may be set; unknown identifiers are
// ignored.
type Seeds struct {
	// Sources are in-group source files known to have changed.
	Sources []deps.SourceID

	// Products are generated artifacts known to have changed or been
	// deleted; they seed the sources that produced them.
	Products []deps.ProductID

	// Binaries are untracked binary artifacts that changed; they seed
	// every source depending on them.
	Binaries []deps.BinaryID

	// Classes are fully-qualified class names whose API changed; they seed
	// both the sources depending on the name externally and the sources
	// defining it.
	Classes []deps.ClassName
}

// IsEmpty reports whether no seed of any kind is set.
func (s Seeds) IsEmpty() bool {
	return len(s.Sources) == 0 && len(s.Products) == 0 &&
		len(s.Binaries) == 0 && len(s.Classes) == 0
}

// Result is the outcome of an invalidation walk.
type Result struct {
	// Affected is the set of sources to recompile, including the seed
	// sources themselves. Membership is meaningful; iteration order is not.
	Affected relation.Set[deps.SourceID]

	// Depth is the number of reverse-edge expansion levels performed.
	Depth int

	// Truncated reports that a limit or cancellation stopped the walk
	// before the fixpoint, so Affected may be an undercount.
	Truncated bool
}

// Option configures an invalidation walk.
type Option func(*options)

type options struct {
	maxDepth    int
	maxAffected int
}

// WithMaxDepth bounds the number of reverse-edge expansion levels. Zero
// (the default) means unlimited. Seeds are depth zero.
func WithMaxDepth(d int) Option {
	return func(o *options) {
		o.maxDepth = d
	}
}

// WithMaxAffected bounds the size of the affected set. Zero (the default)
// means unlimited. When the bound is hit the walk stops and the result is
// marked Truncated.
func WithMaxAffected(n int) Option {
	return func(o *options) {
		o.maxAffected = n
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Affected walks the reverse dependency edges of rel from seeds and
// returns every source that must be recompiled.
//
// Description:
//
//	Level-synchronous BFS over two reverse indexes per affected source:
//	UsesInternal(src) for in-group dependents, and UsesExternal(name) for
//	each class name src generates, which reaches dependents recorded
//	against the name rather than the file. Each source is expanded at
//	most once.
//
// Inputs:
//
//	ctx - Checked between levels; cancellation marks the result Truncated.
//	rel - The dependency relations snapshot to walk. Only read queries are
//	      used.
//	seeds - The changed inputs. Unknown identifiers contribute nothing.
//	opts - Optional limits (WithMaxDepth, WithMaxAffected).
//
// Outputs:
//
//	Result - Affected set, expansion depth, truncation flag. Never an
//	error: the walk is total.
//
// Thread Safety: Safe for concurrent use; rel is immutable and no state is
// shared between walks.
func Affected(ctx context.Context, rel deps.Relations, seeds Seeds, opts ...Option) Result {
	o := applyOptions(opts)
	start := time.Now()

	affected := relation.NewSet[deps.SourceID]()
	frontier := relation.NewSet[deps.SourceID]()

	admit := func(src deps.SourceID) bool {
		if o.maxAffected > 0 && affected.Len() >= o.maxAffected {
			return false
		}
		if affected.Add(src) {
			frontier.Add(src)
		}
		return true
	}

	res := Result{Affected: affected}
	seedWalk(rel, seeds, admit)

	for frontier.Len() > 0 {
		if ctx.Err() != nil {
			res.Truncated = true
			break
		}
		if o.maxDepth > 0 && res.Depth >= o.maxDepth {
			res.Truncated = true
			break
		}
		if o.maxAffected > 0 && affected.Len() >= o.maxAffected {
			res.Truncated = true
			break
		}

		current := frontier
		frontier = relation.NewSet[deps.SourceID]()
		res.Depth++

		for src := range current {
			for dep := range rel.UsesInternal(src) {
				if !admit(dep) {
					res.Truncated = true
				}
			}
			for name := range rel.ClassNames(src) {
				for dep := range rel.UsesExternal(name) {
					if !admit(dep) {
						res.Truncated = true
					}
				}
			}
		}
	}
	if frontier.Len() > 0 {
		res.Truncated = true
	}

	recordWalk(ctx, time.Since(start), res)
	return res
}

// seedWalk resolves the four seed kinds to initial sources.
func seedWalk(rel deps.Relations, seeds Seeds, admit func(deps.SourceID) bool) {
	for _, src := range seeds.Sources {
		admit(src)
	}
	for _, prod := range seeds.Products {
		for src := range rel.Produced(prod) {
			admit(src)
		}
	}
	for _, bin := range seeds.Binaries {
		for src := range rel.UsesBinary(bin) {
			admit(src)
		}
	}
	for _, name := range seeds.Classes {
		for src := range rel.UsesExternal(name) {
			admit(src)
		}
		for src := range rel.DefinesClass(name) {
			admit(src)
		}
	}
}
