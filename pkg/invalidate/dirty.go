// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package invalidate

import (
	"sync"
	"time"

	"github.com/AleutianAI/deptrace/pkg/deps"
	"github.com/AleutianAI/deptrace/pkg/relation"
)

// DirtyEntry contains metadata about a source awaiting recompilation.
type DirtyEntry struct {
	// Source is the source identifier.
	Source deps.SourceID

	// MarkedAt is when the source was marked dirty.
	MarkedAt time.Time

	// Origin indicates how the source became dirty ("watcher", "walk",
	// "manual").
	Origin string
}

// DirtyTracker accumulates sources awaiting recompilation between
// invalidation walks and compiler runs.
//
// Description:
//
//	A watcher or build driver marks sources dirty as changes arrive; the
//	compiler driver drains the set at the start of a run, walks the
//	affected closure, and recompiles. Marks arriving during a run simply
//	land in the next drain.
//
// Thread Safety:
//
//	All methods are safe for concurrent use.
type DirtyTracker struct {
	mu    sync.RWMutex
	dirty map[deps.SourceID]DirtyEntry
}

// NewDirtyTracker creates an empty tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{
		dirty: make(map[deps.SourceID]DirtyEntry),
	}
}

// MarkDirty marks a source as changed with origin "manual".
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) MarkDirty(src deps.SourceID) {
	d.MarkDirtyWithOrigin(src, "manual")
}

// MarkDirtyWithOrigin marks a source as changed, recording where the mark
// came from. Re-marking an already dirty source refreshes its entry.
//
// Inputs:
//
//	src - The changed source.
//	origin - The origin of the change ("watcher", "walk", "manual").
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) MarkDirtyWithOrigin(src deps.SourceID, origin string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dirty[src] = DirtyEntry{
		Source:   src,
		MarkedAt: time.Now(),
		Origin:   origin,
	}
}

// MarkAll marks every source in the set with the given origin.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) MarkAll(srcs relation.Set[deps.SourceID], origin string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for src := range srcs {
		d.dirty[src] = DirtyEntry{Source: src, MarkedAt: now, Origin: origin}
	}
}

// HasDirty reports whether any source is marked dirty.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) HasDirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.dirty) > 0
}

// Count returns the number of dirty sources.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.dirty)
}

// Peek returns the dirty sources without clearing them.
//
// Outputs:
//
//	relation.Set[deps.SourceID] - A copy; mutating it does not affect the
//	tracker.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) Peek() relation.Set[deps.SourceID] {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := relation.NewSet[deps.SourceID]()
	for src := range d.dirty {
		out.Add(src)
	}
	return out
}

// Entries returns metadata for every dirty source without clearing.
//
// Thread Safety:
//
//	Safe for concurrent use. Returns copies.
func (d *DirtyTracker) Entries() []DirtyEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]DirtyEntry, 0, len(d.dirty))
	for _, e := range d.dirty {
		entries = append(entries, e)
	}
	return entries
}

// Drain atomically returns the dirty sources and clears the tracker.
//
// Description:
//
//	Called at the start of a compiler run. Marks arriving after the drain
//	belong to the next run.
//
// Outputs:
//
//	relation.Set[deps.SourceID] - The sources that were dirty. Empty set
//	if none.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) Drain() relation.Set[deps.SourceID] {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := relation.NewSet[deps.SourceID]()
	for src := range d.dirty {
		out.Add(src)
	}
	d.dirty = make(map[deps.SourceID]DirtyEntry)
	return out
}

// Clear removes the given sources from the dirty set, returning how many
// were actually dirty.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (d *DirtyTracker) Clear(srcs relation.Set[deps.SourceID]) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cleared := 0
	for src := range srcs {
		if _, ok := d.dirty[src]; ok {
			delete(d.dirty, src)
			cleared++
		}
	}
	return cleared
}
