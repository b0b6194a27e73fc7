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

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// mergeParallelThreshold is the minimum number of partial results before
// MergeAll bothers with goroutines. Small merges are cheaper sequentially.
const mergeParallelThreshold = 4

// MergeAll unions a set of partial Relations into one.
//
// Description:
//
//	Compiler workers each accumulate an independent partial Relations with
//	no synchronization; a coordinator calls MergeAll at group boundaries.
//	Because Union is commutative and associative, the parts are merged as
//	a pairwise reduction tree, with each level's unions running in
//	parallel. The result is structurally equal to a sequential left fold
//	of Union over parts in any order.
//
// Inputs:
//
//	ctx - Cancels the merge between reduction levels.
//	parts - Partial results. May be empty; nil entries are not allowed.
//
// Outputs:
//
//	Relations - The union of all parts; Empty() when parts is empty.
//	error - Non-nil only when ctx is cancelled before the merge finishes.
//
// Thread Safety: Safe for concurrent use; parts are never mutated.
func MergeAll(ctx context.Context, parts []Relations) (Relations, error) {
	switch len(parts) {
	case 0:
		return Empty(), nil
	case 1:
		return parts[0], nil
	}

	if len(parts) < mergeParallelThreshold {
		out := parts[0]
		for _, p := range parts[1:] {
			if err := ctx.Err(); err != nil {
				return Empty(), err
			}
			out = out.Union(p)
		}
		return out, nil
	}

	work := make([]Relations, len(parts))
	copy(work, parts)

	for len(work) > 1 {
		if err := ctx.Err(); err != nil {
			return Empty(), err
		}

		next := make([]Relations, (len(work)+1)/2)
		g, _ := errgroup.WithContext(ctx)
		for i := 0; i < len(work); i += 2 {
			i := i
			if i+1 == len(work) {
				next[i/2] = work[i]
				continue
			}
			g.Go(func() error {
				next[i/2] = work[i].Union(work[i+1])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Empty(), err
		}
		work = next
	}

	return work[0], nil
}
