// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import "errors"

var (
	// ErrNotFound is returned when no snapshot exists under the requested
	// name.
	ErrNotFound = errors.New("snapshot not found")

	// ErrChecksumMismatch is returned when a stored payload does not hash
	// to its recorded checksum.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrCorrupt is returned when a stored payload cannot be decoded.
	ErrCorrupt = errors.New("snapshot corrupt")

	// ErrUnsupportedVersion is returned when a payload was written by an
	// incompatible codec version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)
