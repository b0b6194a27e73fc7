// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/deptrace/pkg/deps"
)

// makeRelations builds a small but fully-populated relations value: every
// component relation carries at least one edge, including an inherited
// external dependency.
func makeRelations() deps.Relations {
	r := deps.Empty().
		AddProduct("A.java", "A.class", "com.A").
		AddProduct("B.java", "B.class", "com.B").
		AddBinaryDep("A.java", "rt.jar").
		AddExternalDep("A.java", "lib.Base", true).
		AddExternalDep("B.java", "lib.Util", false)
	return r.AddInternalDeps("B.java", []deps.SourceID{"A.java"}, []deps.SourceID{"A.java"})
}

func TestCodec_RoundTrip(t *testing.T) {
	want := makeRelations()

	data, err := Encode(want)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, got.Equal(want), "decoded relations should equal the original")
}

func TestCodec_EmptyRoundTrip(t *testing.T) {
	data, err := Encode(deps.Empty())
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestCodec_Canonical(t *testing.T) {
	// The same relations built in a different insertion order must encode
	// to identical bytes.
	a := deps.Empty().
		AddBinaryDep("A.java", "rt.jar").
		AddBinaryDep("A.java", "guava.jar").
		AddBinaryDep("B.java", "rt.jar")
	b := deps.Empty().
		AddBinaryDep("B.java", "rt.jar").
		AddBinaryDep("A.java", "guava.jar").
		AddBinaryDep("A.java", "rt.jar")

	dataA, err := Encode(a)
	require.NoError(t, err)
	dataB, err := Encode(b)
	require.NoError(t, err)

	assert.Equal(t, dataA, dataB, "insertion order should not affect encoding")
	assert.Equal(t, Checksum(dataA), Checksum(dataB))
}

func TestDecode_Errors(t *testing.T) {
	t.Run("not JSON", func(t *testing.T) {
		_, err := Decode([]byte("not json"))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("wrong version", func(t *testing.T) {
		_, err := Decode([]byte(`{"version":99}`))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})
}
