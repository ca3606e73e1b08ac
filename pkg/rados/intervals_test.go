package rados

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func extents(pairs ...uint64) []Extent {
	out := make([]Extent, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Extent{Offset: pairs[i], Length: pairs[i+1]})
	}
	return out
}

func TestIntervalSetInsert(t *testing.T) {
	t.Run("DisjointRangesStaySorted", func(t *testing.T) {
		var s IntervalSet
		s.Insert(10, 5)
		s.Insert(0, 5)
		s.Insert(20, 5)

		assert.Equal(t, extents(0, 5, 10, 5, 20, 5), s.Extents())
	})

	t.Run("OverlappingRangesMerge", func(t *testing.T) {
		var s IntervalSet
		s.Insert(0, 10)
		s.Insert(5, 10)

		assert.Equal(t, extents(0, 15), s.Extents())
	})

	t.Run("AdjacentRangesMerge", func(t *testing.T) {
		var s IntervalSet
		s.Insert(0, 5)
		s.Insert(5, 5)

		assert.Equal(t, extents(0, 10), s.Extents())
	})

	t.Run("BridgingRangeMergesBothNeighbors", func(t *testing.T) {
		var s IntervalSet
		s.Insert(0, 5)
		s.Insert(10, 5)
		s.Insert(3, 9)

		assert.Equal(t, extents(0, 15), s.Extents())
	})

	t.Run("ZeroLengthIgnored", func(t *testing.T) {
		var s IntervalSet
		s.Insert(5, 0)

		assert.True(t, s.Empty())
	})
}

func TestIntervalSetSubtract(t *testing.T) {
	t.Run("SplitsRangeInTwo", func(t *testing.T) {
		var s, other IntervalSet
		s.Insert(0, 20)
		other.Insert(5, 5)

		s.Subtract(&other)
		assert.Equal(t, extents(0, 5, 10, 10), s.Extents())
	})

	t.Run("TrimsEdges", func(t *testing.T) {
		var s, other IntervalSet
		s.Insert(5, 10)
		other.Insert(0, 7)
		other.Insert(12, 10)

		s.Subtract(&other)
		assert.Equal(t, extents(7, 5), s.Extents())
	})

	t.Run("FullCoverEmpties", func(t *testing.T) {
		var s, other IntervalSet
		s.Insert(5, 5)
		other.Insert(0, 20)

		s.Subtract(&other)
		assert.True(t, s.Empty())
	})
}

func TestIntervalSetIntersectionOf(t *testing.T) {
	t.Run("PartialOverlap", func(t *testing.T) {
		var s, other IntervalSet
		s.Insert(0, 10)
		s.Insert(20, 10)
		other.Insert(5, 20)

		s.IntersectionOf(&other)
		assert.Equal(t, extents(5, 5, 20, 5), s.Extents())
	})

	t.Run("NoOverlap", func(t *testing.T) {
		var s, other IntervalSet
		s.Insert(0, 5)
		other.Insert(10, 5)

		s.IntersectionOf(&other)
		assert.True(t, s.Empty())
	})
}

func TestIntervalSetClone(t *testing.T) {
	var s IntervalSet
	s.Insert(0, 5)

	c := s.Clone()
	c.Insert(10, 5)

	assert.Equal(t, extents(0, 5), s.Extents())
	assert.Equal(t, extents(0, 5, 10, 5), c.Extents())
}
