package rados

import "sort"

// IntervalSet is a set of non-overlapping, non-adjacent byte ranges kept in
// ascending order. The engine uses it to track snap_overlap: the ranges of
// a forked revision still byte-identical to the next-older revision.
//
// The zero value is an empty set. IntervalSet is not safe for concurrent
// use; the engine guards it with the owning revision's lock.
type IntervalSet struct {
	extents []Extent
}

// Insert adds [off, off+length), merging with any overlapping or adjacent
// ranges. Zero-length inserts are ignored.
func (s *IntervalSet) Insert(off, length uint64) {
	if length == 0 {
		return
	}
	end := off + length

	// First extent whose end reaches off; everything before it is untouched.
	i := sort.Search(len(s.extents), func(i int) bool {
		return s.extents[i].Offset+s.extents[i].Length >= off
	})
	j := i
	for j < len(s.extents) && s.extents[j].Offset <= end {
		if s.extents[j].Offset < off {
			off = s.extents[j].Offset
		}
		if e := s.extents[j].Offset + s.extents[j].Length; e > end {
			end = e
		}
		j++
	}

	merged := Extent{Offset: off, Length: end - off}
	s.extents = append(s.extents[:i], append([]Extent{merged}, s.extents[j:]...)...)
}

// Subtract removes every range of other from s.
func (s *IntervalSet) Subtract(other *IntervalSet) {
	for _, e := range other.extents {
		s.remove(e.Offset, e.Length)
	}
}

// IntersectionOf replaces s with the intersection of s and other.
func (s *IntervalSet) IntersectionOf(other *IntervalSet) {
	var out []Extent
	for _, a := range s.extents {
		aEnd := a.Offset + a.Length
		for _, b := range other.extents {
			bEnd := b.Offset + b.Length
			if b.Offset >= aEnd {
				break
			}
			if bEnd <= a.Offset {
				continue
			}
			off := max(a.Offset, b.Offset)
			end := min(aEnd, bEnd)
			out = append(out, Extent{Offset: off, Length: end - off})
		}
	}
	s.extents = out
}

func (s *IntervalSet) remove(off, length uint64) {
	if length == 0 {
		return
	}
	end := off + length
	var out []Extent
	for _, e := range s.extents {
		eEnd := e.Offset + e.Length
		if eEnd <= off || e.Offset >= end {
			out = append(out, e)
			continue
		}
		if e.Offset < off {
			out = append(out, Extent{Offset: e.Offset, Length: off - e.Offset})
		}
		if eEnd > end {
			out = append(out, Extent{Offset: end, Length: eEnd - end})
		}
	}
	s.extents = out
}

// Empty reports whether the set contains no ranges.
func (s *IntervalSet) Empty() bool {
	return len(s.extents) == 0
}

// Extents returns the ranges in ascending order. The returned slice is a
// copy.
func (s *IntervalSet) Extents() []Extent {
	out := make([]Extent, len(s.extents))
	copy(out, s.extents)
	return out
}

// Clone returns an independent copy of the set.
func (s *IntervalSet) Clone() *IntervalSet {
	return &IntervalSet{extents: s.Extents()}
}
