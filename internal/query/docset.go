package query

import "github.com/RoaringBitmap/roaring"

// DocSet is the evaluator's operand type: a set of DocIds backed by a
// roaring bitmap, mirroring the teacher's QueryBuilder stack of
// *roaring.Bitmap values — &&, ||, and ! below are roaring.And,
// roaring.Or, and roaring.AndNot driven by the RPN walk instead of a
// fluent builder. DocIds fit uint32 natively, so postings decode
// straight into bitmap members with no intermediate Go set required.
type DocSet struct {
	bm *roaring.Bitmap
}

// NewDocSet returns an empty set.
func NewDocSet() *DocSet {
	return &DocSet{bm: roaring.New()}
}

// docSetFromKeys builds a set from the keys of a postings map directly,
// the shape GetPostings returns.
func docSetFromKeys(postings map[int][]int) *DocSet {
	s := NewDocSet()
	for id := range postings {
		s.bm.Add(uint32(id))
	}
	return s
}

// universe returns the set {0, ..., n-1}, used as the left-hand side of
// NOT.
func universe(n int) *DocSet {
	s := NewDocSet()
	if n <= 0 {
		return s
	}
	s.bm.AddRange(0, uint64(n))
	return s
}

// Add inserts id into the set.
func (s *DocSet) Add(id int) {
	s.bm.Add(uint32(id))
}

// Contains reports whether id is a member.
func (s *DocSet) Contains(id int) bool {
	return s.bm.Contains(uint32(id))
}

// Len returns the number of members.
func (s *DocSet) Len() int {
	return int(s.bm.GetCardinality())
}

// SortedIDs returns the set's members in ascending order.
func (s *DocSet) SortedIDs() []int {
	ids := make([]int, 0, s.Len())
	it := s.bm.Iterator()
	for it.HasNext() {
		ids = append(ids, int(it.Next()))
	}
	return ids
}

// and returns the intersection a ∩ b, corresponding to &&.
func and(a, b *DocSet) *DocSet {
	return &DocSet{bm: roaring.And(a.bm, b.bm)}
}

// or returns the union a ∪ b, corresponding to ||.
func or(a, b *DocSet) *DocSet {
	return &DocSet{bm: roaring.Or(a.bm, b.bm)}
}

// not returns all - a, corresponding to unary !.
func not(all, a *DocSet) *DocSet {
	return &DocSet{bm: roaring.AndNot(all.bm, a.bm)}
}
