package build

import (
	"container/heap"
	"errors"
	"io"
	"sort"

	"github.com/wizenheimer/corpusindex/internal/format"
)

// mergeItem is one block's current head entry in the k-way merge heap.
type mergeItem struct {
	term    string
	entries []format.DocPositions
	reader  *blockReader
	done    bool
}

// mergeHeap orders items by term so the smallest term across all open
// blocks is always popped next — this is what turns N independently
// term-sorted blocks into one globally term-sorted stream (google-
// codesearch's IndexWriter merges trigram postings files the same way).
type mergeHeap []*mergeItem

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool  { return h[i].term < h[j].term }
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(*mergeItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mergeBlocks performs the k-way merge across all spilled blocks and
// invokes emit once per distinct term, in ascending term order, with
// that term's entries merged from every block that contained it.
//
// Block DocId ranges are disjoint and ascending by construction (each
// block owns a contiguous window of the DocIds seen while it was being
// accumulated), so merging same-term entries across blocks is a
// concatenation in block-arrival order, not a general union; entries are
// still sorted by DocId afterward since PROMISE-breaking input would be
// a bug elsewhere, not something the merge should need to detect.
func mergeBlocks(blockPaths []string, emit func(term string, entries []format.DocPositions) error) error {
	h := make(mergeHeap, 0, len(blockPaths))
	readers := make([]*blockReader, 0, len(blockPaths))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	for _, path := range blockPaths {
		r, err := openBlockReader(path)
		if err != nil {
			return err
		}
		readers = append(readers, r)
		if err := pushNext(&h, r); err != nil {
			return err
		}
	}
	heap.Init(&h)

	for h.Len() > 0 {
		top := heap.Pop(&h).(*mergeItem)
		term := top.term
		merged := append([]format.DocPositions(nil), top.entries...)

		if err := pushNext(&h, top.reader); err != nil {
			return err
		}

		for h.Len() > 0 && h[0].term == term {
			next := heap.Pop(&h).(*mergeItem)
			merged = append(merged, next.entries...)
			if err := pushNext(&h, next.reader); err != nil {
				return err
			}
		}

		sort.Slice(merged, func(i, j int) bool { return merged[i].DocID < merged[j].DocID })
		if err := emit(term, merged); err != nil {
			return err
		}
	}
	return nil
}

// pushNext advances r and pushes its next (term, entries) pair onto h,
// or does nothing once r is exhausted.
func pushNext(h *mergeHeap, r *blockReader) error {
	term, entries, err := r.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	heap.Push(h, &mergeItem{term: term, entries: entries, reader: r})
	return nil
}
