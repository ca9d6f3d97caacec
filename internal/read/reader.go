// Package read opens a built index directory and serves postings lookups
// against it.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY KEEP POSTINGS ON DISK?
// ═══════════════════════════════════════════════════════════════════════════════
// DOCS and DICT are small — a few bytes per document or term — so they're
// loaded once into memory at Open and never touched again. POSTINGS holds
// the bulk of the data (every position of every term occurrence) and can
// dwarf the other two files, so it stays on disk: Reader seeks to the
// offset DICT gives it and decodes only the one term's block a query asks
// for, never the whole file.
// ═══════════════════════════════════════════════════════════════════════════════
package read

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/wizenheimer/corpusindex/internal/codec"
	"github.com/wizenheimer/corpusindex/internal/format"
)

// ErrUnsupportedFormat and ErrTruncatedStream surface the same failure
// kinds format/codec detect, so callers only need to know this package's
// error values.
var (
	ErrUnsupportedFormat = format.ErrUnsupportedFormat
	ErrTruncatedStream   = codec.ErrTruncatedStream
)

// Reader serves postings lookups against a built index directory. A
// Reader is not safe for concurrent queries: the POSTINGS handle has a
// single seekable cursor shared by every GetPostings call.
type Reader struct {
	docs         []format.DocInfo
	dict         map[string]format.DictEntry
	postingsFile *os.File
}

// Open loads docs and dict fully into memory and keeps the postings file
// open for random-access reads.
func Open(dir string) (*Reader, error) {
	docs, err := format.ReadDocsFile(filepath.Join(dir, "index.docs"))
	if err != nil {
		return nil, err
	}
	dict, err := format.ReadDictFile(filepath.Join(dir, "index.dict"))
	if err != nil {
		return nil, err
	}
	pf, err := os.Open(filepath.Join(dir, "index.postings"))
	if err != nil {
		return nil, err
	}
	if err := format.ReadPostingsHeader(pf); err != nil {
		pf.Close()
		return nil, err
	}
	return &Reader{docs: docs, dict: dict, postingsFile: pf}, nil
}

// Close releases the postings file handle.
func (r *Reader) Close() error {
	return r.postingsFile.Close()
}

// DocCount returns N, the number of documents in the index.
func (r *Reader) DocCount() int {
	return len(r.docs)
}

// Doc returns the DocInfo for id, or false if id is out of range.
func (r *Reader) Doc(id int) (format.DocInfo, bool) {
	if id < 0 || id >= len(r.docs) {
		return format.DocInfo{}, false
	}
	return r.docs[id], true
}

// HasTerm reports whether term appears in the dictionary.
func (r *Reader) HasTerm(term string) bool {
	_, ok := r.dict[term]
	return ok
}

// chunkSize is the size of each disk read the sliding decode buffer
// performs; spec calls for "e.g. 1 MiB".
const chunkSize = 1 << 20

// minSafety is the largest number of bytes a single varbyte-encoded
// uint64 can occupy; the decoder refills proactively once fewer than
// this many buffered bytes remain, so a decode attempt only ever
// straddles the buffer boundary when the stream has genuinely ended.
const minSafety = 10

// GetPostings returns, for term, a map from DocId to that document's
// ascending position list. Terms absent from the dictionary yield an
// empty, non-nil map (matching the spec's "if term not in dictionary,
// return empty").
func (r *Reader) GetPostings(term string) (map[int][]int, error) {
	entry, ok := r.dict[term]
	if !ok {
		return map[int][]int{}, nil
	}

	if _, err := r.postingsFile.Seek(int64(entry.PostingsOffset), 0); err != nil {
		return nil, err
	}
	dec := &slidingDecoder{r: r.postingsFile}

	docCount, err := dec.next()
	if err != nil {
		return nil, err
	}

	result := make(map[int][]int, docCount)
	prevDoc := 0
	for i := uint64(0); i < docCount; i++ {
		delta, err := dec.next()
		if err != nil {
			return nil, err
		}
		docID := prevDoc + int(delta)
		prevDoc = docID

		freq, err := dec.next()
		if err != nil {
			return nil, err
		}

		positions := make([]int, 0, freq)
		prevPos := 0
		for j := uint64(0); j < freq; j++ {
			posDelta, err := dec.next()
			if err != nil {
				return nil, err
			}
			pos := prevPos + int(posDelta)
			prevPos = pos
			positions = append(positions, pos)
		}
		result[docID] = positions
	}
	return result, nil
}

// slidingDecoder implements the sliding-buffer decode contract: an
// initial chunk is read, and once fewer than minSafety bytes remain
// before a decode, the buffer is refilled by dropping already-consumed
// bytes and appending a fresh read, so a varbyte integer never has to
// be reconstructed across two separate reads.
type slidingDecoder struct {
	r   *os.File
	buf []byte
	pos int
	eof bool
}

func (d *slidingDecoder) next() (uint64, error) {
	if len(d.buf)-d.pos < minSafety && !d.eof {
		if err := d.refill(); err != nil {
			return 0, err
		}
	}
	for {
		v, n, err := codec.Uvarint(d.buf[d.pos:])
		if err == nil {
			d.pos += n
			return v, nil
		}
		if !errors.Is(err, codec.ErrTruncatedStream) {
			return 0, err
		}
		if d.eof {
			return 0, codec.ErrTruncatedStream
		}
		if err := d.refill(); err != nil {
			return 0, err
		}
	}
}

func (d *slidingDecoder) refill() error {
	if d.pos > 0 {
		d.buf = append(d.buf[:0], d.buf[d.pos:]...)
		d.pos = 0
	}
	tmp := make([]byte, chunkSize)
	n, err := d.r.Read(tmp)
	if n > 0 {
		d.buf = append(d.buf, tmp[:n]...)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		// No more bytes; the decode loop surfaces ErrTruncatedStream
		// if a number was actually left incomplete.
		d.eof = true
		return nil
	}
	return err
}
