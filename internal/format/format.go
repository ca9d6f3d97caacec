// Package format defines the on-disk layouts of the three index files
// (DOCS, DICT, POSTINGS) and the header convention shared by all three:
// a 4-byte magic string followed by a 2-byte little-endian version.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY THREE SEPARATE FILES?
// ═══════════════════════════════════════════════════════════════════════════════
// DOCS holds document metadata, loaded once and kept in memory.
// DICT holds the term → (offset, doc_count) map, also loaded fully.
// POSTINGS holds the bulk of the data (positional posting lists) and
// stays on disk, accessed by seek+read through the offsets DICT gives us.
//
// Splitting these means a reader only has to keep two small structures
// resident while the (much larger) postings data streams from disk.
// ═══════════════════════════════════════════════════════════════════════════════
package format

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/wizenheimer/corpusindex/internal/codec"
)

// Version is the only on-disk format version these readers accept.
const Version uint16 = 3

const (
	docsMagic     = "DOCS"
	dictMagic     = "DICT"
	postingsMagic = "POST"
)

// ErrUnsupportedFormat is returned when a file's magic or version does
// not match what this package writes.
var ErrUnsupportedFormat = errors.New("format: unsupported magic or version")

// writeHeader writes the 4-byte magic plus 2-byte little-endian version
// shared by all three file types.
func writeHeader(w io.Writer, magic string) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, Version)
}

// readHeader reads and validates a file header, rejecting any magic or
// version mismatch with ErrUnsupportedFormat.
func readHeader(r io.Reader, wantMagic string) error {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return ErrUnsupportedFormat
	}
	if string(magic[:]) != wantMagic {
		return ErrUnsupportedFormat
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return ErrUnsupportedFormat
	}
	if version != Version {
		return ErrUnsupportedFormat
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// DOCS FILE
// ═══════════════════════════════════════════════════════════════════════════════
//
//	magic   : 4 bytes = "DOCS"
//	version : u16
//	count N : u32
//	offsets : N x u64     (absolute file offsets of each DocInfo)
//	records : N x DocInfo
//	DocInfo := u16 url_len, url_len bytes, u16 title_len, title_len bytes
//
// ═══════════════════════════════════════════════════════════════════════════════

// DocInfo is the metadata stored once per DocId.
type DocInfo struct {
	URL   string
	Title string
}

// WriteDocs writes the DOCS file for docs, indexed by DocId (docs[i] is
// the DocInfo for DocId i).
func WriteDocs(w io.Writer, docs []DocInfo) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, docsMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(docs))); err != nil {
		return err
	}

	// The offset table must be written before we know the records'
	// positions, so compute them up front: header size is fixed, the
	// offset table is N*8 bytes, and records follow back to back.
	headerAndCountSize := int64(4 + 2 + 4)
	offsetTableSize := int64(len(docs)) * 8
	offset := headerAndCountSize + offsetTableSize
	offsets := make([]uint64, len(docs))
	for i, d := range docs {
		offsets[i] = uint64(offset)
		offset += int64(2+len(d.URL)) + int64(2+len(d.Title))
	}
	for _, off := range offsets {
		if err := binary.Write(bw, binary.LittleEndian, off); err != nil {
			return err
		}
	}
	for _, d := range docs {
		if err := writeLenPrefixedU16(bw, d.URL); err != nil {
			return err
		}
		if err := writeLenPrefixedU16(bw, d.Title); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadDocs reads an entire DOCS file into memory, returned in DocId
// order (the returned slice's index i is DocId i's DocInfo).
func ReadDocs(r io.Reader) ([]DocInfo, error) {
	br := bufio.NewReader(r)
	if err := readHeader(br, docsMagic); err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, ErrUnsupportedFormat
	}
	// The offset table is redundant once we read records sequentially,
	// but we still must consume it to stay positioned correctly.
	offsets := make([]uint64, n)
	for i := range offsets {
		if err := binary.Read(br, binary.LittleEndian, &offsets[i]); err != nil {
			return nil, ErrUnsupportedFormat
		}
	}
	docs := make([]DocInfo, n)
	for i := range docs {
		url, err := readLenPrefixedU16(br)
		if err != nil {
			return nil, err
		}
		title, err := readLenPrefixedU16(br)
		if err != nil {
			return nil, err
		}
		docs[i] = DocInfo{URL: url, Title: title}
	}
	return docs, nil
}

// ReadDocsFile opens and reads a DOCS file at path.
func ReadDocsFile(path string) ([]DocInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDocs(f)
}

// ═══════════════════════════════════════════════════════════════════════════════
// DICT FILE
// ═══════════════════════════════════════════════════════════════════════════════
//
//	magic   : 4 bytes = "DICT"
//	version : u16
//	count T : u32
//	entries : T x { u8 term_len, term_len bytes (term),
//	                u64 postings_offset, u32 doc_count }
//
// Entries must already be in ascending bytewise term order; this
// package does not sort, it only writes what it is given.
// ═══════════════════════════════════════════════════════════════════════════════

// DictEntry is one dictionary record: a term and where to find its
// postings block.
type DictEntry struct {
	Term           string
	PostingsOffset uint64
	DocCount       uint32
}

// WriteDict writes entries, which must already be sorted ascending by
// Term, as the DICT file.
func WriteDict(w io.Writer, entries []DictEntry) error {
	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, dictMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Term) > 255 {
			return errors.New("format: term exceeds 255 bytes")
		}
		if err := bw.WriteByte(byte(len(e.Term))); err != nil {
			return err
		}
		if _, err := bw.WriteString(e.Term); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.PostingsOffset); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.DocCount); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadDict reads an entire DICT file into a term → DictEntry map.
func ReadDict(r io.Reader) (map[string]DictEntry, error) {
	br := bufio.NewReader(r)
	if err := readHeader(br, dictMagic); err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, ErrUnsupportedFormat
	}
	entries := make(map[string]DictEntry, n)
	for i := uint32(0); i < n; i++ {
		termLen, err := br.ReadByte()
		if err != nil {
			return nil, ErrUnsupportedFormat
		}
		termBuf := make([]byte, termLen)
		if _, err := io.ReadFull(br, termBuf); err != nil {
			return nil, ErrUnsupportedFormat
		}
		var e DictEntry
		e.Term = string(termBuf)
		if err := binary.Read(br, binary.LittleEndian, &e.PostingsOffset); err != nil {
			return nil, ErrUnsupportedFormat
		}
		if err := binary.Read(br, binary.LittleEndian, &e.DocCount); err != nil {
			return nil, ErrUnsupportedFormat
		}
		entries[e.Term] = e
	}
	return entries, nil
}

// ReadDictFile opens and reads a DICT file at path.
func ReadDictFile(path string) (map[string]DictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDict(f)
}

// ═══════════════════════════════════════════════════════════════════════════════
// POSTINGS FILE
// ═══════════════════════════════════════════════════════════════════════════════
//
//	magic   : 4 bytes = "POST"
//	version : u16
//	[ per term, at its dictionary-specified offset:
//	    varbyte doc_count
//	    for i in 0..doc_count:
//	        varbyte doc_delta
//	        varbyte freq
//	        freq x varbyte pos_delta
//	]
//
// ═══════════════════════════════════════════════════════════════════════════════

// DocPositions is one (DocId, positions) entry within a term's posting
// list, as handed to EncodePostingBlock / returned by decoding.
type DocPositions struct {
	DocID     int
	Positions []int // ascending, no duplicates
}

// WritePostingsHeader writes just the POSTINGS file's magic+version; the
// caller (the builder) appends one EncodePostingBlock result per term
// after this, tracking offsets itself since the dictionary needs them.
func WritePostingsHeader(w io.Writer) error {
	return writeHeader(w, postingsMagic)
}

// HeaderSize is the number of bytes WritePostingsHeader writes; builders
// use it to compute the first term's offset without re-deriving it.
const HeaderSize = 4 + 2

// ReadPostingsHeader validates the POSTINGS file header read from r.
func ReadPostingsHeader(r io.Reader) error {
	return readHeader(r, postingsMagic)
}

// EncodePostingBlock serializes one term's posting list (sorted ascending
// by DocID, each entry's positions sorted ascending) into the wire format
// described above.
func EncodePostingBlock(dst []byte, entries []DocPositions) []byte {
	dst = codec.PutUvarint(dst, uint64(len(entries)))
	prevDoc := 0
	for _, e := range entries {
		dst = codec.PutUvarint(dst, uint64(e.DocID-prevDoc))
		prevDoc = e.DocID
		dst = codec.PutUvarint(dst, uint64(len(e.Positions)))
		prevPos := 0
		for _, p := range e.Positions {
			dst = codec.PutUvarint(dst, uint64(p-prevPos))
			prevPos = p
		}
	}
	return dst
}

// writeLenPrefixedU16/readLenPrefixedU16 implement the DocInfo string
// field convention: a u16 byte length followed by the raw bytes.
func writeLenPrefixedU16(w io.Writer, s string) error {
	if len(s) > 65535 {
		return errors.New("format: string exceeds 65535 bytes")
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLenPrefixedU16(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", ErrUnsupportedFormat
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", ErrUnsupportedFormat
	}
	return string(buf), nil
}
