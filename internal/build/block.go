package build

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/wizenheimer/corpusindex/internal/codec"
	"github.com/wizenheimer/corpusindex/internal/format"
)

// writeBlock spills one in-memory accumulator to path, entries in
// ascending term order, each term's body using the exact same
// doc_count/doc_delta/freq/pos_delta shape as the final POSTINGS file
// (format.EncodePostingBlock). Unlike the POSTINGS file, each body is
// preceded by its term (u16 length, then the term bytes) and the file
// has no magic header, since the reader only ever needs to walk it
// term-by-term until EOF.
func writeBlock(path string, accum map[string]map[int][]int) error {
	terms := make([]string, 0, len(accum))
	for term := range accum {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, term := range terms {
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(term))); err != nil {
			return err
		}
		if _, err := bw.WriteString(term); err != nil {
			return err
		}

		byDoc := accum[term]
		docIDs := make([]int, 0, len(byDoc))
		for docID := range byDoc {
			docIDs = append(docIDs, docID)
		}
		sort.Ints(docIDs)

		entries := make([]format.DocPositions, len(docIDs))
		for i, docID := range docIDs {
			entries[i] = format.DocPositions{DocID: docID, Positions: byDoc[docID]}
		}
		block := format.EncodePostingBlock(nil, entries)
		if _, err := bw.Write(block); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// blockReader streams a spilled block's (term, entries) pairs in the
// order writeBlock wrote them.
type blockReader struct {
	f  *os.File
	br *bufio.Reader
}

func openBlockReader(path string) (*blockReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &blockReader{f: f, br: bufio.NewReader(f)}, nil
}

// next returns io.EOF once the block is exhausted.
func (b *blockReader) next() (string, []format.DocPositions, error) {
	var tlen uint16
	if err := binary.Read(b.br, binary.LittleEndian, &tlen); err != nil {
		if err == io.EOF {
			return "", nil, io.EOF
		}
		return "", nil, err
	}
	termBuf := make([]byte, tlen)
	if _, err := io.ReadFull(b.br, termBuf); err != nil {
		return "", nil, err
	}

	docCount, err := codec.ReadUvarint(b.br)
	if err != nil {
		return "", nil, err
	}
	entries := make([]format.DocPositions, 0, docCount)
	prevDoc := 0
	for i := uint64(0); i < docCount; i++ {
		delta, err := codec.ReadUvarint(b.br)
		if err != nil {
			return "", nil, err
		}
		docID := prevDoc + int(delta)
		prevDoc = docID

		freq, err := codec.ReadUvarint(b.br)
		if err != nil {
			return "", nil, err
		}
		positions := make([]int, 0, freq)
		prevPos := 0
		for j := uint64(0); j < freq; j++ {
			posDelta, err := codec.ReadUvarint(b.br)
			if err != nil {
				return "", nil, err
			}
			pos := prevPos + int(posDelta)
			prevPos = pos
			positions = append(positions, pos)
		}
		entries = append(entries, format.DocPositions{DocID: docID, Positions: positions})
	}
	return string(termBuf), entries, nil
}

func (b *blockReader) Close() error {
	return b.f.Close()
}
