// Package build implements the SPIMI-style index builder: stream
// documents from a source, accumulate term→doc→positions in memory,
// spill a sorted block to disk every BlockSize documents, and merge the blocks
// into the final DOCS/DICT/POSTINGS files.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY SPILL AT ALL?
// ═══════════════════════════════════════════════════════════════════════════════
// A corpus of any real size won't fit its full postings in memory at
// once. SPIMI sidesteps needing to know the vocabulary size up front:
// accumulate until a block boundary, write what's in memory out in
// sorted order, and start a fresh empty map. Since every block is
// independently term-sorted and owns a contiguous, disjoint DocId
// window, the final merge is a straightforward k-way merge — no global
// sort of the whole corpus is ever required.
// ═══════════════════════════════════════════════════════════════════════════════
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wizenheimer/corpusindex/internal/format"
	"github.com/wizenheimer/corpusindex/internal/source"
	"github.com/wizenheimer/corpusindex/internal/tokenizer"
)

// DefaultBlockSize is the number of documents accumulated in memory
// before a block is spilled, matching spec's stated default.
const DefaultBlockSize = 5000

// ErrSourceFailure is returned (wrapped) when the document source fails
// mid-build; the build aborts and the caller should discard OutDir.
var ErrSourceFailure = errors.New("build: failed to read document from source")

// BuildOptions configures a single Build call.
type BuildOptions struct {
	// BlockSize documents are accumulated before each spill. Zero
	// means DefaultBlockSize.
	BlockSize int
	// OutDir is cleared and (re)created at the start of the build.
	OutDir string
	// Tokenizer turns each document's text into an ordered term
	// sequence; Tokenize(text)[i] defines Position i.
	Tokenizer tokenizer.Tokenizer
	// Source yields documents in the order DocIds are assigned.
	Source source.DocumentSource
}

// Build runs the full SPIMI pipeline and writes index.docs, index.dict,
// and index.postings into opts.OutDir. On any I/O or source error the
// partial output is considered invalid — callers should remove OutDir
// themselves; Build does not attempt to clean up after a failure beyond
// the temporary block directory.
//
// Build clears any pre-existing OutDir before writing, so a restarted
// build after a prior failure starts clean.
func Build(ctx context.Context, opts BuildOptions) error {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}

	if err := os.RemoveAll(opts.OutDir); err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return err
	}

	blockDir, err := os.MkdirTemp(opts.OutDir, ".blocks-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(blockDir)

	var (
		docs        []format.DocInfo
		accum       = make(map[string]map[int][]int)
		blockPaths  []string
		docID       = 0
		sinceSpill  = 0
	)

	spill := func() error {
		if len(accum) == 0 {
			return nil
		}
		path := filepath.Join(blockDir, fmt.Sprintf("block-%04d", len(blockPaths)))
		if err := writeBlock(path, accum); err != nil {
			return err
		}
		slog.Info("build: spilled block", slog.String("path", path), slog.Int("terms", len(accum)))
		blockPaths = append(blockPaths, path)
		accum = make(map[string]map[int][]int)
		sinceSpill = 0
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		doc, ok, err := opts.Source.Next()
		if err != nil {
			return errors.Join(ErrSourceFailure, err)
		}
		if !ok {
			break
		}

		docs = append(docs, format.DocInfo{URL: doc.URL, Title: doc.Title})

		tokens := opts.Tokenizer.Tokenize(doc.Text)
		for pos, term := range tokens {
			byDoc, ok := accum[term]
			if !ok {
				byDoc = make(map[int][]int)
				accum[term] = byDoc
			}
			byDoc[docID] = append(byDoc[docID], pos)
		}

		docID++
		sinceSpill++
		if sinceSpill >= opts.BlockSize {
			if err := spill(); err != nil {
				return err
			}
		}
	}
	if err := spill(); err != nil {
		return err
	}

	slog.Info("build: merging blocks", slog.Int("blocks", len(blockPaths)), slog.Int("docs", len(docs)))
	if err := writeMergedIndex(opts.OutDir, blockPaths, docs); err != nil {
		return err
	}

	slog.Info("build: complete", slog.Int("docs", len(docs)), slog.String("out_dir", opts.OutDir))
	return nil
}

// writeMergedIndex performs the k-way merge and emits the three final
// index files.
func writeMergedIndex(outDir string, blockPaths []string, docs []format.DocInfo) error {
	postingsPath := filepath.Join(outDir, "index.postings")
	pf, err := os.Create(postingsPath)
	if err != nil {
		return err
	}
	defer pf.Close()

	if err := format.WritePostingsHeader(pf); err != nil {
		return err
	}

	offset := uint64(format.HeaderSize)
	var dict []format.DictEntry

	err = mergeBlocks(blockPaths, func(term string, entries []format.DocPositions) error {
		block := format.EncodePostingBlock(nil, entries)
		if _, err := pf.Write(block); err != nil {
			return err
		}
		dict = append(dict, format.DictEntry{
			Term:           term,
			PostingsOffset: offset,
			DocCount:       uint32(len(entries)),
		})
		offset += uint64(len(block))
		return nil
	})
	if err != nil {
		return err
	}

	if err := pf.Close(); err != nil {
		return err
	}

	var dictBuf bytes.Buffer
	if err := format.WriteDict(&dictBuf, dict); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "index.dict"), dictBuf.Bytes(), 0o644); err != nil {
		return err
	}

	var docsBuf bytes.Buffer
	if err := format.WriteDocs(&docsBuf, docs); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "index.docs"), docsBuf.Bytes(), 0o644); err != nil {
		return err
	}

	return nil
}
