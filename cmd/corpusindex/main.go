// Command corpusindex is the reference driver for the index builder and
// query engine: an `index` subcommand that builds index files from a
// document source, and a `search` subcommand that serves an interactive
// query loop over a built index.
//
// ═══════════════════════════════════════════════════════════════════════════════
// USAGE
// ═══════════════════════════════════════════════════════════════════════════════
//
//	corpusindex index -source <path> [-format jsonl|dir] [-tokenizer <bin>] [-block-size N] <out_dir>
//	corpusindex search [-tokenizer <bin>] [-max-results K] <index_dir>
//
// `search` prints a single "Ready" line, then serves one query per
// input line: a "Found <N>" header, up to K "<title> (<url>)" result
// lines, and a "__END_QUERY__" sentinel. The line "exit" terminates.
// Grounded on google-codesearch's cmd/cindex and cmd/cserver: a flat
// flag.FlagSet per subcommand, no subcommand framework.
// ═══════════════════════════════════════════════════════════════════════════════
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/wizenheimer/corpusindex/internal/analysis"
	"github.com/wizenheimer/corpusindex/internal/build"
	"github.com/wizenheimer/corpusindex/internal/query"
	"github.com/wizenheimer/corpusindex/internal/read"
	"github.com/wizenheimer/corpusindex/internal/source"
	"github.com/wizenheimer/corpusindex/internal/tokenizer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("corpusindex: command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: corpusindex index|search [flags] <dir>")
}

// resolveTokenizer returns the external subprocess tokenizer when path
// is non-empty, or the default in-process analysis pipeline otherwise.
func resolveTokenizer(path string) tokenizer.Tokenizer {
	if path == "" {
		return analysis.NewAnalyzerTokenizer(nil)
	}
	return tokenizer.NewSubprocessTokenizer(path)
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	sourcePath := fs.String("source", "", "path to the document source (file or directory)")
	format := fs.String("format", "jsonl", "source format: jsonl or dir")
	tokenizerPath := fs.String("tokenizer", "", "path to an external tokenizer binary (default: built-in analyzer)")
	blockSize := fs.Int("block-size", build.DefaultBlockSize, "documents accumulated per SPIMI block")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("index: expected exactly one output directory argument")
	}
	outDir := fs.Arg(0)

	if *sourcePath == "" {
		return fmt.Errorf("index: -source is required")
	}

	var (
		src source.DocumentSource
		err error
	)
	switch *format {
	case "jsonl":
		src, err = source.NewJSONLSource(*sourcePath)
	case "dir":
		src, err = source.NewDirSource(*sourcePath)
	default:
		return fmt.Errorf("index: unknown -format %q (want jsonl or dir)", *format)
	}
	if err != nil {
		return err
	}
	if closer, ok := src.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	tok := resolveTokenizer(*tokenizerPath)
	if closer, ok := tok.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	opts := build.BuildOptions{
		BlockSize: *blockSize,
		OutDir:    outDir,
		Tokenizer: tok,
		Source:    src,
	}
	slog.Info("corpusindex: starting build", slog.String("source", *sourcePath), slog.String("out_dir", outDir))
	return build.Build(context.Background(), opts)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	tokenizerPath := fs.String("tokenizer", "", "path to an external tokenizer binary (default: built-in analyzer)")
	maxResults := fs.Int("max-results", 20, "maximum result lines per query")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("search: expected exactly one index directory argument")
	}
	indexDir := fs.Arg(0)

	r, err := read.Open(indexDir)
	if err != nil {
		return err
	}
	defer r.Close()

	tok := resolveTokenizer(*tokenizerPath)
	if closer, ok := tok.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	fmt.Fprintln(out, "Ready")
	out.Flush()

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64*1024), 1<<20)
	for in.Scan() {
		line := in.Text()
		if line == "exit" {
			return nil
		}
		serveQuery(out, r, tok, line, *maxResults)
		out.Flush()
	}
	return in.Err()
}

func serveQuery(out *bufio.Writer, r *read.Reader, tok tokenizer.Tokenizer, q string, maxResults int) {
	set, err := query.Search(r, tok, q)
	if err != nil {
		slog.Error("corpusindex: query failed, returning empty result", slog.String("query", q), slog.Any("error", err))
		set = query.NewDocSet()
	}

	ids := set.SortedIDs()
	fmt.Fprintf(out, "Found %d\n", len(ids))
	for i, id := range ids {
		if i >= maxResults {
			break
		}
		doc, ok := r.Doc(id)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "%s (%s)\n", doc.Title, doc.URL)
	}
	fmt.Fprintln(out, "__END_QUERY__")
}
