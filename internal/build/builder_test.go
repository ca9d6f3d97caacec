package build

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/wizenheimer/corpusindex/internal/read"
	"github.com/wizenheimer/corpusindex/internal/source"
)

// fakeSource feeds a fixed slice of documents, the in-memory stand-in
// for a real DocumentSource.
type fakeSource struct {
	docs []source.Doc
	i    int
}

func (s *fakeSource) Next() (source.Doc, bool, error) {
	if s.i >= len(s.docs) {
		return source.Doc{}, false, nil
	}
	d := s.docs[s.i]
	s.i++
	return d, true, nil
}

// identityTokenizer splits on whitespace and lowercases, matching
// spec.md §8's "assume an identity tokenizer" scenario setup.
type identityTokenizer struct{}

func (identityTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Fields(strings.ToLower(text))
}

func scenarioDocs() []source.Doc {
	return []source.Doc{
		{URL: "u0", Title: "t0", Text: "the quick brown fox"},
		{URL: "u1", Title: "t1", Text: "the lazy brown dog"},
		{URL: "u2", Title: "t2", Text: "quick fox quick fox"},
		{URL: "u3", Title: "t3", Text: "brown bear sleeps"},
	}
}

func TestBuildProducesQueryableIndex(t *testing.T) {
	dir := t.TempDir()
	opts := BuildOptions{
		OutDir:    dir,
		Tokenizer: identityTokenizer{},
		Source:    &fakeSource{docs: scenarioDocs()},
	}
	if err := Build(context.Background(), opts); err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := read.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.DocCount() != 4 {
		t.Fatalf("DocCount = %d, want 4", r.DocCount())
	}

	postings, err := r.GetPostings("brown")
	if err != nil {
		t.Fatalf("GetPostings: %v", err)
	}
	wantDocs := map[int][]int{0: {2}, 1: {2}, 3: {0}}
	if len(postings) != len(wantDocs) {
		t.Fatalf("got %v, want %v", postings, wantDocs)
	}
	for doc, positions := range wantDocs {
		got, ok := postings[doc]
		if !ok {
			t.Fatalf("missing doc %d in postings for 'brown'", doc)
		}
		if len(got) != len(positions) || got[0] != positions[0] {
			t.Fatalf("doc %d: got %v, want %v", doc, got, positions)
		}
	}

	quickFox, err := r.GetPostings("quick")
	if err != nil {
		t.Fatalf("GetPostings: %v", err)
	}
	if got := quickFox[2]; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("doc2 'quick' positions = %v, want [0 2]", got)
	}
}

func TestBuildSpillsAcrossMultipleBlocks(t *testing.T) {
	dir := t.TempDir()
	var docs []source.Doc
	for i := 0; i < 25; i++ {
		docs = append(docs, source.Doc{URL: "u", Title: "t", Text: "alpha beta gamma"})
	}
	opts := BuildOptions{
		OutDir:    dir,
		BlockSize: 10, // forces 3 blocks for 25 docs
		Tokenizer: identityTokenizer{},
		Source:    &fakeSource{docs: docs},
	}
	if err := Build(context.Background(), opts); err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := read.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.DocCount() != 25 {
		t.Fatalf("DocCount = %d, want 25", r.DocCount())
	}
	postings, err := r.GetPostings("alpha")
	if err != nil {
		t.Fatalf("GetPostings: %v", err)
	}
	if len(postings) != 25 {
		t.Fatalf("got %d docs for 'alpha', want 25", len(postings))
	}
	for doc := 0; doc < 25; doc++ {
		if _, ok := postings[doc]; !ok {
			t.Fatalf("missing doc %d in merged postings for 'alpha'", doc)
		}
	}
}

func TestBuildZeroTokenDocumentStillOccupiesDocID(t *testing.T) {
	dir := t.TempDir()
	opts := BuildOptions{
		OutDir:    dir,
		Tokenizer: identityTokenizer{},
		Source: &fakeSource{docs: []source.Doc{
			{URL: "u0", Title: "t0", Text: "hello world"},
			{URL: "u1", Title: "t1", Text: ""},
			{URL: "u2", Title: "t2", Text: "hello again"},
		}},
	}
	if err := Build(context.Background(), opts); err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := read.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.DocCount() != 3 {
		t.Fatalf("DocCount = %d, want 3", r.DocCount())
	}
	doc, ok := r.Doc(1)
	if !ok || doc.URL != "u1" {
		t.Fatalf("Doc(1) = %+v, %v", doc, ok)
	}
	hello, err := r.GetPostings("hello")
	if err != nil {
		t.Fatalf("GetPostings: %v", err)
	}
	if _, present := hello[1]; present {
		t.Fatalf("doc 1 has no tokens and should not appear in any posting list")
	}
}

func TestBuildClearsPreexistingOutDir(t *testing.T) {
	dir := t.TempDir()
	stale := dir + "/stale.txt"
	if err := os.WriteFile(stale, []byte("leftover"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := BuildOptions{
		OutDir:    dir,
		Tokenizer: identityTokenizer{},
		Source:    &fakeSource{docs: scenarioDocs()},
	}
	if err := Build(context.Background(), opts); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale pre-existing file to be removed, stat err = %v", err)
	}
}
