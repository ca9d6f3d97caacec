package format

import (
	"bytes"
	"testing"
)

func TestDocsRoundTrip(t *testing.T) {
	docs := []DocInfo{
		{URL: "u0", Title: "t0"},
		{URL: "u1", Title: ""},
		{URL: "", Title: "t2"},
	}
	var buf bytes.Buffer
	if err := WriteDocs(&buf, docs); err != nil {
		t.Fatalf("WriteDocs: %v", err)
	}
	got, err := ReadDocs(&buf)
	if err != nil {
		t.Fatalf("ReadDocs: %v", err)
	}
	if len(got) != len(docs) {
		t.Fatalf("got %d docs, want %d", len(got), len(docs))
	}
	for i := range docs {
		if got[i] != docs[i] {
			t.Errorf("doc %d: got %+v, want %+v", i, got[i], docs[i])
		}
	}
}

func TestDocsRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("XXXX\x00\x00\x00\x00\x00\x00")
	if _, err := ReadDocs(&buf); err != ErrUnsupportedFormat {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDocsRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	docs := []DocInfo{{URL: "u", Title: "t"}}
	if err := WriteDocs(&buf, docs); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	raw[4] = 99 // corrupt version's low byte
	if _, err := ReadDocs(bytes.NewReader(raw)); err != ErrUnsupportedFormat {
		t.Fatalf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDictRoundTrip(t *testing.T) {
	entries := []DictEntry{
		{Term: "brown", PostingsOffset: 6, DocCount: 3},
		{Term: "fox", PostingsOffset: 40, DocCount: 2},
		{Term: "quick", PostingsOffset: 90, DocCount: 2},
	}
	var buf bytes.Buffer
	if err := WriteDict(&buf, entries); err != nil {
		t.Fatalf("WriteDict: %v", err)
	}
	got, err := ReadDict(&buf)
	if err != nil {
		t.Fatalf("ReadDict: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for _, e := range entries {
		ge, ok := got[e.Term]
		if !ok {
			t.Fatalf("missing term %q", e.Term)
		}
		if ge != e {
			t.Errorf("term %q: got %+v, want %+v", e.Term, ge, e)
		}
	}
}

func TestEncodePostingBlockShape(t *testing.T) {
	entries := []DocPositions{
		{DocID: 0, Positions: []int{0, 2}},
		{DocID: 3, Positions: []int{1}},
	}
	block := EncodePostingBlock(nil, entries)
	if len(block) == 0 {
		t.Fatal("expected non-empty encoded block")
	}
	// doc_count=2 | doc_delta=0 freq=2 pos 0,+2 | doc_delta=3 freq=1 pos 1
	want := []byte{2, 0, 2, 0, 2, 3, 1, 1}
	if !bytes.Equal(block, want) {
		t.Fatalf("got %v, want %v", block, want)
	}
}
