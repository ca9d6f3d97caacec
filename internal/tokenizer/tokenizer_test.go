package tokenizer

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

type fakeTokenizer struct{}

func (fakeTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Fields(strings.ToLower(text))
}

func TestRespondFraming(t *testing.T) {
	in := strings.NewReader("The Quick Brown\nFox\n")
	var out bytes.Buffer

	if err := Respond(context.Background(), in, &out, fakeTokenizer{}); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	want := "the\nquick\nbrown\n" + EndSentinel + "\n" + "fox\n" + EndSentinel + "\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRespondEmptyLineStillEmitsSentinel(t *testing.T) {
	in := strings.NewReader("\n")
	var out bytes.Buffer

	if err := Respond(context.Background(), in, &out, fakeTokenizer{}); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if out.String() != EndSentinel+"\n" {
		t.Fatalf("got %q, want sentinel only", out.String())
	}
}

func TestSubprocessTokenizerWithShellEcho(t *testing.T) {
	// A minimal shell "tokenizer": split the input line on spaces and
	// echo each word, then the sentinel. Exercises the real pipe
	// plumbing without depending on any particular external binary
	// beyond /bin/sh and standard utilities.
	script := `while IFS= read -r line; do for w in $line; do echo "$w"; done; echo "__END_DOC__"; done`
	tok := NewSubprocessTokenizer("/bin/sh", "-c", script)
	defer tok.Close()

	got := tok.Tokenize("alpha beta gamma")
	want := []string{"alpha", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSubprocessTokenizerDeadProcessReturnsEmpty(t *testing.T) {
	tok := NewSubprocessTokenizer("/bin/sh", "-c", "exit 0")
	defer tok.Close()

	got := tok.Tokenize("anything")
	if len(got) != 0 {
		t.Fatalf("expected empty result from a dead tokenizer, got %v", got)
	}
}
