// Package analysis implements the default in-process analysis pipeline:
// the stand-in tokenizer used when no external tokenizer subprocess is
// configured (see internal/tokenizer for the subprocess contract both
// share).
//
// ═══════════════════════════════════════════════════════════════════════════════
// ANALYSIS PIPELINE
// ═══════════════════════════════════════════════════════════════════════════════
//  1. Tokenization      → split text into words
//  2. Lowercasing       → normalize case ("Quick" → "quick")
//  3. Stop word removal → drop common words ("the", "a", ...)
//  4. Length filtering  → drop very short tokens (< MinTokenLength)
//  5. Stemming          → reduce words to a root form ("running" → "run")
//
// Example: "The Quick Brown Fox Jumps!" → ["quick", "brown", "fox", "jump"]
// ═══════════════════════════════════════════════════════════════════════════════
package analysis

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Config controls which pipeline stages run.
type Config struct {
	MinTokenLength  int  // minimum token length to keep (default 2)
	EnableStemming  bool // whether to apply Snowball stemming (default true)
	EnableStopwords bool // whether to remove stopwords (default true)
}

// DefaultConfig is the pipeline used when a caller doesn't need anything
// custom.
func DefaultConfig() Config {
	return Config{
		MinTokenLength:  2,
		EnableStemming:  true,
		EnableStopwords: true,
	}
}

// Analyzer runs the pipeline with a fixed Config and satisfies the
// tokenizer.Tokenizer interface structurally (Tokenize(string) []string)
// without importing that package, so it can serve as the builder's and
// query evaluator's default tokenizer.
type Analyzer struct {
	Config Config
}

// New returns an Analyzer using DefaultConfig.
func New() *Analyzer {
	return &Analyzer{Config: DefaultConfig()}
}

// NewWithConfig returns an Analyzer using a custom Config.
func NewWithConfig(cfg Config) *Analyzer {
	return &Analyzer{Config: cfg}
}

// Tokenize runs the full pipeline over text.
func (a *Analyzer) Tokenize(text string) []string {
	tokens := tokenize(text)
	tokens = lowercaseFilter(tokens)

	if a.Config.EnableStopwords {
		tokens = stopwordFilter(tokens)
	}

	tokens = lengthFilter(tokens, a.Config.MinTokenLength)

	if a.Config.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return tokens
}

// tokenize splits text into words using Unicode-aware rules: anything
// that is not a letter or a digit is a delimiter.
//
//	"hello-world"    → ["hello", "world"]
//	"user@email.com" → ["user", "email", "com"]
//	"café"           → ["café"]  (Unicode letters preserved)
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func lowercaseFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = strings.ToLower(token)
	}
	return r
}

func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isStopword(token) {
			r = append(r, token)
		}
	}
	return r
}

func lengthFilter(tokens []string, minLength int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) >= minLength {
			r = append(r, token)
		}
	}
	return r
}

// stemmerFilter reduces words to their root form using the Snowball
// (Porter2) English stemmer, e.g. "running"/"runs" → "run".
func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}

func isStopword(token string) bool {
	_, exists := englishStopwords[token]
	return exists
}
