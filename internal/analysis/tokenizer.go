package analysis

// AnalyzerTokenizer adapts an Analyzer to the tokenizer.Tokenizer
// interface (Tokenize(string) []string) without this package importing
// internal/tokenizer, avoiding an import cycle since both the builder
// and query evaluator depend on tokenizer.Tokenizer as their shared
// abstraction. It is the default tokenizer used when no external
// tokenizer subprocess is configured.
type AnalyzerTokenizer struct {
	analyzer *Analyzer
}

// NewAnalyzerTokenizer wraps a, or a DefaultConfig Analyzer if a is nil.
func NewAnalyzerTokenizer(a *Analyzer) *AnalyzerTokenizer {
	if a == nil {
		a = New()
	}
	return &AnalyzerTokenizer{analyzer: a}
}

// Tokenize runs the wrapped Analyzer's pipeline.
func (t *AnalyzerTokenizer) Tokenize(text string) []string {
	return t.analyzer.Tokenize(text)
}
