// ═══════════════════════════════════════════════════════════════════════════════
// EVALUATING RPN AGAINST THE INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// The evaluator walks the RPN left to right with a single *DocSet
// stack, exactly like the teacher's hand-rolled roaring.Bitmap stack in
// QueryBuilder — except here the stack is driven by a parsed RPN
// sequence instead of chained fluent calls.
//
//	TERM       tokenize the term text; if it splits into more than one
//	           token, only the first is used as the operand (a bare
//	           word should already be a single token under any sane
//	           tokenizer, but this keeps the contract well-defined)
//	PHRASE     tokenize into T1..Tk, then sequence_search with
//	           max_dist == k (exact adjacency)
//	PROXIMITY  tokenize into T1..Tk, then sequence_search with the
//	           query's explicit max_dist (a span constraint)
//	!          pop A, push universe \ A
//	&&, ||     pop B then A, push A op B; an operator with too few
//	           operands on the stack is silently skipped rather than
//	           treated as an error, matching the front end's
//	           best-effort recovery policy
//
// The final stack top is the result; an empty stack (e.g. an empty
// query) yields the empty set.
// ═══════════════════════════════════════════════════════════════════════════════
package query

import "sort"

// PostingsSource is the subset of read.Reader the evaluator needs. It's
// declared here, not in the read package, so query stays the one
// package that defines what it requires of its index.
type PostingsSource interface {
	GetPostings(term string) (map[int][]int, error)
	DocCount() int
}

// Tokenizer matches tokenizer.Tokenizer structurally, kept local so
// this package doesn't have to import tokenizer just for the interface
// shape.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Search lexes, parses, and evaluates q against src, using tok to
// normalize term and phrase bodies the same way the index's terms were
// normalized at build time.
func Search(src PostingsSource, tok Tokenizer, q string) (*DocSet, error) {
	elems, err := lex(q)
	if err != nil {
		return nil, err
	}
	rpn := parse(elems)
	return Evaluate(rpn, src, tok)
}

// Evaluate walks an RPN element sequence and returns the resulting
// DocSet.
func Evaluate(rpn []element, src PostingsSource, tok Tokenizer) (*DocSet, error) {
	var stack []*DocSet

	pop := func() (*DocSet, bool) {
		if len(stack) == 0 {
			return nil, false
		}
		n := len(stack) - 1
		top := stack[n]
		stack = stack[:n]
		return top, true
	}

	for _, e := range rpn {
		switch e.kind {
		case elemTerm:
			tokens := tok.Tokenize(e.text)
			if len(tokens) == 0 {
				stack = append(stack, NewDocSet())
				continue
			}
			postings, err := src.GetPostings(tokens[0])
			if err != nil {
				return nil, err
			}
			stack = append(stack, docSetFromKeys(postings))

		case elemPhrase:
			tokens := tok.Tokenize(e.text)
			set, err := sequenceSearch(src, tokens, len(tokens))
			if err != nil {
				return nil, err
			}
			stack = append(stack, set)

		case elemProximity:
			tokens := tok.Tokenize(e.text)
			set, err := sequenceSearch(src, tokens, e.maxDist)
			if err != nil {
				return nil, err
			}
			stack = append(stack, set)

		case elemNot:
			a, ok := pop()
			if !ok {
				continue
			}
			stack = append(stack, not(universe(src.DocCount()), a))

		case elemAnd:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				if ok1 {
					stack = append(stack, b)
				}
				continue
			}
			stack = append(stack, and(a, b))

		case elemOr:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				if ok1 {
					stack = append(stack, b)
				}
				continue
			}
			stack = append(stack, or(a, b))
		}
	}

	if len(stack) == 0 {
		return NewDocSet(), nil
	}
	return stack[len(stack)-1], nil
}

// sequenceSearch implements §4.6/§4.7's positional matching: fetch
// positional postings for each term, intersect the candidate DocIds,
// then for each candidate search for a strictly-ascending position
// tuple satisfying either exact adjacency (when maxDist == len(terms))
// or a span constraint (otherwise). A missing term — one absent from
// the dictionary — makes the whole phrase/proximity match empty,
// since GetPostings returns an empty map for unknown terms.
func sequenceSearch(src PostingsSource, terms []string, maxDist int) (*DocSet, error) {
	if len(terms) == 0 {
		return NewDocSet(), nil
	}

	allPostings := make([]map[int][]int, len(terms))
	for i, term := range terms {
		p, err := src.GetPostings(term)
		if err != nil {
			return nil, err
		}
		if len(p) == 0 {
			return NewDocSet(), nil
		}
		allPostings[i] = p
	}

	candidates := make(map[int]struct{}, len(allPostings[0]))
	for docID := range allPostings[0] {
		candidates[docID] = struct{}{}
	}
	for i := 1; i < len(allPostings); i++ {
		next := make(map[int]struct{})
		for docID := range candidates {
			if _, ok := allPostings[i][docID]; ok {
				next[docID] = struct{}{}
			}
		}
		candidates = next
	}

	result := NewDocSet()
	positionsPerTerm := make([][]int, len(terms))
	for docID := range candidates {
		for i := range terms {
			positionsPerTerm[i] = allPostings[i][docID]
		}
		if matchInDoc(positionsPerTerm, maxDist) {
			result.Add(docID)
		}
	}
	return result, nil
}

// matchInDoc is the depth-first search (with pruning) across k position
// lists described for sequence_search: for each candidate start
// position in the first term's list, greedily advance through the
// remaining terms' lists to the smallest position strictly greater
// than the previous one chosen, backtracking to the next start when no
// such position exists.
//
// When maxDist == k the match must be an exact run of consecutive
// positions (a phrase); otherwise any strictly ascending tuple whose
// first-to-last span is at most maxDist qualifies (a proximity match).
func matchInDoc(positionsPerTerm [][]int, maxDist int) bool {
	k := len(positionsPerTerm)
	if k == 0 {
		return false
	}
	if k == 1 {
		return len(positionsPerTerm[0]) > 0
	}

	phraseMode := maxDist == k
	var posSets []map[int]struct{}
	if phraseMode {
		posSets = make([]map[int]struct{}, k)
		for i, ps := range positionsPerTerm {
			m := make(map[int]struct{}, len(ps))
			for _, p := range ps {
				m[p] = struct{}{}
			}
			posSets[i] = m
		}
	}

	for _, start := range positionsPerTerm[0] {
		prev := start
		ok := true
		for i := 1; i < k; i++ {
			if phraseMode {
				if _, found := posSets[i][prev+1]; !found {
					ok = false
					break
				}
				prev = prev + 1
				continue
			}
			next, found := smallestGreater(positionsPerTerm[i], prev)
			if !found {
				ok = false
				break
			}
			prev = next
		}
		if !ok {
			continue
		}
		if !phraseMode && prev-start > maxDist {
			continue
		}
		return true
	}
	return false
}

// smallestGreater returns the smallest element of sorted strictly
// greater than x, assuming sorted is in ascending order.
func smallestGreater(sorted []int, x int) (int, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
	if i == len(sorted) {
		return 0, false
	}
	return sorted[i], true
}
