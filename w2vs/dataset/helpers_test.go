package dataset

import (
	"fmt"
	"io"
	"strings"
)

// spaceTokenizer splits on whitespace only.
type spaceTokenizer struct{}

func (spaceTokenizer) Tokenize(text string) []string { return strings.Fields(text) }

// tableEmbeddings knows exactly the words in its table.
type tableEmbeddings struct {
	dims    int
	vectors map[string][]float64
}

func (e *tableEmbeddings) HasVector(word string) bool {
	_, ok := e.vectors[word]
	return ok
}

func (e *tableEmbeddings) Vector(word string) []float64 { return e.vectors[word] }

func (e *tableEmbeddings) Dimensions() int { return e.dims }

// newTableEmbeddings gives every word a distinct dims-wide vector whose first
// coordinate is its 1-based index in words.
func newTableEmbeddings(dims int, words ...string) *tableEmbeddings {
	e := &tableEmbeddings{dims: dims, vectors: make(map[string][]float64, len(words))}
	for i, w := range words {
		vec := make([]float64, dims)
		for d := range vec {
			vec[d] = float64(i+1) + float64(d)/10
		}
		e.vectors[w] = vec
	}
	return e
}

// sliceStream replays records and then optional errors, ending with io.EOF.
type sliceStream struct {
	items []streamItem
	next  int
}

type streamItem struct {
	rec Record
	err error
}

func (s *sliceStream) Next() (Record, error) {
	if s.next >= len(s.items) {
		return Record{}, io.EOF
	}
	it := s.items[s.next]
	s.next++
	return it.rec, it.err
}

func rec(id, text, label string) streamItem {
	return streamItem{rec: Record{ID: id, Text: text, Label: label}}
}

func streamErr(err error) streamItem { return streamItem{err: err} }

// numberedStore returns a store with p positives "p0 p1 ..." and n negatives.
func numberedStore(p, n int) *Store {
	pos := make([]string, p)
	for i := range pos {
		pos[i] = fmt.Sprintf("p%d", i)
	}
	neg := make([]string, n)
	for i := range neg {
		neg[i] = fmt.Sprintf("n%d", i)
	}
	return NewStoreFromExamples(pos, neg)
}

// simulateOrder walks the epoch step by step: even steps take the next
// positive if any is left, odd steps the next negative, falling back to the
// other class when the preferred one is used up.
func simulateOrder(p, n int) []LabeledExample {
	var out []LabeledExample
	pi, ni := 0, 0
	for k := 0; k < p+n; k++ {
		takePositive := (k%2 == 0 && pi < p) || (k%2 == 1 && ni >= n)
		if takePositive {
			out = append(out, LabeledExample{Text: fmt.Sprintf("p%d", pi), Class: Positive})
			pi++
		} else {
			out = append(out, LabeledExample{Text: fmt.Sprintf("n%d", ni), Class: Negative})
			ni++
		}
	}
	return out
}
