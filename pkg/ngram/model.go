package ngram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultOrder is the window length used by the CLI: four words of context
// plus the predicted word.
const DefaultOrder = 5

// ErrInvalidOrder is returned when a model order leaves no room for context.
var ErrInvalidOrder = errors.New("model order must be at least 2")

// Context is the ordered run of preceding tokens used to look up the next one.
type Context []string

// Key returns the lookup key for the context. Tokens never contain spaces, so
// joining with a space is unambiguous.
func (c Context) Key() string {
	return strings.Join(c, " ")
}

// FreqTable maps a candidate next token to the number of times it followed a context.
type FreqTable map[string]int

// Candidate represents a potential next token after a context, together with
// its frequency of occurrence.
type Candidate struct {
	Word string
	Freq int
}

// ModelStats holds aggregated statistics for a model.
type ModelStats struct {
	Contexts    int // The number of distinct contexts.
	Transitions int // The sum of all counts; the number of windows counted.
	Vocabulary  int // The number of distinct tokens seen as a next word.
}

// Chain is the read side of a trained model. Implementations return the
// observed followers of a context sorted by word, their total frequency, and
// a nil slice with a total of 0 when the context was never observed.
type Chain interface {
	Order() int
	Followers(ctx context.Context, c Context) ([]Candidate, int, error)
}

// Model is an in-memory n-gram model. It is built once by Build and is
// read-only afterwards, so it is safe to share between readers.
type Model struct {
	order int
	table map[string]FreqTable
}

// Build slides a window of length order over tokens and counts, for every
// window, the last token under the context formed by the others. Fewer than
// order tokens produce an empty model.
func Build(tokens []string, order int) (*Model, error) {
	if order < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
	}

	m := &Model{
		order: order,
		table: make(map[string]FreqTable),
	}
	for i := 0; i+order <= len(tokens); i++ {
		key := Context(tokens[i : i+order-1]).Key()
		next := tokens[i+order-1]

		freqs, ok := m.table[key]
		if !ok {
			freqs = make(FreqTable)
			m.table[key] = freqs
		}
		freqs[next]++
	}
	return m, nil
}

// Order returns the window length of the model (context length + 1).
func (m *Model) Order() int {
	return m.order
}

// Len returns the number of distinct contexts in the model.
func (m *Model) Len() int {
	return len(m.table)
}

// Lookup returns a copy of the frequency table for c.
func (m *Model) Lookup(c Context) (FreqTable, bool) {
	freqs, ok := m.table[c.Key()]
	if !ok {
		return nil, false
	}
	out := make(FreqTable, len(freqs))
	for word, freq := range freqs {
		out[word] = freq
	}
	return out, true
}

// Followers implements Chain. It never returns an error.
func (m *Model) Followers(_ context.Context, c Context) ([]Candidate, int, error) {
	freqs, ok := m.table[c.Key()]
	if !ok {
		return nil, 0, nil
	}

	candidates := make([]Candidate, 0, len(freqs))
	var total int
	for word, freq := range freqs {
		candidates = append(candidates, Candidate{Word: word, Freq: freq})
		total += freq
	}
	// Map order is random; sort so a seeded sampler is reproducible.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Word < candidates[j].Word
	})
	return candidates, total, nil
}

// Stats returns a snapshot of the model's size.
func (m *Model) Stats() ModelStats {
	vocab := make(map[string]struct{})
	var stats ModelStats
	stats.Contexts = len(m.table)
	for _, freqs := range m.table {
		for word, freq := range freqs {
			stats.Transitions += freq
			vocab[word] = struct{}{}
		}
	}
	stats.Vocabulary = len(vocab)
	return stats
}
