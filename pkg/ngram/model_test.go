package ngram

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	tokens := []string{"a", "b", "c", "d", "e", "a", "b", "c", "d", "f"}
	m := mustBuild(t, tokens, 5)

	freqs, ok := m.Lookup(Context{"a", "b", "c", "d"})
	if !ok {
		t.Fatal("expected context (a b c d) to be present")
	}
	expected := FreqTable{"e": 1, "f": 1}
	if !reflect.DeepEqual(freqs, expected) {
		t.Errorf("expected %v, got %v", expected, freqs)
	}
	if m.Order() != 5 {
		t.Errorf("expected order 5, got %d", m.Order())
	}
}

func TestBuildShortInput(t *testing.T) {
	for _, tokens := range [][]string{nil, {"a", "b", "c", "d"}} {
		m := mustBuild(t, tokens, 5)
		if m.Len() != 0 {
			t.Errorf("expected empty model for %d tokens, got %d contexts", len(tokens), m.Len())
		}
	}

	m := mustBuild(t, []string{"a", "b", "c", "d", "e"}, 5)
	if m.Len() != 1 {
		t.Errorf("expected exactly one context for five tokens, got %d", m.Len())
	}
}

func TestBuildInvalidOrder(t *testing.T) {
	for _, order := range []int{-1, 0, 1} {
		if _, err := Build([]string{"a", "b"}, order); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("order %d: expected ErrInvalidOrder, got %v", order, err)
		}
	}
}

func TestModelTotality(t *testing.T) {
	tokens := Tokenize("the cat sat on the mat the cat sat on the hat and the cat sat on the mat again")
	const order = 5
	m := mustBuild(t, tokens, order)

	windows := make(map[string]int)
	for i := 0; i+order <= len(tokens); i++ {
		windows[Context(tokens[i:i+order-1]).Key()]++
	}

	if m.Len() != len(windows) {
		t.Fatalf("expected %d contexts, got %d", len(windows), m.Len())
	}
	for key, count := range windows {
		candidates, total, err := m.Followers(context.Background(), contextFromKey(key))
		if err != nil {
			t.Fatalf("Followers() failed: %v", err)
		}
		if total != count {
			t.Errorf("context %q: expected total %d, got %d", key, count, total)
		}
		for _, c := range candidates {
			if c.Freq < 1 {
				t.Errorf("context %q: candidate %q has count %d", key, c.Word, c.Freq)
			}
		}
	}
}

func TestFollowersSortedAndUnseen(t *testing.T) {
	tokens := []string{"x", "y", "c", "x", "y", "a", "x", "y", "b", "x", "y", "a"}
	m := mustBuild(t, tokens, 3)
	ctx := context.Background()

	candidates, total, err := m.Followers(ctx, Context{"x", "y"})
	if err != nil {
		t.Fatalf("Followers() failed: %v", err)
	}
	expected := []Candidate{{Word: "a", Freq: 2}, {Word: "b", Freq: 1}, {Word: "c", Freq: 1}}
	if !reflect.DeepEqual(candidates, expected) {
		t.Errorf("expected %+v, got %+v", expected, candidates)
	}
	if total != 4 {
		t.Errorf("expected total 4, got %d", total)
	}

	candidates, total, err = m.Followers(ctx, Context{"never", "seen"})
	if err != nil || candidates != nil || total != 0 {
		t.Errorf("expected no candidates for unseen context, got %+v, %d, %v", candidates, total, err)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	m := mustBuild(t, []string{"a", "b", "c"}, 3)
	freqs, _ := m.Lookup(Context{"a", "b"})
	freqs["c"] = 100

	again, _ := m.Lookup(Context{"a", "b"})
	if again["c"] != 1 {
		t.Errorf("model was mutated through Lookup, count is %d", again["c"])
	}
}

func TestModelStats(t *testing.T) {
	m := mustBuild(t, houseTokens, 5)
	stats := m.Stats()
	if stats.Transitions != len(houseTokens)-4 {
		t.Errorf("expected %d transitions, got %d", len(houseTokens)-4, stats.Transitions)
	}
	if stats.Contexts != m.Len() {
		t.Errorf("expected %d contexts, got %d", m.Len(), stats.Contexts)
	}
	if stats.Vocabulary == 0 {
		t.Error("expected a non-zero vocabulary")
	}
}

func contextFromKey(key string) Context {
	return Context(Tokenize(key))
}

func BenchmarkBuild(b *testing.B) {
	tokens := Tokenize(createBenchmarkCorpus())

	for _, order := range []int{2, 3, 4, 5} {
		b.Run(fmt.Sprintf("Order%d", order), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Build(tokens, order); err != nil {
					b.Fatalf("Build() failed: %v", err)
				}
			}
		})
	}
}
