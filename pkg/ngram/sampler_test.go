package ngram

import (
	"context"
	"math"
	"testing"
)

func TestChooseWeightedRatio(t *testing.T) {
	s := NewSeededSampler(42)
	choices := []Candidate{{Word: "x", Freq: 3}, {Word: "y", Freq: 1}}

	const trials = 40000
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		counts[s.Choose(choices, 4)]++
	}

	ratio := float64(counts["x"]) / float64(trials)
	if math.Abs(ratio-0.75) > 0.02 {
		t.Errorf("expected x to be chosen about 75%% of the time, got %.3f (%v)", ratio, counts)
	}
	if counts["x"]+counts["y"] != trials {
		t.Errorf("unexpected words chosen: %v", counts)
	}
}

func TestChooseSingleCandidate(t *testing.T) {
	s := NewSeededSampler(7)
	for i := 0; i < 100; i++ {
		if got := s.Choose([]Candidate{{Word: "only", Freq: 5}}, 5); got != "only" {
			t.Fatalf("expected 'only', got %q", got)
		}
	}
}

func TestSeededSamplerReproducible(t *testing.T) {
	choices := []Candidate{{Word: "a", Freq: 1}, {Word: "b", Freq: 2}, {Word: "c", Freq: 3}}
	s1 := NewSeededSampler(1234)
	s2 := NewSeededSampler(1234)
	for i := 0; i < 200; i++ {
		w1, w2 := s1.Choose(choices, 6), s2.Choose(choices, 6)
		if w1 != w2 {
			t.Fatalf("draw %d differs: %q vs %q", i, w1, w2)
		}
	}
}

func TestChooseTemperatureZero(t *testing.T) {
	s := NewSeededSampler(1, WithTemperature(0))
	choices := []Candidate{{Word: "a", Freq: 1}, {Word: "b", Freq: 9}, {Word: "c", Freq: 9}}
	for i := 0; i < 50; i++ {
		if got := s.Choose(choices, 19); got != "b" {
			t.Fatalf("expected the first most frequent word 'b', got %q", got)
		}
	}
}

func TestChooseTopK(t *testing.T) {
	s := NewSeededSampler(99, WithTopK(1))
	choices := []Candidate{{Word: "rare", Freq: 1}, {Word: "common", Freq: 10}}
	for i := 0; i < 100; i++ {
		if got := s.Choose(choices, 11); got != "common" {
			t.Fatalf("expected top-1 word 'common', got %q", got)
		}
	}
	// The caller's slice must not be reordered.
	if choices[0].Word != "rare" {
		t.Error("Choose reordered the input slice")
	}
}

func TestChooseHighTemperatureFlattens(t *testing.T) {
	s := NewSeededSampler(5, WithTemperature(1000))
	choices := []Candidate{{Word: "x", Freq: 3}, {Word: "y", Freq: 1}}
	const trials = 20000
	var xs int
	for i := 0; i < trials; i++ {
		if s.Choose(choices, 4) == "x" {
			xs++
		}
	}
	ratio := float64(xs) / trials
	if math.Abs(ratio-0.5) > 0.03 {
		t.Errorf("expected a near-uniform choice at high temperature, got %.3f", ratio)
	}
}

func TestSample(t *testing.T) {
	m := mustBuild(t, houseTokens, 5)
	s := NewSeededSampler(3)
	ctx := context.Background()

	word, ok, err := s.Sample(ctx, m, Context{"the", "old", "house", "stood"})
	if err != nil || !ok || word != "alone" {
		t.Errorf("expected ('alone', true, nil), got (%q, %v, %v)", word, ok, err)
	}

	word, ok, err = s.Sample(ctx, m, Context{"a", "b", "c", "d"})
	if err != nil || ok || word != "" {
		t.Errorf("expected no observation, got (%q, %v, %v)", word, ok, err)
	}
}
