package ngram

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
)

// samplerOptions holds the selection parameters of a Sampler.
type samplerOptions struct {
	temperature float64
	topK        int
}

// SamplerOption is a function that configures a Sampler.
type SamplerOption func(*samplerOptions)

// WithTemperature adjusts the randomness of the token selection.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 increase randomness (making less frequent tokens more likely).
// Values < 1.0 decrease randomness (making more frequent tokens even more likely).
// A value of 0 or less results in deterministic selection (always choosing the most frequent token).
func WithTemperature(t float64) SamplerOption {
	return func(o *samplerOptions) { o.temperature = t }
}

// WithTopK restricts the selection pool to the `k` most frequent candidates.
// A value of 0 disables Top-K sampling.
func WithTopK(k int) SamplerOption {
	return func(o *samplerOptions) { o.topK = k }
}

// Sampler draws next tokens from a Chain, weighted by observed frequency.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	rng     *rand.Rand
	options samplerOptions
}

// NewSampler creates a Sampler drawing from src.
func NewSampler(src rand.Source, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		rng: rand.New(src),
		options: samplerOptions{
			temperature: 1.0,
			topK:        0,
		},
	}
	for _, opt := range opts {
		opt(&s.options)
	}
	return s
}

// NewSeededSampler creates a Sampler whose draws are reproducible for a given seed.
func NewSeededSampler(seed uint64, opts ...SamplerOption) *Sampler {
	return NewSampler(rand.NewPCG(seed, seed), opts...)
}

// NewRandomSampler creates a Sampler seeded from the runtime's random source.
func NewRandomSampler(opts ...SamplerOption) *Sampler {
	return NewSampler(rand.NewPCG(rand.Uint64(), rand.Uint64()), opts...)
}

// Sample returns a next word for c. ok is false when c was never observed.
func (s *Sampler) Sample(ctx context.Context, chain Chain, c Context) (word string, ok bool, err error) {
	choices, totalFreq, err := chain.Followers(ctx, c)
	if err != nil {
		return "", false, err
	}
	if len(choices) == 0 {
		return "", false, nil
	}
	return s.Choose(choices, totalFreq), true, nil
}

// Choose picks one candidate. With the default options the probability of a
// word is its frequency divided by totalFreq. choices must not be empty.
func (s *Sampler) Choose(choices []Candidate, totalFreq int) string {
	// topK filtering
	if s.options.topK > 0 && s.options.topK < len(choices) {
		sorted := make([]Candidate, len(choices))
		copy(sorted, choices)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Freq > sorted[j].Freq
		})
		choices = sorted[:s.options.topK]
		totalFreq = 0
		for _, choice := range choices {
			totalFreq += choice.Freq
		}
	}

	switch {
	case s.options.temperature <= 0: // Deterministic
		best := 0
		for i, choice := range choices {
			if choice.Freq > choices[best].Freq {
				best = i
			}
		}
		return choices[best].Word

	case s.options.temperature == 1.0: // Standard weighted random
		cumulative := make([]int, len(choices))
		running := 0
		for i, choice := range choices {
			running += choice.Freq
			cumulative[i] = running
		}
		// The cumulative sum is authoritative; totalFreq is only a hint from the Chain.
		draw := s.rng.IntN(running)
		i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > draw })
		return choices[i].Word

	default: // Temperature-based sampling
		logProbabilities := make([]float64, len(choices))
		maxLog := math.Inf(-1)
		for i, choice := range choices {
			lp := math.Log(float64(choice.Freq)) / s.options.temperature
			logProbabilities[i] = lp
			if lp > maxLog {
				maxLog = lp
			}
		}
		cumulative := make([]float64, len(choices))
		var totalWeight float64
		for i, lp := range logProbabilities {
			totalWeight += math.Exp(lp - maxLog)
			cumulative[i] = totalWeight
		}
		draw := s.rng.Float64() * totalWeight
		i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > draw })
		if i == len(cumulative) {
			i--
		}
		return choices[i].Word
	}
}
