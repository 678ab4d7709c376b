package ngram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// DefaultNumWords is the number of words Generate tries to append to a seed.
const DefaultNumWords = 40

// ErrSeedTooShort is matched by every SeedError.
var ErrSeedTooShort = errors.New("seed text is too short")

// SeedError reports a seed phrase with fewer tokens than the model's context length.
type SeedError struct {
	Need int
	Got  int
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seed text must contain at least %d words", e.Need)
}

func (e *SeedError) Is(target error) bool {
	return target == ErrSeedTooShort
}

// generateOptions Is used by Generate to configure default options.
type generateOptions struct {
	numWords int
}

// GenerateOption is a function that configures generation parameters.
type GenerateOption func(*generateOptions)

// WithNumWords sets the maximum number of words appended to the seed. The
// generation may stop earlier if it reaches a context the model never saw.
func WithNumWords(n int) GenerateOption {
	return func(o *generateOptions) { o.numWords = n }
}

// Generator continues seed phrases by repeatedly sampling from a Chain.
type Generator struct {
	chain     Chain
	tokenizer Tokenizer
	sampler   *Sampler
	logger    *slog.Logger
}

// NewGenerator creates a Generator over chain. A nil tokenizer selects the
// DefaultTokenizer and a nil sampler selects a randomly seeded one.
func NewGenerator(chain Chain, tokenizer Tokenizer, sampler *Sampler) *Generator {
	if tokenizer == nil {
		tokenizer = NewDefaultTokenizer()
	}
	if sampler == nil {
		sampler = NewRandomSampler()
	}
	return &Generator{
		chain:     chain,
		tokenizer: tokenizer,
		sampler:   sampler,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Generator. By default, all logs are discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// ContextLen returns the number of seed words the Generator requires.
func (g *Generator) ContextLen() int {
	return g.chain.Order() - 1
}

// Generate tokenizes seed and extends it one sampled word at a time, using
// the last order-1 words as the context. It stops after the requested number
// of words or at the first unseen context, and returns the seed tokens plus
// the generated words joined by the tokenizer.
//
// A seed with fewer than order-1 tokens returns a *SeedError and samples nothing.
func (g *Generator) Generate(ctx context.Context, seed string, opts ...GenerateOption) (string, error) {
	options := &generateOptions{
		numWords: DefaultNumWords,
	}
	for _, opt := range opts {
		opt(options)
	}

	seedTokens := g.tokenizer.Tokenize(seed)
	need := g.ContextLen()
	if len(seedTokens) < need {
		return "", &SeedError{Need: need, Got: len(seedTokens)}
	}

	generated := make([]string, len(seedTokens), len(seedTokens)+max(options.numWords, 0))
	copy(generated, seedTokens)

	terminatedEarly := false
	for i := 0; i < options.numWords; i++ {
		current := Context(generated[len(generated)-need:])

		word, ok, err := g.sampler.Sample(ctx, g.chain, current)
		if err != nil {
			return "", fmt.Errorf("failed to sample next word for context '%s': %w", current.Key(), err)
		}
		if !ok { // Dead end in chain
			terminatedEarly = true
			g.logger.DebugContext(ctx, "Generation terminated due to unseen context",
				slog.String("context", current.Key()),
				slog.Int("generated_words", i),
			)
			break
		}
		generated = append(generated, word)
	}

	if !terminatedEarly {
		g.logger.DebugContext(ctx, "Generation terminated by reaching word limit",
			slog.Int("num_words", options.numWords),
		)
	}

	return g.tokenizer.Join(generated), nil
}
