package ngram

import (
	"strings"
	"unicode"
)

// Tokenizer is an interface that defines the contract for turning raw text
// into word tokens and joining tokens back into text. This allows the
// generator logic to be independent of the specific normalization strategy.
type Tokenizer interface {
	// Tokenize returns the normalized tokens found in text.
	Tokenize(text string) []string
	// Join builds the output string for a sequence of tokens.
	Join(tokens []string) string
}

// DefaultTokenizer is the default implementation of the Tokenizer interface.
// It lowercases its input, deletes every character that is neither an ASCII
// lowercase letter nor whitespace, and splits on runs of whitespace.
//
// Deleted characters are not replaced with a separator, so "can't" becomes
// "cant" and "end.No" becomes "endno".
type DefaultTokenizer struct {
	separator string
}

// NewDefaultTokenizer creates a new tokenizer that joins tokens with a single space.
func NewDefaultTokenizer() *DefaultTokenizer {
	return &DefaultTokenizer{separator: " "}
}

// Tokenize normalizes text and splits it into tokens. Empty input, or input
// with no letters, yields an empty slice.
func (t *DefaultTokenizer) Tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || isSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	fields := strings.FieldsFunc(cleaned, isSpace)
	if fields == nil {
		return []string{}
	}
	return fields
}

// Join returns the tokens separated by the tokenizer's separator.
func (t *DefaultTokenizer) Join(tokens []string) string {
	return strings.Join(tokens, t.separator)
}

// isSpace extends unicode.IsSpace with the ASCII information separators
// U+001C to U+001F, which also separate words.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

var defaultTokenizer = NewDefaultTokenizer()

// Tokenize is a convenience wrapper around DefaultTokenizer.Tokenize.
func Tokenize(text string) []string {
	return defaultTokenizer.Tokenize(text)
}
