package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/CTAG07/wordgram/pkg/ngram"
	"github.com/google/uuid"
)

const (
	exitCommand   = "exit"
	outputLabel   = "Generated Text:"
	farewell      = "Exiting program."
	separatorLine = "------------------------------------------------------------"
)

// Session reads seed phrases line by line and prints a generated
// continuation for each one until "exit" or the end of input.
type Session struct {
	id       string
	gen      *ngram.Generator
	numWords int
	in       io.Reader
	out      io.Writer
	prompt   bool
	logger   *slog.Logger
}

// NewSession creates a Session. When prompt is true a "> " prompt is written
// before every read.
func NewSession(gen *ngram.Generator, numWords int, in io.Reader, out io.Writer, prompt bool, logger *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		gen:      gen,
		numWords: numWords,
		in:       in,
		out:      out,
		prompt:   prompt,
		logger:   logger.With("session_id", id),
	}
}

// Run is the interactive loop. It only returns an error for I/O failures or
// errors from the model backend; short seeds are reported and the loop continues.
// ctx is passed to every generation but is not checked while waiting for input,
// so cancellation cannot interrupt a blocked read.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Debug("Session started")
	_, _ = fmt.Fprintf(s.out, "Enter seed text (minimum %d words). Type '%s' to quit.\n\n", s.gen.ContextLen(), exitCommand)

	// Lines have no length limit, unlike bufio.Scanner tokens.
	reader := bufio.NewReader(s.in)
	var served int
	for {
		if s.prompt {
			_, _ = fmt.Fprint(s.out, "> ")
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to read seed: %w", err)
			}
			if line == "" {
				break // End of input behaves like exit.
			}
		}
		seed := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		if strings.EqualFold(seed, exitCommand) {
			break
		}

		output, err := s.gen.Generate(ctx, seed, ngram.WithNumWords(s.numWords))
		if err != nil {
			var seedErr *ngram.SeedError
			if !errors.As(err, &seedErr) {
				return err
			}
			s.logger.Debug("Rejected seed", "words", seedErr.Got, "needed", seedErr.Need)
			output = fmt.Sprintf("Error: %s.", capitalize(seedErr.Error()))
		} else {
			served++
		}

		_, _ = fmt.Fprintf(s.out, "\n%s\n%s\n%s\n", outputLabel, output, separatorLine)
	}

	_, _ = fmt.Fprintln(s.out, farewell)
	s.logger.Debug("Session ended", "generations", served)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
