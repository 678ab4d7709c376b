package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/wordgram/pkg/ngram"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	configPath string
	corpusDir  string
	backend    string
	logLevel   string
	order      int64
	numWords   int64
	seed       uint64
)

func main() {
	app := &cli.Command{
		Name:    "wordgram",
		Usage:   "Generate text from a word-level n-gram model of a text corpus",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to the JSON config file (created with defaults if missing)",
				Value:       "./config.json",
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "corpus",
				Usage:       "directory of plain-text files to train on",
				Destination: &corpusDir,
			},
			&cli.Int64Flag{
				Name:        "order",
				Aliases:     []string{"n"},
				Usage:       "window length: context words plus the predicted word",
				Destination: &order,
			},
			&cli.Int64Flag{
				Name:        "words",
				Aliases:     []string{"w"},
				Usage:       "maximum number of words generated per seed",
				Destination: &numWords,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "model backend (memory, sqlite)",
				Destination: &backend,
			},
			&cli.Uint64Flag{
				Name:        "seed",
				Usage:       "random seed for reproducible output (0 picks one at random)",
				Destination: &seed,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Destination: &logLevel,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config, err := LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			applyFlags(cmd, config)
			if err = config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			fd := os.Stdin.Fd()
			prompt := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
			return run(ctx, config, os.Stdin, os.Stdout, prompt)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags overrides config values with the flags given on the command line.
func applyFlags(cmd *cli.Command, config *Config) {
	if cmd.IsSet("corpus") {
		config.Corpus.Dir = corpusDir
	}
	if cmd.IsSet("order") {
		config.Model.Order = int(order)
	}
	if cmd.IsSet("words") {
		config.Generation.NumWords = int(numWords)
	}
	if cmd.IsSet("backend") {
		config.Model.Backend = backend
	}
	if cmd.IsSet("seed") {
		config.Generation.Seed = seed
	}
	if cmd.IsSet("log-level") {
		config.LogLevel = logLevel
	}
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	// Standard output carries the generated text.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// run loads the corpus, builds the model and hands control to an interactive session.
func run(ctx context.Context, config *Config, in io.Reader, out io.Writer, prompt bool) error {
	logger := newLogger(config.LogLevel)

	logger.Info("Loading corpus", "dir", config.Corpus.Dir, "extension", config.Corpus.Extension)
	text, err := ngram.LoadCorpus(config.Corpus.Dir, config.Corpus.Extension)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	logger.Info("Corpus loaded", "size", humanize.Bytes(uint64(len(text))))

	tokens := ngram.Tokenize(text)
	logger.Info("Corpus tokenized", "tokens", humanize.Comma(int64(len(tokens))))

	logger.Info(fmt.Sprintf("Building %d-gram language model", config.Model.Order), "backend", config.Model.Backend)
	chain, cleanup, err := buildChain(ctx, config.Model, tokens, logger)
	if err != nil {
		return fmt.Errorf("failed to build model: %w", err)
	}
	defer cleanup()

	gen := ngram.NewGenerator(chain, nil, newSampler(config.Generation))
	gen.SetLogger(logger)

	_, _ = fmt.Fprintln(out, "\nModel ready.")
	session := NewSession(gen, config.Generation.NumWords, in, out, prompt, logger)
	return session.Run(ctx)
}

func newSampler(config *GenerationConfig) *ngram.Sampler {
	opts := []ngram.SamplerOption{
		ngram.WithTemperature(config.Temperature),
		ngram.WithTopK(config.TopK),
	}
	if config.Seed == 0 {
		return ngram.NewRandomSampler(opts...)
	}
	return ngram.NewSeededSampler(config.Seed, opts...)
}
