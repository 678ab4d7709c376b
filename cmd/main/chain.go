package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CTAG07/wordgram/pkg/ngram"
)

// buildChain counts tokens into the configured backend. The returned cleanup
// function releases the backend's resources and must always be called.
func buildChain(ctx context.Context, config *ModelConfig, tokens []string, logger *slog.Logger) (ngram.Chain, func(), error) {
	switch config.Backend {
	case backendSQLite:
		return buildSQLChain(ctx, config.Order, tokens, logger)
	default:
		model, err := ngram.Build(tokens, config.Order)
		if err != nil {
			return nil, nil, err
		}
		logModelStats(logger, model.Stats())
		return model, func() {}, nil
	}
}

func buildSQLChain(ctx context.Context, order int, tokens []string, logger *slog.Logger) (ngram.Chain, func(), error) {
	db, err := initDB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = ngram.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup ngram schema: %w", err)
	}

	store, err := ngram.NewSQLStore(db, order)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("error creating sql store: %w", err)
	}
	store.SetLogger(logger)

	cleanup := func() {
		store.Close()
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}

	if err = store.Train(ctx, tokens); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("training failed: %w", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to read model stats: %w", err)
	}
	logModelStats(logger, stats)

	return store, cleanup, nil
}

func logModelStats(logger *slog.Logger, stats ngram.ModelStats) {
	logger.Info("Model built",
		slog.Int("contexts", stats.Contexts),
		slog.Int("transitions", stats.Transitions),
		slog.Int("vocabulary", stats.Vocabulary),
	)
	if stats.Contexts == 0 {
		logger.Warn("Model is empty; every seed will be returned unchanged")
	}
}
