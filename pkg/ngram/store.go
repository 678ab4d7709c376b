package ngram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema initializes the tables used by SQLStore in the provided
// database. It is idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS ngram_vocabulary (
    token_id INTEGER PRIMARY KEY,
    token_text TEXT NOT NULL UNIQUE
);
`
		schemaContexts = `
CREATE TABLE IF NOT EXISTS ngram_contexts (
	context_id INTEGER PRIMARY KEY,
	context_text TEXT NOT NULL UNIQUE
);
`
		schemaCounts = `
CREATE TABLE IF NOT EXISTS ngram_counts (
    context_id INTEGER NOT NULL,
    next_token_id INTEGER NOT NULL,
    frequency  INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (context_id, next_token_id)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaVocab); err != nil {
		return fmt.Errorf("could not create vocabulary schema: %w", err)
	}

	if _, err = tx.Exec(schemaContexts); err != nil {
		return fmt.Errorf("could not create contexts schema: %w", err)
	}

	if _, err = tx.Exec(schemaCounts); err != nil {
		return fmt.Errorf("could not create counts schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// SQLStore is a Chain whose counts live in SQLite tables created by
// SetupSchema. It holds prepared statements for the lookups done during
// generation.
type SQLStore struct {
	db                     *sql.DB
	order                  int
	stmtGetContextID       *sql.Stmt
	stmtGetFollowers       *sql.Stmt
	stmtCountContexts      *sql.Stmt
	stmtSumFrequency       *sql.Stmt
	stmtCountVocab         *sql.Stmt
	stmtInsertVocab        *sql.Stmt
	stmtGetOrInsertContext *sql.Stmt
	logger                 *slog.Logger
}

// NewSQLStore creates a SQLStore of the given order over db. The schema must
// already exist. It pre-compiles all necessary SQL statements, returning an
// error if any preparation fails.
func NewSQLStore(db *sql.DB, order int) (*SQLStore, error) {
	if order < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
	}

	s := &SQLStore{
		db:     db,
		order:  order,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.stmtGetContextID, `SELECT context_id FROM ngram_contexts WHERE context_text = ?;`},
		{&s.stmtGetFollowers, `SELECT v.token_text, c.frequency FROM ngram_counts c JOIN ngram_vocabulary v ON v.token_id = c.next_token_id WHERE c.context_id = ? ORDER BY v.token_text;`},
		{&s.stmtCountContexts, `SELECT COUNT(DISTINCT context_id) FROM ngram_counts;`},
		{&s.stmtSumFrequency, `SELECT coalesce(SUM(frequency), 0) FROM ngram_counts;`},
		{&s.stmtCountVocab, `SELECT COUNT(DISTINCT next_token_id) FROM ngram_counts;`},
		{&s.stmtInsertVocab, `INSERT INTO ngram_vocabulary (token_text) VALUES (?) ON CONFLICT(token_text) DO UPDATE SET token_text=excluded.token_text RETURNING token_id;`},
		{&s.stmtGetOrInsertContext, `INSERT INTO ngram_contexts (context_text) VALUES (?) ON CONFLICT(context_text) DO UPDATE SET context_text=excluded.context_text RETURNING context_id;`},
	}
	for _, st := range stmts {
		stmt, err := db.Prepare(st.query)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not prepare statement: %w", err)
		}
		*st.dst = stmt
	}

	return s, nil
}

// Close releases all prepared SQL statements held by the SQLStore. The
// database itself is owned by the caller.
func (s *SQLStore) Close() {
	for _, stmt := range []*sql.Stmt{
		s.stmtGetContextID,
		s.stmtGetFollowers,
		s.stmtCountContexts,
		s.stmtSumFrequency,
		s.stmtCountVocab,
		s.stmtInsertVocab,
		s.stmtGetOrInsertContext,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// SetLogger sets the logger for the SQLStore. By default, all logs are discarded.
func (s *SQLStore) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Order returns the window length of the store.
func (s *SQLStore) Order() int {
	return s.order
}

// countLink Is a struct used for batching count upserts.
type countLink struct {
	contextID   int64
	nextTokenID int64
}

// Train counts every window of tokens into the store, using the same rule as
// Build. The whole operation runs in a single transaction; vocabulary and
// context IDs are cached in memory and count upserts are batched.
func (s *SQLStore) Train(ctx context.Context, tokens []string) error {
	// countBatchSize determines how many links are buffered before being written in one pass.
	const countBatchSize = 1000

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// All transaction-specific statements will also be closed with this or the .Commit()
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsertVocab := tx.StmtContext(ctx, s.stmtInsertVocab)
	stmtGetOrInsertContext := tx.StmtContext(ctx, s.stmtGetOrInsertContext)
	stmtInsertCount, err := tx.PrepareContext(ctx, `INSERT INTO ngram_counts (context_id, next_token_id, frequency) VALUES (?, ?, 1) ON CONFLICT(context_id, next_token_id) DO UPDATE SET frequency = frequency + 1;`)
	if err != nil {
		return fmt.Errorf("failed to prepare count insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsertCount)

	vocabCache := make(map[string]int64)
	contextCache := make(map[string]int64)
	batch := make([]countLink, 0, countBatchSize)

	commitBatch := func() error {
		for _, link := range batch {
			if _, err := stmtInsertCount.ExecContext(ctx, link.contextID, link.nextTokenID); err != nil {
				return fmt.Errorf("failed during batch insert of count (%d -> %d): %w", link.contextID, link.nextTokenID, err)
			}
		}
		batch = batch[:0]
		return nil
	}

	var windows int64
	for i := 0; i+s.order <= len(tokens); i++ {
		key := Context(tokens[i : i+s.order-1]).Key()
		next := tokens[i+s.order-1]

		contextID, ok := contextCache[key]
		if !ok {
			if err = stmtGetOrInsertContext.QueryRowContext(ctx, key).Scan(&contextID); err != nil {
				return fmt.Errorf("failed to get or insert context '%s': %w", key, err)
			}
			contextCache[key] = contextID
		}

		tokenID, ok := vocabCache[next]
		if !ok {
			if err = stmtInsertVocab.QueryRowContext(ctx, next).Scan(&tokenID); err != nil {
				return fmt.Errorf("sql insert vocabulary error for token '%s': %w", next, err)
			}
			vocabCache[next] = tokenID
		}

		batch = append(batch, countLink{contextID: contextID, nextTokenID: tokenID})
		windows++

		if len(batch) >= countBatchSize {
			if err = commitBatch(); err != nil {
				return err
			}
		}
	}

	if err = commitBatch(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Training completed",
		slog.Int("order", s.order),
		slog.Int("tokens", len(tokens)),
		slog.Int64("windows_counted", windows),
		slog.Int("contexts_seen", len(contextCache)),
	)

	return tx.Commit()
}

// Followers implements Chain. If the context has never been seen, it returns
// a nil slice and a total frequency of 0.
func (s *SQLStore) Followers(ctx context.Context, c Context) ([]Candidate, int, error) {
	key := c.Key()

	var contextID int64
	err := s.stmtGetContextID.QueryRowContext(ctx, key).Scan(&contextID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// This context has never been seen before, so there are no possible next tokens.
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("could not get context ID for '%s': %w", key, err)
	}

	rows, err := s.stmtGetFollowers.QueryContext(ctx, contextID)
	if err != nil {
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var candidates []Candidate
	var totalFreq int
	for rows.Next() {
		var candidate Candidate
		if err = rows.Scan(&candidate.Word, &candidate.Freq); err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, candidate)
		totalFreq += candidate.Freq
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return candidates, totalFreq, nil
}

// Stats returns a snapshot of the store's size.
func (s *SQLStore) Stats(ctx context.Context) (ModelStats, error) {
	var stats ModelStats
	if err := s.stmtCountContexts.QueryRowContext(ctx).Scan(&stats.Contexts); err != nil {
		return ModelStats{}, err
	}
	if err := s.stmtSumFrequency.QueryRowContext(ctx).Scan(&stats.Transitions); err != nil {
		return ModelStats{}, err
	}
	if err := s.stmtCountVocab.QueryRowContext(ctx).Scan(&stats.Vocabulary); err != nil {
		return ModelStats{}, err
	}
	return stats, nil
}
