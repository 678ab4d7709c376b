package ngram

import (
	"context"
	"database/sql"
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// houseTokens is a corpus whose context "the old house stood" is only ever
// followed by "alone".
var houseTokens = []string{
	"the", "old", "house", "stood", "alone", "on", "the", "hill",
	"the", "old", "house", "stood", "alone", "near", "the", "sea",
}

// setupTestStore creates a new in-memory SQLite database and a SQLStore for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestStore(t *testing.T, order int) (*sql.DB, *SQLStore) {
	t.Helper()
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// Every connection to a memory database is a different database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewSQLStore(db, order)
	if err != nil {
		t.Fatalf("NewSQLStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// mustBuild is a convenience helper that builds a Model or fails the test.
func mustBuild(tb testing.TB, tokens []string, order int) *Model {
	tb.Helper()
	m, err := Build(tokens, order)
	if err != nil {
		tb.Fatalf("Build() failed: %v", err)
	}
	return m
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		var text string
		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking it is not very long but will prevent a crash "
				return
			}
			text += string(content) + " "
		}
		benchmarkCorpus = text
	})
	return benchmarkCorpus
}

// newTestGenerator returns a Generator with a fixed seed and a background context.
func newTestGenerator(chain Chain, seed uint64) (context.Context, *Generator) {
	return context.Background(), NewGenerator(chain, nil, NewSeededSampler(seed))
}
