//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

const memoryDataSource = "file:wordgram?mode=memory&cache=shared"

func initDB() (*sql.DB, error) {
	return openMemoryDB("sqlite", memoryDataSource)
}
