//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const memoryDataSource = "file:wordgram?mode=memory&cache=shared"

func initDB() (*sql.DB, error) {
	return openMemoryDB("sqlite3", memoryDataSource)
}
