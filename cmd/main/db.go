package main

import (
	"database/sql"
	"fmt"
)

// openMemoryDB opens an in-memory database. The model lives only as long as
// the process, so the pool is pinned to a single connection that is never
// recycled; closing it would discard the data.
func openMemoryDB(driver, dataSource string) (*sql.DB, error) {
	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return db, nil
}
