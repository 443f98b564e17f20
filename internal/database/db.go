// Package database owns the MySQL pool and the schema bootstrap.
package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql" // register the mysql driver
)

// Open dials MySQL with the given DSN and confirms the server answers before
// the rest of startup proceeds.  The workload is short CRUD statements plus
// the dispatcher's compare-and-swap updates, so the pool stays small; idle
// connections are recycled well inside MySQL's wait_timeout.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
