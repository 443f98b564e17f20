package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the idempotent DDL applied at startup.  Every statement
// uses CREATE TABLE IF NOT EXISTS so restarting the server against an
// existing database is a no-op.  UUIDs are stored as CHAR(36); enum-like
// columns are plain VARCHARs validated by the application layer.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		first_name    VARCHAR(100) NOT NULL,
		last_name     VARCHAR(100) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'VIEWER',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS documents (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		title          VARCHAR(255) NOT NULL,
		description    TEXT         NULL,
		status         VARCHAR(16)  NOT NULL DEFAULT 'UPLOADED',
		metadata       JSON         NULL,
		uploaded_by_id CHAR(36)     NOT NULL,
		created_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_documents_uploaded_by (uploaded_by_id),
		CONSTRAINT fk_documents_user FOREIGN KEY (uploaded_by_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS document_files (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		document_id CHAR(36)     NOT NULL,
		file_name   VARCHAR(255) NOT NULL,
		file_url    VARCHAR(512) NOT NULL,
		file_size   BIGINT       NOT NULL DEFAULT 0,
		mime_type   VARCHAR(127) NOT NULL DEFAULT 'application/octet-stream',
		KEY idx_document_files_document (document_id),
		CONSTRAINT fk_document_files_document FOREIGN KEY (document_id)
			REFERENCES documents(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS ingestion_jobs (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		correlation_id VARCHAR(255) NULL,
		source_type    VARCHAR(64)  NOT NULL,
		source_ref     VARCHAR(255) NOT NULL,
		params         JSON         NULL,
		status         VARCHAR(16)  NOT NULL DEFAULT 'PENDING',
		message        TEXT         NULL,
		created_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		started_at     DATETIME     NULL,
		finished_at    DATETIME     NULL,
		KEY idx_ingestion_jobs_correlation (correlation_id),
		KEY idx_ingestion_jobs_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
