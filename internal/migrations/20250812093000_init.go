package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS batches (
			id UUID PRIMARY KEY,
			idea TEXT NOT NULL,
			tone VARCHAR NOT NULL,
			provider VARCHAR NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS batch_drafts (
			id SERIAL PRIMARY KEY,
			batch_id UUID NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
			position INT NOT NULL,
			platform VARCHAR NOT NULL,
			content TEXT NOT NULL,
			suggested_aspect_ratio VARCHAR NOT NULL,
			UNIQUE (batch_id, platform)
		);

		CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
		DROP TABLE IF EXISTS batch_drafts;
		DROP TABLE IF EXISTS batches;
	`)
	if err != nil {
		return err
	}
	return nil
}
