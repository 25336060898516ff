// Package replication copies the CSV transcript dataset into a Postgres
// table so the corpus can be queried alongside other data.
package replication

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"avatar-transcripts/pkg/dataset"
	"avatar-transcripts/pkg/db"
	"avatar-transcripts/pkg/domain"
)

// Config wires the replication dependencies.
type Config struct {
	// Target is the database the dataset is replicated into
	// (plain Postgres or Supabase).
	Target db.DBProvider
}

// Replicator replicates the transcript dataset into Postgres.
//
// This is a one-shot, "copy everything" flow: rows already present in the
// target are left untouched (insert-if-absent keyed on book/episode/position).
type Replicator struct {
	pg db.DBProvider
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Target == nil {
		return nil, fmt.Errorf("target database is required")
	}
	return &Replicator{pg: cfg.Target}, nil
}

// ReplicateDataset reads all records from the dataset file at path and
// inserts them into the Postgres `transcript_line` table in batches.
func (r *Replicator) ReplicateDataset(ctx context.Context, path string) error {
	if err := r.ensureTranscriptSchema(ctx); err != nil {
		return err
	}

	records, err := dataset.Read(path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}

	log.Printf("Loaded %d records from %s, replicating in batches...", len(records), path)

	const batchSize = 500

	inserted := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		if err := r.insertRecordsTx(ctx, records[start:end]); err != nil {
			return fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
		}
		inserted += end - start
		log.Printf("Progress: replicated %d/%d records", inserted, len(records))
	}

	log.Printf("Replication complete: %d records", inserted)
	return nil
}

func (r *Replicator) ensureTranscriptSchema(ctx context.Context) error {
	if r.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	// (book, episode, position) is the natural key of a dialogue line, which
	// also makes replication idempotent.
	const ddl = `
CREATE TABLE IF NOT EXISTS transcript_line (
  book INTEGER NOT NULL,
  episode INTEGER NOT NULL,
  position INTEGER NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  speaker TEXT NOT NULL DEFAULT '',
  line TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (book, episode, position)
);`

	if _, err := r.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create transcript_line table: %w", err)
	}
	return nil
}

// insertRecordsTx inserts a batch of records within a transaction.
func (r *Replicator) insertRecordsTx(ctx context.Context, batch []domain.TranscriptRecord) error {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.executeBatchInsert(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// executeBatchInsert executes the insert statements for a batch of records.
func (r *Replicator) executeBatchInsert(ctx context.Context, tx *sql.Tx, batch []domain.TranscriptRecord) error {
	const insertQuery = `
INSERT INTO transcript_line (book, episode, position, title, speaker, line)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (book, episode, position) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		if _, err := stmt.ExecContext(ctx, rec.Book, rec.Episode, rec.Position, rec.Title, rec.Speaker, rec.Line); err != nil {
			return fmt.Errorf("insert line book=%d episode=%d position=%d: %w", rec.Book, rec.Episode, rec.Position, err)
		}
	}

	return nil
}
