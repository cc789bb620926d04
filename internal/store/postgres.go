// Package store persists converted tables in PostgreSQL as batches.
//
// Each SaveEntries call writes one batch: a row in fasta_batches and one
// row per entry in fasta_entries, keyed by the batch UUID and the entry's
// position. Absent fields are stored as SQL NULL, so a batch loads back
// exactly as it was saved.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"

	"github.com/JonMunkholm/fastaframes/internal/core"
)

// ErrBatchNotFound is returned when a batch id does not exist.
var ErrBatchNotFound = errors.New("batch not found")

// DB is the subset of *pgxpool.Pool used by Store. pgx.Tx and *pgx.Conn
// satisfy it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Batch summarizes one saved table.
type Batch struct {
	ID        string    `json:"id"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store reads and writes batches.
type Store struct {
	db  DB
	log *slog.Logger
}

// New creates a Store over db.
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger}
}

const schemaSQL = `
create table if not exists fasta_batches (
	id           uuid primary key,
	record_count integer not null,
	created_at   timestamptz not null default now()
);

create table if not exists fasta_entries (
	batch_id            uuid not null references fasta_batches (id) on delete cascade,
	position            integer not null,
	db                  text null,
	unique_identifier   text null,
	entry_name          text null,
	protein_name        text null,
	organism_name       text null,
	organism_identifier bigint null,
	gene_name           text null,
	protein_existence   integer null,
	sequence_version    integer null,
	sequence            text not null,
	raw_header          text not null,
	protein_id          text null,
	primary key (batch_id, position)
);`

// EnsureSchema creates the batch tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "postgres: init tables")
	}
	return nil
}

// entryColumns is the fasta_entries column order used for COPY and SELECT.
var entryColumns = []string{
	"batch_id",
	"position",
	core.ColDB,
	core.ColUniqueIdentifier,
	core.ColEntryName,
	core.ColProteinName,
	core.ColOrganismName,
	core.ColOrganismIdentifier,
	core.ColGeneName,
	core.ColProteinExistence,
	core.ColSequenceVersion,
	core.ColSequence,
	core.ColRawHeader,
	core.ColProteinID,
}

// copyRow lays out one entry in entryColumns order.
func copyRow(batchID uuid.UUID, position int, e core.Entry) []any {
	return []any{
		pgtype.UUID{Bytes: batchID, Valid: true},
		int32(position),
		e.DB,
		e.UniqueIdentifier,
		e.EntryName,
		e.ProteinName,
		e.OrganismName,
		e.OrganismIdentifier,
		e.GeneName,
		e.ProteinExistence,
		e.SequenceVersion,
		e.Sequence,
		e.RawHeader,
		e.ProteinID,
	}
}

// SaveEntries stores entries as a new batch and returns its id.
func (s *Store) SaveEntries(ctx context.Context, entries []core.Entry) (string, error) {
	batchID := uuid.New()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", errors.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"insert into fasta_batches (id, record_count) values ($1, $2)",
		pgtype.UUID{Bytes: batchID, Valid: true}, int32(len(entries)),
	); err != nil {
		return "", errors.Wrap(err, "postgres: insert batch")
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"fasta_entries"},
		entryColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			return copyRow(batchID, i, entries[i]), nil
		}),
	)
	if err != nil {
		return "", errors.Wrap(err, "postgres: copy entries")
	}

	if err := tx.Commit(ctx); err != nil {
		return "", errors.Wrap(err, "postgres: commit transaction")
	}

	s.log.Info("saved batch", "batch_id", batchID.String(), "records", copied)
	return batchID.String(), nil
}

// LoadEntries returns the entries of a batch in their saved order.
func (s *Store) LoadEntries(ctx context.Context, batchID string) ([]core.Entry, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}

	var count int32
	err = s.db.QueryRow(ctx, "select record_count from fasta_batches where id = $1", id).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "postgres: get batch")
	}

	rows, err := s.db.Query(ctx, `select
		db, unique_identifier, entry_name, protein_name, organism_name,
		organism_identifier, gene_name, protein_existence, sequence_version,
		sequence, raw_header, protein_id
	from fasta_entries
	where batch_id = $1
	order by position`, id)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: load entries")
	}
	defer rows.Close()

	entries := make([]core.Entry, 0, count)
	for rows.Next() {
		var e core.Entry
		if err := rows.Scan(
			&e.DB, &e.UniqueIdentifier, &e.EntryName, &e.ProteinName, &e.OrganismName,
			&e.OrganismIdentifier, &e.GeneName, &e.ProteinExistence, &e.SequenceVersion,
			&e.Sequence, &e.RawHeader, &e.ProteinID,
		); err != nil {
			return nil, errors.Wrap(err, "postgres: scan entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "postgres: load entries")
	}

	return entries, nil
}

// ListBatches returns all batches, newest first.
func (s *Store) ListBatches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.Query(ctx, "select id, record_count, created_at from fasta_batches order by created_at desc")
	if err != nil {
		return nil, errors.Wrap(err, "postgres: list batches")
	}
	defer rows.Close()

	batches := make([]Batch, 0)
	for rows.Next() {
		var (
			id        pgtype.UUID
			count     int32
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &count, &createdAt); err != nil {
			return nil, errors.Wrap(err, "postgres: scan batch")
		}
		batches = append(batches, Batch{
			ID:        uuid.UUID(id.Bytes).String(),
			Records:   int(count),
			CreatedAt: createdAt.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "postgres: list batches")
	}

	return batches, nil
}

// DeleteBatch removes a batch and its entries.
func (s *Store) DeleteBatch(ctx context.Context, batchID string) error {
	id, err := parseBatchID(batchID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, "delete from fasta_batches where id = $1", id)
	if err != nil {
		return errors.Wrap(err, "postgres: delete batch")
	}
	if tag.RowsAffected() == 0 {
		return ErrBatchNotFound
	}

	s.log.Info("deleted batch", "batch_id", batchID)
	return nil
}

func parseBatchID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, ErrBatchNotFound
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}
