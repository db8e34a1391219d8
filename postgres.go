// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// postgres.go — PostgreSQL-backed Backend implementation storing the whole
// encoded payload in a one-row bytea table, with DDL bootstrap and upsert.

package koit

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// payloadRowID is the primary key of the single row holding the payload.
const payloadRowID = 1

// Postgres is a Backend that stores the byte sequence in one bytea row of a
// dedicated table. The table holds at most that one row.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPostgres creates a Postgres backend over an existing pool, issuing
// CREATE TABLE IF NOT EXISTS for table. The second return value reports
// whether a payload row pre-existed, mirroring OpenOrCreateFile. The backend
// does not take ownership of the pool.
//
// table is interpolated into DDL and queries verbatim and must not be
// derived from untrusted input.
func OpenPostgres(ctx context.Context, pool *pgxpool.Pool, table string) (*Postgres, bool, error) {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id smallint PRIMARY KEY, data bytea NOT NULL)",
		table,
	)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, false, fmt.Errorf("koit: create table %s: %w", table, err)
	}

	var existed bool
	err := pool.QueryRow(ctx,
		fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table),
		payloadRowID,
	).Scan(&existed)
	if err != nil {
		return nil, false, fmt.Errorf("koit: probe table %s: %w", table, err)
	}

	return &Postgres{pool: pool, table: table}, existed, nil
}

// Read returns the stored bytes. An absent payload row reads as empty bytes.
func (b *Postgres) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE id = $1", b.table),
		payloadRowID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write upserts the payload row so the table always holds exactly the last
// written bytes.
func (b *Postgres) Write(ctx context.Context, data []byte) error {
	_, err := b.pool.Exec(ctx,
		fmt.Sprintf(
			"INSERT INTO %s (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data",
			b.table,
		),
		payloadRowID, data,
	)
	return err
}
