package koit_test

// integration_pg_test.go covers the Postgres backend against a real database:
//
//   1. OpenPostgres DDL bootstrap + pre-existence reporting
//   2. Read of an absent payload row (empty bytes)
//   3. Write upsert + whole-content replacement
//   4. Database Save / Reload over the Postgres backend
//
// Skips if Docker is unavailable.

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomcur/koit"
	testcontainers "github.com/testcontainers/testcontainers-go"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	pgTestImage = "postgres:16-alpine"
	pgTestDB    = "koitintegration"
	pgTestUser  = "koittest"
	pgTestPass  = "koittest"
)

// newPGPool spins up Postgres via testcontainers and returns a connected
// pool. Skips if Docker is unavailable.
func newPGPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgc, err := tcpg.Run(ctx, pgTestImage,
		tcpg.WithDatabase(pgTestDB),
		tcpg.WithUsername(pgTestUser),
		tcpg.WithPassword(pgTestPass),
		tcpg.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := pgc.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = pgc.Terminate(ctx)
	})
	return pool
}

func TestOpenPostgres_BootstrapAndPreExistence(t *testing.T) {
	pool := newPGPool(t)
	ctx := context.Background()

	b, existed, err := koit.OpenPostgres(ctx, pool, "koit_payload")
	require.NoError(t, err)
	assert.False(t, existed, "fresh table must report no payload row")

	require.NoError(t, b.Write(ctx, []byte("seed")))

	_, existed, err = koit.OpenPostgres(ctx, pool, "koit_payload")
	require.NoError(t, err)
	assert.True(t, existed, "payload row must be reported after a write")
}

func TestPostgres_AbsentRowReadsAsEmpty(t *testing.T) {
	pool := newPGPool(t)
	ctx := context.Background()

	b, _, err := koit.OpenPostgres(ctx, pool, "koit_payload")
	require.NoError(t, err)

	data, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestPostgres_WriteReplacesWholeContent(t *testing.T) {
	pool := newPGPool(t)
	ctx := context.Background()

	b, _, err := koit.OpenPostgres(ctx, pool, "koit_payload")
	require.NoError(t, err)

	require.NoError(t, b.Write(ctx, []byte("a much longer first payload")))
	require.NoError(t, b.Write(ctx, []byte("short")))

	data, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestDatabase_SaveReload_OverPostgres(t *testing.T) {
	pool := newPGPool(t)
	ctx := context.Background()

	b, _, err := koit.OpenPostgres(ctx, pool, "koit_payload")
	require.NoError(t, err)

	db, err := koit.FromParts(counters{Cats: 10, Yaks: 32}, b, koit.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx))

	db2, err := koit.FromParts(counters{}, b, koit.Config{})
	require.NoError(t, err)
	_, err = db2.Reload(ctx)
	require.NoError(t, err)

	db2.Read(func(c *counters) {
		assert.Equal(t, counters{Cats: 10, Yaks: 32}, *c)
	})
}
