//go:build integration

package postgres

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/tradesync/internal/domain/entity"
	"github.com/oksasatya/tradesync/internal/domain/repository"
)

// startPostgres runs a throwaway Postgres, applies the migrations and
// returns a pool. Docker must be available.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "tradesync",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/tradesync?sslmode=disable", host, port.Port())

	_, file, _, _ := runtime.Caller(0)
	migrations := filepath.Join(filepath.Dir(file), "..", "..", "..", "db", "migrations")
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, RunMigrations(dsn, migrations, logger))

	pool, err := NewPool(ctx, dsn, 4, 1, time.Hour)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRepositories_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("container test skipped in short mode")
	}
	pool := startPostgres(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	notes := NewNoteRepository(pool)

	ann := &entity.User{FullName: "Ann", Email: "ann@x.io", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, ann))
	require.NotEmpty(t, ann.ID)
	assert.ErrorIs(t, users.Create(ctx, &entity.User{FullName: "Dup", Email: "ann@x.io", PasswordHash: "h"}), repository.ErrDuplicateKey)

	got, err := users.GetByEmail(ctx, "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)
	_, err = users.GetByEmail(ctx, "ANN@x.io")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	first := &entity.Note{UserID: ann.ID, Ticker: "BTC", EntryPrice: decimal.RequireFromString("64000.50"), PositionType: entity.Long, Body: "100% breakout"}
	second := &entity.Note{UserID: ann.ID, Ticker: "ETH", EntryPrice: decimal.NewFromInt(3000), PositionType: entity.Short, Body: "fade"}
	require.NoError(t, notes.Create(ctx, first))
	require.NoError(t, notes.Create(ctx, second))

	list, err := notes.ListByUser(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[1].EntryPrice.Equal(first.EntryPrice))

	body := "closed"
	patched, err := notes.Patch(ctx, first.ID, entity.NotePatch{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, "closed", patched.Body)
	assert.Equal(t, "BTC", patched.Ticker)
	assert.Equal(t, entity.Long, patched.PositionType)

	hits, err := notes.Search(ctx, ann.ID, "fad", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, second.ID, hits[0].ID)

	hits, err = notes.Search(ctx, ann.ID, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	byIDs, err := notes.ListByIDs(ctx, ann.ID, []string{first.ID, uuid.NewString()})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	require.NoError(t, notes.Delete(ctx, first.ID))
	assert.ErrorIs(t, notes.Delete(ctx, first.ID), repository.ErrNotFound)
	_, err = notes.Patch(ctx, first.ID, entity.NotePatch{Body: &body})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
