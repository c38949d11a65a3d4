//go:build integration

// Integration tests for the PostgreSQL-backed view state store.  They
// require Docker and are gated behind the "integration" build tag:
//
//	go test -tags integration ./internal/infrastructure/database/postgres/...
package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/docsight/docsight/internal/infrastructure/kvstore"
	"github.com/docsight/docsight/internal/testutil"
)

// startPostgres launches a PostgreSQL 16 container, runs the migrations,
// and returns a connected pool.
func startPostgres(t *testing.T) *Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "docsight_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := Config{
		Host:     host,
		Port:     port.Int(),
		Database: "docsight_test",
		Username: "test",
		Password: "test",
	}
	log := testutil.NewMockLogger()
	require.NoError(t, Migrate(cfg, log))

	pool, err := NewPool(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestStore_Integration_RoundTrip(t *testing.T) {
	store := NewStore(startPostgres(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, store.Set(ctx, "doc-1", []byte(`{"card_mode":"compact"}`)))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"card_mode":"compact"}`, string(got))

	// Upsert replaces the stored value.
	require.NoError(t, store.Set(ctx, "doc-1", []byte(`{"card_mode":"expanded"}`)))
	got, err = store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"card_mode":"expanded"}`, string(got))

	require.NoError(t, store.Remove(ctx, "doc-1"))
	_, err = store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	// Removing an absent key is a no-op.
	require.NoError(t, store.Remove(ctx, "doc-1"))
}

func TestStore_Integration_Keys(t *testing.T) {
	store := NewStore(startPostgres(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a.pdf", []byte("1")))
	require.NoError(t, store.Set(ctx, "a-final.pdf", []byte("2")))
	require.NoError(t, store.Set(ctx, "b.pdf", []byte("3")))

	keys, err := store.Keys(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a-final.pdf", "a.pdf"}, keys)
}
