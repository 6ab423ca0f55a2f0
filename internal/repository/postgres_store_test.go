package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/database"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	ctx := context.Background()
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	testcontainers.CleanupContainer(t, dbContainer)
	require.NoError(t, err, "could not start postgres container")

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	testDB, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })

	require.NoError(t, database.RunMigrations(testDB, zap.NewNop()))
	return testDB
}

func TestPostgresStore(t *testing.T) {
	testDB := setupTestDB(t)
	store := NewPostgresStore(testDB)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("upsert keeps one row per key", func(t *testing.T) {
		require.NoError(t, store.SetMany(ctx, map[string][]byte{KeyLogs: []byte(`[{"id":"a"}]`)}))
		require.NoError(t, store.SetMany(ctx, map[string][]byte{KeyLogs: []byte(`[]`)}))

		var rows int
		require.NoError(t, testDB.QueryRow(`SELECT COUNT(*) FROM app_state WHERE key = $1`, KeyLogs).Scan(&rows))
		assert.Equal(t, 1, rows)

		got, err := store.Get(ctx, KeyLogs)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(got))
	})

	t.Run("failed write rolls back every key", func(t *testing.T) {
		require.NoError(t, store.SetMany(ctx, map[string][]byte{KeySales: []byte(`[]`)}))

		err := store.SetMany(ctx, map[string][]byte{
			KeyProducts: []byte(`[{"id":"p1"}]`),
			KeySales:    []byte(`{broken`),
		})
		require.Error(t, err)

		_, err = store.Get(ctx, KeyProducts)
		assert.ErrorIs(t, err, ErrKeyNotFound)
		got, err := store.Get(ctx, KeySales)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(got))
	})

	t.Run("repository round trip", func(t *testing.T) {
		repo := NewSnapshotRepository(store)
		require.NoError(t, repo.Save(ctx, sampleSnapshot()))

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assertSnapshotEqual(t, sampleSnapshot(), *got)
	})
}

// Property: saving a snapshot and loading it back preserves stock and quantities
func TestProperty_PostgresSnapshotRoundTrip(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewSnapshotRepository(NewPostgresStore(testDB))
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("load(save(s)) == s", prop.ForAll(
		func(stock int, quantity int, name string) bool {
			snapshot := sampleSnapshot()
			snapshot.Products[0].Stock = stock
			snapshot.Products[0].Name = name
			snapshot.Sales[0].Quantity = quantity

			if err := repo.Save(ctx, snapshot); err != nil {
				t.Logf("FAIL: Failed to save snapshot: %v", err)
				return false
			}

			got, err := repo.Load(ctx)
			if err != nil {
				t.Logf("FAIL: Failed to load snapshot: %v", err)
				return false
			}

			return got.Products[0].Stock == stock &&
				got.Products[0].Name == name &&
				got.Sales[0].Quantity == quantity
		},
		gen.IntRange(0, 10000),
		gen.IntRange(1, 500),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
