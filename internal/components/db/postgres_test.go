package db

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"cardstorm-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresStore(t *testing.T) {
	if os.Getenv("CARDSTORM_TEST_CONTAINERS") != "1" {
		t.Skip("set CARDSTORM_TEST_CONTAINERS=1 to run against a postgres container")
	}
	ctx := context.Background()

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	postgres, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "cardstorm",
					"POSTGRES_PASSWORD": "cardstorm",
					"POSTGRES_DB":       "cardstorm",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			},
		},
	)
	require.NoError(t, err)
	defer postgres.Terminate(ctx)

	host, err := postgres.Host(ctx)
	require.NoError(t, err)
	port, err := postgres.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	store, err := Open(ctx, Config{
		Driver:   DriverPostgres,
		Host:     host,
		Port:     port.Int(),
		DBName:   "cardstorm",
		Username: "cardstorm",
		Password: "cardstorm",
	}, telemetry.NewRecorder())
	require.NoError(t, err)
	defer store.Close()
	require.Equal(t, DialectPostgres, store.Dialect())

	session, err := store.NewSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	id, err := session.Queries().InsertCard(ctx, boltParams())
	require.NoError(t, err)
	_, err = session.Queries().InsertCard(ctx, boltParams())
	require.ErrorIs(t, err, ErrConflict)

	fact := DeckFact{EventID: 1, DeckID: 2, CardID: id, RawName: "Lightning Bolt", Count: 4}
	tx, discard, commit, err := session.Tx(ctx)
	require.NoError(t, err)
	_, err = tx.InsertDeckFacts(ctx, []DeckFact{fact})
	require.NoError(t, err)
	require.NoError(t, commit())

	tx, discard, _, err = session.Tx(ctx)
	require.NoError(t, err)
	_, err = tx.InsertDeckFacts(ctx, []DeckFact{fact})
	require.ErrorIs(t, err, ErrConflict)
	require.NoError(t, discard())
	require.NoError(t, session.Reset(ctx))

	total, err := session.Queries().CountFacts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}
