package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/pkg/postgres"
)

func openSignalsDB(t *testing.T) *postgres.DB {
	t.Helper()
	dsn := os.Getenv("SIGNALS_DB_DSN")
	if dsn == "" {
		t.Skip("SIGNALS_DB_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, SignalsSchema)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, DocumentsSchema)
	require.NoError(t, err)
	return db
}

func TestPGSignalsStoreIntegration(t *testing.T) {
	db := openSignalsDB(t)
	ctx := context.Background()
	const sym = "ZZTEST"

	_, err := db.Pool.Exec(ctx, `INSERT INTO congressional_trades (symbol, person, party, action, amount, trade_date)
		VALUES ($1, 'Doe, Jane', 'I', 'buy', '$15k', now()::date)`, sym)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM congressional_trades WHERE symbol = $1`, sym)
	})

	store := NewPGSignalsStore(db.Pool)
	trades, err := store.CongressionalTrades(ctx, "zztest")
	require.NoError(t, err)
	require.NotEmpty(t, trades)
	assert.Equal(t, "Doe, Jane", trades[0].Name)
	assert.NotEmpty(t, trades[0].Date)

	_, err = store.MacroEvents(ctx)
	require.NoError(t, err)
}

func TestPGDocumentStoreIntegration(t *testing.T) {
	db := openSignalsDB(t)
	ctx := context.Background()
	const sym = "ZZTEST"

	_, err := db.Pool.Exec(ctx, `INSERT INTO rationale_documents (id, symbol, content, score) VALUES
		('zz-low', $1, 'low', 0.1), ('zz-high', $1, 'high', 0.9)
		ON CONFLICT (id) DO NOTHING`, sym)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM rationale_documents WHERE symbol = $1`, sym)
	})

	docs, err := NewPGDocumentStore(db.Pool).Retrieve(ctx, sym, 5)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "zz-high", docs[0].ID)
}
