package marketdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE mandi_prices (market TEXT PRIMARY KEY, data TEXT NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE weather (location TEXT PRIMARY KEY, data TEXT NOT NULL, expires_at INTEGER NOT NULL);

CREATE INDEX idx_mandi_prices_expires ON mandi_prices(expires_at);
CREATE INDEX idx_weather_expires ON weather(expires_at);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	data := map[string]interface{}{"price": 22.5}
	require.NoError(t, repo.Store("mandi_prices", "RICE:Guntur", data, TTLMandiPrice))

	raw, err := repo.GetIfFresh("mandi_prices", "RICE:Guntur")
	require.NoError(t, err)
	require.NotNil(t, raw)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 22.5, got["price"])
}

func TestGetIfFresh_MissingKeyReturnsNil(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	raw, err := repo.GetIfFresh("weather", "17.00:80.00")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestGetIfFresh_ExpiredReturnsNil(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	// Negative TTL produces an already-expired row.
	require.NoError(t, repo.Store("mandi_prices", "RICE:Guntur", "stale", -time.Minute))

	raw, err := repo.GetIfFresh("mandi_prices", "RICE:Guntur")
	require.NoError(t, err)
	assert.Nil(t, raw)

	// Get still serves the stale row for API-failure fallback.
	raw, err = repo.Get("mandi_prices", "RICE:Guntur")
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

func TestStore_Upserts(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("weather", "17.00:80.00", map[string]float64{"temp": 25}, TTLWeather))
	require.NoError(t, repo.Store("weather", "17.00:80.00", map[string]float64{"temp": 31}, TTLWeather))

	raw, err := repo.GetIfFresh("weather", "17.00:80.00")
	require.NoError(t, err)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 31.0, got["temp"])
}

func TestInvalidTableRejected(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	assert.Error(t, repo.Store("transactions", "k", "v", time.Minute))
	_, err := repo.Get("transactions; DROP TABLE weather", "k")
	assert.Error(t, err)
}

func TestDeleteExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("mandi_prices", "fresh", "v", time.Hour))
	require.NoError(t, repo.Store("mandi_prices", "stale", "v", -time.Minute))

	deleted, err := repo.DeleteExpired("mandi_prices")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	raw, err := repo.Get("mandi_prices", "fresh")
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

func TestDeleteAllExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("mandi_prices", "stale", "v", -time.Minute))
	require.NoError(t, repo.Store("weather", "stale", "v", -time.Minute))
	require.NoError(t, repo.Store("weather", "fresh", "v", time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)

	assert.Equal(t, int64(1), results["mandi_prices"])
	assert.Equal(t, int64(1), results["weather"])
}
