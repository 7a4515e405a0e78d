package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, path string) *SQLite {
	t.Helper()
	writer := new(SQLite)
	config := writer.GetConfigRef().(*Config)
	config.Path = path
	require.NoError(t, config.Validate())
	require.NoError(t, writer.Check(context.Background()))
	return writer
}

func TestSQLite_UpsertByKeyProperties(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warehouse.db")
	stream := types.NewStream("customers", "").WithPrimaryKey("customerId").Wrap()

	// two runs; the second updates customer 2 and adds customer 3
	runs := [][]types.Record{
		{{"customerId": float64(1), "name": "a"}, {"customerId": float64(2), "name": "b"}},
		{{"customerId": float64(2), "name": "b2"}, {"customerId": float64(3), "name": "c"}},
	}
	for _, records := range runs {
		writer := newTestWriter(t, path)
		require.NoError(t, writer.Setup(stream, nil))
		for _, record := range records {
			require.NoError(t, writer.Write(ctx, record))
		}
		require.NoError(t, writer.Close(ctx))
	}

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT _olake_id, data FROM "customers" ORDER BY _olake_id`)
	require.NoError(t, err)
	defer rows.Close()

	got := map[string]string{}
	for rows.Next() {
		var id, data string
		require.NoError(t, rows.Scan(&id, &data))
		record := types.Record{}
		require.NoError(t, json.Unmarshal([]byte(data), &record))
		got[id] = record["name"].(string)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]string{"1": "a", "2": "b2", "3": "c"}, got)
}

func TestSQLite_KeylessRecordsAreKeptApart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warehouse.db")
	writer := newTestWriter(t, path)
	require.NoError(t, writer.Setup(types.NewStream("event_tasks", "").WithPrimaryKey("eventTaskId").Wrap(), nil))

	require.NoError(t, writer.Write(ctx, types.Record{"eventId": float64(1), "completedAt": "2024-01-01 10:00:00"}))
	require.NoError(t, writer.Write(ctx, types.Record{"eventId": float64(2), "completedAt": "2024-01-02 10:00:00"}))
	require.NoError(t, writer.Close(ctx))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT _olake_id) FROM "event_tasks"`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLite_WriteStateCommits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warehouse.db")
	writer := newTestWriter(t, path)
	require.NoError(t, writer.Setup(types.NewStream("taxes", "").WithPrimaryKey("taxId").Wrap(), nil))

	require.NoError(t, writer.Write(ctx, types.Record{"taxId": float64(7)}))
	state := types.NewState()
	state.SetBookmark("taxes", "taxId", float64(7))
	require.NoError(t, writer.WriteState(ctx, state))

	// committed rows are visible to another connection before Close
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "taxes"`).Scan(&count))
	assert.Equal(t, 1, count)

	var stored string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT state FROM _olake_state WHERE id = 1`).Scan(&stored))
	assert.JSONEq(t, `{"bookmarks":{"taxes":{"taxId":7}}}`, stored)

	require.NoError(t, writer.Close(ctx))
}

func TestSQLite_SetupFailureReleasesDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warehouse.db")

	// a foreign table of the same name makes the upsert statement invalid
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE "customers" (name TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	writer := newTestWriter(t, path)
	err = writer.Setup(types.NewStream("customers", "").WithPrimaryKey("customerId").Wrap(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prepare upsert")
	assert.Nil(t, writer.db)
	assert.NoError(t, writer.Close(ctx))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"checks"`, quoteIdentifier("checks"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
