package driver

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/drivers/abstract"
	"github.com/datazip-inc/olake-clubspeed/types"
	_ "github.com/datazip-inc/olake-clubspeed/writers/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerPage(start time.Time, from, count int) []any {
	items := make([]any, 0, count)
	for i := from; i < from+count; i++ {
		items = append(items, map[string]any{
			"customerId":     float64(i + 1),
			"accountCreated": start.Add(time.Duration(i) * time.Minute).Format("2006-01-02 15:04:05"),
		})
	}
	return items
}

func TestClubspeed_IncrementalCustomersEndToEnd(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2019, 3, 1, 10, 0, 0, 0, time.UTC)
	transport := &fakeTransport{pages: []any{
		customerPage(start, 0, 100),
		customerPage(start, 100, 100),
		customerPage(start, 200, 37),
	}}
	driver := &Clubspeed{paginator: NewPaginator(transport, endpointURL)}
	connector := abstract.NewAbstractDriver(ctx, driver)

	source, err := connector.Discover(ctx)
	require.NoError(t, err)
	streams := types.StreamsToMap(source...)
	customers := streams["clubspeed.customers"]
	require.NotNil(t, customers)
	require.Equal(t, types.INCREMENTAL, customers.SyncMode)

	path := filepath.Join(t.TempDir(), "warehouse.db")
	pool, err := destination.NewWriterPool(ctx, &types.WriterConfig{
		Type:         types.SQLite,
		WriterConfig: map[string]any{"path": path},
	})
	require.NoError(t, err)

	require.NoError(t, connector.Read(ctx, pool, nil, []types.StreamInterface{customers.Wrap()}))

	assert.Len(t, transport.urls, 3)
	assert.NotContains(t, transport.urls[0], "where=", "first sync is unfiltered")
	assert.Equal(t, int64(237), pool.SyncedRecords())
	assert.Equal(t, start.Add(236*time.Minute).Format("2006-01-02 15:04:05"), connector.State().GetBookmark("customers", "accountCreated"))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "customers"`).Scan(&count))
	assert.Equal(t, 237, count)

	var stored string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT state FROM _olake_state WHERE id = 1`).Scan(&stored))
	assert.Contains(t, stored, "2019-03-01 13:56:00")
}
