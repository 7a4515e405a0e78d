package abstract

import (
	"context"
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
)

// FullRefresh reads the whole stream and emits every record. Bookmarks are
// neither read nor written.
func (a *AbstractDriver) FullRefresh(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface) (err error) {
	threadID := generateThreadID(stream.ID())
	writer, err := pool.NewWriter(ctx, stream, destination.WithIdentifier(threadID))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}
	defer handleWriterCleanup(ctx, &err, writer, nil)()

	logger.Infof("Thread[%s]: starting full refresh for stream %s", threadID, stream.ID())
	err = a.driver.StreamRecords(ctx, stream, nil, func(ctx context.Context, record types.Record) error {
		return writer.Push(ctx, record)
	})
	if err != nil {
		return fmt.Errorf("full refresh failed after %d records: %w", writer.Records(), err)
	}

	logger.Infof("Thread[%s]: finished full refresh for stream %s with %d records", threadID, stream.ID(), writer.Records())
	return nil
}
