package abstract

import (
	"context"
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
)

// Incremental syncs the records of a stream newer than its bookmark.
//
// The source is asked for rows past the bookmark and every returned record is
// checked again with IsFresh against the current bookmark, so a record older
// than one already emitted in this run is dropped. The bookmark advances after
// each emitted record and is checkpointed every checkpointInterval records and
// once more when the stream ends, failed or not.
func (a *AbstractDriver) Incremental(ctx context.Context, pool *destination.WriterPool, stream types.StreamInterface) (err error) {
	cursor := stream.Cursor()
	name := stream.Name()

	start := a.state.GetBookmark(name, cursor)
	var filter *types.Filter
	if start != nil {
		filter = &types.Filter{Column: cursor, Value: start}
	}

	threadID := generateThreadID(stream.ID())
	writer, err := pool.NewWriter(ctx, stream, destination.WithIdentifier(threadID))
	if err != nil {
		return fmt.Errorf("failed to create new writer thread: %s", err)
	}

	var stale int64
	defer handleWriterCleanup(ctx, &err, writer, func(ctx context.Context) error {
		logger.Infof("Thread[%s]: stream %s emitted %d records, dropped %d stale, bookmark[%v]",
			threadID, stream.ID(), writer.Records(), stale, a.state.GetBookmark(name, cursor))
		return a.checkpoint(ctx, writer)
	})()

	logger.Infof("Thread[%s]: starting incremental sync for stream %s with filter[%s]", threadID, stream.ID(), filter)
	watermark := start
	return a.driver.StreamRecords(ctx, stream, filter, func(ctx context.Context, record types.Record) error {
		value := record[cursor]
		if !IsFresh(watermark, value) {
			stale++
			return nil
		}

		if err := writer.Push(ctx, record); err != nil {
			return err
		}

		if next := AdvanceWatermark(watermark, value); next != nil {
			watermark = next
			a.state.SetBookmark(name, cursor, watermark)
		}

		if writer.Records()%int64(a.checkpointInterval) == 0 {
			return a.checkpoint(ctx, writer)
		}
		return nil
	})
}

func (a *AbstractDriver) checkpoint(ctx context.Context, writer *destination.WriterThread) error {
	logger.LogState(a.state)
	return writer.Checkpoint(ctx, a.state)
}
