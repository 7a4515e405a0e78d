package destination

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
)

type (
	NewFunc func() Writer

	Options struct {
		Identifier string
		Number     int64
	}

	ThreadOptions func(opt *Options)

	WriterPool struct {
		recordCount   atomic.Int64
		ThreadCounter atomic.Int64 // used in naming output files
		config        any          // respective writer config
		init          NewFunc
		tmu           sync.Mutex
	}

	// WriterThread is a Writer dedicated to a single stream
	WriterThread struct {
		pool    *WriterPool
		writer  Writer
		stream  types.StreamInterface
		records int64
		closed  bool
	}
)

var RegisteredWriters = map[types.DestinationType]NewFunc{}

func WithIdentifier(identifier string) ThreadOptions {
	return func(opt *Options) {
		opt.Identifier = identifier
	}
}

// NewWriterPool checks the configured destination once and returns a pool
// producing per-stream writers of that type
func NewWriterPool(ctx context.Context, config *types.WriterConfig) (*WriterPool, error) {
	newfunc, found := RegisteredWriters[config.Type]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", config.Type)
	}

	adapter := newfunc()
	if err := utils.Unmarshal(config.WriterConfig, adapter.GetConfigRef()); err != nil {
		return nil, err
	}

	if err := adapter.GetConfigRef().Validate(); err != nil {
		return nil, fmt.Errorf("invalid destination config: %s", err)
	}

	if err := adapter.Check(ctx); err != nil {
		return nil, fmt.Errorf("failed to test destination: %s", err)
	}

	return &WriterPool{
		config: config.WriterConfig,
		init:   newfunc,
	}, nil
}

// NewWriter initializes a writer for the stream
func (w *WriterPool) NewWriter(_ context.Context, stream types.StreamInterface, options ...ThreadOptions) (*WriterThread, error) {
	opts := &Options{Number: w.ThreadCounter.Add(1)}
	for _, one := range options {
		one(opts)
	}

	w.tmu.Lock() // lock for concurrent access of w.config
	defer w.tmu.Unlock()

	writer := w.init()
	if err := utils.Unmarshal(w.config, writer.GetConfigRef()); err != nil {
		return nil, err
	}
	if err := writer.GetConfigRef().Validate(); err != nil {
		return nil, fmt.Errorf("invalid destination config: %s", err)
	}
	if err := writer.Setup(stream, opts); err != nil {
		return nil, fmt.Errorf("failed to setup writer[%d] for stream %s: %s", opts.Number, stream.ID(), err)
	}

	return &WriterThread{pool: w, writer: writer, stream: stream}, nil
}

// SyncedRecords returns total records written at runtime
func (w *WriterPool) SyncedRecords() int64 {
	return w.recordCount.Load()
}

func (t *WriterThread) Push(ctx context.Context, record types.Record) error {
	if t.closed {
		return fmt.Errorf("writer for stream %s already closed", t.stream.ID())
	}
	if err := t.writer.Write(ctx, record); err != nil {
		return fmt.Errorf("failed to write record: %s", err)
	}
	t.records++
	t.pool.recordCount.Add(1)
	return nil
}

// Records returns how many records this writer has accepted
func (t *WriterThread) Records() int64 {
	return t.records
}

func (t *WriterThread) Checkpoint(ctx context.Context, state *types.State) error {
	if state == nil {
		return nil
	}
	if err := t.writer.WriteState(ctx, state); err != nil {
		return fmt.Errorf("failed to write state: %s", err)
	}
	return nil
}

func (t *WriterThread) Close(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true
	logger.Debugf("closing writer for stream %s after %d records", t.stream.ID(), t.records)
	return t.writer.Close(ctx)
}
