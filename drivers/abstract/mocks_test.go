package abstract

import (
	"context"
	"fmt"
	"sync"

	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils/typeutils"
	"github.com/goccy/go-json"
)

const memoryDestination types.DestinationType = "memory"

// memorySink collects everything MemoryWriters receive during a test
type memorySink struct {
	mu      sync.Mutex
	records map[string][]types.Record
	states  []string
	closed  int
}

func (s *memorySink) Records(stream string) []types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Record(nil), s.records[stream]...)
}

// MemoryWriter is a test writer that keeps records and state snapshots in memory
type MemoryWriter struct {
	config *MemoryConfig
	sink   *memorySink
	stream types.StreamInterface
}

type MemoryConfig struct{}

func (c *MemoryConfig) Validate() error {
	return nil
}

func (w *MemoryWriter) GetConfigRef() destination.Config {
	w.config = &MemoryConfig{}
	return w.config
}

func (w *MemoryWriter) Spec() any {
	return MemoryConfig{}
}

func (w *MemoryWriter) Type() string {
	return string(memoryDestination)
}

func (w *MemoryWriter) Check(_ context.Context) error {
	return nil
}

func (w *MemoryWriter) Setup(stream types.StreamInterface, _ *destination.Options) error {
	w.stream = stream
	return nil
}

func (w *MemoryWriter) Write(_ context.Context, record types.Record) error {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.records[w.stream.Name()] = append(w.sink.records[w.stream.Name()], record)
	return nil
}

func (w *MemoryWriter) WriteState(_ context.Context, state *types.State) error {
	snapshot, err := json.Marshal(state)
	if err != nil {
		return err
	}
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.states = append(w.sink.states, string(snapshot))
	return nil
}

func (w *MemoryWriter) Close(_ context.Context) error {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	w.sink.closed++
	return nil
}

// createTestWriterPool registers a fresh memory writer and returns a pool over it
func createTestWriterPool(ctx context.Context) (*destination.WriterPool, *memorySink, error) {
	sink := &memorySink{records: map[string][]types.Record{}}
	destination.RegisteredWriters[memoryDestination] = func() destination.Writer {
		return &MemoryWriter{sink: sink}
	}
	pool, err := destination.NewWriterPool(ctx, &types.WriterConfig{
		Type:         memoryDestination,
		WriterConfig: map[string]any{},
	})
	return pool, sink, err
}

// MockDriver serves canned records per stream name. Without streamRecordsFunc
// it applies filters the way the API does: rows strictly greater than the
// filter value, or greater-or-equal when inclusiveFilter is set.
type MockDriver struct {
	records           map[string][]types.Record
	inclusiveFilter   bool
	filters           []*types.Filter
	calls             map[string]int
	streamRecordsFunc func(ctx context.Context, stream types.StreamInterface, filter *types.Filter, cb BackfillMsgFn) error
	streamNamesFunc   func(ctx context.Context) ([]string, error)
	produceSchemaFunc func(ctx context.Context, stream string) (*types.Stream, error)
}

func (m *MockDriver) GetConfigRef() Config {
	return &MemoryConfig{}
}

func (m *MockDriver) Spec() any {
	return map[string]any{}
}

func (m *MockDriver) Type() string {
	return "mock"
}

func (m *MockDriver) Setup(_ context.Context) error {
	return nil
}

func (m *MockDriver) Check(_ context.Context) error {
	return nil
}

func (m *MockDriver) GetStreamNames(ctx context.Context) ([]string, error) {
	if m.streamNamesFunc != nil {
		return m.streamNamesFunc(ctx)
	}
	names := make([]string, 0, len(m.records))
	for name := range m.records {
		names = append(names, name)
	}
	return names, nil
}

func (m *MockDriver) ProduceSchema(ctx context.Context, stream string) (*types.Stream, error) {
	if m.produceSchemaFunc != nil {
		return m.produceSchemaFunc(ctx, stream)
	}
	return types.NewStream(stream, "").WithSyncMode(types.FULLREFRESH), nil
}

func (m *MockDriver) StreamRecords(ctx context.Context, stream types.StreamInterface, filter *types.Filter, cb BackfillMsgFn) error {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[stream.Name()]++
	m.filters = append(m.filters, filter)

	if m.streamRecordsFunc != nil {
		return m.streamRecordsFunc(ctx, stream, filter, cb)
	}

	records, found := m.records[stream.Name()]
	if !found {
		return fmt.Errorf("unknown stream %s", stream.Name())
	}
	for _, record := range records {
		if filter != nil {
			cmp := typeutils.Compare(record[filter.Column], filter.Value)
			if cmp < 0 || (cmp == 0 && !m.inclusiveFilter) {
				continue
			}
		}
		if err := cb(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func createMockStream(name string, mode types.SyncMode, cursor string) types.StreamInterface {
	stream := types.NewStream(name, "").WithSyncMode(types.FULLREFRESH, types.INCREMENTAL)
	if cursor != "" {
		stream.WithCursorField(cursor)
	}
	stream.SyncMode = mode
	stream.CursorField = cursor
	return stream.Wrap()
}
