package abstract

import (
	"context"
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/destination"
	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/datazip-inc/olake-clubspeed/utils"
	"github.com/datazip-inc/olake-clubspeed/utils/logger"
	"github.com/datazip-inc/olake-clubspeed/utils/safego"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

type AbstractDriver struct { //nolint:gosec,revive
	driver             DriverInterface
	state              *types.State
	checkpointInterval int
}

func NewAbstractDriver(_ context.Context, driver DriverInterface) *AbstractDriver {
	interval := viper.GetInt(constants.StateCheckpointInterval)
	return &AbstractDriver{
		driver:             driver,
		state:              types.NewState(),
		checkpointInterval: utils.Ternary(interval > 0, interval, constants.DefaultStateCheckpointInterval).(int),
	}
}

func (a *AbstractDriver) SetupState(state *types.State) {
	if state == nil {
		state = types.NewState()
	}
	a.state = state
}

func (a *AbstractDriver) State() *types.State {
	return a.state
}

func (a *AbstractDriver) GetConfigRef() Config {
	return a.driver.GetConfigRef()
}

func (a *AbstractDriver) Spec() any {
	return a.driver.Spec()
}

func (a *AbstractDriver) Type() string {
	return a.driver.Type()
}

func (a *AbstractDriver) Setup(ctx context.Context) error {
	return a.driver.Setup(ctx)
}

func (a *AbstractDriver) Check(ctx context.Context) error {
	return a.driver.Check(ctx)
}

// Discover returns every stream the source offers, in the order the driver
// names them
func (a *AbstractDriver) Discover(ctx context.Context) ([]*types.Stream, error) {
	names, err := a.driver.GetStreamNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream names: %s", err)
	}

	streams := make([]*types.Stream, 0, len(names))
	for _, name := range names {
		stream, err := a.driver.ProduceSchema(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to produce schema for stream %s: %s", name, err)
		}

		if stream.SyncMode == "" {
			stream.SyncMode = utils.Ternary(stream.SupportedSyncModes.Exists(types.INCREMENTAL), types.INCREMENTAL, types.FULLREFRESH).(types.SyncMode)
		}
		streams = append(streams, stream)
	}
	return streams, nil
}

// ClearState drops the bookmarks of the given streams so they sync from scratch
func (a *AbstractDriver) ClearState(streams []types.StreamInterface) *types.State {
	for _, stream := range streams {
		a.state.ResetStream(stream.Name())
	}
	return a.state
}

// Read syncs the streams one at a time, incremental streams first.
//
// Every incremental stream must name a replication key; this is checked for
// all of them before the first request. A failing stream does not stop the
// ones after it: its error is collected and bookmarks it already advanced are
// kept.
func (a *AbstractDriver) Read(ctx context.Context, pool *destination.WriterPool, fullRefreshStreams, incrementalStreams []types.StreamInterface) error {
	for _, stream := range incrementalStreams {
		if stream.Cursor() == "" {
			return fmt.Errorf("%w: stream[%s]", constants.ErrMissingReplicationKey, stream.ID())
		}
	}

	var errs *multierror.Error
	run := func(stream types.StreamInterface, sync func(context.Context, *destination.WriterPool, types.StreamInterface) error) {
		if ctx.Err() != nil {
			errs = multierror.Append(errs, fmt.Errorf("stream[%s] skipped: %s", stream.ID(), ctx.Err()))
			return
		}
		if err := safego.Call(func() error { return sync(ctx, pool, stream) }); err != nil {
			logger.Errorf("failed to sync stream[%s]: %s", stream.ID(), err)
			errs = multierror.Append(errs, fmt.Errorf("stream[%s]: %w", stream.ID(), err))
		}
	}

	for _, stream := range incrementalStreams {
		run(stream, a.Incremental)
	}
	for _, stream := range fullRefreshStreams {
		run(stream, a.FullRefresh)
	}
	return errs.ErrorOrNil()
}

// handleWriterCleanup closes the writer and folds its error, and any panic,
// into err
func handleWriterCleanup(ctx context.Context, err *error, writer *destination.WriterThread, postProcess func(ctx context.Context) error) func() {
	return func() {
		if r := recover(); r != nil {
			*err = utils.Ternary(*err == nil, fmt.Errorf("panic recovered: %v", r), fmt.Errorf("%v: prev error: %w", r, *err)).(error)
		}

		if postProcess != nil {
			if postErr := postProcess(ctx); postErr != nil {
				*err = utils.Ternary(*err == nil, postErr, fmt.Errorf("%s: prev error: %w", postErr, *err)).(error)
			}
		}

		if closeErr := writer.Close(ctx); closeErr != nil {
			closeErr = fmt.Errorf("failed to close writer: %s", closeErr)
			*err = utils.Ternary(*err == nil, closeErr, fmt.Errorf("%s: prev error: %w", closeErr, *err)).(error)
		}
	}
}

// generateThreadID creates a unique thread ID for a stream
func generateThreadID(streamID string) string {
	return fmt.Sprintf("%s_%s", streamID, utils.ULID())
}
