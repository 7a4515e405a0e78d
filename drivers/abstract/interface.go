package abstract

import (
	"context"

	"github.com/datazip-inc/olake-clubspeed/types"
)

type BackfillMsgFn func(ctx context.Context, record types.Record) error

type Config interface {
	Validate() error
}

type DriverInterface interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// specific to test & setup
	Setup(ctx context.Context) error
	Check(ctx context.Context) error
	// specific to discover
	GetStreamNames(ctx context.Context) ([]string, error)
	ProduceSchema(ctx context.Context, stream string) (*types.Stream, error)
	// StreamRecords hands every record of the stream to cb in source order; a
	// nil filter reads the whole stream
	StreamRecords(ctx context.Context, stream types.StreamInterface, filter *types.Filter, cb BackfillMsgFn) error
}
