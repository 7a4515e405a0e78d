package constants

import "errors"

const (
	ParquetFileExt   = "parquet"
	SQLiteFileExt    = "db"
	OlakeID          = "_olake_id"
	OlakeTimestamp   = "_olake_timestamp"
	DefaultNamespace = "clubspeed"
	// viper keys
	ConfigFolder            = "CONFIG_FOLDER"
	StatePath               = "STATE_PATH"
	StreamsPath             = "STREAMS_PATH"
	EncryptionKey           = "ENCRYPTION_KEY"
	LogLevel                = "LOG_LEVEL"
	StateCheckpointInterval = "STATE_CHECKPOINT_INTERVAL"
	SyncID                  = "SYNC_ID"
	EnvPrefix               = "OLAKE"
	// defaults
	DefaultRetryCount              = 3
	DefaultTimeoutSeconds          = 30
	DefaultStateCheckpointInterval = 1000
)

type DriverType string

const (
	Clubspeed DriverType = "clubspeed"
)

var (
	ErrNonRetryable          = errors.New("non-retryable error")
	ErrEmptyResult           = errors.New("server returned empty result")
	ErrEnvelopeMissing       = errors.New("response envelope key missing")
	ErrMissingReplicationKey = errors.New("replication key not defined for incremental stream")
	ErrStreamNotFound        = errors.New("stream not found in source")
)
