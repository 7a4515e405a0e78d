package types

import (
	"fmt"
)

// Input/Processed object for Stream
type ConfiguredStream struct {
	Stream *Stream `json:"stream,omitempty"`
}

func (s *ConfiguredStream) ID() string {
	return s.Stream.ID()
}

func (s *ConfiguredStream) Self() *ConfiguredStream {
	return s
}

func (s *ConfiguredStream) Name() string {
	return s.Stream.Name
}

func (s *ConfiguredStream) Namespace() string {
	return s.Stream.Namespace
}

func (s *ConfiguredStream) GetStream() *Stream {
	return s.Stream
}

func (s *ConfiguredStream) GetSyncMode() SyncMode {
	return s.Stream.SyncMode
}

func (s *ConfiguredStream) SupportedSyncModes() *Set[SyncMode] {
	return s.Stream.SupportedSyncModes
}

// Cursor returns the replication key; empty for full refresh streams
func (s *ConfiguredStream) Cursor() string {
	return s.Stream.CursorField
}

func (s *ConfiguredStream) KeyProperties() []string {
	return s.Stream.SourceDefinedPrimaryKey.Array()
}

// Validate Configured Stream with Source Stream
func (s *ConfiguredStream) Validate(source *Stream) error {
	if !source.SupportedSyncModes.Exists(s.Stream.SyncMode) {
		return fmt.Errorf("invalid sync mode[%s]; valid are %v", s.Stream.SyncMode, source.SupportedSyncModes)
	}

	// cursor presence itself is checked by the synchronizer before any request
	if s.Stream.SyncMode == INCREMENTAL && s.Stream.CursorField != "" && !source.AvailableCursorFields.Exists(s.Stream.CursorField) {
		return fmt.Errorf("invalid cursor field [%s]; valid are %v", s.Stream.CursorField, source.AvailableCursorFields)
	}

	return nil
}
