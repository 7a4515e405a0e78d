package types

import (
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/constants"
)

// Stream is the source-side definition of one extractable resource
type Stream struct {
	Name                    string         `json:"name"`
	Namespace               string         `json:"namespace,omitempty"`
	SupportedSyncModes      *Set[SyncMode] `json:"supported_sync_modes,omitempty"`
	SourceDefinedPrimaryKey *Set[string]   `json:"source_defined_primary_key,omitempty"`
	AvailableCursorFields   *Set[string]   `json:"available_cursor_fields,omitempty"`
	SyncMode                SyncMode       `json:"sync_mode,omitempty"`
	CursorField             string         `json:"cursor_field,omitempty"`
}

func NewStream(name, namespace string) *Stream {
	if namespace == "" {
		namespace = constants.DefaultNamespace
	}
	return &Stream{
		Name:                    name,
		Namespace:               namespace,
		SupportedSyncModes:      NewSet[SyncMode](),
		SourceDefinedPrimaryKey: NewSet[string](),
		AvailableCursorFields:   NewSet[string](),
	}
}

func (s *Stream) ID() string {
	return fmt.Sprintf("%s.%s", s.Namespace, s.Name)
}

func (s *Stream) WithPrimaryKey(keys ...string) *Stream {
	s.SourceDefinedPrimaryKey.Insert(keys...)
	return s
}

func (s *Stream) WithCursorField(columns ...string) *Stream {
	s.AvailableCursorFields.Insert(columns...)
	return s
}

func (s *Stream) WithSyncMode(modes ...SyncMode) *Stream {
	s.SupportedSyncModes.Insert(modes...)
	return s
}

// Wrap returns the configured form of the stream
func (s *Stream) Wrap() *ConfiguredStream {
	return &ConfiguredStream{Stream: s}
}

func StreamsToMap(streams ...*Stream) map[string]*Stream {
	out := make(map[string]*Stream, len(streams))
	for _, stream := range streams {
		out[stream.ID()] = stream
	}
	return out
}
