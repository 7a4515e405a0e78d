package types

import (
	"time"
)

// Message is a dto for olake output row representation
type Message struct {
	Type             MessageType    `json:"type"`
	Stream           string         `json:"stream,omitempty"`
	Record           Record         `json:"record,omitempty"`
	TimeExtracted    *time.Time     `json:"time_extracted,omitempty"`
	Log              *Log           `json:"log,omitempty"`
	ConnectionStatus *StatusRow     `json:"connectionStatus,omitempty"`
	State            *State         `json:"value,omitempty"`
	Catalog          *Catalog       `json:"catalog,omitempty"`
	Spec             map[string]any `json:"spec,omitempty"`
}

// Log is a dto for log serialization
type Log struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusRow is a dto for connection check result serialization
type StatusRow struct {
	Status  ConnectionStatus `json:"status,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Catalog is the configured set of streams for a sync.
//
// SelectedStreams, when set, limits the sync to the named streams; otherwise
// every configured stream is synced.
type Catalog struct {
	Streams         []*ConfiguredStream        `json:"streams,omitempty"`
	SelectedStreams []string                   `json:"selected_streams,omitempty"`
	Metadata        map[string]CatalogMetadata `json:"metadata,omitempty"`
}

func (c *Catalog) IsSelected(stream *ConfiguredStream) bool {
	if c.SelectedStreams == nil {
		return true
	}
	selected := NewSet(c.SelectedStreams...)
	return selected.Exists(stream.Name()) || selected.Exists(stream.ID())
}

func GetWrappedCatalog(streams []*Stream) *Catalog {
	catalog := &Catalog{
		Streams:  []*ConfiguredStream{},
		Metadata: make(map[string]CatalogMetadata, len(streams)),
	}

	for _, stream := range streams {
		catalog.Streams = append(catalog.Streams, stream.Wrap())
		catalog.Metadata[stream.Name] = stream.Metadata()
	}

	return catalog
}

// CatalogMetadata mirrors the per-stream metadata the catalog advertises
type CatalogMetadata struct {
	TableKeyProperties      []string `json:"table-key-properties"`
	ForcedReplicationMethod string   `json:"forced-replication-method"`
	ValidReplicationKeys    []string `json:"valid-replication-keys,omitempty"`
}

func (s *Stream) Metadata() CatalogMetadata {
	return CatalogMetadata{
		TableKeyProperties:      s.SourceDefinedPrimaryKey.Array(),
		ForcedReplicationMethod: s.SyncMode.ReplicationMethod(),
		ValidReplicationKeys:    s.AvailableCursorFields.Array(),
	}
}
