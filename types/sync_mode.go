package types

type SyncMode string

const (
	// FULLREFRESH re-extracts the whole resource on every run.
	FULLREFRESH SyncMode = "full_refresh"
	// INCREMENTAL extracts only records newer than the stored bookmark.
	INCREMENTAL SyncMode = "incremental"
)

// ReplicationMethod returns the name the catalog metadata uses for the mode
func (s SyncMode) ReplicationMethod() string {
	switch s {
	case INCREMENTAL:
		return "INCREMENTAL"
	default:
		return "FULL_TABLE"
	}
}
