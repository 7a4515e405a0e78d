package types

import (
	"sync"

	"github.com/goccy/go-json"
)

// State is the persisted bookmark document
//
//	{"bookmarks": {"<stream>": {"<replication_key>": <value>}}}
//
// It is owned by the orchestrator between stream syncs; the mutex only guards
// against checkpoint writers reading it while a sync mutates it.
type State struct {
	*sync.RWMutex `json:"-"`
	Bookmarks     map[string]map[string]any `json:"bookmarks"`
}

func NewState() *State {
	return &State{
		RWMutex:   &sync.RWMutex{},
		Bookmarks: make(map[string]map[string]any),
	}
}

func (s *State) init() {
	if s.RWMutex == nil {
		s.RWMutex = &sync.RWMutex{}
	}
}

func (s *State) IsZero() bool {
	s.init()
	s.RLock()
	defer s.RUnlock()

	for _, bookmark := range s.Bookmarks {
		if len(bookmark) > 0 {
			return false
		}
	}
	return true
}

// GetBookmark returns nil when the stream or key has no bookmark yet
func (s *State) GetBookmark(stream, key string) any {
	if key == "" {
		return nil
	}
	s.init()
	s.RLock()
	defer s.RUnlock()

	bookmark, found := s.Bookmarks[stream]
	if !found {
		return nil
	}
	return bookmark[key]
}

func (s *State) SetBookmark(stream, key string, value any) {
	if key == "" {
		return
	}
	s.init()
	s.Lock()
	defer s.Unlock()

	if s.Bookmarks == nil {
		s.Bookmarks = make(map[string]map[string]any)
	}
	bookmark, found := s.Bookmarks[stream]
	if !found {
		bookmark = make(map[string]any)
		s.Bookmarks[stream] = bookmark
	}
	bookmark[key] = value
}

func (s *State) ResetStream(stream string) {
	s.init()
	s.Lock()
	defer s.Unlock()

	delete(s.Bookmarks, stream)
}

// Retain drops bookmarks of streams not present in names
func (s *State) Retain(names ...string) {
	s.init()
	s.Lock()
	defer s.Unlock()

	keep := NewSet(names...)
	for stream := range s.Bookmarks {
		if !keep.Exists(stream) {
			delete(s.Bookmarks, stream)
		}
	}
}

// MarshalJSON takes a read lock so checkpoints see a consistent document
func (s *State) MarshalJSON() ([]byte, error) {
	s.init()
	s.RLock()
	defer s.RUnlock()

	bookmarks := s.Bookmarks
	if bookmarks == nil {
		bookmarks = map[string]map[string]any{}
	}
	return json.Marshal(struct {
		Bookmarks map[string]map[string]any `json:"bookmarks"`
	}{Bookmarks: bookmarks})
}

func (s *State) UnmarshalJSON(data []byte) error {
	aux := struct {
		Bookmarks map[string]map[string]any `json:"bookmarks"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.init()
	s.Bookmarks = aux.Bookmarks
	if s.Bookmarks == nil {
		s.Bookmarks = make(map[string]map[string]any)
	}
	return nil
}
