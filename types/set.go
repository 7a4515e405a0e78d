package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Set is an insertion-ordered set of comparable values
type Set[T comparable] struct {
	hash  map[T]struct{}
	order []T
}

func NewSet[T comparable](values ...T) *Set[T] {
	set := &Set[T]{hash: make(map[T]struct{})}
	set.Insert(values...)
	return set
}

func (s *Set[T]) Insert(values ...T) {
	if s.hash == nil {
		s.hash = make(map[T]struct{})
	}
	for _, value := range values {
		if _, found := s.hash[value]; found {
			continue
		}
		s.hash[value] = struct{}{}
		s.order = append(s.order, value)
	}
}

func (s *Set[T]) Exists(value T) bool {
	if s == nil {
		return false
	}
	_, found := s.hash[value]
	return found
}

func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *Set[T]) Array() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Set[T]) String() string {
	parts := make([]string, 0, s.Len())
	for _, value := range s.Array() {
		parts = append(parts, fmt.Sprintf("%v", value))
	}
	sort.Strings(parts)
	return "[" + strings.Join(parts, ", ") + "]"
}

func (s *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Array())
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	s.hash = make(map[T]struct{})
	s.order = nil
	s.Insert(values...)
	return nil
}
