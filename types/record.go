package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Record is one JSON object as returned by the API, unwrapped from its envelope
type Record map[string]any

// Filter narrows a fetch to rows whose Column is greater than Value
type Filter struct {
	Column string
	Value  any
}

func (f *Filter) String() string {
	if f == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s > %v", f.Column, f.Value)
}

func (r Record) GetStringifiedJSONValue(key string) (string, error) {
	value := r[key]
	switch value.(type) {
	case struct{}, map[string]interface{}, []interface{}:
		s, err := json.Marshal(value)
		return string(s), err
	default:
		return fmt.Sprintf("%v", r[key]), nil
	}
}

// KeyHash joins the values of the given keys. It is "" when no keys are given
// or the record lacks a value for any of them.
func (r Record) KeyHash(keys ...string) string {
	if len(keys) == 0 {
		return ""
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	parts := make([]string, 0, len(sorted))
	for _, key := range sorted {
		if r[key] == nil {
			return ""
		}
		value, err := r.GetStringifiedJSONValue(key)
		if err != nil {
			return ""
		}
		parts = append(parts, value)
	}
	return strings.Join(parts, "|")
}
