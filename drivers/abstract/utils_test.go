package abstract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsFresh(t *testing.T) {
	tests := []struct {
		name      string
		bookmark  any
		candidate any
		expected  bool
	}{
		{"older timestamp is stale", "2018-11-03 18:21:26", "2011-11-03 18:21:26", false},
		{"newer timestamp is fresh", "2018-11-03 18:21:26", "2018-11-03 18:21:27", true},
		{"equal timestamp is fresh", "2018-11-03 18:21:26", "2018-11-03 18:21:26", true},
		{"timestamps compared as instants", "2018-11-03T18:21:26Z", "2018-11-03 20:21:26+02:00", true},
		{"smaller id is stale", float64(5), float64(4), false},
		{"larger id is fresh", float64(5), float64(6), true},
		{"equal id is fresh", float64(5), float64(5), true},
		{"mixed numeric kinds", 5, float64(6), true},
		{"no bookmark is always fresh", nil, "anything", true},
		{"no bookmark with missing value", nil, nil, true},
		{"missing value against bookmark is stale", float64(5), nil, false},
		{"time values", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "2019-12-31 23:59:59", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsFresh(tc.bookmark, tc.candidate))
		})
	}
}

func TestAdvanceWatermark(t *testing.T) {
	tests := []struct {
		name      string
		current   any
		candidate any
		expected  any
	}{
		{"first value is stored", nil, "2018-11-03 18:21:26", "2018-11-03 18:21:26"},
		{"first numeric value is stored", nil, float64(3), float64(3)},
		{"newer timestamp advances", "2018-11-03 18:21:26", "2018-11-04 00:00:00", "2018-11-04 00:00:00"},
		{"equal timestamp keeps", "2018-11-03 18:21:26", "2018-11-03 18:21:26", nil},
		{"older timestamp keeps", "2018-11-03 18:21:26", "2017-01-01 00:00:00", nil},
		{"larger id keeps first value", float64(5), float64(9), nil},
		{"later string id keeps first value", "a-001", "a-002", nil},
		{"smaller id keeps", float64(5), float64(1), nil},
		{"timestamp never replaces number", float64(5), "2018-11-03 18:21:26", nil},
		{"number never replaces timestamp", "2018-11-03 18:21:26", float64(99999999999), nil},
		{"missing value keeps", "2018-11-03 18:21:26", nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AdvanceWatermark(tc.current, tc.candidate))
		})
	}
}
