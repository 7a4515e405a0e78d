package typeutils

import (
	"fmt"
	"strings"
	"time"
)

type Time struct {
	time.Time
}

// layouts accepted for timestamp-valued replication keys; values without a
// zone are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
	time.ANSIC,
}

// UnmarshalJSON overrides the default unmarshalling for Time
func (ct *Time) UnmarshalJSON(b []byte) error {
	str := strings.Trim(string(b), "\"")
	parsed, err := parseStringTimestamp(str)
	if err != nil {
		return err
	}

	*ct = Time{parsed}
	return nil
}

// Compare compares the time instant ct with u. If ct is before u, it returns -1;
// if ct is after u, it returns +1; if they're the same, it returns 0.
func (ct Time) Compare(u Time) int {
	return ct.Time.Compare(u.Time)
}

func parseStringTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp[%s]", value)
}

// ParseTimestamp parses strings and time values; anything else is not a timestamp
func ParseTimestamp(value any) (Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return Time{v}, true
	case Time:
		return v, true
	case string:
		parsed, err := parseStringTimestamp(v)
		if err != nil {
			return Time{}, false
		}
		return Time{parsed}, true
	default:
		return Time{}, false
	}
}
