package abstract

import (
	"github.com/datazip-inc/olake-clubspeed/utils/typeutils"
)

// IsFresh reports whether a record with replication key value candidate may be
// emitted given the bookmark. Without a bookmark everything is fresh. When
// both sides parse as timestamps they are compared as instants, otherwise by
// natural ordering. Equal values are fresh.
func IsFresh(bookmark, candidate any) bool {
	if bookmark == nil {
		return true
	}

	bookmarkTime, bookmarkIsTime := typeutils.ParseTimestamp(bookmark)
	candidateTime, candidateIsTime := typeutils.ParseTimestamp(candidate)
	if bookmarkIsTime && candidateIsTime {
		return candidateTime.Compare(bookmarkTime) >= 0
	}
	return typeutils.Compare(candidate, bookmark) >= 0
}

// AdvanceWatermark returns the new bookmark after emitting candidate, keeping
// the original representation of whichever value wins. It returns nil when
// the bookmark stays as it is.
//
// The first non-nil value seen becomes the bookmark. After that only a
// strictly later timestamp replaces a timestamp bookmark; non-timestamp
// bookmarks (numeric ids) keep their first value.
func AdvanceWatermark(current, candidate any) any {
	if candidate == nil {
		return nil
	}
	if current == nil {
		return candidate
	}

	currentTime, currentIsTime := typeutils.ParseTimestamp(current)
	candidateTime, candidateIsTime := typeutils.ParseTimestamp(candidate)
	if currentIsTime && candidateIsTime && candidateTime.Compare(currentTime) > 0 {
		return candidate
	}
	return nil
}
