package typeutils

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// return 0 for equal, -1 if a < b else 1 if a>b
//
// Numbers compare numerically across Go numeric kinds, time values
// chronologically; any other pair (strings included) falls back to string order.
func Compare(a, b any) int {
	// Handle nil cases first
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if aTime, ok := asTime(a); ok {
		if bTime, ok := asTime(b); ok {
			return aTime.Compare(bTime)
		}
	}

	if aBool, ok := a.(bool); ok {
		if bBool, ok := b.(bool); ok {
			// false < true
			if !aBool && bBool {
				return -1
			} else if aBool && !bBool {
				return 1
			}
			return 0
		}
	}

	aVal, bVal := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isSigned(aVal) && isSigned(bVal):
		return cmpOrdered(aVal.Int(), bVal.Int())
	case isUnsigned(aVal) && isUnsigned(bVal):
		return cmpOrdered(aVal.Uint(), bVal.Uint())
	}

	aNum, aOk := asFloat(a)
	bNum, bOk := asFloat(b)
	if aOk && bOk {
		return compareFloat(aNum, bNum)
	}

	// For any other types, convert to string for comparison
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case Time:
		return v.Time, true
	default:
		return time.Time{}, false
	}
}

func asFloat(value any) (float64, bool) {
	if number, ok := value.(interface{ Float64() (float64, error) }); ok {
		// json.Number
		f, err := number.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func compareFloat(aFloat, bFloat float64) int {
	if math.IsNaN(aFloat) {
		if math.IsNaN(bFloat) {
			return 0
		}
		return -1
	}
	if math.IsNaN(bFloat) {
		return 1
	}

	const eps = 1e-6
	diff := aFloat - bFloat
	if math.Abs(diff) < eps {
		return 0
	} else if diff < 0 {
		return -1
	}
	return 1
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func cmpOrdered[T int64 | uint64](a, b T) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
