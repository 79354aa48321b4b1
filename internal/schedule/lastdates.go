package schedule

import "github.com/ukydev/carlog/internal/dates"

// FromStrings converts a stored string-keyed map. Keys that are not catalog
// check ids are dropped; values are kept as stored.
func FromStrings(m map[string]string) LastDates {
	out := make(LastDates, len(m))
	for k, v := range m {
		if id := CheckID(k); IsValidCheckID(id) {
			out[id] = v
		}
	}
	return out
}

// Strings converts last back to the string-keyed form stored on a vehicle.
func (l LastDates) Strings() map[string]string {
	out := make(map[string]string, len(l))
	for k, v := range l {
		out[string(k)] = v
	}
	return out
}

// Normalize keeps only known checks whose dates parse, rewritten in
// canonical form.
func Normalize(m map[string]string) LastDates {
	out := make(LastDates, len(m))
	for id, v := range FromStrings(m) {
		if canonical, ok := dates.Normalize(v); ok {
			out[id] = canonical
		}
	}
	return out
}
