package model

// QueryParams bounds a quarantine query by arrival time. Both bounds
// are whole-second epoch timestamps; a nil bound leaves that side
// unbounded.
type QueryParams struct {
	StartTime *int64
	EndTime   *int64
}

// Equal reports structural equality of two parameter sets. The list
// controller compares params this way to decide whether a new fetch is
// needed at all.
func (p QueryParams) Equal(o QueryParams) bool {
	return epochEqual(p.StartTime, o.StartTime) &&
		epochEqual(p.EndTime, o.EndTime)
}

func epochEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Epoch is a convenience for building bound pointers.
func Epoch(v int64) *int64 { return &v }
