package domain

import "time"

// DeriveTimeFeatures computes the local calendar fields for each record by
// shifting the raw epoch timestamp by offsetSeconds and reading the shifted
// value as UTC. The offset encodes the timezone plus any DST correction for
// the run date, so the UTC read reproduces the intended local calendar date;
// no timezone database lookup happens here.
//
// Callers must supply the offset explicitly. There is no default: the value
// is only valid for a particular deployment and run date.
//
// The rank fields of the result are left zero; they are filled in by the
// rank passes.
func DeriveTimeFeatures(records []RawRating, offsetSeconds int64) []EnrichedRating {
	out := make([]EnrichedRating, len(records))
	for i, r := range records {
		local := time.Unix(r.Timestamp+offsetSeconds, 0).UTC()
		out[i] = EnrichedRating{
			RawRating:      r,
			LocalTimestamp: local,
			Hour:           local.Hour(),
			DayOfWeek:      local.Weekday().String(),
			Month:          int(local.Month()),
			Year:           local.Year(),
		}
	}
	return out
}
