package domain

// Deduplicate returns the records with exactly one entry per (user_id,
// item_id) pair. The source feed may contain the same pair more than once;
// those are erroneous re-submissions, not legitimate re-reviews.
//
// The tie-break is explicit and deterministic: within a pair the record with
// the smallest timestamp is kept, and among equal timestamps the earliest
// record in input order wins. Output preserves the input order of first
// occurrence per pair, so Deduplicate is idempotent and stable for a given
// input ordering.
func Deduplicate(records []RawRating) []RawRating {
	if len(records) == 0 {
		return []RawRating{}
	}

	kept := make(map[RatingKey]int, len(records))
	order := make([]RatingKey, 0, len(records))

	for i, r := range records {
		key := r.Key()
		prev, seen := kept[key]
		if !seen {
			kept[key] = i
			order = append(order, key)
			continue
		}
		if r.Timestamp < records[prev].Timestamp {
			kept[key] = i
		}
	}

	out := make([]RawRating, 0, len(order))
	for _, key := range order {
		out = append(out, records[kept[key]])
	}
	return out
}
