package domain

import "sort"

// RankWithinGroup assigns a dense ("min") rank to every record, partitioned
// by groupKey and ordered by raw timestamp ascending. The smallest timestamp
// in a group gets rank 1; records sharing a timestamp share a rank, and the
// next strictly greater timestamp gets the previous rank plus one. Every rank
// is therefore in [1, group size].
//
// Records must already be deduplicated; ranking before deduplication would
// inflate the ranks with counts of duplicate rows.
//
// The rank is stored on the record via assign. The user and item passes
// write disjoint fields, so they may run concurrently over the same slice.
func RankWithinGroup(
	records []EnrichedRating,
	groupKey func(RawRating) string,
	assign func(*EnrichedRating, int),
) {
	groups := make(map[string][]int)
	for i := range records {
		key := groupKey(records[i].RawRating)
		groups[key] = append(groups[key], i)
	}

	for _, idxs := range groups {
		sort.SliceStable(idxs, func(a, b int) bool {
			return records[idxs[a]].Timestamp < records[idxs[b]].Timestamp
		})

		rank := 0
		var prev int64
		for pos, idx := range idxs {
			if pos == 0 || records[idx].Timestamp > prev {
				rank++
			}
			prev = records[idx].Timestamp
			assign(&records[idx], rank)
		}
	}
}

// RankUserNth fills the UserNth field of every record: the dense rank of the
// rating among all ratings by the same user, by timestamp ascending.
func RankUserNth(records []EnrichedRating) {
	RankWithinGroup(records,
		func(r RawRating) string { return r.UserID },
		func(e *EnrichedRating, rank int) { e.UserNth = rank },
	)
}

// RankItemNth fills the ItemNth field of every record: the dense rank of the
// rating among all ratings for the same item, by timestamp ascending.
func RankItemNth(records []EnrichedRating) {
	RankWithinGroup(records,
		func(r RawRating) string { return r.ItemID },
		func(e *EnrichedRating, rank int) { e.ItemNth = rank },
	)
}
