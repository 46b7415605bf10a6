package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrich(records []RawRating) []EnrichedRating {
	return DeriveTimeFeatures(records, 0)
}

func TestRankUserNth(t *testing.T) {
	cases := []struct {
		name     string
		records  []RawRating
		expected []int
	}{
		{
			name:     "empty",
			records:  nil,
			expected: []int{},
		},
		{
			name: "single_rating_gets_rank_one",
			records: []RawRating{
				{UserID: "u1", ItemID: "i1", Timestamp: 100},
			},
			expected: []int{1},
		},
		{
			name: "ascending_timestamps_rank_in_order",
			records: []RawRating{
				{UserID: "u1", ItemID: "i1", Timestamp: 100},
				{UserID: "u1", ItemID: "i2", Timestamp: 200},
				{UserID: "u1", ItemID: "i3", Timestamp: 300},
			},
			expected: []int{1, 2, 3},
		},
		{
			name: "tied_timestamps_share_rank_next_is_previous_plus_one",
			records: []RawRating{
				{UserID: "u1", ItemID: "i1", Timestamp: 100},
				{UserID: "u1", ItemID: "i2", Timestamp: 100},
				{UserID: "u1", ItemID: "i3", Timestamp: 200},
			},
			expected: []int{1, 1, 2},
		},
		{
			name: "input_order_does_not_matter",
			records: []RawRating{
				{UserID: "u1", ItemID: "i3", Timestamp: 300},
				{UserID: "u1", ItemID: "i1", Timestamp: 100},
				{UserID: "u1", ItemID: "i2", Timestamp: 200},
			},
			expected: []int{3, 1, 2},
		},
		{
			name: "groups_are_independent",
			records: []RawRating{
				{UserID: "u1", ItemID: "i1", Timestamp: 100},
				{UserID: "u2", ItemID: "i1", Timestamp: 500},
				{UserID: "u1", ItemID: "i2", Timestamp: 200},
				{UserID: "u2", ItemID: "i2", Timestamp: 600},
			},
			expected: []int{1, 1, 2, 2},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := enrich(tc.records)
			RankUserNth(records)

			ranks := make([]int, 0, len(records))
			for _, r := range records {
				ranks = append(ranks, r.UserNth)
			}
			assert.Equal(t, tc.expected, ranks)
		})
	}
}

func TestRankItemNth_SingleRatingItem(t *testing.T) {
	records := enrich([]RawRating{
		{UserID: "u1", ItemID: "i1", Timestamp: 100},
		{UserID: "u2", ItemID: "i1", Timestamp: 200},
		{UserID: "u3", ItemID: "i2", Timestamp: 50},
	})

	RankItemNth(records)

	assert.Equal(t, 1, records[0].ItemNth)
	assert.Equal(t, 2, records[1].ItemNth)
	// Item with a single rating trivially satisfies the rank bound.
	assert.Equal(t, 1, records[2].ItemNth)
}

func TestRank_UserAndItemPassesAreIndependent(t *testing.T) {
	records := enrich([]RawRating{
		{UserID: "u1", ItemID: "i1", Timestamp: 100},
		{UserID: "u1", ItemID: "i2", Timestamp: 200},
		{UserID: "u2", ItemID: "i2", Timestamp: 300},
	})

	forward := make([]EnrichedRating, len(records))
	copy(forward, records)
	RankUserNth(forward)
	RankItemNth(forward)

	reversed := make([]EnrichedRating, len(records))
	copy(reversed, records)
	RankItemNth(reversed)
	RankUserNth(reversed)

	assert.Equal(t, forward, reversed)
}

func TestRank_MonotonicityAndBounds(t *testing.T) {
	records := enrich([]RawRating{
		{UserID: "u1", ItemID: "i1", Timestamp: 300},
		{UserID: "u1", ItemID: "i2", Timestamp: 100},
		{UserID: "u1", ItemID: "i3", Timestamp: 300},
		{UserID: "u1", ItemID: "i4", Timestamp: 200},
		{UserID: "u1", ItemID: "i5", Timestamp: 100},
		{UserID: "u2", ItemID: "i1", Timestamp: 700},
		{UserID: "u2", ItemID: "i2", Timestamp: 700},
	})

	RankUserNth(records)

	groupSize := map[string]int{}
	for _, r := range records {
		groupSize[r.UserID]++
	}

	for i, a := range records {
		require.GreaterOrEqual(t, a.UserNth, 1)
		require.LessOrEqual(t, a.UserNth, groupSize[a.UserID])

		for j, b := range records {
			if i == j || a.UserID != b.UserID {
				continue
			}
			if a.Timestamp < b.Timestamp {
				assert.LessOrEqual(t, a.UserNth, b.UserNth,
					"record %d ranked after record %d despite earlier timestamp", i, j)
			}
			if a.Timestamp == b.Timestamp {
				assert.Equal(t, a.UserNth, b.UserNth,
					"records %d and %d share a timestamp but not a rank", i, j)
			}
		}
	}
}
