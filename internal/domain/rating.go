package domain

import "time"

// RawRating is one purchase-review event as it appears in the source feed.
// User and item IDs are opaque; neither is globally unique on its own, only
// the (user, item) pair identifies a rating.
type RawRating struct {
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	Rating    int    `json:"rating"`
	Timestamp int64  `json:"timestamp"`
	Category  string `json:"category"`
}

// Key returns the composite identity of the rating.
func (r RawRating) Key() RatingKey {
	return RatingKey{UserID: r.UserID, ItemID: r.ItemID}
}

// RatingKey identifies a rating by its (user, item) pair.
type RatingKey struct {
	UserID string
	ItemID string
}

// EnrichedRating is a RawRating plus derived calendar fields and per-user /
// per-item rank. This is the record shape the aggregate reports consume.
type EnrichedRating struct {
	RawRating

	// LocalTimestamp is the raw timestamp shifted by the configured offset,
	// read as UTC. The shift encodes the timezone and DST correction, so the
	// UTC calendar components below match the intended local calendar.
	LocalTimestamp time.Time `json:"local_timestamp"`

	Hour      int    `json:"hour"`
	DayOfWeek string `json:"day_of_week"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`

	// UserNth is the dense rank of this rating among all ratings by the same
	// user, ordered by raw timestamp ascending. ItemNth is the same rank
	// grouped by item instead.
	UserNth int `json:"user_nth"`
	ItemNth int `json:"item_nth"`
}
