package database

import "time"

// SearchResult is one cached video search hit. Results of one query are
// stored together and ordered by Position.
type SearchResult struct {
	ID       int64  `db:"id"`
	Query    string `db:"query"`
	Position int    `db:"position"`

	VideoID     string `db:"video_id"`
	Title       string `db:"title"`
	Channel     string `db:"channel"`
	DurationSec int64  `db:"duration_sec"`
	Views       int64  `db:"views"`
	Thumbnail   string `db:"thumbnail"`

	// FetchedAt is stored as unix seconds.
	FetchedAt int64 `db:"fetched_at"`
}

// Duration returns the video length.
func (r SearchResult) Duration() time.Duration {
	return time.Duration(r.DurationSec) * time.Second
}

// FetchedTime returns FetchedAt as a time.
func (r SearchResult) FetchedTime() time.Time {
	return time.Unix(r.FetchedAt, 0).UTC()
}
