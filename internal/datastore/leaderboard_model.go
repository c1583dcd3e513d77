package datastore

import "time"

// License classifies a submitted model.
type License string

const (
	LicenseOpenSource  License = "Open Source"
	LicenseProprietary License = "Proprietary"
)

// TimestampLayout is the wire format of the timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// LeaderboardEntry is one persisted leaderboard row. ModelName is the
// unique key; re-submissions update the other fields in place.
type LeaderboardEntry struct {
	ModelName     string
	WER           float64
	CER           float64
	CombinedScore float64
	Timestamp     string
	License       License
	ModelURL      string
}

// Touch stamps the entry with the current time in the persisted layout.
func (e *LeaderboardEntry) Touch(now time.Time) {
	e.Timestamp = now.Format(TimestampLayout)
}
