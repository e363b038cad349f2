package domain

import "time"

// TrackerRecord marks a fingerprint as parsed and staged.
// At most one record exists per fingerprint; later writes replace it.
type TrackerRecord struct {
	// Fingerprint is the content identity (primary key).
	Fingerprint Fingerprint

	// FileName is the file name observed at parse time.
	FileName string

	// CachePath is where the staged artifact was written.
	CachePath string

	// ParseParams is a free-form label describing the parse configuration.
	ParseParams string

	// UpdatedAt is set by the store on every write.
	UpdatedAt time.Time
}
