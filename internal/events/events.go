package events

import "time"

// DocumentAssembledEvent is sent when a document reaches ASSEMBLED and its
// artifacts have been written.
type DocumentAssembledEvent struct {
	RunID    string // Run the document belongs to
	SiteID   string // e.g. "3f2a..."
	Index    int    // Position of the document in its run
	HTMLPath string // Where the rendered page was stored, "" if storing failed
	Markup   string // Rendered page, used for indexing
	At       time.Time
}

// BatchCompleteEvent is sent once per run after similarity scoring.
type BatchCompleteEvent struct {
	RunID          string
	Topic          string
	Documents      int           // Number of documents assembled
	NearDuplicates int           // Pairs above the configured threshold
	Duration       time.Duration // How long the batch took
	Errors         []string      // Any errors encountered (non-fatal)
}
