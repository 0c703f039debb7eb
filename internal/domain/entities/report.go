package entities

import "time"

// MatrixReport summarizes one matrix run for persistence
type MatrixReport struct {
	RunID       string
	Package     string
	IndexURL    string
	StartedAt   time.Time
	Duration    time.Duration
	Releases    []ReleaseVersion
	Rounds      int
	Probes      int
	Targets     *TargetVersionMap
	Extractions []ExtractionRecord
}

// ExtractionRecord is the outcome of extracting one compatible pair
type ExtractionRecord struct {
	Runtime    string
	Release    ReleaseVersion
	Format     string
	Path       string
	SourceFile string
	SHA256     string
	Error      string
}
