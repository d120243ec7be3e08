package models

import "fmt"

// ReportRow is one line of the inventory report
type ReportRow struct {
	VolumeID        string
	State           string
	CreateDate      string // YYYY-MM-DD
	UnattachedSince string // YYYY-MM-DD, empty while attached
	Tags            map[string]string
}

// DeletedVolume is a volume the enforcer snapshotted and deleted
type DeletedVolume struct {
	VolumeID           string
	State              string
	UnattachedSince    string
	SnapshotID         string
	SnapshotExpiration string

	EstimatedMonthlySavings float64
}

// ExpiredSnapshot is a managed snapshot past its retention window
type ExpiredSnapshot struct {
	SnapshotID     string
	ExpirationDate string
	Status         string
}

// Snapshot reaping statuses
const (
	SnapshotStatusDeleted = "Deleted"
	SnapshotStatusDryRun  = "DryRun"
)

// CleanupFailure records a step that failed for a single resource
type CleanupFailure struct {
	ResourceID string
	Step       string
	SnapshotID string // set when a snapshot exists but the volume survived
	Err        error
}

func (f CleanupFailure) Error() string {
	if f.SnapshotID != "" {
		return fmt.Sprintf("%s: %s failed (snapshot %s retained): %v", f.ResourceID, f.Step, f.SnapshotID, f.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", f.ResourceID, f.Step, f.Err)
}

func (f CleanupFailure) Unwrap() error {
	return f.Err
}
