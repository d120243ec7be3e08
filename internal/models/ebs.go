package models

import "time"

// EBS volume states that count as unattached
const (
	VolumeStateAvailable = "available"
	VolumeStateInactive  = "inactive"
)

// VolumeInfo represents EBS volume information
type VolumeInfo struct {
	VolumeID         string
	Name             string
	Size             int
	VolumeType       string
	State            string
	Region           string
	AvailabilityZone string
	CreationTime     time.Time
	Tags             map[string]string

	// Set by the collector for unattached volumes
	EstimatedMonthlyCost float64
	PricingSource        string // "API", "Cache", "Default" or "N/A"
}

// Attached reports whether the volume is in use by an instance.
// Transitional states (creating, deleting, error) count as attached so they
// never start the unattached clock.
func (v VolumeInfo) Attached() bool {
	return v.State != VolumeStateAvailable && v.State != VolumeStateInactive
}

// SnapshotInfo represents an EBS snapshot owned by the account
type SnapshotInfo struct {
	SnapshotID  string
	VolumeID    string
	Description string
	State       string
	StartTime   time.Time
	Tags        map[string]string
}
