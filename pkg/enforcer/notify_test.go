package enforcer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/younsl/volreaper/internal/models"
)

func TestBuildMessage_NoActions(t *testing.T) {
	assert.Equal(t, "No cleanup needed.", BuildMessage("2024-01-16_10-00-00", "123456789012", false, nil, nil, nil))
}

func TestBuildMessage_Lines(t *testing.T) {
	deleted := []models.DeletedVolume{
		{VolumeID: "vol-1", SnapshotID: "snap-1", SnapshotExpiration: "2024-01-31"},
	}
	expired := []models.ExpiredSnapshot{
		{SnapshotID: "snap-0", ExpirationDate: "2024-01-15", Status: models.SnapshotStatusDeleted},
	}

	want := "EBS Cleanup Summary - 2024-01-16_10-00-00\n" +
		"\n" +
		"Volume vol-1 → Snapshot snap-1 (expires: 2024-01-31)\n" +
		"Expired Snapshot: snap-0 (expired: 2024-01-15)"
	assert.Equal(t, want, BuildMessage("2024-01-16_10-00-00", "", false, deleted, expired, nil))
}

func TestBuildMessage_FailuresOnly(t *testing.T) {
	failures := []models.CleanupFailure{
		{ResourceID: "vol-9", Step: "snapshot", Err: errors.New("limit exceeded")},
	}

	msg := BuildMessage("2024-01-16_10-00-00", "", false, nil, nil, failures)
	assert.NotEqual(t, NoCleanupMessage, msg)
	assert.Contains(t, msg, "Failures:\n- vol-9: snapshot failed: limit exceeded")
}

func TestBuildMessage_DryRunAndSavings(t *testing.T) {
	deleted := []models.DeletedVolume{
		{VolumeID: "vol-1", SnapshotID: DryRunSnapshotID, SnapshotExpiration: "2024-01-31", EstimatedMonthlySavings: 1200.5},
	}

	msg := BuildMessage("2024-01-16_10-00-00", "123456789012", true, deleted, nil, nil)
	assert.Contains(t, msg, "EBS Cleanup Summary - 2024-01-16_10-00-00 (account 123456789012) [dry run]")
	assert.Contains(t, msg, "Volume vol-1 → Snapshot dry-run")
	assert.Contains(t, msg, "Estimated monthly savings: $1,200")
}
