package enforcer

import (
	"fmt"
	"strings"
	"time"

	"github.com/younsl/volreaper/internal/models"
	"github.com/younsl/volreaper/pkg/utils"
)

// Tags written on every snapshot the enforcer creates
const (
	TagManagedBy      = "ManagedBy"
	TagSourceVolumeID = "SourceVolumeId"
	TagPurpose        = "Purpose"
	TagExpiresOn      = "ExpiresOn"

	PurposePreDeletion = "pre-deletion-backup"
)

// Verdict is the outcome of evaluating a volume against the policy
type Verdict string

const (
	VerdictDelete       Verdict = "delete"
	VerdictProtected    Verdict = "protected"
	VerdictNotAvailable Verdict = "not-available"
	VerdictUntracked    Verdict = "untracked"
	VerdictTooYoung     Verdict = "too-young"
	VerdictGone         Verdict = "gone"
)

// Policy holds the retention rules shared by both state machines
type Policy struct {
	RetentionDays          int
	UnattachedTagKey       string
	DoNotDeleteValue       string
	SnapshotMarker         string
	ManagedByValue         string
	LegacyDescriptionMatch bool
}

// Evaluate decides whether a volume with the given state, marker value and
// tags should be snapshotted and deleted on today.
func (p Policy) Evaluate(state, unattachedSince string, tags map[string]string, today time.Time) Verdict {
	if utils.HasTagValueFold(tags, p.DoNotDeleteValue) {
		return VerdictProtected
	}
	if state != models.VolumeStateAvailable {
		return VerdictNotAvailable
	}
	if unattachedSince == "" {
		return VerdictUntracked
	}
	since, err := utils.ParseDate(unattachedSince)
	if err != nil {
		return VerdictUntracked
	}
	if utils.DaysBetween(since, today) < p.RetentionDays {
		return VerdictTooYoung
	}
	return VerdictDelete
}

// IsManaged reports whether snap was created by the enforcer
func (p Policy) IsManaged(snap models.SnapshotInfo) bool {
	if snap.Tags[TagManagedBy] == p.ManagedByValue {
		return true
	}
	return p.LegacyDescriptionMatch && strings.Contains(snap.Description, p.SnapshotMarker)
}

// SnapshotExpiration returns the date a snapshot started at start expires
func (p Policy) SnapshotExpiration(start time.Time) time.Time {
	return utils.AddDays(start, p.RetentionDays)
}

// IsExpired reports whether snap's expiration date is strictly before today
func (p Policy) IsExpired(snap models.SnapshotInfo, today time.Time) bool {
	return p.SnapshotExpiration(snap.StartTime).Before(utils.Today(today))
}

// SnapshotDescription embeds the marker phrase and the source volume
func (p Policy) SnapshotDescription(volumeID, stamp string) string {
	return fmt.Sprintf("%s %s on %s", p.SnapshotMarker, volumeID, stamp)
}

// SnapshotTags returns the ownership tags for a snapshot of volumeID
func (p Policy) SnapshotTags(volumeID, expiresOn string) map[string]string {
	return map[string]string{
		TagManagedBy:      p.ManagedByValue,
		TagSourceVolumeID: volumeID,
		TagPurpose:        PurposePreDeletion,
		TagExpiresOn:      expiresOn,
	}
}
