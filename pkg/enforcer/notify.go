package enforcer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/younsl/volreaper/internal/models"
)

const (
	// NotificationSubject is the subject of every summary notification
	NotificationSubject = "EBS Cleanup Summary Report"

	// NoCleanupMessage is the whole body when a run took no action
	NoCleanupMessage = "No cleanup needed."
)

// BuildMessage renders the notification body for one run
func BuildMessage(stamp, accountID string, dryRun bool, deleted []models.DeletedVolume,
	expired []models.ExpiredSnapshot, failures []models.CleanupFailure) string {
	if len(deleted) == 0 && len(expired) == 0 && len(failures) == 0 {
		return NoCleanupMessage
	}

	var b strings.Builder
	b.WriteString("EBS Cleanup Summary - " + stamp)
	if accountID != "" {
		fmt.Fprintf(&b, " (account %s)", accountID)
	}
	if dryRun {
		b.WriteString(" [dry run]")
	}
	b.WriteString("\n\n")

	var savings float64
	for _, d := range deleted {
		fmt.Fprintf(&b, "Volume %s → Snapshot %s (expires: %s)\n", d.VolumeID, d.SnapshotID, d.SnapshotExpiration)
		savings += d.EstimatedMonthlySavings
	}
	for _, s := range expired {
		fmt.Fprintf(&b, "Expired Snapshot: %s (expired: %s)\n", s.SnapshotID, s.ExpirationDate)
	}

	if savings > 0 {
		fmt.Fprintf(&b, "\nEstimated monthly savings: $%s\n", humanize.CommafWithDigits(savings, 2))
	}

	if len(failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range failures {
			b.WriteString("- " + f.Error() + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
