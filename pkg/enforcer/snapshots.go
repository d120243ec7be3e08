package enforcer

import (
	"context"
	"errors"
	"time"

	"github.com/younsl/volreaper/internal/models"
	awsclient "github.com/younsl/volreaper/pkg/aws"
	"github.com/younsl/volreaper/pkg/utils"
)

// reapSnapshots deletes managed snapshots whose expiration date has passed.
// Snapshots not created by the enforcer are never touched.
func (e *Enforcer) reapSnapshots(ctx context.Context, today time.Time, result *Result) {
	snapshots, err := e.volumes.ListSnapshots(ctx)
	if err != nil {
		e.fail(result, models.CleanupFailure{ResourceID: "snapshots", Step: "list", Err: err})
		return
	}

	managed := 0
	for _, snap := range snapshots {
		if !e.opts.IsManaged(snap) {
			continue
		}
		managed++
		if !e.opts.IsExpired(snap, today) {
			continue
		}
		if ctx.Err() != nil {
			e.fail(result, models.CleanupFailure{ResourceID: snap.SnapshotID, Step: "delete-snapshot", Err: ctx.Err()})
			return
		}

		entry := models.ExpiredSnapshot{
			SnapshotID:     snap.SnapshotID,
			ExpirationDate: utils.FormatDate(e.opts.SnapshotExpiration(snap.StartTime)),
		}
		log := e.log.New("snapshot", snap.SnapshotID, "volume", snap.VolumeID)

		if e.opts.DryRun {
			entry.Status = models.SnapshotStatusDryRun
			result.Expired = append(result.Expired, entry)
			log.Info("would delete expired snapshot", "expired", entry.ExpirationDate)
			continue
		}

		if err := e.volumes.DeleteSnapshot(ctx, snap.SnapshotID); err != nil {
			if errors.Is(err, awsclient.ErrSnapshotNotFound) {
				log.Info("snapshot already gone")
				continue
			}
			e.fail(result, models.CleanupFailure{ResourceID: snap.SnapshotID, Step: "delete-snapshot", Err: err})
			continue
		}

		entry.Status = models.SnapshotStatusDeleted
		result.Expired = append(result.Expired, entry)
		log.Info("deleted expired snapshot", "expired", entry.ExpirationDate)
	}

	e.log.Info("reconciled snapshots", "owned", len(snapshots), "managed", managed, "reaped", len(result.Expired))
}
