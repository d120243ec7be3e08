package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/younsl/volreaper/internal/models"
)

// Deletion log headers, written even when a table has no rows
var (
	DeletedVolumesHeader   = []string{"Volume ID", "State", "Unattached Since", "Snapshot ID", "Snapshot Expiration"}
	ExpiredSnapshotsHeader = []string{"Snapshot ID", "Expiration Date", "Status"}
)

// WriteDeletionLog writes the deleted-volume table, a blank separator row and
// the expired-snapshot table.
func WriteDeletionLog(w io.Writer, deleted []models.DeletedVolume, expired []models.ExpiredSnapshot) error {
	cw := csv.NewWriter(w)

	records := [][]string{DeletedVolumesHeader}
	for _, d := range deleted {
		records = append(records, []string{d.VolumeID, d.State, d.UnattachedSince, d.SnapshotID, d.SnapshotExpiration})
	}
	records = append(records, []string{}, ExpiredSnapshotsHeader)
	for _, e := range expired {
		records = append(records, []string{e.SnapshotID, e.ExpirationDate, e.Status})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("error writing deletion log: %w", err)
	}
	return nil
}
