package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/younsl/volreaper/internal/models"
)

// PrintCleanupTables prints the volumes deleted, the snapshots reaped and any
// failed steps of an enforcer run.
func PrintCleanupTables(w io.Writer, deleted []models.DeletedVolume, expired []models.ExpiredSnapshot, failures []models.CleanupFailure) {
	if len(deleted) == 0 && len(expired) == 0 && len(failures) == 0 {
		fmt.Fprintln(w, "No cleanup needed.")
		return
	}

	if len(deleted) > 0 {
		fmt.Fprintln(w, "## Deleted Volumes")
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "VOLUME ID\tSTATE\tUNATTACHED SINCE\tSNAPSHOT ID\tSNAPSHOT EXPIRATION\tMONTHLY SAVINGS")
		var total float64
		for _, d := range deleted {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				d.VolumeID, d.State, d.UnattachedSince, d.SnapshotID, d.SnapshotExpiration,
				formatDollars(d.EstimatedMonthlySavings))
			total += d.EstimatedMonthlySavings
		}
		fmt.Fprintf(tw, "Total:\t\t\t\t\t%s\n", formatDollars(total))
		tw.Flush()
	}

	if len(expired) > 0 {
		fmt.Fprintln(w, "\n## Expired Snapshots")
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "SNAPSHOT ID\tEXPIRATION DATE\tSTATUS")
		for _, s := range expired {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.SnapshotID, s.ExpirationDate, s.Status)
		}
		tw.Flush()
	}

	if len(failures) > 0 {
		fmt.Fprintln(w, "\n## Failures")
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "RESOURCE\tSTEP\tSNAPSHOT ID\tERROR")
		for _, f := range failures {
			snap := f.SnapshotID
			if snap == "" {
				snap = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", f.ResourceID, f.Step, snap, f.Err)
		}
		tw.Flush()
	}
}
