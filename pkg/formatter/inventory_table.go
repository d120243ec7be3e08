package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/younsl/volreaper/internal/models"
)

// PrintInventoryTable prints the unattached volumes found by a collector run,
// most expensive first.
func PrintInventoryTable(w io.Writer, volumes []models.VolumeInfo, tagKey string) {
	unattached := lo.Filter(volumes, func(v models.VolumeInfo, _ int) bool {
		return !v.Attached()
	})
	if len(unattached) == 0 {
		fmt.Fprintln(w, "No unattached EBS volumes found.")
		return
	}

	sort.SliceStable(unattached, func(i, j int) bool {
		return unattached[i].EstimatedMonthlyCost > unattached[j].EstimatedMonthlyCost
	})

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVOLUME ID\tTYPE\tSIZE\tSTATE\tUNATTACHED SINCE\tMONTHLY COST\tPRICING")

	var totalSize int
	var totalCost float64
	for _, v := range unattached {
		name := v.Name
		if name == "" {
			name = "N/A"
		}
		cost := "N/A"
		if v.PricingSource != "" && pricingMarker(v.PricingSource) != "N/A" {
			cost = formatDollars(v.EstimatedMonthlyCost)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			FitWidth(name, maxNameWidth),
			v.VolumeID,
			v.VolumeType,
			formatGiB(v.Size),
			v.State,
			v.Tags[tagKey],
			cost,
			pricingMarker(v.PricingSource),
		)
		totalSize += v.Size
		totalCost += v.EstimatedMonthlyCost
	}

	fmt.Fprintf(tw, "Total:\t\t\t%s\t\t\t%s\t\n", formatGiB(totalSize), formatDollars(totalCost))
	tw.Flush()
}

// PrintInventorySummary prints unattached volume counts grouped by type
func PrintInventorySummary(w io.Writer, volumes []models.VolumeInfo) {
	type typeInfo struct {
		count int
		size  int
		cost  float64
	}

	byType := make(map[string]typeInfo)
	for _, v := range volumes {
		if v.Attached() {
			continue
		}
		info := byType[v.VolumeType]
		info.count++
		info.size += v.Size
		info.cost += v.EstimatedMonthlyCost
		byType[v.VolumeType] = info
	}
	if len(byType) == 0 {
		return
	}

	fmt.Fprintln(w, "\n## Unattached EBS Volumes Summary")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "VOLUME TYPE\tCOUNT\tTOTAL SIZE\tMONTHLY COST")

	types := lo.Keys(byType)
	sort.Strings(types)
	for _, t := range types {
		info := byType[t]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t, info.count, formatGiB(info.size), formatDollars(info.cost))
	}
	tw.Flush()
}
