package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/samber/lo"
)

// PrintPricingStats prints pricing lookups per region as returned by
// pricing.Estimator.Stats
func PrintPricingStats(w io.Writer, stats map[string]map[string]int) {
	if len(stats) == 0 {
		return
	}

	fmt.Fprintln(w, "\n## AWS Pricing API Call Statistics")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tAPI CALLS\tSUCCESS\tFAILURE\tCACHE HITS\tSUCCESS RATE")

	regions := lo.Keys(stats)
	sort.Strings(regions)
	for _, region := range regions {
		counts := stats[region]
		success := counts["success"]
		failure := counts["failure"]
		total := success + failure

		successRate := 0.0
		if total > 0 {
			successRate = float64(success) / float64(total) * 100.0
		}

		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
			region, total, success, failure, counts["cache"], successRate)
	}
	tw.Flush()
}
