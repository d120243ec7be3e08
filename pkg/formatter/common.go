package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/younsl/volreaper/pkg/pricing"
)

// maxNameWidth is the display width of the NAME column
const maxNameWidth = 20

// PrintTimestamp prints when a run finished and how long it took
func PrintTimestamp(w io.Writer, start time.Time, duration time.Duration) {
	fmt.Fprintf(w, "Completed at %s (took %.2fs)\n",
		start.UTC().Format("2006-01-02 15:04:05 MST"), duration.Seconds())
}

// pricingMarker abbreviates where a cost estimate came from
func pricingMarker(source string) string {
	switch pricing.Source(source) {
	case pricing.SourceAPI:
		return "API"
	case pricing.SourceCache:
		return "CACHE"
	case pricing.SourceNA:
		return "N/A"
	default:
		return "-"
	}
}

func formatDollars(amount float64) string {
	return "$" + humanize.FormatFloat("#,###.##", amount)
}

func formatGiB(sizeGB int) string {
	return humanize.IBytes(uint64(sizeGB) << 30)
}
