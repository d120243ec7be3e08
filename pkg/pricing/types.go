package pricing

// Source represents the source of pricing information
type Source string

const (
	// SourceAPI indicates pricing data came from AWS API
	SourceAPI Source = "API"

	// SourceCache indicates pricing data came from cache
	SourceCache Source = "Cache"

	// SourceDefault indicates pricing data came from hardcoded defaults
	SourceDefault Source = "Default"

	// SourceNA indicates pricing data is not available
	SourceNA Source = "N/A"
)

// Default EBS volume prices in USD per GB-month
// These are fallback prices if Pricing API fails
var DefaultEBSPrices = map[string]map[string]float64{
	"us-east-1": { // US East (N. Virginia)
		"gp2":      0.10,
		"gp3":      0.08,
		"io1":      0.125,
		"io2":      0.125,
		"st1":      0.045,
		"sc1":      0.015,
		"standard": 0.05,
	},
	"eu-west-1": { // EU (Ireland)
		"gp2":      0.11,
		"gp3":      0.088,
		"io1":      0.138,
		"io2":      0.138,
		"st1":      0.05,
		"sc1":      0.0168,
		"standard": 0.055,
	},
	"ap-northeast-2": { // Asia Pacific (Seoul)
		"gp2":      0.114,
		"gp3":      0.0912,
		"io1":      0.142,
		"io2":      0.142,
		"st1":      0.051,
		"sc1":      0.029,
		"standard": 0.057,
	},
}

// regionLocations maps region codes to the location names the Pricing API filters on
var regionLocations = map[string]string{
	"us-east-1":      "US East (N. Virginia)",
	"us-east-2":      "US East (Ohio)",
	"us-west-1":      "US West (N. California)",
	"us-west-2":      "US West (Oregon)",
	"ap-south-1":     "Asia Pacific (Mumbai)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
	"ap-northeast-2": "Asia Pacific (Seoul)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ca-central-1":   "Canada (Central)",
	"eu-central-1":   "EU (Frankfurt)",
	"eu-west-1":      "EU (Ireland)",
	"eu-west-2":      "EU (London)",
	"eu-west-3":      "EU (Paris)",
	"eu-north-1":     "EU (Stockholm)",
	"sa-east-1":      "South America (Sao Paulo)",
}

// volumeTypeFamilies maps EBS volume types to Pricing API volume families
var volumeTypeFamilies = map[string]string{
	"gp2":      "General Purpose",
	"gp3":      "General Purpose",
	"io1":      "Provisioned IOPS",
	"io2":      "Provisioned IOPS",
	"st1":      "Throughput Optimized HDD",
	"sc1":      "Cold HDD",
	"standard": "Magnetic",
}
