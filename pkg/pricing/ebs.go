package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// The AWS Pricing API is only available in us-east-1 and ap-south-1
const (
	pricingRegion = "us-east-1"
	apiTimeout    = 5 * time.Second
)

// PricingAPI is the subset of the Pricing client used for EBS lookups
type PricingAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// Estimator looks up EBS storage prices with a per-process cache.
// With a nil client it only uses DefaultEBSPrices.
type Estimator struct {
	client PricingAPI

	mu    sync.RWMutex
	cache map[string]float64
	stats map[string]map[string]int // region -> {success, failure, cache}
}

// NewEstimator creates an Estimator using the Pricing API endpoint region
func NewEstimator(cfg aws.Config) *Estimator {
	pcfg := cfg.Copy()
	pcfg.Region = pricingRegion
	return NewEstimatorFromAPI(pricing.NewFromConfig(pcfg))
}

// NewEstimatorFromAPI wraps an existing Pricing API implementation; api may be nil
func NewEstimatorFromAPI(api PricingAPI) *Estimator {
	return &Estimator{
		client: api,
		cache:  make(map[string]float64),
		stats:  make(map[string]map[string]int),
	}
}

// MonthlyCost returns the estimated monthly cost of a volume and where the price came from
func (e *Estimator) MonthlyCost(ctx context.Context, volumeType string, sizeGB int, region string) (float64, Source) {
	price, source := e.PricePerGBMonth(ctx, volumeType, region)
	if source == SourceNA {
		return 0, SourceNA
	}
	return float64(sizeGB) * price, source
}

// PricePerGBMonth returns the price per GB-month for a volume type in region
func (e *Estimator) PricePerGBMonth(ctx context.Context, volumeType, region string) (float64, Source) {
	cacheKey := fmt.Sprintf("ebs:%s:%s", volumeType, region)

	e.mu.RLock()
	price, found := e.cache[cacheKey]
	e.mu.RUnlock()
	if found {
		e.record(region, "cache")
		return price, SourceCache
	}

	if e.client != nil {
		price, err := e.priceFromAPI(ctx, volumeType, region)
		if err == nil {
			e.record(region, "success")
			e.mu.Lock()
			e.cache[cacheKey] = price
			e.mu.Unlock()
			return price, SourceAPI
		}
	}
	e.record(region, "failure")

	if price, ok := defaultPrice(volumeType, region); ok {
		return price, SourceDefault
	}
	return 0, SourceNA
}

// Stats returns a copy of the lookup statistics by region
func (e *Estimator) Stats() map[string]map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	statsCopy := make(map[string]map[string]int, len(e.stats))
	for region, counts := range e.stats {
		statsCopy[region] = make(map[string]int, len(counts))
		for key, value := range counts {
			statsCopy[region][key] = value
		}
	}
	return statsCopy
}

func (e *Estimator) record(region, statType string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.stats[region]; !exists {
		e.stats[region] = map[string]int{"success": 0, "failure": 0, "cache": 0}
	}
	e.stats[region][statType]++
}

// defaultPrice falls back to the region's price, then gp2, then us-east-1
func defaultPrice(volumeType, region string) (float64, bool) {
	for _, r := range []string{region, "us-east-1"} {
		regionPrices, found := DefaultEBSPrices[r]
		if !found {
			continue
		}
		if price, found := regionPrices[volumeType]; found {
			return price, true
		}
		if price, found := regionPrices["gp2"]; found {
			return price, true
		}
	}
	return 0, false
}

func (e *Estimator) priceFromAPI(ctx context.Context, volumeType, region string) (float64, error) {
	location, ok := regionLocations[region]
	if !ok {
		return 0, fmt.Errorf("no pricing location for region %s", region)
	}
	family, ok := volumeTypeFamilies[volumeType]
	if !ok {
		return 0, fmt.Errorf("unknown volume type %s", volumeType)
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	filter := func(field, value string) types.Filter {
		return types.Filter{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String(field),
			Value: aws.String(value),
		}
	}

	resp, err := e.client.GetProducts(ctx, &pricing.GetProductsInput{
		ServiceCode: aws.String("AmazonEC2"),
		Filters: []types.Filter{
			filter("volumeType", family),
			filter("location", location),
			filter("productFamily", "Storage"),
		},
		MaxResults: aws.Int32(100),
	})
	if err != nil {
		return 0, fmt.Errorf("error calling AWS Pricing API: %w", err)
	}

	for _, item := range resp.PriceList {
		price, apiName, err := extractEBSPrice(item)
		if err != nil || apiName != volumeType {
			continue
		}
		return price, nil
	}

	return 0, fmt.Errorf("no exact match found for EBS volume type %s in region %s", volumeType, region)
}

type priceListItem struct {
	Product struct {
		Attributes map[string]string `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// extractEBSPrice returns the USD per GB-month price and the volume API name of a price list item
func extractEBSPrice(raw string) (float64, string, error) {
	var item priceListItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return 0, "", fmt.Errorf("error parsing pricing data: %w", err)
	}
	apiName := item.Product.Attributes["volumeApiName"]

	for _, offer := range item.Terms.OnDemand {
		for _, dim := range offer.PriceDimensions {
			if dim.Unit != "GB-Mo" && dim.Unit != "GB-month" {
				return 0, apiName, fmt.Errorf("unexpected pricing unit: %s", dim.Unit)
			}
			price, err := strconv.ParseFloat(dim.PricePerUnit["USD"], 64)
			if err != nil {
				return 0, apiName, fmt.Errorf("error parsing price: %w", err)
			}
			return price, apiName, nil
		}
	}

	return 0, apiName, fmt.Errorf("no price dimension found")
}
