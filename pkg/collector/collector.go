// Package collector implements the inventory pass: it keeps the unattached
// marker tag in step with each volume's attachment state and uploads one
// timestamped CSV report per run.
package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/inconshreveable/log15"
	"github.com/younsl/volreaper/internal/models"
	"github.com/younsl/volreaper/pkg/pricing"
	"github.com/younsl/volreaper/pkg/report"
	"github.com/younsl/volreaper/pkg/utils"
)

const reportContentType = "text/csv"

// VolumeService lists volumes and maintains their tags
type VolumeService interface {
	ListVolumes(ctx context.Context) ([]models.VolumeInfo, error)
	SetTag(ctx context.Context, volumeID, key, value string) error
	RemoveTag(ctx context.Context, volumeID, key string) error
}

// ObjectStore receives the finished report
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Pricer estimates what a volume costs per month
type Pricer interface {
	MonthlyCost(ctx context.Context, volumeType string, sizeGB int, region string) (float64, pricing.Source)
}

// Result summarizes one collector run
type Result struct {
	ReportKey string
	Volumes   []models.VolumeInfo
	Rows      []models.ReportRow
	Tagged    int
	Untagged  int
	Failed    int
}

// Unattached returns the volumes observed unattached in this run
func (r *Result) Unattached() []models.VolumeInfo {
	var out []models.VolumeInfo
	for _, v := range r.Volumes {
		if !v.Attached() {
			out = append(out, v)
		}
	}
	return out
}

// Collector runs the inventory pass
type Collector struct {
	volumes VolumeService
	store   ObjectStore
	pricer  Pricer
	clock   utils.Clock
	log     log15.Logger
	tagKey  string
}

// New creates a Collector. tagKey names the unattached marker tag.
func New(volumes VolumeService, store ObjectStore, clock utils.Clock, log log15.Logger, tagKey string) *Collector {
	return &Collector{
		volumes: volumes,
		store:   store,
		clock:   clock,
		log:     log.New("component", "collector"),
		tagKey:  tagKey,
	}
}

// WithPricer enables cost estimates for unattached volumes
func (c *Collector) WithPricer(p Pricer) *Collector {
	c.pricer = p
	return c
}

// Run lists every volume, reconciles the marker tag and uploads the report.
// Per-volume tag failures do not stop the run; they are returned joined after
// the report has been uploaded.
func (c *Collector) Run(ctx context.Context) (*Result, error) {
	start := c.clock.Now().UTC()
	today := utils.FormatDate(start)

	volumes, err := c.volumes.ListVolumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	c.log.Info("listed volumes", "count", len(volumes))

	result := &Result{
		ReportKey: report.InventoryKey(start),
		Rows:      make([]models.ReportRow, 0, len(volumes)),
	}

	var errs []error
	for i := range volumes {
		v := &volumes[i]
		if err := c.reconcile(ctx, v, today, result); err != nil {
			errs = append(errs, err)
			result.Failed++
		}

		if c.pricer != nil && !v.Attached() {
			cost, source := c.pricer.MonthlyCost(ctx, v.VolumeType, v.Size, v.Region)
			v.EstimatedMonthlyCost = cost
			v.PricingSource = string(source)
		}

		result.Rows = append(result.Rows, models.ReportRow{
			VolumeID:        v.VolumeID,
			State:           v.State,
			CreateDate:      utils.FormatDate(v.CreationTime),
			UnattachedSince: v.Tags[c.tagKey],
			Tags:            v.Tags,
		})
	}
	result.Volumes = volumes

	var buf bytes.Buffer
	if err := report.WriteInventory(&buf, result.Rows); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	if err := c.store.Put(ctx, result.ReportKey, buf.Bytes(), reportContentType); err != nil {
		return nil, fmt.Errorf("failed to upload report %s: %w", result.ReportKey, err)
	}

	c.log.Info("uploaded report", "key", result.ReportKey, "rows", len(result.Rows),
		"tagged", result.Tagged, "untagged", result.Untagged, "failed", result.Failed)

	return result, errors.Join(errs...)
}

// reconcile adds or removes the marker on v and updates v.Tags to match what
// is now stored on the volume.
func (c *Collector) reconcile(ctx context.Context, v *models.VolumeInfo, today string, result *Result) error {
	tags := utils.CopyTags(v.Tags)
	v.Tags = tags
	marker, marked := tags[c.tagKey]

	if v.Attached() {
		if !marked {
			return nil
		}
		if err := c.volumes.RemoveTag(ctx, v.VolumeID, c.tagKey); err != nil {
			c.log.Error("failed to remove marker", "volume", v.VolumeID, "error", err)
			return fmt.Errorf("volume %s: %w", v.VolumeID, err)
		}
		delete(tags, c.tagKey)
		result.Untagged++
		c.log.Info("volume reattached", "volume", v.VolumeID, "was_unattached_since", marker)
		return nil
	}

	if marked {
		if _, err := utils.ParseDate(marker); err == nil {
			return nil
		}
		// An unparseable marker would make the report unreadable
		c.log.Warn("replacing invalid marker", "volume", v.VolumeID, "value", marker)
	}

	if err := c.volumes.SetTag(ctx, v.VolumeID, c.tagKey, today); err != nil {
		c.log.Error("failed to tag volume", "volume", v.VolumeID, "error", err)
		if marked {
			// Keep the report parseable even though the bad tag survives
			delete(tags, c.tagKey)
		}
		return fmt.Errorf("volume %s: %w", v.VolumeID, err)
	}
	tags[c.tagKey] = today
	result.Tagged++
	c.log.Info("volume unattached", "volume", v.VolumeID, "since", today)
	return nil
}
