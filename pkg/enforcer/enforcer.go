// Package enforcer implements the retention pass: it reads the latest
// inventory report, snapshots and deletes volumes unattached past the
// retention window, reaps expired managed snapshots and reports the outcome.
package enforcer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/younsl/volreaper/internal/models"
	awsclient "github.com/younsl/volreaper/pkg/aws"
	"github.com/younsl/volreaper/pkg/pricing"
	"github.com/younsl/volreaper/pkg/report"
	"github.com/younsl/volreaper/pkg/utils"
)

// DryRunSnapshotID stands in for a snapshot id when nothing is mutated
const DryRunSnapshotID = "dry-run"

const logContentType = "text/csv"

// VolumeService performs the EC2 volume and snapshot operations
type VolumeService interface {
	GetVolume(ctx context.Context, volumeID string) (*models.VolumeInfo, error)
	CreateSnapshot(ctx context.Context, volumeID, description string, tags map[string]string) (string, error)
	DeleteVolume(ctx context.Context, volumeID string) error
	ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, snapshotID string) error
}

// ObjectStore holds inventory reports and deletion logs
type ObjectStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Publisher sends the run summary
type Publisher interface {
	Publish(ctx context.Context, subject, body string) (string, error)
}

// Pricer estimates what a volume costs per month
type Pricer interface {
	MonthlyCost(ctx context.Context, volumeType string, sizeGB int, region string) (float64, pricing.Source)
}

// Options configures an Enforcer
type Options struct {
	Policy

	RevalidateBeforeDelete bool
	DryRun                 bool

	// AccountID is shown in the notification header when set
	AccountID string
}

// Result summarizes one enforcer run
type Result struct {
	ReportKey string
	LogKey    string
	DryRun    bool

	Deleted  []models.DeletedVolume
	Expired  []models.ExpiredSnapshot
	Failures []models.CleanupFailure
	Skipped  map[Verdict]int

	Subject   string
	Message   string
	MessageID string
}

// EstimatedMonthlySavings sums the estimated cost of the deleted volumes
func (r *Result) EstimatedMonthlySavings() float64 {
	var total float64
	for _, d := range r.Deleted {
		total += d.EstimatedMonthlySavings
	}
	return total
}

// Enforcer runs the retention pass
type Enforcer struct {
	volumes  VolumeService
	store    ObjectStore
	notifier Publisher
	pricer   Pricer
	clock    utils.Clock
	log      log15.Logger
	opts     Options
}

// New creates an Enforcer
func New(volumes VolumeService, store ObjectStore, notifier Publisher, clock utils.Clock, log log15.Logger, opts Options) *Enforcer {
	return &Enforcer{
		volumes:  volumes,
		store:    store,
		notifier: notifier,
		clock:    clock,
		log:      log.New("component", "enforcer", "dry_run", opts.DryRun),
		opts:     opts,
	}
}

// WithPricer enables savings estimates for deleted volumes
func (e *Enforcer) WithPricer(p Pricer) *Enforcer {
	e.pricer = p
	return e
}

// Run executes one retention pass. Selection and parsing of the report are
// fatal and happen before any mutation. Per-resource failures are collected
// and returned joined after the log is uploaded and the summary published.
func (e *Enforcer) Run(ctx context.Context) (*Result, error) {
	now := e.clock.Now().UTC()
	today := utils.Today(now)
	stamp := utils.FormatStamp(now)

	key, rows, err := e.loadLatestReport(ctx)
	if err != nil {
		return nil, err
	}
	e.log.Info("loaded report", "key", key, "rows", len(rows))

	result := &Result{
		ReportKey: key,
		LogKey:    report.DeletionLogKey(now),
		DryRun:    e.opts.DryRun,
		Skipped:   make(map[Verdict]int),
		Subject:   NotificationSubject,
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run interrupted: %w", err)
		}
		e.processVolume(ctx, row, today, stamp, result)
	}
	e.reapSnapshots(ctx, today, result)

	errs := make([]error, 0, len(result.Failures))
	for _, f := range result.Failures {
		errs = append(errs, f)
	}

	var buf bytes.Buffer
	if err := report.WriteDeletionLog(&buf, result.Deleted, result.Expired); err != nil {
		return result, errors.Join(append(errs, fmt.Errorf("failed to render deletion log: %w", err))...)
	}
	result.Message = BuildMessage(stamp, e.opts.AccountID, e.opts.DryRun, result.Deleted, result.Expired, result.Failures)

	if e.opts.DryRun {
		e.log.Info("dry run complete", "deleted", len(result.Deleted), "expired", len(result.Expired))
		return result, errors.Join(errs...)
	}

	if err := e.store.Put(ctx, result.LogKey, buf.Bytes(), logContentType); err != nil {
		e.log.Error("failed to upload deletion log", "key", result.LogKey, "error", err)
		errs = append(errs, fmt.Errorf("failed to upload deletion log %s: %w", result.LogKey, err))
	}

	if e.notifier != nil {
		id, err := e.notifier.Publish(ctx, result.Subject, result.Message)
		if err != nil {
			e.log.Error("failed to publish summary", "error", err)
			errs = append(errs, fmt.Errorf("failed to publish summary: %w", err))
		}
		result.MessageID = id
	}

	e.log.Info("run complete", "log", result.LogKey, "deleted", len(result.Deleted),
		"expired", len(result.Expired), "failures", len(result.Failures))
	return result, errors.Join(errs...)
}

// loadLatestReport selects and fully parses the newest inventory report
func (e *Enforcer) loadLatestReport(ctx context.Context) (string, []models.ReportRow, error) {
	keys, err := e.store.ListKeys(ctx, report.InventoryPrefix)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list reports: %w", err)
	}
	key, err := report.LatestKey(keys, report.InventoryPrefix)
	if err != nil {
		return "", nil, err
	}

	body, err := e.store.Get(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read report %s: %w", key, err)
	}
	rows, err := report.ReadInventory(bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("report %s: %w", key, err)
	}
	return key, rows, nil
}

// processVolume applies the deletion policy to one report row. The snapshot
// is always created before the volume is deleted.
func (e *Enforcer) processVolume(ctx context.Context, row models.ReportRow, today time.Time, stamp string, result *Result) {
	log := e.log.New("volume", row.VolumeID)

	verdict := e.opts.Evaluate(row.State, row.UnattachedSince, row.Tags, today)
	if verdict != VerdictDelete {
		log.Debug("skipping volume", "reason", verdict)
		result.Skipped[verdict]++
		return
	}

	volume := models.VolumeInfo{VolumeID: row.VolumeID, State: row.State}
	if e.opts.RevalidateBeforeDelete {
		live, err := e.volumes.GetVolume(ctx, row.VolumeID)
		if errors.Is(err, awsclient.ErrVolumeNotFound) {
			log.Info("volume already gone")
			result.Skipped[VerdictGone]++
			return
		}
		if err != nil {
			e.fail(result, models.CleanupFailure{ResourceID: row.VolumeID, Step: "describe", Err: err})
			return
		}
		verdict = e.opts.Evaluate(live.State, live.Tags[e.opts.UnattachedTagKey], live.Tags, today)
		if verdict != VerdictDelete {
			log.Warn("volume changed since report", "reason", verdict, "state", live.State)
			result.Skipped[verdict]++
			return
		}
		volume = *live
	}

	expiresOn := utils.FormatDate(e.opts.SnapshotExpiration(today))
	deleted := models.DeletedVolume{
		VolumeID:           row.VolumeID,
		State:              row.State,
		UnattachedSince:    row.UnattachedSince,
		SnapshotExpiration: expiresOn,
	}
	if e.pricer != nil && volume.VolumeType != "" {
		deleted.EstimatedMonthlySavings, _ = e.pricer.MonthlyCost(ctx, volume.VolumeType, volume.Size, volume.Region)
	}

	if e.opts.DryRun {
		deleted.SnapshotID = DryRunSnapshotID
		result.Deleted = append(result.Deleted, deleted)
		log.Info("would snapshot and delete volume", "unattached_since", row.UnattachedSince)
		return
	}

	snapshotID, err := e.volumes.CreateSnapshot(ctx, row.VolumeID,
		e.opts.SnapshotDescription(row.VolumeID, stamp), e.opts.SnapshotTags(row.VolumeID, expiresOn))
	if err != nil {
		e.fail(result, models.CleanupFailure{ResourceID: row.VolumeID, Step: "snapshot", Err: err})
		return
	}
	log.Info("created snapshot", "snapshot", snapshotID, "expires_on", expiresOn)

	if err := e.volumes.DeleteVolume(ctx, row.VolumeID); err != nil {
		e.fail(result, models.CleanupFailure{ResourceID: row.VolumeID, Step: "delete", SnapshotID: snapshotID, Err: err})
		return
	}

	deleted.SnapshotID = snapshotID
	result.Deleted = append(result.Deleted, deleted)
	log.Info("deleted volume", "snapshot", snapshotID, "unattached_since", row.UnattachedSince)
}

func (e *Enforcer) fail(result *Result, f models.CleanupFailure) {
	e.log.Error("cleanup step failed", "resource", f.ResourceID, "step", f.Step, "snapshot", f.SnapshotID, "error", f.Err)
	result.Failures = append(result.Failures, f)
}
