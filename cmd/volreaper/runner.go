package main

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15"
	"github.com/juju/clock"
	"github.com/younsl/volreaper/internal/config"
	"github.com/younsl/volreaper/internal/logging"
	"github.com/younsl/volreaper/internal/version"
	awsclient "github.com/younsl/volreaper/pkg/aws"
	"github.com/younsl/volreaper/pkg/collector"
	"github.com/younsl/volreaper/pkg/enforcer"
	"github.com/younsl/volreaper/pkg/pricing"
)

// runner wires the AWS clients into the collector and the enforcer
type runner struct {
	cfg       *config.Config
	log       log15.Logger
	clock     clock.Clock
	estimator *pricing.Estimator
}

func newRunner(cfg *config.Config, w io.Writer) (*runner, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, w)
	if err != nil {
		return nil, err
	}
	return &runner{cfg: cfg, log: logger, clock: clock.WallClock}, nil
}

// runLogger binds a fresh run id to every record of one pass
func (r *runner) runLogger(mode string) log15.Logger {
	log := r.log.New("run", uuid.NewString(), "mode", mode)
	log.Info("starting pass", append(version.Get().LogContext(), "region", r.cfg.Region, "bucket", r.cfg.Bucket)...)
	return log
}

func (r *runner) collect(ctx context.Context) (*collector.Result, error) {
	log := r.runLogger(modeCollect)

	awsCfg, err := awsclient.LoadConfig(ctx, r.cfg.Region)
	if err != nil {
		return nil, err
	}

	c := collector.New(
		awsclient.NewEBSClient(awsCfg),
		awsclient.NewReportStore(awsCfg, r.cfg.Bucket),
		r.clock, log, r.cfg.UnattachedTagKey,
	)
	if r.cfg.EstimateSavings {
		r.estimator = pricing.NewEstimator(awsCfg)
		c.WithPricer(r.estimator)
	}
	return c.Run(ctx)
}

func (r *runner) enforce(ctx context.Context) (*enforcer.Result, error) {
	log := r.runLogger(modeEnforce)

	awsCfg, err := awsclient.LoadConfig(ctx, r.cfg.Region)
	if err != nil {
		return nil, err
	}

	account, err := awsclient.CallerAccount(ctx, awsclient.NewSTSClient(awsCfg))
	if err != nil {
		log.Warn("could not resolve account id", "error", err)
	}

	var notifier enforcer.Publisher
	if r.cfg.TopicARN != "" {
		notifier = awsclient.NewNotifier(awsCfg, r.cfg.TopicARN)
	}

	e := enforcer.New(
		awsclient.NewEBSClient(awsCfg),
		awsclient.NewReportStore(awsCfg, r.cfg.Bucket),
		notifier, r.clock, log,
		enforcerOptions(r.cfg, account),
	)
	if r.cfg.EstimateSavings {
		r.estimator = pricing.NewEstimator(awsCfg)
		e.WithPricer(r.estimator)
	}
	return e.Run(ctx)
}

func enforcerOptions(cfg *config.Config, account string) enforcer.Options {
	return enforcer.Options{
		Policy: enforcer.Policy{
			RetentionDays:          cfg.RetentionDays,
			UnattachedTagKey:       cfg.UnattachedTagKey,
			DoNotDeleteValue:       cfg.DoNotDeleteValue,
			SnapshotMarker:         cfg.SnapshotMarker,
			ManagedByValue:         cfg.ManagedByValue,
			LegacyDescriptionMatch: cfg.LegacyDescriptionMatch,
		},
		RevalidateBeforeDelete: cfg.RevalidateBeforeDelete,
		DryRun:                 cfg.DryRun,
		AccountID:              account,
	}
}
