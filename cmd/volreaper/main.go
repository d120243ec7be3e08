package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/younsl/volreaper/internal/config"
	"github.com/younsl/volreaper/internal/version"
	"github.com/younsl/volreaper/pkg/formatter"
)

const (
	modeCollect = "collect"
	modeEnforce = "enforce"
)

var (
	configPath string
	flagRegion string
	flagBucket string
	flagLevel  string
	flagFormat string

	flagTopicARN      string
	flagRetentionDays int
	flagDryRun        bool
	flagNoEstimate    bool

	flagMode string
)

// startSpinner creates and starts a spinner with a message for the given pass
func startSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	s.Start()
	return s
}

// loadConfig layers command line flags over the file and environment settings
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = flagRegion
	}
	if flags.Changed("bucket") {
		cfg.Bucket = flagBucket
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagFormat
	}
	if flags.Lookup("topic-arn") != nil && flags.Changed("topic-arn") {
		cfg.TopicARN = flagTopicARN
	}
	if flags.Lookup("retention-days") != nil && flags.Changed("retention-days") {
		cfg.RetentionDays = flagRetentionDays
	}
	if flags.Lookup("dry-run") != nil && flags.Changed("dry-run") {
		cfg.DryRun = flagDryRun
	}
	if flags.Lookup("no-estimate") != nil && flags.Changed("no-estimate") {
		cfg.EstimateSavings = !flagNoEstimate
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "volreaper",
		Short: "Track unattached EBS volumes and clean them up after a retention window",
		Long: `volreaper tags EBS volumes with the date they were first seen unattached,
writes an inventory report to S3, and in a later pass snapshots and deletes
volumes that stayed unattached past the retention window. Snapshots it created
are removed once they expire.`,
		SilenceUsage: true,
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	persistent.StringVarP(&flagRegion, "region", "r", "", "AWS region")
	persistent.StringVarP(&flagBucket, "bucket", "b", "", "S3 bucket holding reports and deletion logs")
	persistent.StringVar(&flagLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	persistent.StringVar(&flagFormat, "log-format", "json", "Log format (json, logfmt, terminal)")

	rootCmd.AddCommand(newCollectCmd(), newEnforceCmd(), newLambdaCmd(), newVersionCmd())
	return rootCmd
}

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Tag unattached volumes and upload an inventory report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			r, err := newRunner(cfg, os.Stderr)
			if err != nil {
				return err
			}

			start := time.Now()
			s := startSpinner(fmt.Sprintf("Collecting EBS volumes in %s ...", cfg.Region))
			result, runErr := r.collect(cmd.Context())
			s.Stop()

			if result != nil {
				formatter.PrintInventoryTable(os.Stdout, result.Volumes, cfg.UnattachedTagKey)
				formatter.PrintInventorySummary(os.Stdout, result.Volumes)
				if r.estimator != nil {
					formatter.PrintPricingStats(os.Stdout, r.estimator.Stats())
				}
				fmt.Printf("\nReport uploaded to s3://%s/%s\n", cfg.Bucket, result.ReportKey)
				formatter.PrintTimestamp(os.Stdout, start, time.Since(start))
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&flagNoEstimate, "no-estimate", false, "Skip monthly cost estimates")
	return cmd
}

func newEnforceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enforce",
		Short: "Snapshot and delete long-unattached volumes and reap expired snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateForEnforce(); err != nil {
				return err
			}
			r, err := newRunner(cfg, os.Stderr)
			if err != nil {
				return err
			}

			start := time.Now()
			s := startSpinner(fmt.Sprintf("Enforcing retention in %s ...", cfg.Region))
			result, runErr := r.enforce(cmd.Context())
			s.Stop()

			if result != nil {
				if result.DryRun {
					fmt.Println("Dry run: no volumes or snapshots were changed.")
				}
				formatter.PrintCleanupTables(os.Stdout, result.Deleted, result.Expired, result.Failures)
				if !result.DryRun {
					fmt.Printf("\nDeletion log uploaded to s3://%s/%s\n", cfg.Bucket, result.LogKey)
				}
				formatter.PrintTimestamp(os.Stdout, start, time.Since(start))
			}
			return runErr
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&flagTopicARN, "topic-arn", "", "SNS topic for the run summary")
	flags.IntVar(&flagRetentionDays, "retention-days", 15, "Days unattached before deletion and days a snapshot is kept")
	flags.BoolVar(&flagDryRun, "dry-run", false, "Report what would be done without changing anything")
	flags.BoolVar(&flagNoEstimate, "no-estimate", false, "Skip savings estimates")
	return cmd
}

func newLambdaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve one pass as an AWS Lambda handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mode := flagMode
			if !cmd.Flags().Changed("mode") {
				mode = getEnv("VOLREAPER_MODE", mode)
			}
			if mode != modeCollect && mode != modeEnforce {
				return fmt.Errorf("invalid mode %q: must be %s or %s", mode, modeCollect, modeEnforce)
			}
			return startLambda(cfg, mode)
		},
	}
	cmd.Flags().StringVar(&flagMode, "mode", modeCollect, "Pass to run on each invocation (collect or enforce)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Get().String())
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
