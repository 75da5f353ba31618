package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/morphingprojections/projection-job/internal/app"
	"github.com/morphingprojections/projection-job/internal/config"
	"github.com/morphingprojections/projection-job/internal/logger"
	"github.com/morphingprojections/projection-job/internal/service"
	"github.com/spf13/cobra"
)

const serviceName = "projection-job"

var version = "dev"

type options struct {
	caseID      string
	spaces      []string
	configPath  string
	verbose     int
	veryVerbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "projection",
		Short: "Compute the primal and dual projections of a case",
		Long: `Compute 2-D projections of a case data matrix (primal space) and of its
transpose (dual space), attach annotation metadata and publish the result
next to the case data matrix.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	opts.bindFlags(cmd)

	return cmd
}

func (o *options) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.caseID, "case-id", "", "Case identifier (required)")
	cmd.Flags().StringSliceVar(&o.spaces, "spaces", nil, "Comma separated spaces to project: primal, dual")
	cmd.Flags().StringVar(&o.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file")
	cmd.Flags().CountVarP(&o.verbose, "verbose", "v", "Increase log level: -v info, -vv debug")
	cmd.Flags().BoolVar(&o.veryVerbose, "very-verbose", false, "Set log level to debug")
	_ = cmd.MarkFlagRequired("case-id")
}

// logLevel maps the verbosity flags to a log level; empty keeps the configured one.
func (o *options) logLevel() string {
	switch {
	case o.veryVerbose || o.verbose >= 2:
		return "debug"
	case o.verbose == 1:
		return "info"
	}
	return ""
}

func run(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		return err
	}
	if level := opts.logLevel(); level != "" {
		cfg.Log.Level = level
	}

	appLogger := app.NewLogger(&cfg.Log, serviceName)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()
	ctx = appLogger.WithContext(ctx)

	spaces, err := service.ParseSpaces(opts.spaces)
	if err != nil {
		logger.CtxError(ctx, "Invalid --spaces: %v", err)
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.CtxError(ctx, "Failed to initialize: %v", err)
		return err
	}
	defer a.Close()

	results, err := a.Pipeline.Run(ctx, opts.caseID, spaces)
	if err != nil {
		logger.CtxError(ctx, "Projection job failed: %v", err)
		return err
	}

	for _, r := range results {
		status := "published " + r.Key
		if r.Skipped {
			status = "skipped"
		}
		fmt.Fprintf(os.Stdout, "%s\t%s\trows=%d\tcolumns=%d\n", r.Space, status, r.Rows, r.Columns)
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "no spaces requested: "+strings.Join(opts.spaces, ","))
	}
	return nil
}
