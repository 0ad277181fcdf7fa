package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"theaterwatch/lib/configutil"
	"theaterwatch/lib/telemetry"
	"theaterwatch/lib/timezone"
	"theaterwatch/lib/venues"
	"theaterwatch/services/theaterwatch"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	debug      *bool

	config    theaterwatch.Config
	logCloser io.Closer
	otel      telemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "theaterwatch.json5", "The config file, looked up from the working directory upwards.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level.")
}

var rootCmd = &cobra.Command{
	Use:           "theaterwatch",
	Short:         "theaterwatch tracks London theater listings and reports what changed since the last run.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = loadConfig()
		if err != nil {
			return err
		}
		logCloser, err = telemetry.InitSlog(*debug, config.LogDir, timezone.Now())
		if err != nil {
			return err
		}
		otel, err = telemetry.Setup(cmd.Context(), "theaterwatch", config.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
}

func loadConfig() (theaterwatch.Config, error) {
	cfg, path, err := configutil.ReadRecursively(*configPath, theaterwatch.DefaultConfig())
	switch {
	case errors.Is(err, configutil.ErrNotFound):
		slog.Info("no config file found, using defaults", "name", *configPath)
		cfg = theaterwatch.DefaultConfig()
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		slog.Debug("read config", "path", path)
	}

	err = cfg.ApplyEnv(os.LookupEnv)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

func teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err := otel.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

// openService validates the loaded config and opens the pipeline.
func openService(ctx context.Context, opts theaterwatch.OpenOptions) (theaterwatch.Deps, error) {
	issues := config.Validate(venues.Defaults(), venues.Parsers())
	if len(issues) > 0 {
		for _, issue := range issues {
			slog.Error(issue)
		}
		return theaterwatch.Deps{}, fmt.Errorf("invalid configuration (%d issues)", len(issues))
	}
	return theaterwatch.Open(ctx, config, opts)
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	teardown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
