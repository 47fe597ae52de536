// Package cmd defines the weather-lookup command line.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/weather-lookup/internal/app"
	"github.com/JakeFAU/weather-lookup/internal/config"
	"github.com/JakeFAU/weather-lookup/internal/dispatcher"
	"github.com/JakeFAU/weather-lookup/internal/logging"
	"github.com/JakeFAU/weather-lookup/internal/query"
)

const (
	banner      = "\n--> Source of information: The Weather Network, URL: www.theweathernetwork.com\n\n"
	prompt      = "Enter cities in semicolon separated list: "
	emptyQuery  = "Query cannot be empty."
	shutdownTTL = 5 * time.Second
)

// Lookuper is the slice of the application the root command drives.
type Lookuper interface {
	Lookup(ctx context.Context, queries []string) (dispatcher.Summary, error)
	Close(ctx context.Context) error
}

// newApp is the application factory. It's a variable so tests can swap in
// fixtures.
var newApp = func(cfg config.Config, logger *zap.Logger, out io.Writer) (Lookuper, error) {
	a, err := app.New(cfg, logger, app.Options{Out: out})
	if err != nil {
		return nil, err
	}
	return a, nil
}

type rootOptions struct {
	cfgFile string
	query   string
	format  string
	workers int
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "weather-lookup",
		Short: "Look up current weather for one or more cities.",
		Long: `weather-lookup searches The Weather Network for each city in a
semicolon separated list, renders the matching page in headless Chrome and
prints the current conditions. Cities are looked up in parallel.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "cities to look up; prompts on stdin when omitted")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: table or lines")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "worker pool size (0 uses one per CPU)")

	return cmd
}

func run(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	out := cmd.OutOrStdout()
	line := opts.query
	if !cmd.Flags().Changed("query") {
		line, err = readLine(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
	}

	queries, err := query.Parse(line, cfg.Query.Delimiter)
	if errors.Is(err, query.ErrEmptyInput) {
		fmt.Fprintln(out, emptyQuery)
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse queries: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := newApp(cfg, logger, out)
	if err != nil {
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTTL)
		defer cancel()
		if cerr := application.Close(closeCtx); cerr != nil {
			logger.Warn("failed to close application", zap.Error(cerr))
		}
	}()

	summary, err := application.Lookup(ctx, queries)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	logger.Info("lookups finished",
		zap.Int("queries", len(queries)),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = opts.format
	}
	if cmd.Flags().Changed("workers") {
		cfg.Pool.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// readLine prints the banner and prompt, then reads one line from in.
func readLine(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, banner)
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read query: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
