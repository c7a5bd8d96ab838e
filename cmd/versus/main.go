package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/spf13/cobra"

	"github.com/buildwithgrove/versus/compare"
	configpkg "github.com/buildwithgrove/versus/config"
	"github.com/buildwithgrove/versus/metrics"
	"github.com/buildwithgrove/versus/provider"
)

// errMismatch flags a run where the providers disagreed: the run itself
// succeeded, the providers did not. It surfaces as a non-zero exit status
// after all deferred cleanup has run.
var errMismatch = errors.New("mismatched results")

var (
	flagConfigPath     string
	flagMaxCount       int
	flagCallTimeout    string
	flagIdentityMethod string
	flagMetricsAddr    string
	flagLogLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "versus [provider urls...]",
	Short: "Send the same JSON-RPC queries to multiple providers and compare responses",
	Long: `versus reads newline-delimited JSON-RPC requests from stdin, sends an
identical numbered stream to every provider given on the command line, and
reports whether the providers agree.

The first provider that passes the chain-identity pre-check is the baseline
all others are diffed against. Exit status is non-zero if any mismatch was
found.`,
	Args: cobra.ArbitraryArgs,
	RunE: runVersus,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfigPath, "config", "c", "", "path to an optional YAML config file")
	rootCmd.Flags().IntVar(&flagMaxCount, "max-count", 0, "how many rpc calls to test (default 1000)")
	rootCmd.Flags().StringVar(&flagCallTimeout, "request-timeout", "", "per-call timeout, e.g. 30s")
	rootCmd.Flags().StringVar(&flagIdentityMethod, "identity-method", "", "RPC method for the chain-identity pre-check (default eth_chainId)")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (off by default)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "minimum log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Mismatch details were already printed by the report; only real
		// run failures need an error line here.
		if !errors.Is(err, errMismatch) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runVersus(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(config.Providers) == 0 {
		return fmt.Errorf("no providers given: list them as positional arguments or in the config file")
	}

	logger := polyzero.NewLogger(
		polyzero.WithLevel(polyzero.ParseLevel(config.Logger.Level)),
	)

	if config.MetricsAddr != "" {
		metrics.ServeMetrics(logger, config.MetricsAddr)
	}

	ctx := context.Background()

	pool, err := provider.BuildPool(ctx, logger, config.Providers, provider.PoolConfig{
		IdentityMethod: config.GetIdentityMethod(),
	})
	if err != nil {
		return fmt.Errorf("failed to build provider pool: %w", err)
	}
	defer pool.Close()

	runner := &compare.Runner{
		Logger:      logger,
		Pool:        pool,
		MaxCount:    config.MaxCount,
		CallTimeout: config.CallTimeout,
	}

	report, err := runner.Run(ctx, cmd.InOrStdin())
	if err != nil {
		return err
	}

	printReport(report, len(pool.Providers))

	if len(report.Mismatches) > 0 {
		return errMismatch
	}
	return nil
}

// loadConfig merges the optional YAML file with CLI flags; flags win.
// Positional args are appended to any providers listed in the file.
func loadConfig(args []string) (configpkg.VersusConfig, error) {
	config := configpkg.DefaultVersusConfig()

	if flagConfigPath != "" {
		loaded, err := configpkg.LoadVersusConfigFromYAML(flagConfigPath)
		if err != nil {
			return configpkg.VersusConfig{}, err
		}
		config = loaded
	}

	config.Providers = append(config.Providers, args...)

	if flagMaxCount > 0 {
		config.MaxCount = flagMaxCount
	}
	if flagCallTimeout != "" {
		timeout, err := time.ParseDuration(flagCallTimeout)
		if err != nil {
			return configpkg.VersusConfig{}, fmt.Errorf("invalid --request-timeout: %w", err)
		}
		config.CallTimeout = timeout
	}
	if flagIdentityMethod != "" {
		config.IdentityMethod = flagIdentityMethod
	}
	if flagMetricsAddr != "" {
		config.MetricsAddr = flagMetricsAddr
	}
	if flagLogLevel != "" {
		config.Logger.Level = flagLogLevel
	}

	return config, config.Validate()
}

// printReport renders the run summary the way an operator reads it:
// timings first, then the agree/disagree signal, then the details.
func printReport(report *compare.Report, numProviders int) {
	for _, timing := range report.Timings {
		fmt.Printf("%s: %d entries in %d ms\n", timing.Provider, timing.Entries, timing.Elapsed.Milliseconds())
	}

	if numProviders < 2 {
		color.Yellow("single provider: no comparison performed")
		printFrequencyTables(report)
		return
	}

	// The frequency-table signal and the per-id mismatch list are
	// independent and can disagree; show both when either is off.
	if report.FullyConsistent() && len(report.Mismatches) == 0 {
		color.Green("all matched! yey!")
		return
	}

	printFrequencyTables(report)

	for _, mismatch := range report.Mismatches {
		color.Red("mismatch [%s] id=%d provider=%s", mismatch.Kind, mismatch.Seq, mismatch.Provider)
		fmt.Printf("  baseline (%s): %s\n", report.Baseline, mismatch.Baseline)
		fmt.Printf("  compared: %s\n", mismatch.Compared)
	}
}

func printFrequencyTables(report *compare.Report) {
	fmt.Printf("distinct success bodies: %d\n", len(report.SuccessCounts))
	for body, count := range report.SuccessCounts {
		fmt.Printf("  %d x %s\n", count, body)
	}

	fmt.Printf("distinct error messages: %d\n", len(report.ErrorCounts))
	for msg, count := range report.ErrorCounts {
		fmt.Printf("  %d x %s\n", count, msg)
	}
}
