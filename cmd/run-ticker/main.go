package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/run-ticker/internal/alert"
	"github.com/ensigniasec/run-ticker/internal/market"
	"github.com/ensigniasec/run-ticker/internal/report"
	"github.com/ensigniasec/run-ticker/internal/settings"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	threshold   float64
	interval    int
	aiEnabled   bool
	verbose     bool
	jsonOutput  bool
	indicesFile string
	quotesURL   string

	// Validated in PersistentPreRunE.
	initial settings.Values
	catalog market.Catalog

	rootCmd = &cobra.Command{
		Use:   "run-ticker",
		Short: "A terminal tracker for major global stock market indices.",
		Long: `Shows the latest value and daily change of major global indices, refreshed on a timer, ` +
			`and prints an alert for every index whose move reaches the alert threshold. ` +
			`Press 'm' while the market view is shown to change the threshold, the refresh interval ` +
			`or AI insights without restarting.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: prepare,
		RunE:              runTracker,
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr; stdout belongs to the market view and --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	rootCmd.PersistentFlags().
		Float64Var(&threshold, "threshold", settings.DefaultThreshold, "Alert when an index moves by at least this percentage")
	rootCmd.PersistentFlags().
		IntVar(&interval, "interval", settings.DefaultInterval, "Refresh interval in minutes")
	rootCmd.PersistentFlags().BoolVar(&aiEnabled, "ai", false, "Show AI-powered predictions, trends and news sentiment")
	rootCmd.PersistentFlags().
		StringVar(&indicesFile, "indices", "", "Optional: YAML file with the indices to track [Defaults to the built-in catalog]")
	rootCmd.PersistentFlags().
		StringVar(&quotesURL, "quotes-url", "", "Optional: base URL of the quote service")

	indicesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the catalog in JSON format")
	snapshotCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output quotes and alerts in JSON format")

	rootCmd.AddCommand(indicesCmd)
	rootCmd.AddCommand(snapshotCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// prepare sets the log level and validates flags shared by every command.
func prepare(_ *cobra.Command, _ []string) error {
	logrus.SetLevel(logrus.WarnLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	initial = settings.Values{Threshold: threshold, Interval: interval, AIEnabled: aiEnabled}
	if err := initial.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	c, err := market.LoadCatalog(indicesFile)
	if err != nil {
		return err
	}
	catalog = c
	return nil
}

func newClient() (*market.Client, error) {
	return market.NewClient(market.WithBaseURL(quotesURL))
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "List the tracked indices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(catalog.Indices)
		}
		report.Catalog(cmd.OutOrStdout(), catalog)
		return nil
	},
}

// snapshotOutput is the --json shape of the snapshot command.
type snapshotOutput struct {
	Threshold float64        `json:"threshold"`
	Quotes    []market.Quote `json:"quotes"`
	Alerts    []alert.Alert  `json:"alerts"`
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch every index once, print the table and alerts, then exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		quotes := market.FetchAll(cmd.Context(), client, catalog)
		alerts := alert.Check(quotes, initial.Threshold)

		out := cmd.OutOrStdout()
		if jsonOutput {
			res := snapshotOutput{Threshold: initial.Threshold, Quotes: quotes, Alerts: alerts}
			if res.Quotes == nil {
				res.Quotes = []market.Quote{}
			}
			if res.Alerts == nil {
				res.Alerts = []alert.Alert{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		report.Indices(out, quotes)
		if len(alerts) > 0 {
			fmt.Fprintln(out)
			return alert.Print(out, alerts)
		}
		return nil
	},
}

func main() {
	Execute()
}
