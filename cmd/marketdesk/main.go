// marketdesk serves the market dashboard API and offers the same news,
// price and calendar lookups from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/marketdesk/api"
	"github.com/seenimoa/marketdesk/internal/config"
	"github.com/seenimoa/marketdesk/internal/logging"
	"github.com/seenimoa/marketdesk/internal/news"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by the root command's pre-run.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "marketdesk",
	Short:         "marketdesk: market news, prices and economic calendar API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// CLI output goes to stdout, so logs go to stderr.
		logger = logging.New(cfg.Logging, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "marketdesk %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if !config.ActiveKeySet(cfg) {
			logger.Warn("no API key for the configured text generation provider; analysis endpoints will fail",
				slog.String("provider", cfg.LLM.Provider))
		}

		api.Version = version
		srv := api.NewServer(cfg, a.deps(), logger)
		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Print the aggregated news feed as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		symbol, _ := cmd.Flags().GetString("symbol")
		page, _ := cmd.Flags().GetInt("page")
		if page < 0 {
			return fmt.Errorf("page must be non-negative, got %d", page)
		}

		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		items := a.news.Aggregate(cmd.Context(), news.Query{Category: category, Symbol: symbol, Page: page})
		return printJSON(cmd, items)
	},
}

func init() {
	newsCmd.Flags().String("category", news.DefaultCategory, "news category (general, tech, crypto, ...)")
	newsCmd.Flags().String("symbol", "", "single symbol to fetch instead of a category")
	newsCmd.Flags().Int("page", 0, "page number")
}

// --- Prices Command ---

var pricesCmd = &cobra.Command{
	Use:   "prices [SYMBOLS]",
	Short: "Print price snapshots for comma-separated symbols",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.prices.Prices(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	},
}

// --- Calendar Command ---

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print upcoming economic events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return printJSON(cmd, a.calendar.Events(cmd.Context()))
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintln(w, "  marketdesk: System Status")
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintf(w, "  Version:        %s (%s)\n", version, commit)
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Configuration:")
		fmt.Fprintf(w, "    LLM Provider:   %s (model: %s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(w, "    News Source:    %s\n", cfg.News.Source)
		fmt.Fprintf(w, "    Cache Backend:  %s\n", cfg.Cache.Backend)
		fmt.Fprintf(w, "    Calendar File:  %s\n", cfg.Calendar.CacheFile)
		fmt.Fprintf(w, "    API Server:     %s\n", cfg.API.Addr())
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(w, "    %-20s %s\n", k.Name+":", status)
		}
		fmt.Fprintln(w, "═══════════════════════════════════════")
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
