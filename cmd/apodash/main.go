package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfurudate/apodash/internal/analytics"
	"github.com/mfurudate/apodash/internal/config"
	"github.com/mfurudate/apodash/internal/server"
	"github.com/mfurudate/apodash/internal/store"
	"github.com/mfurudate/apodash/internal/store/pgstore"
	"github.com/mfurudate/apodash/internal/store/sqlitestore"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "apodash",
	Short:   "Appointment-rate campaign dashboard",
	Long:    "apodash aggregates call results into appointment rates and measures the before/after effect of campaign revisions.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(clientCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("apodash", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/apodash/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the store driver and server port.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Driver != "sqlite" {
			return fmt.Errorf("status is only supported for the sqlite driver (configured: %s)", cfg.Store.Driver)
		}
		db, err := sqlitestore.Open(cfg.DBPath())
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Call results:")
		fmt.Printf("  Rows: %d\n", stats.CallResults)
		fmt.Printf("  Clients: %d\n", stats.Clients)
		fmt.Println("\nCampaign revisions:")
		fmt.Printf("  Rows: %d\n", stats.Revisions)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(st, cfg.WebhookURL(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- seed command ---

var (
	seedCallsPath     string
	seedRevisionsPath string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load call results and revisions from CSV into the local sqlite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Driver != "sqlite" {
			return fmt.Errorf("seed is only supported for the sqlite driver (configured: %s)", cfg.Store.Driver)
		}
		if seedCallsPath == "" && seedRevisionsPath == "" {
			return fmt.Errorf("nothing to do: pass --calls and/or --revisions")
		}

		db, err := sqlitestore.Open(cfg.DBPath())
		if err != nil {
			return err
		}
		defer db.Close()

		if seedCallsPath != "" {
			n, skipped, err := seedCallResults(db, seedCallsPath)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d call-result rows (%d skipped) from %s\n", n, skipped, seedCallsPath)
		}
		if seedRevisionsPath != "" {
			n, skipped, err := seedRevisions(db, seedRevisionsPath)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d revisions (%d skipped) from %s\n", n, skipped, seedRevisionsPath)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedCallsPath, "calls", "", "CSV of call results")
	seedCmd.Flags().StringVar(&seedRevisionsPath, "revisions", "", "CSV of campaign revisions")
}

// --- summary command ---

var summaryMonth string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the monthly revision summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := analytics.ParseMonth(summaryMonth)
		if err != nil {
			return err
		}

		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		rows, err := analytics.NewSummaryBuilder(st).Build(context.Background(), month)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Printf("No revisions in %s.\n", summaryMonth)
			return nil
		}

		fmt.Printf("Revisions in %s:\n\n", summaryMonth)
		for _, row := range rows {
			fmt.Printf("  %s  %s  %s\n", row.ExecutionDate, row.ClientName, row.MeasureName)
			if row.TalkImprovementDiff != nil {
				fmt.Printf("    トーク改善: %s%% -> %s%% (diff %s)\n",
					deref(row.TalkImprovementPreRate), deref(row.TalkImprovementPostRate), *row.TalkImprovementDiff)
			}
			if row.DataDeletionDiff != nil {
				fmt.Printf("    不要データ削除: %s%% -> %s%% (diff %s)\n",
					deref(row.DataDeletionPreRate), deref(row.DataDeletionPostRate), *row.DataDeletionDiff)
			}
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryMonth, "month", "m", "", "Month to summarize (YYYY-MM)")
	summaryCmd.MarkFlagRequired("month")
}

// --- client command ---

var (
	clientName  string
	clientMonth string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Print one client's monthly detail",
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := analytics.ParseMonth(clientMonth)
		if err != nil {
			return err
		}

		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		details, err := analytics.NewDetailBuilder(st).Build(context.Background(), clientName, month)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n\n", clientName, clientMonth)
		fmt.Printf("Total calls: %d\n", details.TotalCalls)
		fmt.Printf("Total appointments: %d\n", details.TotalAppointments)
		fmt.Printf("Appointment rate: %s%%\n", details.AppointmentRate)

		if len(details.ScriptAggregates) > 0 {
			fmt.Println("\nBy script:")
			for name, agg := range details.ScriptAggregates {
				fmt.Printf("  %s: %d calls, %d appointments (%s%%)\n",
					name, agg.TotalCalls, agg.TotalAppointments, agg.AppointmentRate)
			}
		}
		if len(details.ListAggregates) > 0 {
			fmt.Println("\nBy list:")
			for name, agg := range details.ListAggregates {
				fmt.Printf("  %s: %d calls, %d appointments (%s%%)\n",
					name, agg.TotalCalls, agg.TotalAppointments, agg.AppointmentRate)
			}
		}
		if len(details.Revisions) > 0 {
			fmt.Println("\nRevisions:")
			for _, rev := range details.Revisions {
				fmt.Printf("  %s  %s\n", rev.ExecutionDate, rev.MeasureName)
			}
		}
		return nil
	},
}

func init() {
	clientCmd.Flags().StringVar(&clientName, "client", "", "Client name")
	clientCmd.Flags().StringVarP(&clientMonth, "month", "m", "", "Month (YYYY-MM)")
	clientCmd.MarkFlagRequired("client")
	clientCmd.MarkFlagRequired("month")
}

func openStore() (store.Store, func() error, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		db, err := sqlitestore.Open(cfg.DBPath())
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case "postgres":
		dsn := cfg.DSN()
		if dsn == "" {
			return nil, nil, fmt.Errorf("postgres DSN missing: set %s", cfg.Store.DSNEnv)
		}
		db, err := pgstore.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
