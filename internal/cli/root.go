// Package cli provides the command-line interface for the trading application.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"robinhood-trader/internal/broker"
	"robinhood-trader/internal/config"
	"robinhood-trader/internal/store"
	"robinhood-trader/internal/strategy"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	MarketData broker.MarketData
	Gateway    broker.Gateway
	Store      store.DataStore
	Registry   *strategy.Registry
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: strategy.NewRegistry(),
	}

	// Paper broker serves both market data and order execution. Live mode
	// would swap in a real gateway here.
	paper := broker.NewPaperBroker(broker.PaperBrokerConfig{
		InitialBalance: cfg.Risk.StartingEquity,
	})
	app.MarketData = paper
	app.Gateway = paper

	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, trade history will be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "trader",
		Short: "Robinhood Trader - rule-based trading decision engine",
		Long: `Robinhood Trader is an automated trading decision engine.

It evaluates configurable technical strategies over daily price history,
aggregates their signals, applies portfolio risk controls, and executes the
approved trades through a paper or live gateway.

Use 'trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/robinhood-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newRiskCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Robinhood Trader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Trading Configuration")
	output.Printf("  Mode:            %s\n", cfg.Trading.Mode)
	output.Printf("  Symbols:         %v\n", cfg.Trading.Symbols)
	output.Printf("  Min Confidence:  %.2f\n", cfg.Trading.MinConfidence)
	output.Printf("  Lookback Days:   %d\n", cfg.Trading.LookbackDays)
	output.Printf("  Cycle Interval:  %s\n", cfg.Trading.CycleInterval)
	output.Println()

	output.Bold("Risk Configuration")
	output.Printf("  Max Positions:    %d\n", cfg.Risk.MaxPositions)
	output.Printf("  Risk %% Per Trade: %.1f%%\n", cfg.Risk.RiskPctPerTrade)
	output.Printf("  Max Daily Loss:   %.1f%%\n", cfg.Risk.MaxDailyLossPct)
	output.Printf("  Starting Equity:  %.2f\n", cfg.Risk.StartingEquity)
	output.Println()

	output.Bold("Strategies")
	output.Printf("  Active:          %v\n", cfg.Strategies.Active)
	output.Printf("  SMA Windows:     %d/%d\n", cfg.Strategies.SMA.ShortWindow, cfg.Strategies.SMA.LongWindow)
	output.Printf("  RSI Period:      %d (oversold %.0f, overbought %.0f)\n",
		cfg.Strategies.RSI.Period, cfg.Strategies.RSI.Oversold, cfg.Strategies.RSI.Overbought)

	return nil
}
