// Package cli provides the command-line interface for the crypto journal.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cryptofolio/internal/coach"
	"cryptofolio/internal/community"
	"cryptofolio/internal/config"
	"cryptofolio/internal/logging"
	"cryptofolio/internal/market"
	"cryptofolio/internal/store"
	"cryptofolio/internal/trading"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// localUserID scopes CLI commands to the journal owner. The HTTP API scopes
// per session instead; the CLI always operates as the local user.
const localUserID = "local"

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Trading *trading.Service
	Market  *market.Client
	Hub     *community.Hub
	Coach   *coach.Coach
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		app.Trading = trading.NewService(dataStore, logger)
		app.Hub = community.NewHub(dataStore, logger)
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	app.Market = market.NewClient(market.Config{
		BaseURL:       cfg.Market.BaseURL,
		APIKey:        cfg.Credentials.CoinGecko.APIKey,
		Timeout:       cfg.Market.Timeout,
		PacingDelay:   cfg.Market.PacingDelay,
		QuoteCurrency: cfg.Market.QuoteCurrency,
	}, logger)

	if cfg.Credentials.OpenAI.APIKey != "" {
		app.Coach = coach.New(cfg.Credentials.OpenAI.APIKey, cfg.Credentials.OpenAI.Model)
		logger.Debug().Str("model", cfg.Credentials.OpenAI.Model).Msg("Coach initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "cryptofolio",
		Short: "Cryptofolio - personal crypto trading journal",
		Long: `Cryptofolio is a personal crypto trading journal.

Record trades with planned exits, close them through one of the plans, and
track portfolio value and return over time. Market data comes from CoinGecko.

Use 'cryptofolio help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/cryptofolio)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newCalcCmd(app))
	rootCmd.AddCommand(newMarketCmd(app))
	rootCmd.AddCommand(newSignalsCmd(app))
	rootCmd.AddCommand(newServeCmd(app))

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
				output.Printf("Cryptofolio v%s\n", Version)
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
			showConfig(output, app.Config)
			return nil
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
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Store")
	output.Printf("  Path:            %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Market Data")
	output.Printf("  Base URL:        %s\n", cfg.Market.BaseURL)
	output.Printf("  Timeout:         %s\n", cfg.Market.Timeout)
	output.Printf("  Pacing Delay:    %s\n", cfg.Market.PacingDelay)
	output.Printf("  Quote Currency:  %s\n", cfg.Market.QuoteCurrency)
	output.Println()

	output.Bold("Server")
	output.Printf("  Port:            %d\n", cfg.Server.Port)
	output.Printf("  Origins:         %v\n", cfg.Server.AllowedOrigins)
	output.Println()

	output.Bold("Auth")
	output.Printf("  Session TTL:     %s\n", cfg.Auth.SessionTTL)
	output.Println()

	output.Bold("Coach")
	configured := "no"
	if cfg.Credentials.OpenAI.APIKey != "" {
		configured = "yes"
	}
	output.Printf("  Configured:      %s\n", configured)
	output.Printf("  Model:           %s\n", cfg.Credentials.OpenAI.Model)
}
