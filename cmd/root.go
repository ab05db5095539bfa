package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/app"
	"github.com/zhubert/messly/internal/clipboard"
	"github.com/zhubert/messly/internal/config"
	"github.com/zhubert/messly/internal/live"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/metrics"
	"github.com/zhubert/messly/internal/session"
	"github.com/zhubert/messly/internal/ui"
)

var (
	debugMode             bool
	quietMode             bool
	serverURL             string
	logFile               string
	metricsAddr           string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "messly",
	Short: "Terminal client for the messly chat service",
	Long: `Messly is a terminal client for a messly chat backend.
Sign in, browse your chats, talk in real time over the live channel,
and, as an administrator, manage users and chats from the admin console.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (overrides config and MESSLY_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs here instead of "+logger.DefaultLogPath)
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
}

func initConfig() {
	// A missing .env is the normal case
	_ = godotenv.Load()

	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
	if logFile != "" {
		if err := logger.Init(logFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("messly %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("messly %s\n", version)
}

// loadConfig reads the config and applies the --server flag on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if serverURL != "" {
		cfg.SetServerURL(serverURL)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		cfg.SetMetricsAddr(metricsAddr)
	}

	defer logger.Close()
	log := logger.WithComponent("cmd")

	client, err := api.New(cfg.GetServerURL())
	if err != nil {
		return err
	}
	store, err := session.DefaultStore()
	if err != nil {
		return fmt.Errorf("error locating session file: %w", err)
	}

	if dir, err := config.ThemesDir(); err == nil {
		n, err := ui.LoadCustomThemes(dir)
		if err != nil {
			log.Warn("some custom themes failed to load", "error", err)
		}
		if n > 0 {
			log.Info("loaded custom themes", "count", n, "dir", dir)
		}
	}

	// Paste still works as text without a clipboard
	if err := clipboard.Init(); err != nil {
		log.Warn("clipboard unavailable", "error", err)
	}

	if addr := cfg.GetMetricsAddr(); addr != "" {
		srv, err := metrics.Start(addr)
		if err != nil {
			return fmt.Errorf("error starting metrics server: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	m := app.New(cfg, app.Deps{
		Backend: client,
		Dialer:  live.NewDialer(client.LiveURL),
		Store:   store,
	}, version)
	defer m.Close()
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
