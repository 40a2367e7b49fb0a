package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ultigroup/attendbot/internal/attendance"
	"github.com/ultigroup/attendbot/internal/auth"
	"github.com/ultigroup/attendbot/internal/config"
	"github.com/ultigroup/attendbot/internal/database"
	"github.com/ultigroup/attendbot/internal/events"
	"github.com/ultigroup/attendbot/internal/export"
	"github.com/ultigroup/attendbot/internal/logging"
	"github.com/ultigroup/attendbot/internal/platform"
	"github.com/ultigroup/attendbot/internal/roster"
	"github.com/ultigroup/attendbot/internal/server"
	"github.com/ultigroup/attendbot/internal/settings"
	"github.com/ultigroup/attendbot/internal/status"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "attendbot",
		Short: "Team attendance bot backend",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("settings-path", defaults.GetString("settings.path"), "Settings file path")
	cmd.PersistentFlags().String("platform-base-url", defaults.GetString("platform.base_url"), "Chat platform API base URL")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "settings.path", "settings-path")
	bindFlag(cmd, "platform.base_url", "platform-base-url")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	// Tokens and secrets typically live in a local .env during development.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	settingsStore, err := settings.NewStore(appConfig.SettingsPath, logger)
	if err != nil {
		return err
	}

	verifier, err := auth.NewCallbackVerifier(auth.CallbackVerifierConfig{
		SigningSecret: []byte(appConfig.CallbackSecret),
		Issuer:        appConfig.CallbackIssuer,
		Audience:      appConfig.CallbackAud,
	})
	if err != nil {
		return err
	}

	client, err := platform.NewHTTPClient(platform.HTTPClientConfig{
		BaseURL:  appConfig.PlatformBaseURL,
		BotToken: appConfig.PlatformToken,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	eventService, err := events.NewService(events.ServiceConfig{
		Database: db,
		Clock:    time.Now,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	rosterService, err := roster.NewService(roster.ServiceConfig{
		Database: db,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	attendanceService, err := attendance.NewService(attendance.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		Vocabulary: func() status.Vocabulary { return settingsStore.Current().Labels },
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	exporter, err := export.NewService(export.ServiceConfig{
		Source:   attendanceService,
		Uploader: client,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Verifier:   verifier,
		Events:     eventService,
		Roster:     rosterService,
		Attendance: attendanceService,
		Settings:   settingsStore,
		Exporter:   exporter,
		Client:     client,
		Logger:     logger,
		Clock:      time.Now,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
