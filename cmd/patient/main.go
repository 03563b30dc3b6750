package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/terraincognita07/vocalis/internal/cli"
	"github.com/terraincognita07/vocalis/internal/config"
	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/patient"
	"github.com/terraincognita07/vocalis/internal/peer"
	"github.com/terraincognita07/vocalis/internal/server"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

const cookiePrefix = "vocalis_patient"

func main() {
	rootCmd := &cobra.Command{
		Use:   "patient",
		Short: "Vocalis patient portal",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(resetPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the patient HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func resetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace a patient's password with a temporary one",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			return runResetPassword(username)
		},
	}
	cmd.Flags().String("username", "", "patient username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func cookies(cfg *config.Config) web.Cookies {
	return web.Cookies{Prefix: cookiePrefix, Secure: cfg.CookieSecure}
}

func runServer() error {
	cfg, err := config.Load(config.ServicePatient)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := server.NewLogger(os.Stdout, cfg.LogLevel).With().Str("service", "patient").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DatabaseDSN, db.SchemaPatient)
	if err != nil {
		logger.Error().Err(err).Msg("database init failed")
		return err
	}
	defer db.Close(database)

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("report storage init failed")
		return err
	}
	publisher := server.NewPublisher(cfg)
	defer publisher.Close()

	handler, err := patient.Build(patient.Options{
		Database:   database,
		Store:      store,
		Clinicians: peer.NewClinicianClient(cfg.PeerURL, cfg.PeerTimeout),
		Publisher:  publisher,
		Cookies:    cookies(cfg),
		Secret:     []byte(cfg.SecretKey),
		SessionTTL: cfg.SessionTTL,
	})
	if err != nil {
		logger.Error().Err(err).Msg("handler init failed")
		return err
	}

	app := server.NewApp(patient.AppName, logger, cookies(cfg), patient.IsPeerPath)
	patient.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	server.StartJanitor(ctx, database, logger)

	logger.Info().
		Str("storage", cfg.StorageBackend).
		Str("peer_url", cfg.PeerURL).
		Bool("events", cfg.EventsEnabled()).
		Msg("patient portal starting")
	return server.Run(ctx, app, cfg.Port, logger)
}

func runResetPassword(username string) error {
	cfg, err := config.Load(config.ServicePatient)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	database, err := db.Open(cfg.DatabaseDSN, db.SchemaPatient)
	if err != nil {
		return err
	}
	defer db.Close(database)

	return cli.RunResetPasswordCommand(
		os.Stdout,
		services.NewPatientAccountService(db.NewPatientRepository(database)),
		db.NewSessionRepository(database),
		username,
	)
}
