package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"credvault/internal/api"
	"credvault/internal/crypto"
	"credvault/internal/domain/credential"
	"credvault/internal/domain/health"
	"credvault/internal/domain/session"
	"credvault/internal/mail"
	"credvault/internal/scheduler"
	"credvault/internal/storage/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extension gateway and the report scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		storage, err := postgres.New(cfg)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer storage.Close()

		cipher, err := crypto.New(cfg.Crypto.EncryptionKey)
		if err != nil {
			return fmt.Errorf("cipher: %w", err)
		}

		accountRepo := postgres.NewAccountRepository(storage.Pool(), log)
		credRepo := postgres.NewCredentialRepository(storage.Pool(), log)
		reportRepo := postgres.NewReportRepository(storage.Pool(), log)

		sessions := session.NewService(cfg.Crypto.GatewaySecret, cfg.Crypto.TokenTTL, log)
		credentials := credential.NewService(credRepo, cipher, log)
		analyzer := health.NewAnalyzer(credRepo, reportRepo, cipher, log)

		mailer, err := mail.NewSMTPMailer(cfg.Mail, log)
		if err != nil {
			return fmt.Errorf("mailer: %w", err)
		}

		sched := scheduler.New(accountRepo, reportRepo, analyzer, mailer, cfg.Report.TickInterval, log)
		go sched.Run(ctx)

		srv := &http.Server{
			Addr:    cfg.Server.RunAddress,
			Handler: api.NewRouter(sessions, credentials, log),
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("server shutdown", "error", err)
			}
		}()

		log.Info("gateway listening", "address", cfg.Server.RunAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
