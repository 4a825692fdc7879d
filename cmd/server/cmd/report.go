package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"credvault/internal/crypto"
	"credvault/internal/domain/health"
	"credvault/internal/mail"
	"credvault/internal/scheduler"
	"credvault/internal/storage/postgres"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Password health reports",
}

var reportRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single report pass for every account with an email",
	RunE: func(cmd *cobra.Command, _ []string) error {
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
		analyzer := health.NewAnalyzer(credRepo, reportRepo, cipher, log)

		mailer, err := mail.NewSMTPMailer(cfg.Mail, log)
		if err != nil {
			return fmt.Errorf("mailer: %w", err)
		}

		sched := scheduler.New(accountRepo, reportRepo, analyzer, mailer, cfg.Report.TickInterval, log)
		sched.RunOnce(cmd.Context())

		color.Green("Report pass finished")
		return nil
	},
}

func init() {
	reportCmd.AddCommand(reportRunCmd)
	rootCmd.AddCommand(reportCmd)
}
