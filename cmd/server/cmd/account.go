package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"credvault/internal/domain/account"
	"credvault/internal/domain/session"
	"credvault/internal/storage/postgres"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage vault accounts",
}

var accountRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new vault account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		storage, err := postgres.New(cfg)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer storage.Close()

		fmt.Print("Username: ")
		var username string
		_, _ = fmt.Scanln(&username)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Println()

		fmt.Print("Repeat password: ")
		confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Println()

		if string(password) != string(confirm) {
			return fmt.Errorf("passwords do not match")
		}

		repo := postgres.NewAccountRepository(storage.Pool(), log)
		service := account.NewService(repo, log)

		id, err := service.Register(cmd.Context(), username, string(password))
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}

		color.Green("Account %q registered (id %d)", username, id)
		return nil
	},
}

var accountTokenCmd = &cobra.Command{
	Use:   "token [account-id]",
	Short: "Issue a gateway token for the browser extension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("account id must be a number")
		}

		storage, err := postgres.New(cfg)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer storage.Close()

		repo := postgres.NewAccountRepository(storage.Pool(), log)
		if _, err := repo.FindByID(cmd.Context(), id); err != nil {
			return fmt.Errorf("account %d: %w", id, err)
		}

		sessions := session.NewService(cfg.Crypto.GatewaySecret, cfg.Crypto.TokenTTL, log)
		token, err := sessions.Issue(id)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		color.Green("Token (valid %s):", cfg.Crypto.TokenTTL)
		fmt.Println(token)
		return nil
	},
}

func init() {
	accountCmd.AddCommand(accountRegisterCmd)
	accountCmd.AddCommand(accountTokenCmd)
	rootCmd.AddCommand(accountCmd)
}
