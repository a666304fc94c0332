package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ziprates/internal/auth"
	"ziprates/internal/storage"
)

var (
	userRole     string
	tokenName    string
	tokenExpires string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create USERNAME PASSWORD",
	Short: "Create a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()
		st, err := storage.Open(ctx, storage.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
		if err != nil {
			return err
		}
		defer st.Close()

		authSvc, err := auth.NewService(st)
		if err != nil {
			return err
		}
		u, err := authSvc.Register(ctx, args[0], args[1], userRole)
		if err != nil {
			return err
		}
		fmt.Printf("created user %s (role %s, id %s)\n", u.Username, u.Role, u.ID)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Mint an API token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()
		st, err := storage.Open(ctx, storage.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
		if err != nil {
			return err
		}
		defer st.Close()

		authSvc, err := auth.NewService(st)
		if err != nil {
			return err
		}

		u, err := st.GetUserByUsername(ctx, args[0])
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("user %q not found", args[0])
		}

		expiresAt, err := auth.ParseExpirationDuration(tokenExpires)
		if err != nil {
			return err
		}

		_, raw, err := authSvc.CreateToken(ctx, u.ID, tokenName, u.Role, expiresAt)
		if err != nil {
			return err
		}
		// Printed once; only the hash is stored.
		fmt.Println(raw)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userRole, "role", "viewer", "role: admin, editor, or viewer")
	userCmd.AddCommand(userCreateCmd)

	tokenCreateCmd.Flags().StringVar(&tokenName, "name", "", "token name")
	tokenCreateCmd.Flags().StringVar(&tokenExpires, "expires", "never", "expiration: never, 30d, 24h, or a date")
	tokenCmd.AddCommand(tokenCreateCmd)
}
