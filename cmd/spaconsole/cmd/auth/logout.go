package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MachineKe/spa-console/internal/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from the platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewFileStore()
		if err != nil {
			return fmt.Errorf("failed to create credential store: %w", err)
		}

		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}

		fmt.Println("Logged out successfully")
		return nil
	},
}
