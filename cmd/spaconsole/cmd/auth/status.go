package auth

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/MachineKe/spa-console/internal/identity"
	"github.com/MachineKe/spa-console/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	Long: `Shows whether a credential is stored locally and what it claims about
itself. The claims are read without verification and are display hints
only; whoami asks the server for the authoritative answer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewFileStore()
		if err != nil {
			return fmt.Errorf("failed to create credential store: %w", err)
		}

		token, ok := store.Get()
		if !ok {
			return fmt.Errorf("not logged in")
		}

		pterm.DefaultSection.Println("Authentication Status")
		pterm.Info.Println("Credential present in local store")
		if lang := store.Language(); lang != "" {
			pterm.Info.Printf("Language preference: %s\n", lang)
		}

		hint, err := identity.TokenHint(token)
		if err != nil {
			pterm.Warning.Printf("Credential is not a readable token: %v\n", err)
			return nil
		}
		if hint.Subject != "" {
			pterm.Info.Printf("Subject: %s\n", hint.Subject)
		}
		if hint.TenantID != "" {
			pterm.Info.Printf("Tenant: %s\n", hint.TenantID)
		}
		if !hint.Expiry.IsZero() {
			pterm.Info.Printf("Expires: %s\n", hint.Expiry.Format(time.RFC1123))
			if hint.Expiry.Before(time.Now()) {
				pterm.Warning.Println("Credential looks expired; run `spaconsole auth login`")
			}
		}
		return nil
	},
}
