package auth

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewFileStore()
		if err != nil {
			return fmt.Errorf("failed to create credential store: %w", err)
		}

		token, ok := store.Get()
		if !ok {
			return fmt.Errorf("not logged in")
		}

		user, err := newClient().CurrentUser(cmd.Context(), token)
		if err != nil {
			return fmt.Errorf("failed to resolve identity: %w", err)
		}

		pterm.DefaultSection.Println("Identity")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tEMAIL\tROLE\tTENANT")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", user.Name, user.Email, user.Role, user.TenantID)
		w.Flush()

		table, err := policy.NewTable()
		if err != nil {
			return fmt.Errorf("failed to build role policy: %w", err)
		}
		role := policy.Normalize(user.Role)
		home, err := table.HomeRouteFor(role)
		if err != nil {
			pterm.Warning.Printf("Role %q grants no console access\n", user.Role)
			pterm.Info.Printf("Known roles: %s\n", strings.Join(table.Roles(), ", "))
			return nil
		}

		pterm.DefaultSection.Println("Console Access")
		pterm.Info.Printf("Home: %s\n", home)
		pterm.Info.Printf("Areas: %s\n", strings.Join(table.PrefixesFor(role), ", "))
		return nil
	},
}
