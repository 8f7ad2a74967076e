package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/MachineKe/spa-console/internal/policy"
	"github.com/MachineKe/spa-console/internal/session"
)

var (
	loginEmail    string
	loginPassword string
	loginCode     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the platform API",
	Long: `Authenticates against the platform API and stores the resulting token
in the local credential store.

Accounts with two-factor authentication enabled are prompted for their
code after the password check; no token is stored until the code is
accepted. Use --code to supply it up front in non-interactive runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewFileStore()
		if err != nil {
			return fmt.Errorf("failed to create credential store: %w", err)
		}

		if loginEmail == "" {
			loginEmail, err = promptLine("Email: ")
			if err != nil {
				return err
			}
		}
		if loginPassword == "" {
			loginPassword, err = promptLine("Password: ")
			if err != nil {
				return err
			}
		}

		api := newClient()
		result, err := api.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}

		if result.Require2FA {
			if loginCode == "" {
				loginCode, err = promptLine("Two-factor code: ")
				if err != nil {
					return err
				}
			}
			result, err = api.Verify2FA(cmd.Context(), loginEmail, loginCode)
			if err != nil {
				return err
			}
		}
		if result.Token == "" {
			return fmt.Errorf("login reply carried no token")
		}

		if err := store.Set(result.Token); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		pterm.Success.Println("Login successful!")
		if result.User != nil {
			pterm.Info.Printf("Authenticated as: %s (%s)\n", result.User.Name, result.User.Email)
		}
		role := policy.Normalize(result.EffectiveRole())
		if table, err := policy.NewTable(); err == nil {
			if !table.Known(role) {
				pterm.Warning.Printf("Role %q is not known to the console; no gated area is reachable\n", role)
				return nil
			}
			if home, err := table.HomeRouteFor(role); err == nil {
				pterm.Info.Printf("Role %s, console home: %s\n", role, home)
			}
		}
		return nil
	},
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Two-factor code for accounts that require one")
}
