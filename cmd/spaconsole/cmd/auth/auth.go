package auth

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/MachineKe/spa-console/pkg/sdk"
)

var (
	// APIBaseURL is the platform API base URL, set by the root command
	APIBaseURL string
	// RequestTimeout bounds each API call, set by the root command
	RequestTimeout time.Duration
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for managing authentication and login status.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(whoamiCmd)
}

// SetAPIBaseURL sets the API base URL for all auth commands
func SetAPIBaseURL(url string) {
	APIBaseURL = url
}

// SetRequestTimeout sets the per-request timeout for all auth commands
func SetRequestTimeout(d time.Duration) {
	RequestTimeout = d
}

func newClient() *sdk.Client {
	opts := []sdk.ClientOption{}
	if RequestTimeout > 0 {
		opts = append(opts, sdk.WithTimeout(RequestTimeout))
	}
	return sdk.NewClient(APIBaseURL, opts...)
}
