package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	backendURL   string
	clientID     string
	clientSecret string
	redirectURL  string
)

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "authctl exercises the AgriShield identity backend from the command line",
	Long: `A developer tool for the Google sign-in flow: it runs the OAuth
handshake, submits the resulting ID token to the backend, and prints
the session credential the backend issues.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "http://localhost:8080", "base URL of the identity backend")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", os.Getenv("GOOGLE_CLIENT_ID"), "Google OAuth client id")
	rootCmd.PersistentFlags().StringVar(&clientSecret, "client-secret", os.Getenv("GOOGLE_CLIENT_SECRET"), "Google OAuth client secret")
	rootCmd.PersistentFlags().StringVar(&redirectURL, "redirect-url", "urn:ietf:wg:oauth:2.0:oob", "OAuth redirect URL")
}
