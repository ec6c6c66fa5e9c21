package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/agrishield/identity/client"
	"github.com/spf13/cobra"
)

// signInClient is shared between login and logout so logout can clear
// the session established by login within the same process.
var signInClient *client.SignInClient

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google and exchange the ID token with the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		auth := client.NewGoogleAuthenticator(clientID, clientSecret, redirectURL, promptForCode)
		signInClient = client.NewSignInClient(auth, backendURL, nil)

		state, err := signInClient.PerformSignIn(cmd.Context())
		if err != nil {
			if errors.Is(err, client.ErrCancelled) {
				fmt.Println("Sign-in cancelled.")
				return nil
			}
			return err
		}

		fmt.Println(state.WelcomeMessage())
		fmt.Printf("uid:        %s\n", state.SubjectID)
		fmt.Printf("email:      %s\n", state.Email)
		fmt.Printf("expires in: %s\n", state.ExpiresIn)
		fmt.Printf("credential: %s\n", state.SessionCredential)
		return nil
	},
}

// promptForCode prints the consent URL and reads the authorization
// code from stdin. An empty line counts as a user cancellation.
func promptForCode(_ context.Context, authURL string) (string, error) {
	fmt.Println("Open the following URL in a browser and authorize the app:")
	fmt.Println()
	fmt.Println("  " + authURL)
	fmt.Println()
	fmt.Print("Paste the authorization code (empty to cancel): ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", client.ErrCancelled
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return "", client.ErrCancelled
	}
	return code, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
