package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if signInClient == nil {
			fmt.Println("Not signed in.")
			return nil
		}
		// Local state is cleared even when the SDK teardown errors;
		// report the error but never stay "signed in".
		if err := signInClient.SignOut(cmd.Context()); err != nil {
			fmt.Printf("Provider sign-out reported an error: %v\n", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
