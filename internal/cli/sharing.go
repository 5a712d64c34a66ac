package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gemfury/gemfury/internal/client"
)

// sharingCmd lists collaborators when run bare; add/remove are subcommands
var sharingCmd = &cobra.Command{
	Use:   "sharing",
	Short: "Manage collaborators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuthorization(func(c *client.Client) error {
			collaborators, err := c.ListCollaborators(context.Background())
			if err != nil {
				return err
			}
			if len(collaborators) == 0 {
				color.Green("You are the only collaborator")
				return nil
			}
			color.Green("\n*** Collaborators ***\n")
			for _, user := range collaborators {
				fmt.Println(user.Username)
			}
			fmt.Println()
			return nil
		})
	},
}

var sharingAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Add a collaborator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		return withAuthorization(func(c *client.Client) error {
			if err := c.AddCollaborator(context.Background(), username); err != nil {
				return err
			}
			fmt.Printf("Added %s as a collaborator\n", username)
			return nil
		})
	},
}

var sharingRemoveCmd = &cobra.Command{
	Use:   "remove USERNAME",
	Short: "Remove a collaborator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		return withAuthorization(func(c *client.Client) error {
			if err := c.RemoveCollaborator(context.Background(), username); err != nil {
				return err
			}
			fmt.Printf("Removed %s as a collaborator\n", username)
			return nil
		})
	},
}

func init() {
	sharingCmd.AddCommand(sharingAddCmd)
	sharingCmd.AddCommand(sharingRemoveCmd)
}
