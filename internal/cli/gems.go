package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gemfury/gemfury/internal/client"
)

// listCmd lists the account's packages
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your packages on Gemfury",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuthorization(func(c *client.Client) error {
			gems, err := c.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("\n*** GEMFURY PACKAGES ***\n\n")
			for _, gem := range gems {
				latest := "beta"
				if gem.LatestVersion != nil && gem.LatestVersion.Version != "" {
					latest = gem.LatestVersion.Version
				}
				fmt.Printf("%s (%s)\n", gem.Name, latest)
			}
			return nil
		})
	},
}

// versionsCmd lists all versions of one package
var versionsCmd = &cobra.Command{
	Use:   "versions NAME",
	Short: "List all versions of a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withAuthorization(func(c *client.Client) error {
			versions, err := c.Versions(context.Background(), name)
			if err != nil {
				return err
			}
			fmt.Printf("\n*** %s versions ***\n\n", name)
			for _, v := range versions {
				fmt.Println(v.Version)
			}
			return nil
		})
	},
}

// yankCmd deletes one package version
var yankCmd = &cobra.Command{
	Use:   "yank NAME",
	Short: "Delete a package version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		gemVersion, _ := cmd.Flags().GetString("version")
		return withAuthorization(func(c *client.Client) error {
			if err := c.YankVersion(context.Background(), name, gemVersion); err != nil {
				return err
			}
			color.Green("Yanked %s-%s", name, gemVersion)
			return nil
		})
	},
}

func init() {
	yankCmd.Flags().String("version", "", "version to delete")
	yankCmd.MarkFlagRequired("version")
}
