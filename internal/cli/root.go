package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gemfury/gemfury/internal/client"
	"github.com/gemfury/gemfury/internal/version"
)

var (
	asAccount string
	apiToken  string
	verbose   bool
	quiet     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "fury",
	Short:   "Fury - command-line client for the Gemfury package host",
	Version: version.Version,
	Long: `Fury is the command-line client for Gemfury, the hosted package
repository. Upload package artifacts, manage versions and collaborators,
and administer your hosted git repositories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It returns a non-nil error after the
// friendly message has already been printed; main turns it into exit
// code 1.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		describeError(err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&asAccount, "as", "", "access an account other than your own")
	rootCmd.PersistentFlags().StringVar(&apiToken, "api-token", "", "API token override (skips saved credentials)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(yankCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(sharingCmd)
	rootCmd.AddCommand(gitCmd)
	rootCmd.AddCommand(migrateCmd)
}

// describeError translates a typed API error into the message a user
// should see. Unclassified failures get the generic apology, with the
// raw error appended under FURY_DEBUG or --verbose.
func describeError(err error) {
	switch {
	case errors.Is(err, client.ErrInvalidVersion):
		color.Red("You have a deprecated Gemfury CLI")
		fmt.Println(`Please upgrade to the latest version and try again`)
	case errors.Is(err, client.ErrNotFound):
		color.Red("Oops! Doesn't look like this exists")
	case errors.Is(err, client.ErrForbidden):
		color.Red("Oops! You're not allowed to do this")
	case errors.Is(err, client.ErrConflict):
		color.Red("Oops! This conflicts with an existing resource")
	case errors.Is(err, client.ErrUnauthorized):
		color.Red("Oops! Authentication failure")
	case errors.Is(err, client.ErrTimeout):
		color.Red("Oops! The server timed out. If you were uploading,\nthe file may be too large or corrupt")
	case errors.Is(err, client.ErrTransport):
		color.Red("Oops! Could not connect to Gemfury")
	default:
		color.Red("Oops! Something went wrong. Looking into it ASAP!")
	}

	if debugEnabled() {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func debugEnabled() bool {
	return verbose || os.Getenv("FURY_DEBUG") != ""
}
