package cli

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/gemfury/gemfury/internal/client"
)

// migrateCmd uploads every package artifact found under a directory
var migrateCmd = &cobra.Command{
	Use:   "migrate DIR",
	Short: "Upload all packages in a directory",
	Long: `Scan a directory tree for package artifacts (*.gem) and upload each
one. Versions that already exist on the server are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		pattern := filepath.Join(dir, "**", "*.gem")
		files, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no packages found under %s", dir)
		}

		fmt.Printf("Found %d package(s) to upload\n", len(files))
		return withAuthorization(func(c *client.Client) error {
			return pushFiles(c, files)
		})
	},
}
