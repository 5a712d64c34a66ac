package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gemfury/gemfury/internal/client"
)

// pushCmd uploads one or more package artifacts
var pushCmd = &cobra.Command{
	Use:   "push FILE...",
	Short: "Upload package artifacts",
	Long: `Upload one or more package files to your Gemfury account. Arguments
may be file paths or glob patterns (including ** for recursion).

A version that already exists or a corrupt file fails that upload only;
remaining files are still pushed, and the command exits non-zero if any
file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandArtifacts(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no valid packages specified")
		}
		return withAuthorization(func(c *client.Client) error {
			return pushFiles(c, files)
		})
	},
}

// expandArtifacts resolves arguments into existing files, expanding glob
// patterns. Literal paths that do not exist are skipped with a warning,
// matching how bad glob matches behave.
func expandArtifacts(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			fmt.Printf("Problem: %s is not a valid file\n", arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

// pushFiles uploads each file in turn. Per-file business errors
// (duplicate version, corrupt file) are reported and skipped;
// authentication errors abort so the reauthentication flow can run.
func pushFiles(c *client.Client, files []string) error {
	failed := 0
	for _, path := range files {
		if err := pushOne(c, path); err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				return err
			}
			fmt.Printf("  %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to upload %d of %d package(s)", failed, len(files))
	}
	return nil
}

func pushOne(c *client.Client, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", path, err)
	}

	fmt.Printf("Uploading %s\n", filepath.Base(path))

	var src client.UploadSource = file
	if showProgress(info.Size()) {
		bar := progressbar.DefaultBytes(info.Size(), filepath.Base(path))
		src = client.NewProgressSource(file, bar)
		defer bar.Finish()
	}

	_, err = c.PushGem(context.Background(), src)
	return err
}
