package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/spf13/cobra"

	"github.com/gemfury/gemfury/internal/client"
	"github.com/gemfury/gemfury/internal/config"
)

// gitCmd groups the hosted-repository admin commands
var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Manage hosted git repositories",
	Long: `Administer the git repositories linked to your Gemfury account:
list, rename, reset, rebuild, and build configuration.`,
}

var gitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your hosted repositories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuthorization(func(c *client.Client) error {
			repos, err := c.GitRepos(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("\n*** GEMFURY GIT REPOS ***\n\n")
			for _, repo := range repos {
				fmt.Println(repo.Name)
			}
			return nil
		})
	},
}

var gitRenameCmd = &cobra.Command{
	Use:   "rename REPO NEW_NAME",
	Short: "Rename a hosted repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, newName := args[0], args[1]
		return withAuthorization(func(c *client.Client) error {
			if err := c.GitRename(context.Background(), repo, newName); err != nil {
				return err
			}
			fmt.Printf("Renamed %s repository to %s\n", repo, newName)
			return nil
		})
	},
}

var gitResetCmd = &cobra.Command{
	Use:   "reset REPO",
	Short: "Remove a hosted repository and restore it to initial state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		return withAuthorization(func(c *client.Client) error {
			if err := c.GitReset(context.Background(), repo); err != nil {
				return err
			}
			fmt.Printf("Reset %s repository\n", repo)
			return nil
		})
	},
}

var gitRebuildCmd = &cobra.Command{
	Use:   "rebuild REPO",
	Short: "Rebuild the package from a repository's HEAD",
	Long: `Trigger a package build from the repository's current HEAD. Build
console output streams live to your terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		return withAuthorization(func(c *client.Client) error {
			fmt.Printf("*** Rebuilding %s repository ***\n\n", repo)
			return c.GitRebuild(context.Background(), repo)
		})
	},
}

var gitConfigCmd = &cobra.Command{
	Use:   "config REPO",
	Short: "Show a repository's build configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		return withAuthorization(func(c *client.Client) error {
			vars, err := c.GitConfig(context.Background(), repo)
			if err != nil {
				return err
			}
			fmt.Printf("\n*** %s build config ***\n\n", repo)
			for key, value := range vars {
				fmt.Printf("%s=%s\n", key, value)
			}
			return nil
		})
	},
}

var gitConfigSetCmd = &cobra.Command{
	Use:   "config:set REPO KEY=VALUE...",
	Short: "Update a repository's build configuration",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		updates := make(map[string]string)
		for _, pair := range args[1:] {
			key, value, found := strings.Cut(pair, "=")
			if !found || key == "" {
				return fmt.Errorf("invalid KEY=VALUE pair: %q", pair)
			}
			updates[key] = value
		}
		return withAuthorization(func(c *client.Client) error {
			if err := c.GitConfigUpdate(context.Background(), repo, updates); err != nil {
				return err
			}
			color.Green("Updated %s build config", repo)
			return nil
		})
	},
}

var gitConfigUnsetCmd = &cobra.Command{
	Use:   "config:unset REPO KEY...",
	Short: "Remove keys from a repository's build configuration",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := args[0]
		updates := make(map[string]string)
		for _, key := range args[1:] {
			updates[key] = ""
		}
		return withAuthorization(func(c *client.Client) error {
			if err := c.GitConfigUpdate(context.Background(), repo, updates); err != nil {
				return err
			}
			color.Green("Updated %s build config", repo)
			return nil
		})
	},
}

var gitRemoteCmd = &cobra.Command{
	Use:   "remote [REPO]",
	Short: "Add the Gemfury remote to the local repository",
	Long: `Register your hosted Gemfury repository as the "fury" remote of the
repository in the current directory. The repo name defaults to the name
of the origin remote, or the directory name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var repoName string
		if len(args) > 0 {
			repoName = args[0]
		}
		return withAuthorization(func(c *client.Client) error {
			return runGitRemote(c, repoName)
		})
	},
}

func runGitRemote(c *client.Client, repoName string) error {
	local, err := gogit.PlainOpenWithOptions(".", &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("not inside a git repository: %w", err)
	}

	if repoName == "" {
		repoName, err = discoverRepoName(local)
		if err != nil {
			return err
		}
	}

	account := c.Config().Account
	if account == "" {
		info, err := c.AccountInfo(context.Background())
		if err != nil {
			return err
		}
		account = info.Username
	}

	remoteURL := strings.TrimRight(config.Default().Gitpoint, "/") +
		"/" + account + "/" + repoName + ".git"

	if _, err := local.Remote("fury"); err == nil {
		if err := local.DeleteRemote("fury"); err != nil {
			return fmt.Errorf("failed to replace fury remote: %w", err)
		}
	}

	if _, err := local.CreateRemote(&gitconfig.RemoteConfig{
		Name: "fury",
		URLs: []string{remoteURL},
	}); err != nil {
		return fmt.Errorf("failed to add fury remote: %w", err)
	}

	fmt.Printf("Added fury remote: %s\n", remoteURL)
	return nil
}

// discoverRepoName derives the hosted repo name from the origin remote,
// falling back to the working directory's name.
func discoverRepoName(repo *gogit.Repository) (string, error) {
	if origin, err := repo.Remote("origin"); err == nil {
		urls := origin.Config().URLs
		if len(urls) > 0 {
			name := filepath.Base(urls[0])
			return strings.TrimSuffix(name, ".git"), nil
		}
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Base(dir), nil
}

func init() {
	gitCmd.AddCommand(gitListCmd)
	gitCmd.AddCommand(gitRenameCmd)
	gitCmd.AddCommand(gitResetCmd)
	gitCmd.AddCommand(gitRebuildCmd)
	gitCmd.AddCommand(gitConfigCmd)
	gitCmd.AddCommand(gitConfigSetCmd)
	gitCmd.AddCommand(gitConfigUnsetCmd)
	gitCmd.AddCommand(gitRemoteCmd)
}
