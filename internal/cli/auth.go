package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gemfury/gemfury/internal/client"
	"github.com/gemfury/gemfury/internal/config"
)

// loginCmd prompts for credentials and saves the resulting token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save your Gemfury credentials",
	Long: `Exchange your Gemfury email and password for an API token and save
it to ~/.netrc for future commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogin()
	},
}

// logoutCmd removes saved credentials
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove your Gemfury credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogout()
	},
}

// whoamiCmd shows the current account
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account you are logged in as",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuthorization(func(c *client.Client) error {
			account, err := c.AccountInfo(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("You are logged in as %q\n", account.Username)
			return nil
		})
	},
}

// accountsCmd lists all accessible accounts
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts you can access",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuthorization(func(c *client.Client) error {
			accounts, err := c.Accounts(context.Background())
			if err != nil {
				return err
			}
			for _, account := range accounts {
				name := account.Username
				if account.Type != "" {
					name = fmt.Sprintf("%s (%s)", name, account.Type)
				}
				fmt.Println(name)
			}
			return nil
		})
	},
}

// authorizer runs an operation with persisted or prompted credentials,
// retrying once after an Unauthorized response. The fields exist so tests
// can stub the prompt and credential store.
type authorizer struct {
	store     *config.CredentialStore
	prompt    func() (email, password string, err error)
	newClient func(token string) *client.Client
	account   string // impersonation account, if any
	override  string // --api-token flag value, if any
}

func defaultAuthorizer() (*authorizer, error) {
	store, err := config.DefaultStore()
	if err != nil {
		return nil, err
	}
	return &authorizer{
		store:     store,
		prompt:    promptCredentials,
		newClient: newClient,
		account:   asAccount,
		override:  apiToken,
	}, nil
}

// withAuthorization is the entry point for every command that talks to
// the API as an authenticated user.
func withAuthorization(fn func(*client.Client) error) error {
	auth, err := defaultAuthorizer()
	if err != nil {
		return err
	}
	return auth.run(fn)
}

// run loads or prompts for a token, invokes fn, and handles Unauthorized:
// under impersonation the error is surfaced immediately; otherwise the
// token is wiped and the operation retried exactly once with freshly
// prompted credentials.
func (a *authorizer) run(fn func(*client.Client) error) error {
	token := a.override
	if token == "" {
		creds, err := a.store.Load(apiHost())
		if err != nil {
			return err
		}
		token = creds.Token
	}

	for attempt := 0; ; attempt++ {
		if token == "" {
			var err error
			token, err = a.login()
			if err != nil {
				return err
			}
		}

		err := fn(a.newClient(token))
		if err == nil || !errors.Is(err, client.ErrUnauthorized) {
			return err
		}

		if a.account != "" {
			color.Red("Oops! You don't have access to %q", a.account)
			return err
		}
		if attempt > 0 {
			return err
		}

		color.Red("Oops! Authentication failure")
		if err := a.wipe(); err != nil {
			return err
		}
		token = ""
	}
}

// login prompts for credentials, exchanges them for a token, and saves
// the token for all three endpoint hosts.
func (a *authorizer) login() (string, error) {
	email, password, err := a.prompt()
	if err != nil {
		return "", err
	}
	if email == "" || password == "" {
		return "", fmt.Errorf("email and password are required")
	}

	result, err := a.newClient("").Login(context.Background(), email, password)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	hosts, err := config.Default().Hosts()
	if err != nil {
		return "", err
	}
	if err := a.store.Save(email, result.Token, hosts...); err != nil {
		return "", fmt.Errorf("failed to save credentials: %w", err)
	}
	return result.Token, nil
}

func (a *authorizer) wipe() error {
	hosts, err := config.Default().Hosts()
	if err != nil {
		return err
	}
	return a.store.Wipe(hosts...)
}

func apiHost() string {
	hosts, err := config.Default().Hosts()
	if err != nil || len(hosts) == 0 {
		return ""
	}
	return hosts[0]
}

func runLogin() error {
	auth, err := defaultAuthorizer()
	if err != nil {
		return err
	}
	if _, err := auth.login(); err != nil {
		return err
	}
	color.Green("You have been logged in")
	return nil
}

func runLogout() error {
	auth, err := defaultAuthorizer()
	if err != nil {
		return err
	}

	if !auth.store.HasCredentials(apiHost()) {
		fmt.Println("You are logged out")
		return nil
	}
	if !confirm("Are you sure you want to log out?") {
		return nil
	}

	// Invalidate the session server-side; a failure here should not block
	// removing the local credentials.
	creds, err := auth.store.Load(apiHost())
	if err == nil && creds.Token != "" {
		if err := auth.newClient(creds.Token).Logout(context.Background()); err != nil {
			fmt.Printf("Warning: failed to invalidate session: %v\n", err)
		}
	}

	if err := auth.wipe(); err != nil {
		return err
	}
	fmt.Println("You have been logged out")
	return nil
}
