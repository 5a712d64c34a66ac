package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gemfury/gemfury/internal/config"
	"github.com/gemfury/gemfury/internal/version"
)

// Client is the typed surface of the Gemfury API. Every method issues
// exactly one HTTP request through the pipeline in request.go and either
// returns decoded data or exactly one classified error.
type Client struct {
	cfg           config.Config
	httpClient    *http.Client
	stream        io.Writer // sink for streamed text responses
	clientVersion string
	verbose       bool
}

// New creates a client from cfg, filling missing connection parameters
// with the standard defaults.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg.WithDefaults(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		stream:        os.Stdout,
		clientVersion: version.Version,
	}
}

// SetVerbose toggles request tracing to stdout.
func (c *Client) SetVerbose(verbose bool) {
	c.verbose = verbose
}

// SetStream redirects streamed text responses (build output) to w.
func (c *Client) SetStream(w io.Writer) {
	c.stream = w
}

// Config returns the client's connection parameters.
func (c *Client) Config() config.Config {
	return c.cfg
}

// Authenticated reports whether an API token is configured.
func (c *Client) Authenticated() bool {
	return c.cfg.APIToken != ""
}

// ensureAuthenticated guards operations that require a token, failing
// fast before any network call.
func (c *Client) ensureAuthenticated() error {
	if !c.Authenticated() {
		return NewAPIError(ErrUnauthorized, 0, "no API token configured")
	}
	return nil
}

// AccountInfo returns the current account.
func (c *Client) AccountInfo(ctx context.Context) (*Account, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, "users/me", nil)
	if err != nil {
		return nil, err
	}
	var account Account
	if err := resp.DecodeInto(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Accounts returns every account this account can access.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, "accounts", nil)
	if err != nil {
		return nil, err
	}
	var accounts []Account
	if err := resp.DecodeInto(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// PushGem uploads one artifact to the push endpoint. The source is read
// to its end but left open; the caller owns the handle.
func (c *Client) PushGem(ctx context.Context, file UploadSource) (*PushResult, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	params := map[string]interface{}{"file": file}
	resp, err := c.do(ctx, http.MethodPost, "uploads", params, WithEndpoint(c.cfg.Pushpoint))
	if err != nil {
		return nil, err
	}
	var result PushResult
	if err := resp.DecodeInto(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns the account's hosted packages.
func (c *Client) List(ctx context.Context) ([]Gem, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, "gems", nil)
	if err != nil {
		return nil, err
	}
	var gems []Gem
	if err := resp.DecodeInto(&gems); err != nil {
		return nil, err
	}
	return gems, nil
}

// Versions returns all versions of one package.
func (c *Client) Versions(ctx context.Context, name string) ([]GemVersion, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("gems/%s/versions", url.PathEscape(name))
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var versions []GemVersion
	if err := resp.DecodeInto(&versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// YankVersion deletes one package version.
func (c *Client) YankVersion(ctx context.Context, name, gemVersion string) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	path := fmt.Sprintf("gems/%s/versions/%s", url.PathEscape(name), url.PathEscape(gemVersion))
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// Login exchanges email/password credentials for an API token. It is the
// one operation that runs unauthenticated.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	params := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	resp, err := c.do(ctx, http.MethodPost, "login", params)
	if err != nil {
		return nil, err
	}
	var result LoginResult
	if err := resp.DecodeInto(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the current session token server-side.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, "logout", nil)
	return err
}

// ListCollaborators returns the accounts sharing this account.
func (c *Client) ListCollaborators(ctx context.Context) ([]Collaborator, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, "collaborators", nil)
	if err != nil {
		return nil, err
	}
	var collaborators []Collaborator
	if err := resp.DecodeInto(&collaborators); err != nil {
		return nil, err
	}
	return collaborators, nil
}

// AddCollaborator grants login access to this account.
func (c *Client) AddCollaborator(ctx context.Context, login string) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	path := fmt.Sprintf("collaborators/%s", url.PathEscape(login))
	_, err := c.do(ctx, http.MethodPut, path, nil)
	return err
}

// RemoveCollaborator revokes login's access to this account.
func (c *Client) RemoveCollaborator(ctx context.Context, login string) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	path := fmt.Sprintf("collaborators/%s", url.PathEscape(login))
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// GitRepos lists the account's hosted git repositories.
func (c *Client) GitRepos(ctx context.Context) ([]Repo, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodGet, c.gitRepoPath(), nil)
	if err != nil {
		return nil, err
	}
	var env repoEnvelope
	if err := resp.DecodeInto(&env); err != nil {
		return nil, err
	}
	return env.Repos, nil
}

// GitRename renames a hosted git repository.
func (c *Client) GitRename(ctx context.Context, repo, newName string) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	params := map[string]interface{}{"name": newName}
	_, err := c.do(ctx, http.MethodPatch, c.gitRepoPath(repo), params)
	return err
}

// GitReset restores a hosted git repository to its initial state.
func (c *Client) GitReset(ctx context.Context, repo string) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, c.gitRepoPath(repo), nil)
	return err
}

// GitRebuild triggers a package rebuild from the repository's HEAD and
// streams the build console output to the client's stream sink.
func (c *Client) GitRebuild(ctx context.Context, repo string) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	path := c.gitRepoPath(repo) + "/builds"
	_, err := c.do(ctx, http.MethodPost, path, nil, WithFormat("text"))
	return err
}

// GitConfig returns the repository's build configuration variables.
func (c *Client) GitConfig(ctx context.Context, repo string) (map[string]string, error) {
	if err := c.ensureAuthenticated(); err != nil {
		return nil, err
	}
	path := c.gitRepoPath(repo) + "/config-vars"
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var env configVarsEnvelope
	if err := resp.DecodeInto(&env); err != nil {
		return nil, err
	}
	return env.ConfigVars, nil
}

// GitConfigUpdate applies updates to the repository's build configuration.
// An empty value removes that variable.
func (c *Client) GitConfigUpdate(ctx context.Context, repo string, updates map[string]string) error {
	if err := c.ensureAuthenticated(); err != nil {
		return err
	}
	path := c.gitRepoPath(repo) + "/config-vars"
	params := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		params["config_vars["+key+"]"] = value
	}
	_, err := c.do(ctx, http.MethodPatch, path, params)
	return err
}

// CheckVersion compares the server-reported minimum client version
// against this build and fails with ErrInvalidVersion when the client is
// too old. This is a client-side rule, not a transport error.
func (c *Client) CheckVersion(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "status/version", nil)
	if err != nil {
		return err
	}
	var status versionStatus
	if err := resp.DecodeInto(&status); err != nil {
		return err
	}
	if status.Version == "" {
		return nil
	}
	ok, err := version.MeetsMinimum(status.Version)
	if err != nil {
		return err
	}
	if !ok {
		msg := fmt.Sprintf("client %s is older than required %s", version.Version, status.Version)
		return NewAPIError(ErrInvalidVersion, resp.Status, msg)
	}
	return nil
}

// gitRepoPath builds git/repos/{account-or-me}[/repo...], escaping each
// segment.
func (c *Client) gitRepoPath(parts ...string) string {
	account := c.cfg.Account
	if account == "" {
		account = "me"
	}
	path := "git/repos/" + url.PathEscape(account)
	for _, part := range parts {
		path += "/" + url.PathEscape(part)
	}
	return path
}
