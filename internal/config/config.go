package config

import (
	"fmt"
	"net/url"

	"github.com/gemfury/gemfury/internal/version"
)

// Default connection parameters for the hosted service.
const (
	DefaultEndpoint   = "https://api.fury.io/"
	DefaultGitpoint   = "https://git.fury.io/"
	DefaultPushpoint  = "https://push.fury.io/"
	DefaultAPIVersion = 1
)

// Config holds the connection parameters for one client. It is a plain
// value: build it once, hand it to client.New, and replace it wholesale
// when settings change between requests.
type Config struct {
	Endpoint   string // base URL for the general API
	Gitpoint   string // base URL for hosted git repos (netrc credentials)
	Pushpoint  string // base URL for artifact uploads
	UserAgent  string
	APIVersion int
	APIToken   string // opaque access token; empty means unauthenticated
	Account    string // account to impersonate; empty means none
}

// Default returns a Config populated with the standard endpoints.
func Default() Config {
	return Config{
		Endpoint:   DefaultEndpoint,
		Gitpoint:   DefaultGitpoint,
		Pushpoint:  DefaultPushpoint,
		UserAgent:  "Gemfury CLI " + version.Version,
		APIVersion: DefaultAPIVersion,
	}
}

// WithDefaults fills any zero-valued connection parameters from Default.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.Gitpoint == "" {
		c.Gitpoint = d.Gitpoint
	}
	if c.Pushpoint == "" {
		c.Pushpoint = d.Pushpoint
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.APIVersion == 0 {
		c.APIVersion = d.APIVersion
	}
	return c
}

// Hosts returns the hostnames of all configured endpoints, in the order
// endpoint, gitpoint, pushpoint. Credentials are saved for every host so
// that git pushes and artifact uploads authenticate as well.
func (c Config) Hosts() ([]string, error) {
	hosts := make([]string, 0, 3)
	for _, raw := range []string{c.Endpoint, c.Gitpoint, c.Pushpoint} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint URL %q: %w", raw, err)
		}
		hosts = append(hosts, u.Hostname())
	}
	return hosts, nil
}
