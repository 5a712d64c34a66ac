package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bgentry/go-netrc/netrc"
	"github.com/pelletier/go-toml/v2"
)

// Credentials is one persisted login/token pair for a host.
type Credentials struct {
	Login string
	Token string
}

// CredentialStore reads and writes credentials in ~/.netrc, with a legacy
// TOML config file as a read-only fallback for tokens saved by old
// releases.
type CredentialStore struct {
	NetrcPath  string
	LegacyPath string
}

// legacyConfig mirrors the key layout of the old per-user config file.
type legacyConfig struct {
	APIKey string `toml:"api_key"`
}

// DefaultStore returns the store rooted in the user's home directory.
func DefaultStore() (*CredentialStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		NetrcPath:  filepath.Join(home, ".netrc"),
		LegacyPath: filepath.Join(home, ".gem", "gemfury.toml"),
	}, nil
}

// Load returns the credentials for host. A missing netrc entry falls back
// to the legacy config file (token only). Absent credentials are returned
// as a zero value, not an error.
func (s *CredentialStore) Load(host string) (Credentials, error) {
	n, err := s.parseNetrc()
	if err != nil {
		return Credentials{}, err
	}
	if m := n.FindMachine(host); m != nil && m.Password != "" {
		return Credentials{Login: m.Login, Token: m.Password}, nil
	}

	legacy, err := s.loadLegacy()
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: legacy.APIKey}, nil
}

// Save writes login/token for every given host.
func (s *CredentialStore) Save(login, token string, hosts ...string) error {
	n, err := s.parseNetrc()
	if err != nil {
		return err
	}
	for _, host := range hosts {
		if m := n.FindMachine(host); m != nil {
			m.UpdateLogin(login)
			m.UpdatePassword(token)
		} else {
			n.NewMachine(host, login, token, "")
		}
	}
	return s.writeNetrc(n)
}

// Wipe removes credentials for every given host and deletes the legacy
// config file. Wiping hosts that were never saved is not an error.
func (s *CredentialStore) Wipe(hosts ...string) error {
	if err := os.Remove(s.LegacyPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	n, err := s.parseNetrc()
	if err != nil {
		return err
	}
	for _, host := range hosts {
		n.RemoveMachine(host)
	}
	return s.writeNetrc(n)
}

// HasCredentials reports whether any token is persisted for host.
func (s *CredentialStore) HasCredentials(host string) bool {
	creds, err := s.Load(host)
	return err == nil && creds.Token != ""
}

func (s *CredentialStore) parseNetrc() (*netrc.Netrc, error) {
	if _, err := os.Stat(s.NetrcPath); os.IsNotExist(err) {
		return netrc.Parse(strings.NewReader(""))
	}
	return netrc.ParseFile(s.NetrcPath)
}

func (s *CredentialStore) writeNetrc(n *netrc.Netrc) error {
	data, err := n.MarshalText()
	if err != nil {
		return err
	}
	return os.WriteFile(s.NetrcPath, data, 0o600)
}

func (s *CredentialStore) loadLegacy() (legacyConfig, error) {
	var legacy legacyConfig
	data, err := os.ReadFile(s.LegacyPath)
	if os.IsNotExist(err) {
		return legacy, nil
	}
	if err != nil {
		return legacy, err
	}
	if err := toml.Unmarshal(data, &legacy); err != nil {
		// A corrupt legacy file should not block netrc-based auth.
		return legacyConfig{}, nil
	}
	return legacy, nil
}

// SaveLegacy writes the legacy config file. Only used by tests and the
// migration path; new logins always land in netrc.
func (s *CredentialStore) SaveLegacy(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.LegacyPath), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(legacyConfig{APIKey: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.LegacyPath, data, 0o600)
}
