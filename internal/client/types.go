package client

import "time"

// Account represents a Gemfury account
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// Gem represents a hosted package
type Gem struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Language      string      `json:"language"`
	Private       bool        `json:"private"`
	LatestVersion *GemVersion `json:"latest_version"`
}

// GemVersion represents one version of a hosted package
type GemVersion struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *Account  `json:"created_by"`
}

// Collaborator represents an account with access to the current account
type Collaborator struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Repo represents a hosted git repository
type Repo struct {
	Name   string `json:"name"`
	Shared bool   `json:"shared"`
}

// repoEnvelope wraps the git repo listing: {"repos": [...]}
type repoEnvelope struct {
	Repos []Repo `json:"repos"`
}

// configVarsEnvelope wraps build configuration: {"config_vars": {...}}
type configVarsEnvelope struct {
	ConfigVars map[string]string `json:"config_vars"`
}

// LoginResult is the body of a successful login call
type LoginResult struct {
	Token string `json:"token"`
}

// PushResult is the body of a successful artifact upload
type PushResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// versionStatus is the body of the client-version compatibility check
type versionStatus struct {
	Version string `json:"version"`
}
