package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/gemfury/gemfury/internal/client"
	"github.com/gemfury/gemfury/internal/config"
)

// newClient builds a client from defaults plus the global flag overrides
// and the given token.
func newClient(token string) *client.Client {
	cfg := config.Default()
	cfg.APIToken = token
	cfg.Account = asAccount
	c := client.New(cfg)
	c.SetVerbose(verbose)
	return c
}

// promptCredentials asks for email and (hidden) password on the terminal.
func promptCredentials() (email, password string, err error) {
	fmt.Println("Please enter your Gemfury credentials.")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err = reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("failed to read email: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	return email, string(passwordBytes), nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [yN] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// showProgress reports whether an upload of size bytes should render a
// progress bar: only on an interactive terminal, never under --quiet, and
// only for files worth watching.
func showProgress(size int64) bool {
	if quiet {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return size > client.ProgressThreshold
}
