// Package flyctl wraps the Fly.io CLI as an opaque collaborator.
//
// All network activity (authentication state, token minting, secrets,
// deployment status) is delegated to the external binary; this package
// only builds argument lists and interprets exit status and stdout.
package flyctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// binaries are probed in order. The Fly.io installer ships both names.
var binaries = []string{"flyctl", "fly"}

// ErrNotInstalled is returned when no flyctl binary is found on PATH.
var ErrNotInstalled = errors.New("flyctl is not installed")

// ErrEmptyToken is returned when token creation produced no output.
var ErrEmptyToken = errors.New("flyctl returned an empty token")

// Runner executes an external command and returns its stdout.
type Runner interface {
	Output(ctx context.Context, bin string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s %s: %s: %w", bin, strings.Join(args, " "), msg, err)
		}
		return stdout.Bytes(), fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// Client invokes flyctl subcommands.
type Client struct {
	runner   Runner
	lookPath func(string) (string, error)

	// resolved binary path, cached after the first Path call
	bin string
}

// New creates a client that shells out to the real flyctl binary.
func New() *Client {
	return &Client{
		runner:   execRunner{},
		lookPath: exec.LookPath,
	}
}

// Path resolves the flyctl binary on PATH, caching the result.
// Returns ErrNotInstalled if neither binary name is found.
func (c *Client) Path() (string, error) {
	if c.bin != "" {
		return c.bin, nil
	}
	for _, name := range binaries {
		path, err := c.lookPath(name)
		if err == nil {
			c.bin = path
			return path, nil
		}
	}
	return "", ErrNotInstalled
}

// Version returns the flyctl version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Whoami returns the identity of the authenticated Fly.io session,
// verbatim as printed by `flyctl auth whoami` (typically an email).
func (c *Client) Whoami(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "auth", "whoami")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CreateDeployToken mints a named deploy token and returns it as an
// opaque string. The token is the first non-empty line of output; no
// shape validation is performed. Returns ErrEmptyToken when flyctl
// exits zero but prints nothing usable.
func (c *Client) CreateDeployToken(ctx context.Context, app, name string, expiry time.Duration) (string, error) {
	args := []string{"tokens", "create", "deploy", "--name", name}
	if app != "" {
		args = append(args, "--app", app)
	}
	if expiry > 0 {
		args = append(args, "--expiry", expiry.String())
	}

	out, err := c.output(ctx, args...)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", ErrEmptyToken
}

// SetSecrets sets app secrets via `flyctl secrets set`. Keys are passed
// in sorted order so invocations are deterministic.
func (c *Client) SetSecrets(ctx context.Context, app string, secrets map[string]string) error {
	if len(secrets) == 0 {
		return fmt.Errorf("no secrets to set")
	}

	args := []string{"secrets", "set"}
	if app != "" {
		args = append(args, "--app", app)
	}

	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k+"="+secrets[k])
	}

	_, err := c.output(ctx, args...)
	return err
}

// Status returns the raw output of `flyctl status` for the app.
func (c *Client) Status(ctx context.Context, app string) (string, error) {
	args := []string{"status"}
	if app != "" {
		args = append(args, "--app", app)
	}
	out, err := c.output(ctx, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *Client) output(ctx context.Context, args ...string) ([]byte, error) {
	bin, err := c.Path()
	if err != nil {
		return nil, err
	}
	return c.runner.Output(ctx, bin, args...)
}
