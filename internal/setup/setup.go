// Package setup orchestrates the GitHub Actions deploy setup flow:
// check flyctl, probe auth, mint a deploy token, print instructions,
// and copy the token to the clipboard when possible.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/joyshmitz/flyward/internal/db"
)

// Fatal failure cases. Each terminates the flow; nothing is rolled back
// because no step before the failure has side effects worth undoing.
var (
	ErrNotInstalled     = errors.New("flyctl is not installed")
	ErrNotAuthenticated = errors.New("not authenticated with Fly.io")
	ErrEmptyToken       = errors.New("failed to generate a deploy token")
)

// Client is the subset of the flyctl client the setup flow needs.
type Client interface {
	Path() (string, error)
	Whoami(ctx context.Context) (string, error)
	CreateDeployToken(ctx context.Context, app, name string, expiry time.Duration) (string, error)
}

// Copier copies text to the clipboard, reporting which utility was used.
type Copier interface {
	Copy(text string) (string, error)
}

// Recorder persists an audit entry for a minted token.
type Recorder interface {
	RecordToken(rec db.TokenRecord) (string, error)
}

// Options configures a setup run.
type Options struct {
	// App scopes the deploy token. Empty means flyctl's own resolution.
	App string

	// TokenName overrides the date-derived token name.
	TokenName string

	// Expiry is the token lifetime passed to flyctl. Zero means default.
	Expiry time.Duration

	// SkipClipboard disables the clipboard step entirely.
	SkipClipboard bool

	// Color enables styled output.
	Color bool

	// Now is the clock used for token naming. Defaults to time.Now.
	Now func() time.Time

	// TokenPrefix is the name prefix when TokenName is empty.
	TokenPrefix string
}

// Result holds the outcome of a successful setup run.
type Result struct {
	Identity  string
	Token     string
	TokenName string

	// CopiedVia names the clipboard utility used, empty if the token
	// must be copied manually.
	CopiedVia string
}

// Run executes the setup flow, writing user-facing output to out.
// clip and rec may be nil; both are best-effort.
func Run(ctx context.Context, client Client, clip Copier, rec Recorder, out io.Writer, opts Options) (*Result, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// 1. Prerequisite: flyctl on PATH.
	if _, err := client.Path(); err != nil {
		fmt.Fprintln(out, "flyctl is not installed.")
		fmt.Fprintln(out, "Install it from https://fly.io/docs/flyctl/install/ and run this again.")
		return nil, ErrNotInstalled
	}

	// 2. Auth probe. The identity string is used verbatim for display.
	identity, err := client.Whoami(ctx)
	if err != nil {
		fmt.Fprintln(out, "You are not logged in to Fly.io.")
		fmt.Fprintln(out, "Run 'fly auth login' first, then run this again.")
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	// 3. Mint the token. The name carries the current date for
	// uniqueness and auditability.
	name := opts.TokenName
	if name == "" {
		prefix := opts.TokenPrefix
		if prefix == "" {
			prefix = "github-actions-deploy"
		}
		name = prefix + "-" + now().Format("2006-01-02")
	}

	token, err := client.CreateDeployToken(ctx, opts.App, name, opts.Expiry)
	if err != nil || token == "" {
		fmt.Fprintln(out, "Failed to generate a deploy token.")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmptyToken, err)
		}
		return nil, ErrEmptyToken
	}

	result := &Result{
		Identity:  identity,
		Token:     token,
		TokenName: name,
	}

	// 4. Clipboard, best-effort. Failure never fails the run.
	if clip != nil && !opts.SkipClipboard {
		if used, err := clip.Copy(token); err == nil {
			result.CopiedVia = used
		}
	}

	// 5. Audit log, best-effort.
	if rec != nil {
		if _, err := rec.RecordToken(db.TokenRecord{
			Name:      name,
			App:       opts.App,
			Identity:  identity,
			CopiedVia: result.CopiedVia,
		}); err != nil {
			fmt.Fprintf(out, "warning: could not record token in history: %v\n", err)
		}
	}

	printInstructions(out, result, opts.Color)
	return result, nil
}
