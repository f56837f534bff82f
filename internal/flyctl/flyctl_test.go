package flyctl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeRunner records invocations and replays canned responses.
type fakeRunner struct {
	calls  [][]string
	stdout string
	err    error
}

func (f *fakeRunner) Output(_ context.Context, bin string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{bin}, args...))
	return []byte(f.stdout), f.err
}

func newTestClient(r Runner) *Client {
	return &Client{
		runner:   r,
		lookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
	}
}

func TestPath(t *testing.T) {
	t.Run("prefers flyctl over fly", func(t *testing.T) {
		c := newTestClient(&fakeRunner{})
		path, err := c.Path()
		if err != nil {
			t.Fatalf("Path: %v", err)
		}
		if path != "/usr/bin/flyctl" {
			t.Errorf("path = %q, want /usr/bin/flyctl", path)
		}
	})

	t.Run("falls back to fly", func(t *testing.T) {
		c := &Client{
			runner: &fakeRunner{},
			lookPath: func(name string) (string, error) {
				if name == "fly" {
					return "/usr/local/bin/fly", nil
				}
				return "", errors.New("not found")
			},
		}
		path, err := c.Path()
		if err != nil {
			t.Fatalf("Path: %v", err)
		}
		if path != "/usr/local/bin/fly" {
			t.Errorf("path = %q, want /usr/local/bin/fly", path)
		}
	})

	t.Run("neither binary found", func(t *testing.T) {
		c := &Client{
			runner:   &fakeRunner{},
			lookPath: func(string) (string, error) { return "", errors.New("not found") },
		}
		if _, err := c.Path(); !errors.Is(err, ErrNotInstalled) {
			t.Errorf("err = %v, want ErrNotInstalled", err)
		}
	})

	t.Run("caches resolved path", func(t *testing.T) {
		lookups := 0
		c := &Client{
			runner: &fakeRunner{},
			lookPath: func(name string) (string, error) {
				lookups++
				return "/usr/bin/" + name, nil
			},
		}
		c.Path()
		c.Path()
		if lookups != 1 {
			t.Errorf("lookups = %d, want 1", lookups)
		}
	})
}

func TestWhoami(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		r := &fakeRunner{stdout: "dev@example.com\n"}
		c := newTestClient(r)

		id, err := c.Whoami(context.Background())
		if err != nil {
			t.Fatalf("Whoami: %v", err)
		}
		if id != "dev@example.com" {
			t.Errorf("identity = %q, want dev@example.com", id)
		}
		want := []string{"/usr/bin/flyctl", "auth", "whoami"}
		if got := r.calls[0]; strings.Join(got, " ") != strings.Join(want, " ") {
			t.Errorf("args = %v, want %v", got, want)
		}
	})

	t.Run("propagates failure", func(t *testing.T) {
		c := newTestClient(&fakeRunner{err: fmt.Errorf("exit status 1")})
		if _, err := c.Whoami(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestCreateDeployToken(t *testing.T) {
	tests := []struct {
		name      string
		app       string
		tokenName string
		expiry    time.Duration
		stdout    string
		want      string
		wantErr   error
	}{
		{
			name:      "single line token",
			tokenName: "github-actions-deploy-2026-08-31",
			stdout:    "FlyV1 fm2_abc123\n",
			want:      "FlyV1 fm2_abc123",
		},
		{
			name:      "skips leading blank lines",
			tokenName: "t",
			stdout:    "\n\nFlyV1 fm2_abc123\n",
			want:      "FlyV1 fm2_abc123",
		},
		{
			name:      "empty output",
			tokenName: "t",
			stdout:    "\n",
			wantErr:   ErrEmptyToken,
		},
		{
			name:      "scopes to app with expiry",
			app:       "skycast",
			tokenName: "t",
			expiry:    720 * time.Hour,
			stdout:    "tok",
			want:      "tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{stdout: tt.stdout}
			c := newTestClient(r)

			got, err := c.CreateDeployToken(context.Background(), tt.app, tt.tokenName, tt.expiry)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateDeployToken: %v", err)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}

			args := strings.Join(r.calls[0], " ")
			if !strings.Contains(args, "tokens create deploy --name "+tt.tokenName) {
				t.Errorf("args missing token name: %s", args)
			}
			if tt.app != "" && !strings.Contains(args, "--app "+tt.app) {
				t.Errorf("args missing app scope: %s", args)
			}
			if tt.expiry > 0 && !strings.Contains(args, "--expiry "+tt.expiry.String()) {
				t.Errorf("args missing expiry: %s", args)
			}
		})
	}
}

func TestSetSecrets(t *testing.T) {
	t.Run("sorted key=value pairs", func(t *testing.T) {
		r := &fakeRunner{}
		c := newTestClient(r)

		secrets := map[string]string{
			"SECRET_KEY":             "s3cret",
			"PIRATE_WEATHER_API_KEY": "pw123",
		}
		if err := c.SetSecrets(context.Background(), "skycast", secrets); err != nil {
			t.Fatalf("SetSecrets: %v", err)
		}

		got := strings.Join(r.calls[0], " ")
		want := "/usr/bin/flyctl secrets set --app skycast PIRATE_WEATHER_API_KEY=pw123 SECRET_KEY=s3cret"
		if got != want {
			t.Errorf("args = %q, want %q", got, want)
		}
	})

	t.Run("rejects empty set", func(t *testing.T) {
		c := newTestClient(&fakeRunner{})
		if err := c.SetSecrets(context.Background(), "skycast", nil); err == nil {
			t.Fatal("expected error for empty secret set")
		}
	})
}

func TestStatus(t *testing.T) {
	r := &fakeRunner{stdout: "App\n  Name = skycast\n"}
	c := newTestClient(r)

	out, err := c.Status(context.Background(), "skycast")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !strings.Contains(out, "skycast") {
		t.Errorf("output missing app name: %q", out)
	}
	if got := strings.Join(r.calls[0], " "); got != "/usr/bin/flyctl status --app skycast" {
		t.Errorf("args = %q", got)
	}
}
