// Package clipboard copies text to the system clipboard by piping it
// through whichever known utility is present on PATH.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoUtility is returned when no supported clipboard utility is installed.
var ErrNoUtility = errors.New("no clipboard utility found")

// utilities in preference order. pbcopy wins on macOS; xclip covers X11.
var utilities = []struct {
	name string
	args []string
}{
	{name: "pbcopy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
}

// Copier probes for clipboard utilities and pipes text into them.
type Copier struct {
	lookPath func(string) (string, error)
	pipe     func(bin string, args []string, text string) error
}

// New creates a copier backed by the real PATH and process execution.
func New() *Copier {
	return &Copier{
		lookPath: exec.LookPath,
		pipe:     runPipe,
	}
}

// Copy writes text to the clipboard and returns the name of the utility
// used. Returns ErrNoUtility when none of the known utilities exist.
func (c *Copier) Copy(text string) (string, error) {
	for _, util := range utilities {
		bin, err := c.lookPath(util.name)
		if err != nil {
			continue
		}
		if err := c.pipe(bin, util.args, text); err != nil {
			return "", fmt.Errorf("%s: %w", util.name, err)
		}
		return util.name, nil
	}
	return "", ErrNoUtility
}

func runPipe(bin string, args []string, text string) error {
	cmd := exec.Command(bin, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
