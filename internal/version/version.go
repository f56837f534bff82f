// Package version exposes build version information.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info returns a human-readable version string.
func Info() string {
	s := "flyward " + Version
	if Commit != "" {
		s += fmt.Sprintf(" (%s)", Commit)
	}
	if Date != "" {
		s += " built " + Date
	}
	return s
}
