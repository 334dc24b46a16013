// Package output creates termenv outputs sharing one color policy.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Profile selects a color profile.
type Profile func() termenv.Profile

// Detect returns the terminal's color profile, or Ascii when NO_COLOR is set.
func Detect() termenv.Profile {
	if noColor() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ANSI returns the basic ANSI profile understood by CI log viewers, or Ascii
// when NO_COLOR is set.
func ANSI() termenv.Profile {
	if noColor() {
		return termenv.Ascii
	}
	return termenv.ANSI
}

func noColor() bool {
	return os.Getenv("NO_COLOR") != ""
}

// New creates an output on w using the detected profile.
// A nil w writes to stderr.
func New(w io.Writer) *termenv.Output {
	return NewWithProfile(w, Detect)
}

// NewWithProfile creates an output on w using profile.
// A nil w writes to stderr.
func NewWithProfile(w io.Writer, profile Profile) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(profile()), termenv.WithTTY(true))
}
