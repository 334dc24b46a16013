package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"go.trai.ch/testarc/internal/app"
	"go.trai.ch/testarc/internal/engine/suite"
	"go.trai.ch/testarc/internal/ui/output"
	"go.trai.ch/testarc/internal/ui/style"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeSummaries prints one line per artifact followed by its archive, when
// kept, and its lookups.
func writeSummaries(w io.Writer, summaries []app.ArtifactSummary) error {
	out := output.New(w)
	check := out.String(style.Check).Foreground(termenv.RGBColor(string(style.Green))).String()

	for _, s := range summaries {
		name := out.String(s.Name).Foreground(termenv.RGBColor(string(style.Iris))).Bold().String()
		digest := out.String(s.Digest).Foreground(termenv.RGBColor(string(style.Slate))).String()
		if _, err := fmt.Fprintf(w, "%s %s %s (%d entries)\n", check, name, digest, len(s.Entries)); err != nil {
			return err
		}
		if s.Archive != "" {
			if _, err := fmt.Fprintf(w, "  archive: %s\n", s.Archive); err != nil {
				return err
			}
		}
		if err := writeLookups(w, s.Lookups, "  "); err != nil {
			return err
		}
	}
	return nil
}

func writeLookups(w io.Writer, lookups []suite.Lookup, indent string) error {
	out := output.New(w)
	for _, l := range lookups {
		result := l.Object
		if !l.Found {
			result = out.String("not found").Foreground(termenv.RGBColor(string(style.Yellow))).String()
		}
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, l.Name, result); err != nil {
			return err
		}
	}
	return nil
}
