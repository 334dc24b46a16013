package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// messager describes an error that can report its own message without the chain.
type messager interface {
	Message() string
}

// metadataer describes an error carrying structured metadata.
type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one link of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries flattens err into its chain of messages. Joined errors
// contribute their branches in order. Links without a message of their own
// hand their metadata to the next link.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	var walk func(error)
	walk = func(current error) {
		for current != nil {
			if joined, ok := current.(interface{ Unwrap() []error }); ok {
				for _, branch := range joined.Unwrap() {
					walk(branch)
				}
				return
			}

			m, ok := current.(messager)
			if !ok {
				entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
				pending = nil
				return
			}

			var meta map[string]any
			if md, ok := current.(metadataer); ok {
				meta = md.Metadata()
			}
			if m.Message() == "" {
				pending = merge(pending, meta)
			} else {
				entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: merge(pending, meta)})
				pending = nil
			}
			current = errors.Unwrap(current)
		}
	}
	walk(err)

	return entries
}

func merge(a, b map[string]any) map[string]any {
	if len(a) == 0 {
		return b
	}
	out := maps.Clone(a)
	maps.Copy(out, b)
	return out
}

// formatErrorEntries renders entries as an "Error:" line followed by a
// "Caused by:" list. Metadata follows each message as key=value lines.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		body := strings.Split(entry.Message, "\n")
		for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
			body = append(body, strings.Split(fmt.Sprintf("%s=%v", key, entry.Metadata[key]), "\n")...)
		}

		switch i {
		case 0:
			lines = append(lines, "Error: "+body[0])
			for _, line := range body[1:] {
				lines = append(lines, "       "+line)
			}
		default:
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			lines = append(lines, "    → "+body[0])
			for _, line := range body[1:] {
				lines = append(lines, "      "+line)
			}
		}
	}

	return strings.Join(lines, "\n")
}
