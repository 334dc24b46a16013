package domain

import "time"

// BuildRecord describes an artifact kept on disk after a suite run.
type BuildRecord struct {
	Name      string    `json:"name,omitzero"`
	Archive   string    `json:"archive,omitzero"`
	Classes   string    `json:"classes,omitzero"`
	Root      string    `json:"root,omitzero"`
	Classpath []string  `json:"classpath,omitempty"`
	Digest    string    `json:"digest,omitzero"`
	Entries   []string  `json:"entries,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ArchiveInfo describes a written archive.
type ArchiveInfo struct {
	Path    string
	Entries []string
	Digest  string
}
