package compilation

import "context"

// Artifact is the immutable result of a build, or an externally supplied archive.
// It may be shared between goroutines and used as a dependency of later builds.
type Artifact struct {
	manager   *Manager
	archive   string
	classes   string
	classpath []string
	digest    string
	entries   []string
}

// Archive returns the path of the archive.
func (a *Artifact) Archive() string {
	return a.archive
}

// Classes returns the compiled output directory, or "" for external archives.
func (a *Artifact) Classes() string {
	return a.classes
}

// Classpath returns the archives the artifact was compiled against, in order.
func (a *Artifact) Classpath() []string {
	return append([]string(nil), a.classpath...)
}

// Digest returns the xxhash digest of the archive, or "" for external archives.
func (a *Artifact) Digest() string {
	return a.digest
}

// Entries returns the archive entry names in order.
func (a *Artifact) Entries() []string {
	return append([]string(nil), a.entries...)
}

// Analyze opens an analysis session over the artifact and its classpath.
// The session stays live until the manager is cleaned up.
func (a *Artifact) Analyze(ctx context.Context) (*Session, error) {
	return a.manager.probe(ctx, a)
}
