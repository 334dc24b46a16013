package domain

import "path/filepath"

const (
	// TestarcDirName is the name of the internal workspace directory.
	TestarcDirName = ".testarc"

	// StoreDirName is the name of the build record store directory.
	StoreDirName = "store"

	// ArtifactsDirName is the name of the directory kept artifacts are built in.
	ArtifactsDirName = "artifacts"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// RegistryDirName is the name of the registry resolver cache directory.
	RegistryDirName = "registry"

	// SuiteFileName is the name of the YAML suite file.
	SuiteFileName = "testarc.yaml"

	// SuiteHCLFileName is the name of the HCL suite file.
	SuiteHCLFileName = "testarc.hcl"

	// TempDirPattern is the pattern used for per-build temporary roots.
	TempDirPattern = "testarc-*"

	// ClassesDirName is the name of the compiled output directory inside a build root.
	ClassesDirName = "classes"

	// ArchiveFileName is the name of the archive produced inside a build root.
	ArchiveFileName = "compiled.zip"

	// ProbeDirName is the name of the directory holding probe sessions, next to the archive.
	ProbeDirName = "probe"

	// ManifestDirName is the reserved directory containing the archive manifest.
	ManifestDirName = "META-INF"

	// ManifestFileName is the reserved name of the archive manifest.
	ManifestFileName = "MANIFEST.MF"

	// ExportDataExt is the file extension of compiled package export data.
	ExportDataExt = ".gox"

	// DirectivePrefix introduces a marker directive comment.
	DirectivePrefix = "//testarc:"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// ManifestPath is the logical path of the manifest inside an archive.
const ManifestPath = ManifestDirName + "/" + ManifestFileName

// DefaultTestarcPath returns the default root directory for testarc metadata.
func DefaultTestarcPath() string {
	return TestarcDirName
}

// DefaultStorePath returns the default path for the build record store.
// It joins .testarc and store.
func DefaultStorePath() string {
	return filepath.Join(TestarcDirName, StoreDirName)
}

// DefaultArtifactsPath returns the default directory kept artifacts are built in.
func DefaultArtifactsPath() string {
	return filepath.Join(TestarcDirName, ArtifactsDirName)
}

// DefaultRegistryCachePath returns the default path for the registry resolver cache.
// It joins .testarc, cache, and registry.
func DefaultRegistryCachePath() string {
	return filepath.Join(TestarcDirName, CacheDirName, RegistryDirName)
}
