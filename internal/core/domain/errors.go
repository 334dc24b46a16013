package domain

import "go.trai.ch/zerr"

// Error categories. Errors from building, packaging and analysis wrap exactly
// one of these so callers can classify them with errors.Is. Resolver failures
// wrap ErrDependencyResolutionFailed instead, and a cancelled context surfaces
// as the context's own error.
var (
	// ErrResourceNotFound is returned when a source or resource path cannot be resolved or opened.
	ErrResourceNotFound = zerr.New("resource not found")

	// ErrCompilationFailed is returned when the compiler reports failure.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrPackagingFailed is returned on I/O errors while laying out or writing an archive.
	ErrPackagingFailed = zerr.New("packaging failed")

	// ErrSessionAborted is returned when the caller stops waiting for an analysis session.
	ErrSessionAborted = zerr.New("session aborted")

	// ErrIllegalConfiguration is returned for invalid build declarations.
	ErrIllegalConfiguration = zerr.New("illegal configuration")
)

var (
	// ErrDuplicateName is returned when two artifacts are declared with the same name.
	ErrDuplicateName = zerr.Wrap(ErrIllegalConfiguration, "duplicate artifact name")

	// ErrMissingDependency is returned when an artifact depends on a name that is not declared.
	ErrMissingDependency = zerr.Wrap(ErrIllegalConfiguration, "missing dependency")

	// ErrCycleDetected is returned when named dependencies form a cycle.
	ErrCycleDetected = zerr.Wrap(ErrIllegalConfiguration, "cycle detected")

	// ErrAmbiguousManifest is returned when more than one manifest candidate exists in an output tree.
	ErrAmbiguousManifest = zerr.Wrap(ErrIllegalConfiguration, "ambiguous manifest")

	// ErrInvalidArtifactName is returned when an artifact name is empty or contains invalid characters.
	ErrInvalidArtifactName = zerr.Wrap(ErrIllegalConfiguration, "artifact name can only contain alphanumeric characters, dots, hyphens and underscores")

	// ErrBuilderReused is returned when Build is called a second time on the same builder.
	ErrBuilderReused = zerr.Wrap(ErrIllegalConfiguration, "builder already used")

	// ErrPathOutsideRoot is returned when a relative path escapes its root.
	ErrPathOutsideRoot = zerr.Wrap(ErrResourceNotFound, "path is outside root")

	// ErrResourceCollision is returned when a resource would overwrite compiled output or another resource.
	ErrResourceCollision = zerr.Wrap(ErrPackagingFailed, "resource already exists in output tree")

	// ErrSessionIncomplete is returned when a probe pass ends without publishing its model.
	ErrSessionIncomplete = zerr.Wrap(ErrCompilationFailed, "compilation ended before the model was ready")

	// ErrDependencyResolutionFailed is returned when a resolver cannot answer, as opposed to answering with nothing.
	ErrDependencyResolutionFailed = zerr.New("dependency resolution failed")
)

var (
	// ErrConfigReadFailed is returned when the suite file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read suite file")

	// ErrConfigParseFailed is returned when the suite file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse suite file")

	// ErrConfigNotFound is returned when no suite file can be found.
	ErrConfigNotFound = zerr.New("could not find testarc.yaml or testarc.hcl")

	// ErrUnsupportedConfigFormat is returned for suite files with an unknown extension.
	ErrUnsupportedConfigFormat = zerr.New("unsupported suite file format")

	// ErrArtifactNotFound is returned when a named artifact is not known.
	ErrArtifactNotFound = zerr.New("artifact not found")

	// ErrSuiteExecutionFailed is returned when a suite run fails.
	ErrSuiteExecutionFailed = zerr.New("suite execution failed")

	// ErrStoreCreateFailed is returned when the record store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create record store directory")

	// ErrStoreReadFailed is returned when a build record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build record")

	// ErrStoreUnmarshalFailed is returned when a build record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build record")

	// ErrStoreMarshalFailed is returned when a build record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build record")

	// ErrStoreWriteFailed is returned when a build record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build record")

	// ErrRegistryCacheCreateFailed is returned when the registry cache directory cannot be created.
	ErrRegistryCacheCreateFailed = zerr.New("failed to create registry cache directory")

	// ErrRegistryRequestFailed is returned when a registry request fails.
	ErrRegistryRequestFailed = zerr.Wrap(ErrDependencyResolutionFailed, "registry request failed")

	// ErrRegistryParseFailed is returned when a registry response cannot be parsed.
	ErrRegistryParseFailed = zerr.Wrap(ErrDependencyResolutionFailed, "failed to parse registry response")

	// ErrRegistryDigestMismatch is returned when a downloaded archive does not match its published digest.
	ErrRegistryDigestMismatch = zerr.Wrap(ErrDependencyResolutionFailed, "archive digest mismatch")

	// ErrInvalidIdentifier is returned when a registry identifier is not of the form name@version.
	ErrInvalidIdentifier = zerr.Wrap(ErrDependencyResolutionFailed, "invalid identifier, expected format: name@version")
)
