package manifest

import "errors"

var (
	// ErrIncompatibleVersion is returned for manifests written by a newer format.
	ErrIncompatibleVersion = errors.New("manifest: incompatible format version")
	// ErrNotFound is returned when no dictionary has been published.
	ErrNotFound = errors.New("manifest: not found")
	// ErrUnknownArtifact is returned for paths the manifest does not list.
	ErrUnknownArtifact = errors.New("manifest: unknown artifact")
)
