package loader

import (
	"errors"
	"fmt"
)

// ErrArtifactLoad is the sentinel every load failure matches via errors.Is.
var ErrArtifactLoad = errors.New("artifact load failed")

// Artifact names used in load errors.
const (
	ArtifactManifest = "manifest"
	ArtifactProgram  = "program"  // compiled-program description (BMv2 JSON)
	ArtifactGraphs   = "graphs"   // control/parser graph description (DOT)
	ArtifactP4Info   = "p4info"   // interface/type-signature description
	ArtifactTopology = "topology" // topology description
)

// ArtifactLoadError is fatal and startup-only: loading is all-or-nothing and
// no partially-initialized model is ever exposed.
type ArtifactLoadError struct {
	Artifact string // which artifact failed
	Reason   string
	Cause    error
}

func (e *ArtifactLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("loading %s artifact: %s: %v", e.Artifact, e.Reason, e.Cause)
	}
	return fmt.Sprintf("loading %s artifact: %s", e.Artifact, e.Reason)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Cause }

func (e *ArtifactLoadError) Is(target error) bool { return target == ErrArtifactLoad }

func loadErr(artifact, reason string, cause error) error {
	return &ArtifactLoadError{Artifact: artifact, Reason: reason, Cause: cause}
}

func loadErrf(artifact string, format string, args ...any) error {
	return &ArtifactLoadError{Artifact: artifact, Reason: fmt.Sprintf(format, args...)}
}
