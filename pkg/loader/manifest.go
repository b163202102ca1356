package loader

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Manifest names the four artifact payloads of a bundle. Paths are relative
// to the manifest file's directory unless absolute.
type Manifest struct {
	// Program is the compiled-program description (BMv2 JSON).
	Program string `yaml:"program" validate:"required"`
	// Graphs is the directory of p4c-graphs DOT files.
	Graphs string `yaml:"graphs" validate:"required"`
	// P4Info is the action-signature description (protobuf text format).
	P4Info string `yaml:"p4info" validate:"required"`
	// Topology is the topology description (JSON).
	Topology string `yaml:"topology" validate:"required"`
}

var validate = validator.New()

// ReadManifest parses and validates a bundle manifest and resolves its
// paths against the manifest directory.
func ReadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(ArtifactManifest, "read "+path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, loadErr(ArtifactManifest, "parse "+path, err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, loadErr(ArtifactManifest, "validate "+path, err)
	}

	dir := filepath.Dir(path)
	m.Program = resolve(dir, m.Program)
	m.Graphs = resolve(dir, m.Graphs)
	m.P4Info = resolve(dir, m.P4Info)
	m.Topology = resolve(dir, m.Topology)
	return &m, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
