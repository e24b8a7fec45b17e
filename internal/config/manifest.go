package config

import (
	"bytes"
	stderrors "errors"
	"io"
	iofs "io/fs"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
)

// ManifestFile is the template-root file describing how a template is
// materialized. It is never copied into a generated project.
const ManifestFile = "scaffold.yaml"

// Manifest describes a template.
type Manifest struct {
	Version int `yaml:"version"`

	// Substitute lists slash-separated paths, relative to the template root,
	// of text files that receive token substitution.
	Substitute []string `yaml:"substitute"`

	// Env holds extra entries for the generated project's .env file.
	Env map[string]string `yaml:"env,omitempty"`
}

// DefaultManifest is used when a template ships no manifest.
func DefaultManifest() Manifest {
	return Manifest{Version: 1, Substitute: []string{"README.md"}}
}

// LoadManifest reads and validates ManifestFile from the root of tmpl.
// Returns DefaultManifest if the file does not exist.
// Returns E_TEMPLATE_INVALID for malformed or invalid manifests.
func LoadManifest(tmpl iofs.FS) (Manifest, error) {
	data, err := iofs.ReadFile(tmpl, ManifestFile)
	if err != nil {
		if stderrors.Is(err, iofs.ErrNotExist) {
			return DefaultManifest(), nil
		}
		return Manifest{}, errors.Wrap(errors.ETemplateInvalid, "failed to read "+ManifestFile, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes manifest YAML strictly (unknown fields are rejected)
// and validates it.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if stderrors.Is(err, io.EOF) {
			return Manifest{}, errors.New(errors.ETemplateInvalid, ManifestFile+" is empty")
		}
		return Manifest{}, errors.New(errors.ETemplateInvalid, "invalid yaml: "+err.Error())
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks the manifest version, substitute paths and env keys.
func (m Manifest) Validate() error {
	if m.Version != 1 {
		return errors.New(errors.ETemplateInvalid, "version must be 1")
	}
	for _, p := range m.Substitute {
		if !iofs.ValidPath(p) || p == "." || strings.Contains(p, `\`) {
			return errors.New(errors.ETemplateInvalid,
				"substitute entry "+quote(p)+" must be a relative slash-separated path inside the template")
		}
		if p == ManifestFile {
			return errors.New(errors.ETemplateInvalid, "substitute must not list "+ManifestFile)
		}
	}
	for key := range m.Env {
		if key == "" || strings.ContainsRune(key, '=') || strings.IndexFunc(key, unicode.IsSpace) >= 0 {
			return errors.New(errors.ETemplateInvalid, "env key "+quote(key)+" is not a valid variable name")
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}
