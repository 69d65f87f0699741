package manifest

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	apperrors "github.com/olusolaa/anypoint-reconciler/internal/errors"
)

type yamlManifest struct {
	Resources []yamlResource `yaml:"resources"`
}

type yamlResource struct {
	Kind  string         `yaml:"kind"`
	Name  string         `yaml:"name"`
	State string         `yaml:"state"`
	Spec  map[string]any `yaml:"spec"`
}

// LoadYAML parses a manifest of the form:
//
//	resources:
//	  - kind: mq-destination
//	    name: orders
//	    state: present
//	    spec:
//	      queue_id: orders
//
// An empty state selects the resource kind's default lifecycle state.
func LoadYAML(path string) ([]domain.ResourceBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeManifestParse, "reading manifest %s", path)
	}

	var doc yamlManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperrors.Wrapf(err, apperrors.CodeManifestParse, "parsing YAML manifest %s", path)
	}

	blocks := make([]domain.ResourceBlock, 0, len(doc.Resources))
	for i, res := range doc.Resources {
		if res.Kind == "" {
			return nil, apperrors.Newf(apperrors.CodeManifestInvalid,
				"resource %d in %s is missing 'kind'", i, path)
		}
		if res.Name == "" {
			return nil, apperrors.Newf(apperrors.CodeManifestInvalid,
				"resource %d (%s) in %s is missing 'name'", i, res.Kind, path)
		}
		spec := res.Spec
		if spec == nil {
			spec = map[string]any{}
		}
		blocks = append(blocks, domain.ResourceBlock{
			Kind:  domain.ResourceKind(res.Kind),
			Name:  res.Name,
			State: domain.LifecycleState(res.State),
			Spec:  spec,
		})
	}
	return blocks, nil
}
