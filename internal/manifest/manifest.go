// Package manifest loads declared resource blocks from YAML or HCL
// manifest files. Both loaders keep explicitly null spec values as nil
// map entries so that a declared null can be told apart from an
// unspecified field later on.
package manifest

import (
	"path/filepath"
	"strings"

	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
)

// Load reads a manifest file and returns its resource blocks in
// declaration order. The format is picked by extension: .yaml and .yml
// parse as YAML, .hcl parses as HCL.
func Load(path string) ([]domain.ResourceBlock, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".hcl":
		return LoadHCL(path)
	default:
		return nil, errors.Newf(errors.CodeManifestParse,
			"unsupported manifest extension %q: expected .yaml, .yml or .hcl", filepath.Ext(path))
	}
}
