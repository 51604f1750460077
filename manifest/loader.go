package manifest

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/seldebrings/sls-copy-stack-tables/errors"
)

// DefaultPath is the service file read when no path is given.
const DefaultPath = "serverless.yml"

// Load reads and parses the manifest at path.
func Load(fs billy.Basic, path string) (*Manifest, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, errors.NewError("load", errors.CodeInvalidConfig,
			fmt.Errorf("read manifest %q: %w", path, err))
	}

	m, err := Parse(data)
	if err != nil {
		return nil, errors.NewError("load", errors.CodeInvalidConfig,
			fmt.Errorf("manifest %q: %w", path, err))
	}
	return m, nil
}

// Parse parses a YAML or JSON manifest. An empty document yields an empty manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
