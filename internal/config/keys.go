package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// KeyFile is the on-disk layout of an environment → key mapping:
//
//	default: dev
//	environments:
//	  dev: "..."
//	  qa: "..."
type KeyFile struct {
	Default      string            `yaml:"default" toml:"default"`
	Environments map[string]string `yaml:"environments" toml:"environments"`
}

// LoadKeyFile parses a YAML (.yaml, .yml) or TOML (.toml) key file.
func LoadKeyFile(path string) (*KeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var kf KeyFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &kf)
	case ".toml":
		err = toml.Unmarshal(data, &kf)
	default:
		return nil, fmt.Errorf("unsupported key file format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}

	if len(kf.Environments) == 0 {
		return nil, fmt.Errorf("key file %s defines no environments", path)
	}
	if kf.Default != "" {
		if _, ok := kf.Environments[kf.Default]; !ok {
			return nil, fmt.Errorf("key file %s: default environment %q is not defined", path, kf.Default)
		}
	}

	return &kf, nil
}
