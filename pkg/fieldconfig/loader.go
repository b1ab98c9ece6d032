package fieldconfig

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Fields map[string]FieldConfig `yaml:"fields"`
}

// LoadFile reads a YAML or JSON configuration document from disk.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("fieldconfig: read %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadFS reads a YAML or JSON configuration document from fsys.
func LoadFS(fsys fs.FS, path string) (Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("fieldconfig: read %s: %w", path, err)
	}
	return parse(data, path)
}

// Parse decodes a configuration document. An empty document is a valid,
// empty configuration.
func Parse(data []byte) (Config, error) {
	return parse(data, "<inline>")
}

func parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(nil), nil
	}
	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("fieldconfig: parse %s: %w", source, err)
	}

	seen := make(map[string]string, len(doc.Fields))
	for key, cfg := range doc.Fields {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return Config{}, fmt.Errorf("fieldconfig: %s defines an empty field key", source)
		}
		if previous, exists := seen[trimmed]; exists {
			return Config{}, fmt.Errorf("fieldconfig: %s defines field %q twice (%q, %q)", source, trimmed, previous, key)
		}
		seen[trimmed] = key
		cfg.OriginalKey = key
		doc.Fields[key] = cfg
	}
	return New(doc.Fields), nil
}
