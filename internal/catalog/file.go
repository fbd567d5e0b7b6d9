package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileCatalog struct {
	Models []Descriptor `json:"models" yaml:"models"`
}

// LoadFile reads an extra catalog from a .yaml/.yml or .json file. Every
// entry must validate; entries without a kind default to text.
func LoadFile(path string) (*StaticSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var fc fileCatalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	case ".json":
		err = json.Unmarshal(b, &fc)
	default:
		return nil, fmt.Errorf("unsupported catalog extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	files := make(map[string]string, len(fc.Models))
	for i := range fc.Models {
		if fc.Models[i].Kind == "" {
			fc.Models[i].Kind = KindText
		}
		if err := fc.Models[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		key := strings.ToLower(fc.Models[i].Filename)
		if other, ok := files[key]; ok && other != fc.Models[i].ID {
			return nil, fmt.Errorf("catalog %s: descriptors %q and %q share filename %s", path, other, fc.Models[i].ID, fc.Models[i].Filename)
		}
		files[key] = fc.Models[i].ID
	}
	return NewStaticSource(filepath.Base(path), fc.Models), nil
}
