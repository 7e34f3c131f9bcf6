package intent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Intents []Intent `json:"intents" yaml:"intents"`
}

// Load reads an intents catalog ({"intents": [...]}) from a JSON or YAML file.
func Load(path string) (*MemoryStore, error) {
	errb := oops.In("intent").With("path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errb.Wrapf(err, "read catalog")
	}

	var file catalogFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, errb.Wrapf(err, "parse catalog")
	}

	if len(file.Intents) == 0 {
		return nil, errb.Errorf("catalog has no intents")
	}

	store, err := NewMemoryStore(file.Intents)
	if err != nil {
		return nil, errb.Wrap(err)
	}
	return store, nil
}
