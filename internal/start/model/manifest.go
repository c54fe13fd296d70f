package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestFileName is the starter metadata file shipped inside templates.
const ManifestFileName = "ionic.starter.json"

// StarterManifest is the metadata a starter template ships with.
type StarterManifest struct {
	Name    string `json:"name,omitempty"`
	Welcome string `json:"welcome,omitempty"`
}

// ReadManifest parses the manifest at path.
func ReadManifest(path string) (*StarterManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m StarterManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid starter manifest %s: %w", path, err)
	}
	return &m, nil
}
