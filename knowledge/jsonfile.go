package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONFileSource loads documents from a JSON file of the shape
// {"documents": [{"id": ..., "content": ..., "metadata": {...}}]}.
type JSONFileSource struct {
	path string
}

// NewJSONFileSource creates a source reading the given file path.
func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

// Name implements Source
func (s *JSONFileSource) Name() string {
	return filepath.Base(s.path)
}

type documentFile struct {
	Documents []Document `json:"documents"`
}

// Load implements Source
func (s *JSONFileSource) Load(ctx context.Context) ([]Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var file documentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	return file.Documents, nil
}

var _ Source = (*JSONFileSource)(nil)
