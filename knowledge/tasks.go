package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TaskPromptSource flattens task-oriented prompt pairs into synthetic
// documents. The file maps categories to task entries, either directly
// ({"greetings": [...]}) or nested under a "buyer_tasks" wrapper. Each entry
// carries an English prompt and its Tanglish variant; both land in one
// document so a query in either register retrieves it.
type TaskPromptSource struct {
	path     string
	idPrefix string
}

// NewTaskPromptSource creates a task-prompt source. idPrefix distinguishes
// document IDs between the base and extended prompt files (e.g. "task",
// "extended").
func NewTaskPromptSource(path, idPrefix string) *TaskPromptSource {
	if idPrefix == "" {
		idPrefix = "task"
	}
	return &TaskPromptSource{path: path, idPrefix: idPrefix}
}

// Name implements Source
func (s *TaskPromptSource) Name() string {
	return filepath.Base(s.path)
}

type taskEntry struct {
	Task     string `json:"task"`
	Prompt   string `json:"prompt"`
	Tanglish string `json:"tanglish"`
}

// Load implements Source
func (s *TaskPromptSource) Load(ctx context.Context) ([]Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	// Unwrap the optional "buyer_tasks" envelope
	categories := root
	if raw, ok := root["buyer_tasks"]; ok {
		if err := json.Unmarshal(raw, &categories); err != nil {
			return nil, fmt.Errorf("parse %s: buyer_tasks: %w", s.path, err)
		}
	}

	// Map iteration order is random; sort categories so corpus order is stable.
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var docs []Document
	for _, name := range names {
		var entries []taskEntry
		if err := json.Unmarshal(categories[name], &entries); err != nil {
			return nil, fmt.Errorf("parse %s: category %s: %w", s.path, name, err)
		}
		for _, entry := range entries {
			docs = append(docs, flattenTask(entry, s.idPrefix))
		}
	}

	return docs, nil
}

// flattenTask builds the synthetic document for one task entry.
func flattenTask(entry taskEntry, idPrefix string) Document {
	topic := strings.ReplaceAll(entry.Task, "_", " ")
	return Document{
		ID:      fmt.Sprintf("%s_%s", idPrefix, entry.Task),
		Content: fmt.Sprintf("Task: %s. English: %s Tanglish: %s", topic, entry.Prompt, entry.Tanglish),
		Meta: map[string]string{
			"category": "task",
			"topic":    entry.Task,
		},
	}
}

var _ Source = (*TaskPromptSource)(nil)
