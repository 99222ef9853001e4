package scoring

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ScoreStorage defines the interface for loading and saving score data.
// This allows for mocking the storage layer during tests.
type ScoreStorage interface {
	// LoadAll loads all score entries from the persistence layer.
	LoadAll() ([]ScoreHistoryEntry, error)
	// SaveAll saves a slice of score entries to the persistence layer, overwriting existing data.
	SaveAll(entries []ScoreHistoryEntry) error
}

// JSONFileStorage stores score entries as a stream of JSON objects, one per line.
type JSONFileStorage struct {
	path string
}

// DefaultPath is the scores file under the user's config directory.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "questguild", "scores.json"), nil
}

// NewJSONFileStorage creates a JSONFileStorage at path, or at DefaultPath
// when path is empty.
func NewJSONFileStorage(path string) (*JSONFileStorage, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &JSONFileStorage{path: path}, nil
}

// LoadAll reads and decodes all score entries from the JSON file.
func (jfs *JSONFileStorage) LoadAll() ([]ScoreHistoryEntry, error) {
	file, err := os.Open(jfs.path)
	// If the file doesn't exist, it's not an error; return an empty slice.
	if errors.Is(err, os.ErrNotExist) {
		return []ScoreHistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening scores file for reading: %w", err)
	}
	defer file.Close()

	entries := make([]ScoreHistoryEntry, 0)
	decoder := json.NewDecoder(file)
	for {
		var entry ScoreHistoryEntry
		if err := decoder.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error decoding JSON entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// SaveAll encodes and writes all score entries to the JSON file.
func (jfs *JSONFileStorage) SaveAll(entries []ScoreHistoryEntry) error {
	if err := os.MkdirAll(filepath.Dir(jfs.path), 0755); err != nil {
		return fmt.Errorf("error creating scores directory: %w", err)
	}

	file, err := os.OpenFile(jfs.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error opening scores file for writing: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, entry := range entries {
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("error encoding JSON entry: %w", err)
		}
	}

	return writer.Flush()
}
