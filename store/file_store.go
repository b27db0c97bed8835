package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/josephgoksu/chorepay/models"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"
)

const (
	defaultDataFile   = "tasks.json"
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"
	lockSuffix        = ".lock"

	// DefaultWriteAttempts bounds the retried write of the data file.
	DefaultWriteAttempts = 5
	// DefaultRetryDelay is the fixed pause between write attempts.
	DefaultRetryDelay = 100 * time.Millisecond
)

// FileTaskStore implements TaskStore with a single document on an afero.Fs.
// It supports JSON, YAML, and TOML formats. On the OS filesystem an
// inter-process flock guards every load and save.
type FileTaskStore struct {
	fs       afero.Fs
	filePath string
	format   string
	mu       sync.Mutex
	flk      *flock.Flock

	WriteAttempts int
	RetryDelay    time.Duration
}

var _ Adopter = (*FileTaskStore)(nil)

// NewFileTaskStore creates a store on the OS filesystem.
// It does not initialize the store; Initialize must be called separately.
func NewFileTaskStore() *FileTaskStore {
	return NewFileTaskStoreWithFs(afero.NewOsFs())
}

// NewFileTaskStoreWithFs creates a store on the given filesystem.
func NewFileTaskStoreWithFs(fsys afero.Fs) *FileTaskStore {
	return &FileTaskStore{
		fs:            fsys,
		WriteAttempts: DefaultWriteAttempts,
		RetryDelay:    DefaultRetryDelay,
	}
}

// Path returns the data file path.
func (s *FileTaskStore) Path() string {
	return s.filePath
}

// Initialize configures the FileTaskStore.
// It expects a 'dataFile' key in the config map specifying the path to the data file.
// If not provided, it defaults to 'tasks.json' in the current working directory.
func (s *FileTaskStore) Initialize(config map[string]string) error {
	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultDataFile
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFileFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	if s.filePath == defaultDataFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if _, ok := s.fs.(*afero.OsFs); ok {
		s.flk = flock.New(s.filePath + lockSuffix)
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	_, err = s.loadInternal()
	return err
}

// lock takes the in-process mutex and, on the OS filesystem, the file lock.
func (s *FileTaskStore) lock() (func(), error) {
	s.mu.Lock()
	if s.flk == nil {
		return s.mu.Unlock, nil
	}
	if err := s.flk.Lock(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("could not lock %s: %w", s.filePath, err)
	}
	return func() {
		_ = s.flk.Unlock()
		s.mu.Unlock()
	}, nil
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Load returns the current document.
func (s *FileTaskStore) Load() (models.Snapshot, error) {
	unlock, err := s.lock()
	if err != nil {
		return models.Snapshot{}, err
	}
	defer unlock()

	return s.loadInternal()
}

// loadInternal reads the data file, verifies its checksum and decodes it.
// A missing file is recreated as an empty document.
func (s *FileTaskStore) loadInternal() (models.Snapshot, error) {
	checksumFilePath := s.filePath + checksumSuffix

	data, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			empty := models.Snapshot{Tasks: []models.Task{}}
			if err := s.writeWithRetry(empty); err != nil {
				return models.Snapshot{}, fmt.Errorf("failed to create data file %s: %w", s.filePath, err)
			}
			return empty, nil
		}
		return models.Snapshot{}, fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	// Documents written before checksums existed have no sidecar; the next save creates one.
	if expected, err := afero.ReadFile(s.fs, checksumFilePath); err == nil {
		if calculateChecksum(data) != strings.TrimSpace(string(expected)) {
			return models.Snapshot{}, fmt.Errorf("%s: %w", s.filePath, ErrChecksum)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return models.Snapshot{}, fmt.Errorf("error checking checksum file %s: %w", checksumFilePath, err)
	}

	snap, err := decodeSnapshot(data, s.format)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode %s: %w", s.filePath, err)
	}
	return snap, nil
}

// Adopt renews the checksum of a hand-edited document. The document must
// still decode and every task must validate; otherwise the mismatch stands.
func (s *FileTaskStore) Adopt() (bool, error) {
	unlock, err := s.lock()
	if err != nil {
		return false, err
	}
	defer unlock()

	_, err = s.loadInternal()
	if err == nil || !errors.Is(err, ErrChecksum) {
		return false, err
	}

	data, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		return false, fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}
	snap, err := decodeSnapshot(data, s.format)
	if err != nil {
		return false, fmt.Errorf("edited %s no longer decodes: %w", s.filePath, err)
	}
	for _, t := range snap.Tasks {
		if err := models.ValidateStruct(t); err != nil {
			return false, fmt.Errorf("edited %s has an invalid task %q: %w", s.filePath, t.ID, err)
		}
	}

	// Only the sidecar changes, so file watchers on the document stay quiet.
	checksumFilePath := s.filePath + checksumSuffix
	tmp := checksumFilePath + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(calculateChecksum(data)), 0o644); err != nil {
		return false, fmt.Errorf("failed to write checksum for %s: %w", s.filePath, err)
	}
	if err := s.fs.Rename(tmp, checksumFilePath); err != nil {
		_ = s.fs.Remove(tmp)
		return false, fmt.Errorf("failed to replace checksum for %s: %w", s.filePath, err)
	}
	slog.Info("accepted hand-edited task document", "path", s.filePath, "tasks", len(snap.Tasks))
	return true, nil
}

// decodeSnapshot parses a document in the given format. A JSON document
// that is a bare array of tasks is accepted and loads at version 0.
func decodeSnapshot(data []byte, format string) (models.Snapshot, error) {
	var snap models.Snapshot
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		snap.Tasks = []models.Task{}
		return snap, nil
	}

	switch format {
	case formatJSON:
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &snap.Tasks); err != nil {
				return models.Snapshot{}, fmt.Errorf("unmarshal legacy task array: %w", err)
			}
		} else if err := json.Unmarshal(trimmed, &snap); err != nil {
			return models.Snapshot{}, fmt.Errorf("unmarshal JSON: %w", err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(trimmed, &snap); err != nil {
			return models.Snapshot{}, fmt.Errorf("unmarshal YAML: %w", err)
		}
	case formatTOML:
		if err := toml.Unmarshal(trimmed, &snap); err != nil {
			return models.Snapshot{}, fmt.Errorf("unmarshal TOML: %w", err)
		}
	default:
		return models.Snapshot{}, fmt.Errorf("unsupported data format: %s", format)
	}

	if snap.Tasks == nil {
		snap.Tasks = []models.Task{}
	}
	return snap, nil
}

func encodeSnapshot(snap models.Snapshot, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		return json.MarshalIndent(snap, "", "  ")
	case formatYAML:
		return yaml.Marshal(snap)
	case formatTOML:
		return toml.Marshal(snap)
	default:
		return nil, fmt.Errorf("unsupported data format: %s", format)
	}
}

// Save writes snap if its version is still the stored one.
func (s *FileTaskStore) Save(snap models.Snapshot) (models.Snapshot, error) {
	unlock, err := s.lock()
	if err != nil {
		return models.Snapshot{}, err
	}
	defer unlock()

	current, err := s.loadInternal()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to reload tasks before save: %w", err)
	}
	if current.Version != snap.Version {
		return models.Snapshot{}, fmt.Errorf("save at version %d, stored %d: %w", snap.Version, current.Version, ErrConflict)
	}

	next := models.Snapshot{
		Version:   current.Version + 1,
		UpdatedAt: time.Now().UTC(),
		Tasks:     snap.Tasks,
	}
	if next.Tasks == nil {
		next.Tasks = []models.Task{}
	}
	if err := s.writeWithRetry(next); err != nil {
		return models.Snapshot{}, err
	}
	return next, nil
}

// writeWithRetry encodes and writes the document, retrying transient failures
// with a fixed delay. The parent directory is recreated before each retry.
func (s *FileTaskStore) writeWithRetry(snap models.Snapshot) error {
	data, err := encodeSnapshot(snap, s.format)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks to %s: %w", s.format, err)
	}

	attempts := s.WriteAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = s.writeOnce(data); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		slog.Warn("task document write failed, retrying",
			"path", s.filePath, "attempt", attempt, "error", lastErr)
		time.Sleep(s.RetryDelay)
		if dir := filepath.Dir(s.filePath); dir != "." && dir != "" {
			_ = s.fs.MkdirAll(dir, 0o755)
		}
	}
	return fmt.Errorf("write %s failed after %d attempts: %w", s.filePath, attempts, lastErr)
}

// writeOnce writes data to a temp file, then its checksum, then renames both into place.
func (s *FileTaskStore) writeOnce(data []byte) error {
	tempFilePath := s.filePath + ".tmp"
	checksumFilePath := s.filePath + checksumSuffix
	tempChecksumFilePath := checksumFilePath + ".tmp"

	defer func() { _ = s.fs.Remove(tempFilePath) }()
	defer func() { _ = s.fs.Remove(tempChecksumFilePath) }()

	if err := afero.WriteFile(s.fs, tempFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary data file %s: %w", tempFilePath, err)
	}
	if err := afero.WriteFile(s.fs, tempChecksumFilePath, []byte(calculateChecksum(data)), 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary checksum file %s: %w", tempChecksumFilePath, err)
	}
	if err := s.fs.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tempFilePath, s.filePath, err)
	}
	if err := s.fs.Rename(tempChecksumFilePath, checksumFilePath); err != nil {
		return fmt.Errorf("data file %s updated but checksum %s was not: %w", s.filePath, checksumFilePath, err)
	}
	return nil
}

// Backup creates a copy of the current data file at destinationPath.
func (s *FileTaskStore) Backup(destinationPath string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	input, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read source file %s for backup: %w", s.filePath, err)
	}
	if dir := filepath.Dir(destinationPath); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, destinationPath, input, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file to %s: %w", destinationPath, err)
	}
	return nil
}

// Restore replaces the current document with the one at sourcePath.
// The source is decoded first so a corrupt backup never replaces good data.
func (s *FileTaskStore) Restore(sourcePath string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	sourceData, err := afero.ReadFile(s.fs, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source backup file %s: %w", sourcePath, err)
	}
	restored, err := decodeSnapshot(sourceData, s.format)
	if err != nil {
		return fmt.Errorf("backup %s is not a valid task document: %w", sourcePath, err)
	}

	var version int64
	if current, err := s.loadInternal(); err == nil {
		version = current.Version
	} else if !errors.Is(err, ErrChecksum) {
		return fmt.Errorf("failed to read current tasks before restore: %w", err)
	}
	if restored.Version > version {
		version = restored.Version
	}

	restored.Version = version + 1
	restored.UpdatedAt = time.Now().UTC()
	return s.writeWithRetry(restored)
}

// Close releases the file lock, if any.
func (s *FileTaskStore) Close() error {
	if s.flk != nil {
		return s.flk.Close()
	}
	return nil
}
