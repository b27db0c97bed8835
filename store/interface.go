package store

import (
	"errors"

	"github.com/josephgoksu/chorepay/models"
)

var (
	// ErrConflict is returned by Save when the snapshot was read at a version
	// that is no longer the stored one. Callers re-read and retry.
	ErrConflict = errors.New("task document changed since it was read")

	// ErrChecksum is returned by Load when the data file does not match its checksum sidecar.
	ErrChecksum = errors.New("task document checksum mismatch")
)

// TaskStore defines the interface for task persistence.
// The whole task list is read and written as one document (a Snapshot);
// every mutation is a read-modify-write cycle guarded by the snapshot version.
type TaskStore interface {
	// Initialize configures the store with backend-specific settings
	// such as the data file path and format.
	// It should be called before any other store operations.
	Initialize(config map[string]string) error

	// Load returns the current document. A missing document is created
	// empty and returned at version 0.
	Load() (models.Snapshot, error)

	// Save replaces the document with snap.Tasks.
	// snap.Version must equal the stored version, otherwise ErrConflict is
	// returned and nothing is written. The returned snapshot carries the new version.
	Save(snap models.Snapshot) (models.Snapshot, error)

	// Backup copies the current document to destinationPath.
	Backup(destinationPath string) error

	// Restore replaces the current document with the one at sourcePath.
	// The restored document gets a version newer than any snapshot read before,
	// so in-flight read-modify-write cycles fail with ErrConflict.
	Restore(sourcePath string) error

	// Close releases any resources held by the store, such as file locks or
	// database connections.
	Close() error
}

// Adopter is implemented by stores whose document may be edited by hand.
type Adopter interface {
	// Adopt accepts the stored document as it is when it fails its integrity
	// check but still decodes and validates. It reports whether anything had
	// to be accepted.
	Adopt() (bool, error)
}
