// Package storage keeps the per-comparison working directories: uploaded
// editions and the artifacts produced from them.
package storage

import (
	"errors"
	"io"
)

var (
	// ErrNotFound is returned for a session or file that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for ids or file names that could escape
	// the session directory.
	ErrInvalidName = errors.New("invalid name")
)

// Object describes a stored file.
type Object struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	// Fingerprint is the hex BLAKE2b-256 digest of the content.
	Fingerprint string `json:"fingerprint"`
}

// Storage defines the interface for storing and retrieving session files.
type Storage interface {
	// NewSession allocates an empty session and returns its id.
	NewSession() (string, error)
	// Put stores content under name inside the session.
	Put(sessionID, name string, r io.Reader) (Object, error)
	// Get opens a stored file.
	Get(sessionID, name string) (io.ReadCloser, error)
	// GetPath returns the file path for a stored file.
	GetPath(sessionID, name string) (string, error)
	// Dir returns the session directory.
	Dir(sessionID string) (string, error)
	// Sessions lists existing session ids.
	Sessions() ([]string, error)
	// Delete removes a session and everything in it.
	Delete(sessionID string) error
}
