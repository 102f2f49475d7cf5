package storage

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// sessionIDLen is how much of a UUID names a session directory.
const sessionIDLen = 8

var sessionIDRe = regexp.MustCompile(`^[0-9a-f]{8}$`)

// LocalStorage implements the Storage interface for the local filesystem.
// Each session is a directory directly under basePath.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// BasePath is the root directory of all sessions.
func (s *LocalStorage) BasePath() string { return s.basePath }

// NewSession creates a session directory named by the first eight
// characters of a random UUID.
func (s *LocalStorage) NewSession() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id := uuid.New().String()[:sessionIDLen]
		dir := filepath.Join(s.basePath, id)
		if err := os.Mkdir(dir, 0755); err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to create session directory: %w", err)
		}
		return id, nil
	}
	return "", fmt.Errorf("failed to allocate a unique session id")
}

func (s *LocalStorage) Dir(sessionID string) (string, error) {
	if !sessionIDRe.MatchString(sessionID) {
		return "", fmt.Errorf("session %q: %w", sessionID, ErrInvalidName)
	}
	dir := filepath.Join(s.basePath, sessionID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return dir, nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Put stores content in the session and fingerprints it on the way.
func (s *LocalStorage) Put(sessionID, name string, r io.Reader) (Object, error) {
	if !validName(name) {
		return Object{}, fmt.Errorf("file %q: %w", name, ErrInvalidName)
	}
	dir, err := s.Dir(sessionID)
	if err != nil {
		return Object{}, err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create %s: %w", name, err)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		f.Close()
		return Object{}, fmt.Errorf("failed to init hash: %w", err)
	}
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		f.Close()
		return Object{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return Object{}, fmt.Errorf("failed to close %s: %w", name, err)
	}

	return Object{Name: name, Path: path, Size: n, Fingerprint: hex.EncodeToString(h.Sum(nil))}, nil
}

// GetPath returns the path of an existing file in the session.
func (s *LocalStorage) GetPath(sessionID, name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("file %q: %w", name, ErrInvalidName)
	}
	dir, err := s.Dir(sessionID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("file %s/%s: %w", sessionID, name, ErrNotFound)
	}
	return path, nil
}

// Get opens a file from the session.
func (s *LocalStorage) Get(sessionID, name string) (io.ReadCloser, error) {
	path, err := s.GetPath(sessionID, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// Sessions lists the session directories currently on disk.
func (s *LocalStorage) Sessions() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && sessionIDRe.MatchString(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// Delete removes a session directory.
func (s *LocalStorage) Delete(sessionID string) error {
	dir, err := s.Dir(sessionID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", sessionID, err)
	}
	return nil
}
