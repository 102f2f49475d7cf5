package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ashu-N26/PDF-diff-tool/internal/annotate"
	"github.com/dgraph-io/badger/v4"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

const sessionPrefix = "session:"

// SessionStatus tracks a comparison through its lifetime.
type SessionStatus string

const (
	StatusRunning SessionStatus = "running"
	StatusDone    SessionStatus = "done"
	StatusFailed  SessionStatus = "failed"
)

// SessionRecord represents metadata for one comparison session.
type SessionRecord struct {
	ID             string           `json:"id"`
	Status         SessionStatus    `json:"status"`
	OldName        string           `json:"old_name"`
	NewName        string           `json:"new_name"`
	OldFingerprint string           `json:"old_fingerprint"`
	NewFingerprint string           `json:"new_fingerprint"`
	Options        annotate.Options `json:"options"`
	Artifacts      []string         `json:"artifacts,omitempty"`
	ChangedPages   int              `json:"changed_pages"`
	Error          string           `json:"error,omitempty"`
	CreatedAt      int64            `json:"created_at"` // Unix timestamp
	ExpiresAt      int64            `json:"expires_at"` // Unix timestamp
}

// HasArtifact reports whether name was produced by the session.
func (r SessionRecord) HasArtifact(name string) bool {
	for _, a := range r.Artifacts {
		if a == name {
			return true
		}
	}
	return false
}

// MetadataStore wraps BadgerDB for session records. Records expire on their
// own once their TTL passes.
type MetadataStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenMetadataStore opens (or creates) a BadgerDB at the given path.
func OpenMetadataStore(dbPath string, ttl time.Duration) (*MetadataStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &MetadataStore{db: db, ttl: ttl}, nil
}

// OpenInMemory opens a store that keeps nothing on disk.
func OpenInMemory(ttl time.Duration) (*MetadataStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory BadgerDB: %w", err)
	}
	return &MetadataStore{db: db, ttl: ttl}, nil
}

// Close closes the BadgerDB.
func (ms *MetadataStore) Close() error {
	return ms.db.Close()
}

// PutSession stores or replaces a session record. The expiry is kept from
// the first write so updates do not extend a session's life.
func (ms *MetadataStore) PutSession(rec SessionRecord) error {
	now := time.Now()
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now.Unix()
	}
	if rec.ExpiresAt == 0 && ms.ttl > 0 {
		rec.ExpiresAt = time.Unix(rec.CreatedAt, 0).Add(ms.ttl).Unix()
	}

	key := []byte(sessionPrefix + rec.ID)
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return ms.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, val)
		if rec.ExpiresAt > 0 {
			left := time.Until(time.Unix(rec.ExpiresAt, 0))
			if left <= 0 {
				return txn.Delete(key)
			}
			e = e.WithTTL(left)
		}
		return txn.SetEntry(e)
	})
}

// GetSession retrieves a session record by id.
func (ms *MetadataStore) GetSession(id string) (SessionRecord, error) {
	key := []byte(sessionPrefix + id)
	var rec SessionRecord
	err := ms.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return rec, err
}

// ListSessions returns every live session record.
func (ms *MetadataStore) ListSessions() ([]SessionRecord, error) {
	var out []SessionRecord
	err := ms.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rec SessionRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// DeleteSession removes a record.
func (ms *MetadataStore) DeleteSession(id string) error {
	return ms.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionPrefix + id))
	})
}

// Helper to create a new SessionRecord
func NewSessionRecord(id, oldName, newName string, opts annotate.Options) SessionRecord {
	return SessionRecord{
		ID:        id,
		Status:    StatusRunning,
		OldName:   oldName,
		NewName:   newName,
		Options:   opts,
		CreatedAt: time.Now().Unix(),
	}
}
