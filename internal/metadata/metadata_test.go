package metadata

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ashu-N26/PDF-diff-tool/internal/annotate"
)

func TestMetadataStoreCRUD(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pdfdiff_test_metadata_db")

	store, err := OpenMetadataStore(dbPath, time.Hour)
	if err != nil {
		t.Fatalf("failed to open metadata store: %v", err)
	}
	defer store.Close()

	rec := NewSessionRecord("a1b2c3d4", "old.pdf", "new.pdf", annotate.Options{DetectDME: true})
	rec.OldFingerprint = "aa"
	if err := store.PutSession(rec); err != nil {
		t.Fatalf("failed to put session: %v", err)
	}

	got, err := store.GetSession("a1b2c3d4")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.OldName != rec.OldName || got.Status != StatusRunning || !got.Options.DetectDME {
		t.Errorf("retrieved session does not match: %+v", got)
	}
	if got.ExpiresAt != got.CreatedAt+3600 {
		t.Errorf("expiry = %d, created = %d", got.ExpiresAt, got.CreatedAt)
	}

	got.Status = StatusDone
	got.Artifacts = []string{"annotated_latest.pdf"}
	if err := store.PutSession(got); err != nil {
		t.Fatalf("failed to update session: %v", err)
	}
	updated, _ := store.GetSession("a1b2c3d4")
	if updated.Status != StatusDone || !updated.HasArtifact("annotated_latest.pdf") || updated.HasArtifact("x.pdf") {
		t.Errorf("update not stored: %+v", updated)
	}
	if updated.ExpiresAt != got.ExpiresAt {
		t.Errorf("update extended the expiry")
	}

	list, err := store.ListSessions()
	if err != nil || len(list) != 1 {
		t.Errorf("list = %v, %v", list, err)
	}

	if err := store.DeleteSession("a1b2c3d4"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := store.GetSession("a1b2c3d4"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMetadataStoreExpired(t *testing.T) {
	store, err := OpenInMemory(time.Hour)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	rec := NewSessionRecord("deadbeef", "a.pdf", "b.pdf", annotate.Options{})
	rec.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	if err := store.PutSession(rec); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if _, err := store.GetSession("deadbeef"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expired session still readable: %v", err)
	}
}
