package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalStorageSession(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	id, err := s.NewSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if len(id) != sessionIDLen {
		t.Errorf("session id %q has length %d", id, len(id))
	}

	obj, err := s.Put(id, "old.pdf", strings.NewReader("%PDF-1.4 old"))
	if err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	if obj.Size != 12 || len(obj.Fingerprint) != 64 {
		t.Errorf("object = %+v", obj)
	}
	again, _ := s.Put(id, "copy.pdf", strings.NewReader("%PDF-1.4 old"))
	if again.Fingerprint != obj.Fingerprint {
		t.Errorf("same content must fingerprint the same")
	}

	rc, err := s.Get(id, "old.pdf")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4 old" {
		t.Errorf("content = %q", data)
	}

	ids, err := s.Sessions()
	if err != nil || len(ids) != 1 || ids[0] != id {
		t.Errorf("sessions = %v, %v", ids, err)
	}

	if err := s.Delete(id); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := s.GetPath(id, "old.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, _ := NewLocalStorage(t.TempDir())
	id, _ := s.NewSession()

	for _, name := range []string{"../secret", "..", "a/b.pdf", `a\b.pdf`, ""} {
		if _, err := s.GetPath(id, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("GetPath(%q) = %v, want ErrInvalidName", name, err)
		}
		if _, err := s.Put(id, name, strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) = %v, want ErrInvalidName", name, err)
		}
	}
	for _, sid := range []string{"../etc", "ABCDEFGH", "1234"} {
		if _, err := s.Dir(sid); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Dir(%q) = %v, want ErrInvalidName", sid, err)
		}
	}
	if _, err := s.GetPath(id, "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file should be ErrNotFound, got %v", err)
	}
}
