package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ashu-N26/PDF-diff-tool/internal/annotate"
	"github.com/Ashu-N26/PDF-diff-tool/internal/compare"
	"github.com/Ashu-N26/PDF-diff-tool/internal/metadata"
	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/Ashu-N26/PDF-diff-tool/internal/storage"
	"github.com/Ashu-N26/PDF-diff-tool/pkg/logging"
)

func newTestServer(t *testing.T) (*Server, *storage.LocalStorage, *metadata.MetadataStore) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	meta, err := metadata.OpenInMemory(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { meta.Close() })
	reader, _ := pdfio.NewReader(pdfio.BackendRSC)
	log := logging.Component("http-test")
	engine := compare.NewEngine(reader, compare.Config{Bundle: true}, log)
	return NewServer(store, meta, engine, log), store, meta
}

func pdfBytes(t *testing.T, lines ...string) []byte {
	t.Helper()
	b := pdfio.NewBuilder()
	p := b.NewPage(pdfio.PageSizeA4)
	for i, l := range lines {
		p.Text(72, 760-float64(i)*16, pdfio.Helvetica, 10, pdfio.Black, l)
	}
	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func compareRequest(t *testing.T, files map[string][]byte, flags ...string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".pdf")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	for _, f := range flags {
		mw.WriteField(f, "on")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/compare", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req
}

type compareData struct {
	SessionID    string            `json:"session_id"`
	ChangedPages int               `json:"changed_pages"`
	Downloads    map[string]string `json:"downloads"`
}

func TestCompareAndDownload(t *testing.T) {
	srv, _, meta := newTestServer(t)
	h := srv.Handler()

	req := compareRequest(t, map[string][]byte{
		"old_pdf": pdfBytes(t, "MDA 200 FT", "DME 10 NM"),
		"new_pdf": pdfBytes(t, "MDA 250 FT", "DME 12 NM"),
	}, "add_front_summary", "add_minima_panels")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool        `json:"success"`
		Data    compareData `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if !resp.Success || resp.Data.SessionID == "" || resp.Data.ChangedPages != 1 {
		t.Fatalf("response = %+v", resp)
	}

	session, err := meta.GetSession(resp.Data.SessionID)
	if err != nil {
		t.Fatalf("session not recorded: %v", err)
	}
	if session.Status != metadata.StatusDone || !session.Options.FrontSummary || session.Options.DetectDME {
		t.Errorf("session = %+v", session)
	}

	link := resp.Data.Downloads[compare.AnnotatedFile]
	if link != "/download/"+resp.Data.SessionID+"/"+compare.AnnotatedFile {
		t.Fatalf("download link = %q", link)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, link, nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("download status = %d, type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Errorf("download is not a PDF")
	}

	for _, path := range []string{
		"/download/" + resp.Data.SessionID + "/old.pdf",
		"/download/" + resp.Data.SessionID + "/nothing.pdf",
		"/download/ffffffff/" + compare.AnnotatedFile,
	} {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "File not found") {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+resp.Data.SessionID, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"done"`) {
		t.Errorf("session lookup = %d %s", rec.Code, rec.Body.String())
	}
}

func TestCompareValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, compareRequest(t, map[string][]byte{"old_pdf": pdfBytes(t, "x")}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing new_pdf: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, compareRequest(t, map[string][]byte{
		"old_pdf": pdfBytes(t, "MDA 200 FT"),
		"new_pdf": []byte("definitely not a pdf"),
	}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("corrupt pdf: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compare", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /compare: status = %d", rec.Code)
	}
}

func TestHomeAndSweep(t *testing.T) {
	srv, store, meta := newTestServer(t)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="detect_notes"`) {
		t.Errorf("home page = %d", rec.Code)
	}

	live, _ := store.NewSession()
	meta.PutSession(metadata.NewSessionRecord(live, "a.pdf", "b.pdf", annotate.Options{}))
	orphan, _ := store.NewSession()

	if n := srv.Sweep(); n != 1 {
		t.Errorf("swept %d sessions, want 1", n)
	}
	if _, err := store.Dir(orphan); err == nil {
		t.Errorf("orphan session survived the sweep")
	}
	if _, err := store.Dir(live); err != nil {
		t.Errorf("live session was removed: %v", err)
	}
}

func TestCompareFailsWithoutSessionRecord(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	meta, err := metadata.OpenInMemory(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	reader, _ := pdfio.NewReader(pdfio.BackendRSC)
	log := logging.Component("http-test")
	srv := NewServer(store, meta, compare.NewEngine(reader, compare.Config{}, log), log)
	if err := meta.Close(); err != nil {
		t.Fatal(err)
	}

	req := compareRequest(t, map[string][]byte{
		"old_pdf": pdfBytes(t, "MDA 200 FT"),
		"new_pdf": pdfBytes(t, "MDA 250 FT"),
	})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Failed to record session") {
		t.Errorf("body = %s", rec.Body.String())
	}
	sessions, err := store.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Errorf("session directories left behind: %v", sessions)
	}
}
