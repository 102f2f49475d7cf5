// Package httpserver exposes the comparison engine over HTTP: an upload
// form, the compare endpoint, artifact downloads and session lookups.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ashu-N26/PDF-diff-tool/internal/annotate"
	"github.com/Ashu-N26/PDF-diff-tool/internal/compare"
	"github.com/Ashu-N26/PDF-diff-tool/internal/metadata"
	"github.com/Ashu-N26/PDF-diff-tool/internal/pdfio"
	"github.com/Ashu-N26/PDF-diff-tool/internal/storage"
	"github.com/sirupsen/logrus"
)

// maxUpload bounds the multipart body of one comparison.
const maxUpload = 100 << 20

// Response represents API response structure
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Server wires the HTTP surface to storage, the session index and the
// engine.
type Server struct {
	store  storage.Storage
	meta   *metadata.MetadataStore
	engine *compare.Engine
	log    *logrus.Entry
}

func NewServer(store storage.Storage, meta *metadata.MetadataStore, engine *compare.Engine, log *logrus.Entry) *Server {
	return &Server{store: store, meta: meta, engine: engine, log: log}
}

// loggedServeMux wraps http.ServeMux with request logging
type loggedServeMux struct {
	mux *http.ServeMux
	log *logrus.Entry
}

func (l *loggedServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	l.mux.ServeHTTP(w, r)
	l.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path, "took": time.Since(start).String()}).Debug("🌐 Request")
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/compare", s.handleCompare)
	mux.HandleFunc("/download/{sid}/{filename}", s.handleDownload)
	mux.HandleFunc("/api/sessions/{sid}", s.handleSession)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sendJSONResponse(w, http.StatusOK, true, "ok", nil)
	})
	return &loggedServeMux{mux: mux, log: s.log}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Infof("🚀 AIP PDF compare listening on http://localhost%s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderIndex(w, http.StatusOK, indexData{})
}

// formFlags reads the checkbox flags; an absent field means off.
func formFlags(r *http.Request) annotate.Options {
	has := func(name string) bool { return r.PostForm.Has(name) }
	return annotate.Options{
		FrontSummary:  has("add_front_summary"),
		MinimaPanels:  has("add_minima_panels"),
		DetectCourses: has("detect_courses"),
		DetectDME:     has("detect_dme"),
		DetectNotes:   has("detect_notes"),
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		sendJSONResponse(w, status, false, msg, nil)
		return
	}
	renderIndex(w, status, indexData{Error: msg})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.fail(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	oldFile, oldHeader, err := r.FormFile("old_pdf")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "No old_pdf provided: "+err.Error())
		return
	}
	defer oldFile.Close()
	newFile, newHeader, err := r.FormFile("new_pdf")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "No new_pdf provided: "+err.Error())
		return
	}
	defer newFile.Close()

	opts := formFlags(r)
	sid, err := s.store.NewSession()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to create session: "+err.Error())
		return
	}
	log := s.log.WithField("session", sid)

	rec := metadata.NewSessionRecord(sid, oldHeader.Filename, newHeader.Filename, opts)
	if err := s.meta.PutSession(rec); err != nil {
		// without a record the session could never be looked up or expired
		log.WithError(err).Error("❌ Failed to record session")
		if derr := s.store.Delete(sid); derr != nil {
			log.WithError(derr).Warn("⚠️ Failed to remove session directory")
		}
		s.fail(w, r, http.StatusInternalServerError, "Failed to record session: "+err.Error())
		return
	}

	oldObj, err := s.store.Put(sid, "old.pdf", oldFile)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to save upload: "+err.Error())
		return
	}
	newObj, err := s.store.Put(sid, "new.pdf", newFile)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Failed to save upload: "+err.Error())
		return
	}
	rec.OldFingerprint, rec.NewFingerprint = oldObj.Fingerprint, newObj.Fingerprint
	if rec.OldFingerprint == rec.NewFingerprint {
		log.Warn("⚠️ Both uploads are byte-identical")
	}

	dir, err := s.store.Dir(sid)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, "Session vanished: "+err.Error())
		return
	}
	res, err := s.engine.Run(r.Context(), compare.Request{
		OldPath: oldObj.Path,
		NewPath: newObj.Path,
		OutDir:  dir,
		Options: opts,
	})
	if err != nil {
		rec.Status, rec.Error = metadata.StatusFailed, err.Error()
		if perr := s.meta.PutSession(rec); perr != nil {
			log.WithError(perr).Warn("⚠️ Failed to record session")
		}
		log.WithError(err).Error("❌ Comparison failed")
		status := http.StatusInternalServerError
		if errors.Is(err, pdfio.ErrRenderer) {
			status = http.StatusUnprocessableEntity
		}
		s.fail(w, r, status, "Comparison failed: "+err.Error())
		return
	}

	rec.Status = metadata.StatusDone
	rec.Artifacts = res.Artifacts
	rec.ChangedPages = res.ChangedPages()
	if err := s.meta.PutSession(rec); err != nil {
		log.WithError(err).Warn("⚠️ Failed to record session")
	}
	log.WithField("changed_pages", rec.ChangedPages).Info("✅ Comparison ready")

	links := make(map[string]string, len(res.Artifacts))
	for _, a := range res.Artifacts {
		links[a] = fmt.Sprintf("/download/%s/%s", sid, a)
	}
	if wantsJSON(r) {
		sendJSONResponse(w, http.StatusOK, true, "Comparison complete", map[string]interface{}{
			"session_id":    sid,
			"changed_pages": rec.ChangedPages,
			"downloads":     links,
			"result":        res,
		})
		return
	}
	renderIndex(w, http.StatusOK, indexData{
		SessionID:         sid,
		ChangedPages:      rec.ChangedPages,
		RemovedPages:      res.RemovedPages,
		DownloadAnnotated: links[compare.AnnotatedFile],
		DownloadSBS:       links[compare.SideBySideFile],
		DownloadSummary:   links[compare.SummaryFile],
		DownloadBundle:    links[compare.BundleFile],
	})
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".json": "application/json",
	".lz4":  "application/octet-stream",
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sid, name := r.PathValue("sid"), r.PathValue("filename")

	rec, err := s.meta.GetSession(sid)
	if err != nil || !rec.HasArtifact(name) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	path, err := s.store.GetPath(sid, name)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	ct, ok := contentTypes[filepath.Ext(name)]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSONResponse(w, http.StatusMethodNotAllowed, false, "Method not allowed", nil)
		return
	}
	rec, err := s.meta.GetSession(r.PathValue("sid"))
	if err != nil {
		if errors.Is(err, metadata.ErrSessionNotFound) {
			sendJSONResponse(w, http.StatusNotFound, false, "Session not found", nil)
			return
		}
		sendJSONResponse(w, http.StatusInternalServerError, false, err.Error(), nil)
		return
	}
	sendJSONResponse(w, http.StatusOK, true, "Session retrieved", rec)
}

// Sweep deletes session directories whose index record has expired and
// returns how many were removed.
func (s *Server) Sweep() int {
	ids, err := s.store.Sessions()
	if err != nil {
		s.log.WithError(err).Warn("⚠️ Failed to list sessions")
		return 0
	}
	removed := 0
	for _, id := range ids {
		if _, err := s.meta.GetSession(id); !errors.Is(err, metadata.ErrSessionNotFound) {
			continue
		}
		if err := s.store.Delete(id); err != nil {
			s.log.WithError(err).WithField("session", id).Warn("⚠️ Failed to remove expired session")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("🧹 Expired sessions removed")
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func sendJSONResponse(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	response := Response{
		Success: success,
		Message: message,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
