package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// textRequest is the JSON form of POST /api/outline.
type textRequest struct {
	DocID string `json:"doc_id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// handleOutline queues an outline job for an uploaded file (multipart field
// "file") or for raw text (JSON body).
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var job *pipeline.Job
	var err error
	var status int
	if mediaType == "application/json" {
		job, status, err = s.textJob(w, r)
	} else {
		job, status, err = s.fileJob(w, r)
	}
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, queuedResponse(job))
}

func (s *Server) textJob(w http.ResponseWriter, r *http.Request) (*pipeline.Job, int, error) {
	var req textRequest
	if status, err := decodeJSON(w, r, s.cfg.MaxUploadBytes, &req); err != nil {
		return nil, status, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, http.StatusBadRequest, errors.New("text is required")
	}
	docID := req.DocID
	if docID == "" {
		docID = pipeline.ContentHashHex([]byte(req.Text))[:16]
	}
	job := pipeline.NewJob(docID, "", req.Title)
	job.SetText(req.Text)
	return job, 0, nil
}

func (s *Server) fileJob(w http.ResponseWriter, r *http.Request) (*pipeline.Job, int, error) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}

	docID := r.FormValue("doc_id")
	if docID == "" {
		docID = pipeline.ContentHashHex(data)[:16]
	}
	job := pipeline.NewJob(docID, filename, r.FormValue("title"))
	job.SetFileData(data)
	return job, 0, nil
}

func (s *Server) handleBatchOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		fail := func(msg string) {
			results = append(results, map[string]any{"filename": filename, "error": msg})
		}
		if !parser.IsSupportedExtension(filename) {
			fail(fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)))
			continue
		}

		f, err := fh.Open()
		if err != nil {
			fail("failed to open file")
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			fail("file too large or read error")
			continue
		}

		job := pipeline.NewJob(pipeline.ContentHashHex(data)[:16], filename, "")
		job.SetFileData(data)
		if err := s.orchestrator.Submit(job); err != nil {
			fail(err.Error())
			continue
		}
		resp := queuedResponse(job)
		resp["filename"] = filename
		results = append(results, resp)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleOutlineStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleOutlineResult returns the finished outline. While the job is still
// running it answers 202 with the current status.
func (s *Server) handleOutlineResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	result := job.Result()
	if result == nil {
		if snap.Status == pipeline.StatusFailed {
			writeJSON(w, http.StatusUnprocessableEntity, snap)
			return
		}
		writeJSON(w, http.StatusAccepted, snap)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job":    snap,
		"result": result,
	})
}

func queuedResponse(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":     snap.ID,
		"doc_id":     snap.DocID,
		"status":     snap.Status,
		"poll_url":   fmt.Sprintf("/api/outline/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/outline/%s", job.ID),
	}
}

// decodeJSON reads a size-limited JSON body into v, rejecting trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("body exceeds %d bytes", limit)
		}
		return http.StatusBadRequest, fmt.Errorf("invalid json: %w", err)
	}
	if dec.More() {
		return http.StatusBadRequest, errors.New("invalid json: trailing data")
	}
	return 0, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
