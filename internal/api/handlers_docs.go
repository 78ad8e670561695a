package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
	"github.com/go-chi/chi/v5"
)

const defaultListLimit = 200

func (s *Server) store(w http.ResponseWriter) *pathstore.Client {
	ps := s.orchestrator.Store()
	if ps == nil {
		jsonError(w, "document storage is disabled", http.StatusServiceUnavailable)
	}
	return ps
}

// handleListDocuments lists stored outline summaries, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ps := s.store(w)
	if ps == nil {
		return
	}
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	docs, err := ps.ListOutlines(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ps := s.store(w)
	if ps == nil {
		return
	}
	o, err := ps.LoadOutline(r.Context(), chi.URLParam(r, "docID"))
	if errors.Is(err, pathstore.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load document: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document": o.Meta,
		"nodes":    o.Nodes,
		"tree":     outline.Nest(o.Nodes),
	})
}

// handleDeleteDocument deletes a stored outline.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ps := s.store(w)
	if ps == nil {
		return
	}
	docID := chi.URLParam(r, "docID")
	if err := ps.DeleteOutline(r.Context(), docID); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}
