package api

import (
	"net/http"

	"github.com/dgallion1/docoutline/internal/outline"
)

const maxStructureBody = 8 << 20

type localRequest struct {
	Text string `json:"text"`
}

type reconcileRequest struct {
	Local    []outline.SectionNode `json:"local"`
	External []outline.SectionNode `json:"external"`
}

type structureResponse struct {
	Nodes  []outline.SectionNode `json:"nodes"`
	Tree   []*outline.TreeNode   `json:"tree"`
	Report *outline.Report       `json:"report,omitempty"`
}

func newStructureResponse(nodes []outline.SectionNode) structureResponse {
	if nodes == nil {
		nodes = []outline.SectionNode{}
	}
	return structureResponse{Nodes: nodes, Tree: outline.Nest(nodes)}
}

func (s *Server) matcher() *outline.Matcher {
	if s.matchers == nil {
		return nil
	}
	return s.matchers.Matcher()
}

// handleLocalStructure runs local extraction synchronously. Node offsets
// index the submitted text as is.
func (s *Server) handleLocalStructure(w http.ResponseWriter, r *http.Request) {
	var req localRequest
	if status, err := decodeJSON(w, r, maxStructureBody, &req); err != nil {
		jsonError(w, err.Error(), status)
		return
	}
	ex := outline.NewExtractor(s.matcher(), s.cfg.ProximityThreshold)
	writeJSON(w, http.StatusOK, newStructureResponse(ex.Extract(req.Text)))
}

// handleReconcile merges two caller-supplied trees. Both are normalized
// first; neither is trusted.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if status, err := decodeJSON(w, r, maxStructureBody, &req); err != nil {
		jsonError(w, err.Error(), status)
		return
	}
	nodes, report := outline.ReconcileWithReport(outline.Normalize(req.Local), req.External)
	resp := newStructureResponse(nodes)
	resp.Report = &report
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	m := s.matcher()
	if m == nil {
		m = outline.DefaultMatcher()
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": m.Families()})
}
