package httpapi

import (
	"context"
	"net/http"

	"github.com/grantlemons/expenser/internal/model"
)

// ---- line items ----

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.reports.Items(r.Context(), actor(r), reportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toLineItemJSON))
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req lineItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	nl, err := req.build(reportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	li, err := s.reports.AddItem(r.Context(), actor(r), nl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLineItemJSON(li))
}

func (s *Server) clearItems(w http.ResponseWriter, r *http.Request) {
	s.clearChildren(w, r, s.reports.ClearItems)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	p, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	li, err := s.reports.Item(r.Context(), actor(r), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineItemJSON(li))
}

func (s *Server) replaceItem(w http.ResponseWriter, r *http.Request) {
	p, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req lineItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	nl, err := req.build(p.ReportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	li, err := s.reports.ReplaceItem(r.Context(), actor(r), p, nl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineItemJSON(li))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	p, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	li, err := s.reports.DeleteItem(r.Context(), actor(r), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLineItemJSON(li))
}

// ---- proofs ----
// Proof payloads travel as raw bytes; listings carry metadata only.

func (s *Server) listProofs(w http.ResponseWriter, r *http.Request) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ps, err := s.reports.Proofs(r.Context(), actor(r), reportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(ps, toProofJSON))
}

func (s *Server) createProof(w http.ResponseWriter, r *http.Request) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := readBlob(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	np, err := model.NewProofBuilder().ReportID(reportID).Data(data).Build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.reports.AddProof(r.Context(), actor(r), np)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProofJSON(p))
}

func (s *Server) clearProofs(w http.ResponseWriter, r *http.Request) {
	s.clearChildren(w, r, s.reports.ClearProofs)
}

func (s *Server) getProof(w http.ResponseWriter, r *http.Request) {
	path, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.reports.Proof(r.Context(), actor(r), path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBlob(w, p.Data)
}

func (s *Server) replaceProof(w http.ResponseWriter, r *http.Request) {
	path, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := readBlob(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	np, err := model.NewProofBuilder().ReportID(path.ReportID).Data(data).Build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.reports.ReplaceProof(r.Context(), actor(r), path, np)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProofJSON(p))
}

func (s *Server) deleteProof(w http.ResponseWriter, r *http.Request) {
	path, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.reports.DeleteProof(r.Context(), actor(r), path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProofJSON(p))
}

// ---- access grants ----

func (s *Server) listGrants(w http.ResponseWriter, r *http.Request) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	gs, err := s.reports.Grants(r.Context(), actor(r), reportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(gs, toGrantJSON))
}

func (s *Server) createGrant(w http.ResponseWriter, r *http.Request) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req grantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ng, err := req.build(reportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.reports.AddGrant(r.Context(), actor(r), ng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGrantJSON(g))
}

func (s *Server) clearGrants(w http.ResponseWriter, r *http.Request) {
	s.clearChildren(w, r, s.reports.ClearGrants)
}

func (s *Server) getGrant(w http.ResponseWriter, r *http.Request) {
	p, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.reports.Grant(r.Context(), actor(r), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantJSON(g))
}

func (s *Server) replaceGrant(w http.ResponseWriter, r *http.Request) {
	p, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req grantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ng, err := req.build(p.ReportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.reports.ReplaceGrant(r.Context(), actor(r), p, ng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantJSON(g))
}

func (s *Server) deleteGrant(w http.ResponseWriter, r *http.Request) {
	p, err := childPath(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.reports.RevokeGrant(r.Context(), actor(r), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGrantJSON(g))
}

type clearer func(ctx context.Context, actor, reportID int64) (int64, error)

func (s *Server) clearChildren(w http.ResponseWriter, r *http.Request, fn clearer) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := fn(r.Context(), actor(r), reportID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clearedJSON{Deleted: n})
}
