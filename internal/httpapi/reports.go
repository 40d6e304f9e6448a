package httpapi

import (
	"net/http"

	"github.com/grantlemons/expenser/internal/money"
)

func (s *Server) listVisibleReports(w http.ResponseWriter, r *http.Request) {
	rs, err := s.reports.Visible(r.Context(), actor(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rs, toReportJSON))
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	nr, err := req.build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rp, err := s.reports.Create(r.Context(), actor(r), nr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportJSON(rp))
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rp, err := s.reports.Get(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(rp))
}

func (s *Server) replaceReport(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	nr, err := req.build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rp, err := s.reports.Replace(r.Context(), actor(r), id, nr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(rp))
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rp, err := s.reports.Delete(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(rp))
}

func (s *Server) reportTotal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "reportId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cents, err := s.reports.TotalCents(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totalJSON{ReportID: id, TotalUsd: money.Format(cents), TotalCents: cents})
}
