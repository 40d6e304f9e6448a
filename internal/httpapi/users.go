package httpapi

import (
	"context"
	"net/http"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
)

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.users.Get(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.users.UpdateProfile(r.Context(), actor(r), id, req.Username, req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.users.Delete(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) getProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pic, err := s.users.ProfilePicture(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBlob(w, pic)
}

func (s *Server) putProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pic, err := readBlob(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.users.SetProfilePicture(r.Context(), actor(r), id, pic); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putPassword(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if id != actor(r) {
		s.writeError(w, r, errs.ErrForbidden)
		return
	}
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.auth.ChangePassword(r.Context(), id, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listOwnedReports(w http.ResponseWriter, r *http.Request) {
	s.listUserReports(w, r, s.reports.Owned)
}

func (s *Server) listReadableReports(w http.ResponseWriter, r *http.Request) {
	s.listUserReports(w, r, s.reports.Readable)
}

func (s *Server) listWritableReports(w http.ResponseWriter, r *http.Request) {
	s.listUserReports(w, r, s.reports.Writable)
}

type reportLister func(ctx context.Context, actor, userID int64) ([]model.Report, error)

func (s *Server) listUserReports(w http.ResponseWriter, r *http.Request, list reportLister) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rs, err := list(r.Context(), actor(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rs, toReportJSON))
}

func writeBlob(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
