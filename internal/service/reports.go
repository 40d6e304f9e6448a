package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
	"github.com/grantlemons/expenser/internal/repository"
)

// Level is the access an actor needs on a report.
type Level int

const (
	Read Level = iota + 1
	Write
	Own
)

func (l Level) String() string {
	switch l {
	case Read:
		return "read"
	case Write:
		return "write"
	case Own:
		return "own"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Repos bundles the report-scoped repositories.
type Repos struct {
	Reports  repository.ReportRepository
	Items    repository.LineItemRepository
	Proofs   repository.ProofRepository
	Access   repository.AccessRepository
	Resolver repository.AccessResolver
}

// ReportService authorizes and performs operations on reports and their children.
//
// Read requires ownership or a grant with read access, Write ownership or a
// grant with write access. Deleting a report and managing its grants is
// reserved to the owner.
type ReportService struct {
	r Repos
}

// NewReportService constructs a ReportService.
func NewReportService(r Repos) *ReportService { return &ReportService{r: r} }

// Authorize loads the report and checks that actor holds level on it.
func (s *ReportService) Authorize(ctx context.Context, actor, reportID int64, level Level) (model.Report, error) {
	rp, err := s.r.Reports.GetByID(ctx, reportID)
	if err != nil {
		return model.Report{}, err
	}
	if rp.OwnerID == actor {
		return rp, nil
	}
	if level == Own {
		return model.Report{}, errs.ErrForbidden
	}
	g, err := s.r.Access.GetForBorrower(ctx, reportID, actor)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return model.Report{}, errs.ErrForbidden
	case err != nil:
		return model.Report{}, err
	}
	if (level == Read && g.ReadAccess) || (level == Write && g.WriteAccess) {
		return rp, nil
	}
	return model.Report{}, errs.ErrForbidden
}

// --- reports ---

// Create inserts a report owned by the actor.
func (s *ReportService) Create(ctx context.Context, actor int64, nr model.NewReport) (model.Report, error) {
	if nr.OwnerID != actor {
		return model.Report{}, errs.ErrForbidden
	}
	return s.r.Reports.Insert(ctx, nr)
}

// Get returns a readable report.
func (s *ReportService) Get(ctx context.Context, actor, id int64) (model.Report, error) {
	return s.Authorize(ctx, actor, id, Read)
}

// Replace overwrites a writable report. Only the owner may hand it to someone else.
func (s *ReportService) Replace(ctx context.Context, actor, id int64, nr model.NewReport) (model.Report, error) {
	rp, err := s.Authorize(ctx, actor, id, Write)
	if err != nil {
		return model.Report{}, err
	}
	if nr.OwnerID != rp.OwnerID && actor != rp.OwnerID {
		return model.Report{}, errs.ErrForbidden
	}
	return s.r.Reports.Replace(ctx, id, nr)
}

// Delete removes the report and everything under it. Owner only.
func (s *ReportService) Delete(ctx context.Context, actor, id int64) (model.Report, error) {
	if _, err := s.Authorize(ctx, actor, id, Own); err != nil {
		return model.Report{}, err
	}
	return s.r.Reports.Delete(ctx, id)
}

// Owned lists the reports owned by userID, who must be the actor.
func (s *ReportService) Owned(ctx context.Context, actor, userID int64) ([]model.Report, error) {
	if err := self(actor, userID); err != nil {
		return nil, err
	}
	return s.r.Reports.GetByOwner(ctx, userID)
}

// Readable lists reports granted to userID with read access.
func (s *ReportService) Readable(ctx context.Context, actor, userID int64) ([]model.Report, error) {
	if err := self(actor, userID); err != nil {
		return nil, err
	}
	return s.r.Resolver.ReportsReadableFor(ctx, userID)
}

// Writable lists reports granted to userID with write access.
func (s *ReportService) Writable(ctx context.Context, actor, userID int64) ([]model.Report, error) {
	if err := self(actor, userID); err != nil {
		return nil, err
	}
	return s.r.Resolver.ReportsWritableFor(ctx, userID)
}

// Visible lists the actor's own reports followed by those readable through grants, ordered by ID.
func (s *ReportService) Visible(ctx context.Context, actor int64) ([]model.Report, error) {
	owned, err := s.r.Reports.GetByOwner(ctx, actor)
	if err != nil {
		return nil, err
	}
	granted, err := s.r.Resolver.ReportsReadableFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := append(owned, granted...)
	slices.SortFunc(out, func(a, b model.Report) int { return cmp.Compare(a.ID, b.ID) })
	return slices.CompactFunc(out, func(a, b model.Report) bool { return a.ID == b.ID }), nil
}

// --- line items ---

// Items lists the line items of a readable report.
func (s *ReportService) Items(ctx context.Context, actor, reportID int64) ([]model.LineItem, error) {
	if _, err := s.Authorize(ctx, actor, reportID, Read); err != nil {
		return nil, err
	}
	return s.r.Items.GetByReport(ctx, reportID)
}

// Item returns one line item of a readable report.
func (s *ReportService) Item(ctx context.Context, actor int64, p model.Path) (model.LineItem, error) {
	if _, err := s.Authorize(ctx, actor, p.ReportID, Read); err != nil {
		return model.LineItem{}, err
	}
	return s.r.Items.GetByPath(ctx, p)
}

// AddItem appends a line item to a writable report.
func (s *ReportService) AddItem(ctx context.Context, actor int64, nl model.NewLineItem) (model.LineItem, error) {
	if _, err := s.Authorize(ctx, actor, nl.ReportID, Write); err != nil {
		return model.LineItem{}, err
	}
	return s.r.Items.Insert(ctx, nl)
}

// ReplaceItem overwrites a line item. Moving it needs write access on both reports.
func (s *ReportService) ReplaceItem(ctx context.Context, actor int64, p model.Path, nl model.NewLineItem) (model.LineItem, error) {
	if err := s.writeBoth(ctx, actor, p.ReportID, nl.ReportID); err != nil {
		return model.LineItem{}, err
	}
	return s.r.Items.Replace(ctx, p, nl)
}

// DeleteItem removes a line item of a writable report.
func (s *ReportService) DeleteItem(ctx context.Context, actor int64, p model.Path) (model.LineItem, error) {
	if _, err := s.Authorize(ctx, actor, p.ReportID, Write); err != nil {
		return model.LineItem{}, err
	}
	return s.r.Items.Delete(ctx, p)
}

// ClearItems removes every line item of a writable report.
func (s *ReportService) ClearItems(ctx context.Context, actor, reportID int64) (int64, error) {
	if _, err := s.Authorize(ctx, actor, reportID, Write); err != nil {
		return 0, err
	}
	return s.r.Items.DeleteByReport(ctx, reportID)
}

// TotalCents sums the line items of a readable report.
func (s *ReportService) TotalCents(ctx context.Context, actor, reportID int64) (int64, error) {
	if _, err := s.Authorize(ctx, actor, reportID, Read); err != nil {
		return 0, err
	}
	return s.r.Items.TotalCents(ctx, reportID)
}

// --- proofs ---

// Proofs lists the proofs of a readable report.
func (s *ReportService) Proofs(ctx context.Context, actor, reportID int64) ([]model.Proof, error) {
	if _, err := s.Authorize(ctx, actor, reportID, Read); err != nil {
		return nil, err
	}
	return s.r.Proofs.GetByReport(ctx, reportID)
}

// Proof returns one proof of a readable report.
func (s *ReportService) Proof(ctx context.Context, actor int64, p model.Path) (model.Proof, error) {
	if _, err := s.Authorize(ctx, actor, p.ReportID, Read); err != nil {
		return model.Proof{}, err
	}
	return s.r.Proofs.GetByPath(ctx, p)
}

// AddProof attaches a proof to a writable report.
func (s *ReportService) AddProof(ctx context.Context, actor int64, np model.NewProof) (model.Proof, error) {
	if _, err := s.Authorize(ctx, actor, np.ReportID, Write); err != nil {
		return model.Proof{}, err
	}
	return s.r.Proofs.Insert(ctx, np)
}

// ReplaceProof overwrites a proof. Moving it needs write access on both reports.
func (s *ReportService) ReplaceProof(ctx context.Context, actor int64, p model.Path, np model.NewProof) (model.Proof, error) {
	if err := s.writeBoth(ctx, actor, p.ReportID, np.ReportID); err != nil {
		return model.Proof{}, err
	}
	return s.r.Proofs.Replace(ctx, p, np)
}

// DeleteProof removes a proof of a writable report.
func (s *ReportService) DeleteProof(ctx context.Context, actor int64, p model.Path) (model.Proof, error) {
	if _, err := s.Authorize(ctx, actor, p.ReportID, Write); err != nil {
		return model.Proof{}, err
	}
	return s.r.Proofs.Delete(ctx, p)
}

// ClearProofs removes every proof of a writable report.
func (s *ReportService) ClearProofs(ctx context.Context, actor, reportID int64) (int64, error) {
	if _, err := s.Authorize(ctx, actor, reportID, Write); err != nil {
		return 0, err
	}
	return s.r.Proofs.DeleteByReport(ctx, reportID)
}

// --- access grants (owner only) ---

// Grants lists the grants on an owned report.
func (s *ReportService) Grants(ctx context.Context, actor, reportID int64) ([]model.AccessGrant, error) {
	if _, err := s.Authorize(ctx, actor, reportID, Own); err != nil {
		return nil, err
	}
	return s.r.Access.GetByReport(ctx, reportID)
}

// Grant returns one grant on an owned report.
func (s *ReportService) Grant(ctx context.Context, actor int64, p model.Path) (model.AccessGrant, error) {
	if _, err := s.Authorize(ctx, actor, p.ReportID, Own); err != nil {
		return model.AccessGrant{}, err
	}
	return s.r.Access.GetByPath(ctx, p)
}

// AddGrant shares an owned report. Owners cannot grant themselves.
func (s *ReportService) AddGrant(ctx context.Context, actor int64, ng model.NewAccessGrant) (model.AccessGrant, error) {
	rp, err := s.Authorize(ctx, actor, ng.ReportID, Own)
	if err != nil {
		return model.AccessGrant{}, err
	}
	if ng.BorrowerID == rp.OwnerID {
		return model.AccessGrant{}, fmt.Errorf("%w: owner cannot borrow own report", errs.ErrInvalid)
	}
	return s.r.Access.Insert(ctx, ng)
}

// ReplaceGrant overwrites a grant; both the old and the new report must be owned by the actor.
func (s *ReportService) ReplaceGrant(ctx context.Context, actor int64, p model.Path, ng model.NewAccessGrant) (model.AccessGrant, error) {
	if _, err := s.Authorize(ctx, actor, p.ReportID, Own); err != nil {
		return model.AccessGrant{}, err
	}
	rp, err := s.Authorize(ctx, actor, ng.ReportID, Own)
	if err != nil {
		return model.AccessGrant{}, err
	}
	if ng.BorrowerID == rp.OwnerID {
		return model.AccessGrant{}, fmt.Errorf("%w: owner cannot borrow own report", errs.ErrInvalid)
	}
	return s.r.Access.Replace(ctx, p, ng)
}

// RevokeGrant removes a grant on an owned report.
func (s *ReportService) RevokeGrant(ctx context.Context, actor int64, p model.Path) (model.AccessGrant, error) {
	if _, err := s.Authorize(ctx, actor, p.ReportID, Own); err != nil {
		return model.AccessGrant{}, err
	}
	return s.r.Access.Delete(ctx, p)
}

// ClearGrants removes every grant on an owned report.
func (s *ReportService) ClearGrants(ctx context.Context, actor, reportID int64) (int64, error) {
	if _, err := s.Authorize(ctx, actor, reportID, Own); err != nil {
		return 0, err
	}
	return s.r.Access.DeleteByReport(ctx, reportID)
}

func (s *ReportService) writeBoth(ctx context.Context, actor, from, to int64) error {
	if _, err := s.Authorize(ctx, actor, from, Write); err != nil {
		return err
	}
	if to == from {
		return nil
	}
	_, err := s.Authorize(ctx, actor, to, Write)
	return err
}
