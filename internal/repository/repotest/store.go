// Package repotest provides an in-memory implementation of the repository
// interfaces for service and handler tests. It enforces the same unique,
// foreign key and cascade rules as the PostgreSQL schema.
package repotest

import (
	"context"
	"slices"
	"sync"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
	"github.com/grantlemons/expenser/internal/repository"
)

// Store holds every table in memory behind one mutex. Each table has its
// own id sequence, as with BIGSERIAL columns.
type Store struct {
	mu      sync.Mutex
	seq     map[string]int64
	users   map[int64]model.User
	reports map[int64]model.Report
	items   map[int64]model.LineItem
	proofs  map[int64]model.Proof
	grants  map[int64]model.AccessGrant
}

// New returns an empty store.
func New() *Store {
	return &Store{
		seq:     map[string]int64{},
		users:   map[int64]model.User{},
		reports: map[int64]model.Report{},
		items:   map[int64]model.LineItem{},
		proofs:  map[int64]model.Proof{},
		grants:  map[int64]model.AccessGrant{},
	}
}

func (s *Store) Users() *Users         { return &Users{s} }
func (s *Store) Reports() *Reports     { return &Reports{s} }
func (s *Store) LineItems() *LineItems { return &LineItems{s} }
func (s *Store) Proofs() *Proofs       { return &Proofs{s} }
func (s *Store) Access() *Access       { return &Access{s} }

var (
	_ repository.UserRepository     = (*Users)(nil)
	_ repository.ReportRepository   = (*Reports)(nil)
	_ repository.LineItemRepository = (*LineItems)(nil)
	_ repository.ProofRepository    = (*Proofs)(nil)
	_ repository.AccessRepository   = (*Access)(nil)
	_ repository.AccessResolver     = (*Access)(nil)
)

func (s *Store) next(table string) int64 { s.seq[table]++; return s.seq[table] }

// sorted returns the values of m matching keep, ordered by key.
func sorted[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func deleteWhere[T any](m map[int64]T, match func(T) bool) int64 {
	var n int64
	for id, v := range m {
		if match(v) {
			delete(m, id)
			n++
		}
	}
	return n
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}

// --- users ---

// Users implements repository.UserRepository.
type Users struct{ s *Store }

func (r *Users) unique(id int64, username, email string) error {
	for _, u := range r.s.users {
		if u.ID != id && (u.Username == username || u.Email == email) {
			return errs.ErrAlreadyExists
		}
	}
	return nil
}

func (r *Users) Insert(_ context.Context, nu model.NewUser) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.unique(0, nu.Username, nu.Email); err != nil {
		return model.User{}, err
	}
	u := model.User{ID: r.s.next("users"), Username: nu.Username, Email: nu.Email,
		ProfilePicture: cloneBytes(nu.ProfilePicture), PasswordHash: nu.PasswordHash}
	r.s.users[u.ID] = u
	return u, nil
}

func (r *Users) GetByID(_ context.Context, id int64) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (r *Users) find(match func(model.User) bool) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (r *Users) GetByUsername(_ context.Context, username string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *Users) modify(id int64, fn func(*model.User) error) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, errs.ErrNoRowsAffected
	}
	if err := fn(&u); err != nil {
		return model.User{}, err
	}
	r.s.users[id] = u
	return u, nil
}

func (r *Users) Update(_ context.Context, id int64, nu model.NewUser) (model.User, error) {
	return r.modify(id, func(u *model.User) error {
		if err := r.unique(id, nu.Username, nu.Email); err != nil {
			return err
		}
		u.Username, u.Email, u.PasswordHash = nu.Username, nu.Email, nu.PasswordHash
		u.ProfilePicture = cloneBytes(nu.ProfilePicture)
		return nil
	})
}

func (r *Users) Replace(ctx context.Context, id int64, nu model.NewUser) (model.User, error) {
	return r.Update(ctx, id, nu)
}

func (r *Users) UpdateProfilePicture(_ context.Context, id int64, pic []byte) (model.User, error) {
	return r.modify(id, func(u *model.User) error { u.ProfilePicture = cloneBytes(pic); return nil })
}

func (r *Users) GetProfilePicture(ctx context.Context, id int64) ([]byte, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneBytes(u.ProfilePicture), nil
}

func (r *Users) UpdatePassword(_ context.Context, id int64, hash string) (model.User, error) {
	return r.modify(id, func(u *model.User) error { u.PasswordHash = hash; return nil })
}

// Delete refuses owners of reports and drops grants the user borrows.
func (r *Users) Delete(_ context.Context, id int64) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, errs.ErrNoRowsAffected
	}
	for _, rp := range r.s.reports {
		if rp.OwnerID == id {
			return model.User{}, errs.ErrConstraint
		}
	}
	deleteWhere(r.s.grants, func(g model.AccessGrant) bool { return g.BorrowerID == id })
	delete(r.s.users, id)
	return u, nil
}

func (r *Users) Clear(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.reports) > 0 {
		return 0, errs.ErrConstraint
	}
	clear(r.s.grants)
	n := int64(len(r.s.users))
	clear(r.s.users)
	return n, nil
}

// --- reports ---

// Reports implements repository.ReportRepository.
type Reports struct{ s *Store }

func (r *Reports) Insert(_ context.Context, nr model.NewReport) (model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[nr.OwnerID]; !ok {
		return model.Report{}, errs.ErrConstraint
	}
	rp := model.Report{ID: r.s.next("reports"), OwnerID: nr.OwnerID, Title: nr.Title, Description: nr.Description}
	r.s.reports[rp.ID] = rp
	return rp, nil
}

func (r *Reports) GetByID(_ context.Context, id int64) (model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.reports[id]
	if !ok {
		return model.Report{}, errs.ErrNotFound
	}
	return rp, nil
}

func (r *Reports) GetByOwner(_ context.Context, ownerID int64) ([]model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sorted(r.s.reports, func(rp model.Report) bool { return rp.OwnerID == ownerID }), nil
}

func (r *Reports) modify(id int64, fn func(*model.Report) error) (model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.reports[id]
	if !ok {
		return model.Report{}, errs.ErrNoRowsAffected
	}
	if err := fn(&rp); err != nil {
		return model.Report{}, err
	}
	r.s.reports[id] = rp
	return rp, nil
}

func (r *Reports) Update(_ context.Context, id, ownerID int64, title string, description *string) (model.Report, error) {
	return r.modify(id, func(rp *model.Report) error {
		if _, ok := r.s.users[ownerID]; !ok {
			return errs.ErrConstraint
		}
		rp.OwnerID, rp.Title, rp.Description = ownerID, title, description
		return nil
	})
}

func (r *Reports) Replace(ctx context.Context, id int64, nr model.NewReport) (model.Report, error) {
	return r.Update(ctx, id, nr.OwnerID, nr.Title, nr.Description)
}

func (r *Reports) UpdateTitle(_ context.Context, id int64, title string) (model.Report, error) {
	return r.modify(id, func(rp *model.Report) error { rp.Title = title; return nil })
}

func (r *Reports) UpdateDescription(_ context.Context, id int64, description *string) (model.Report, error) {
	return r.modify(id, func(rp *model.Report) error { rp.Description = description; return nil })
}

func (r *Reports) Delete(_ context.Context, id int64) (model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.reports[id]
	if !ok {
		return model.Report{}, errs.ErrNoRowsAffected
	}
	deleteWhere(r.s.items, func(li model.LineItem) bool { return li.ReportID == id })
	deleteWhere(r.s.proofs, func(p model.Proof) bool { return p.ReportID == id })
	deleteWhere(r.s.grants, func(g model.AccessGrant) bool { return g.ReportID == id })
	delete(r.s.reports, id)
	return rp, nil
}

func (r *Reports) Clear(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clear(r.s.items)
	clear(r.s.proofs)
	clear(r.s.grants)
	n := int64(len(r.s.reports))
	clear(r.s.reports)
	return n, nil
}

// child implements the path-addressed operations shared by report-scoped tables.
type child[T any] struct {
	s        *Store
	table    string
	rows     func() map[int64]T
	reportOf func(T) int64
}

func (c child[T]) insert(reportID int64, build func(id int64) T) (T, error) {
	if _, ok := c.s.reports[reportID]; !ok {
		var zero T
		return zero, errs.ErrConstraint
	}
	id := c.s.next(c.table)
	v := build(id)
	c.rows()[id] = v
	return v, nil
}

func (c child[T]) byID(id int64) (T, error) {
	v, ok := c.rows()[id]
	if !ok {
		var zero T
		return zero, errs.ErrNotFound
	}
	return v, nil
}

func (c child[T]) byPath(p model.Path) (T, error) {
	v, ok := c.rows()[p.ID]
	if !ok || c.reportOf(v) != p.ReportID {
		var zero T
		return zero, errs.ErrNotFound
	}
	return v, nil
}

func (c child[T]) byReport(reportID int64) []T {
	return sorted(c.rows(), func(v T) bool { return c.reportOf(v) == reportID })
}

// modify applies fn to the row at p. Moving the row to another report requires that report to exist.
func (c child[T]) modify(p model.Path, fn func(*T) error) (T, error) {
	var zero T
	v, err := c.byPath(p)
	if err != nil {
		return zero, errs.ErrNoRowsAffected
	}
	if err := fn(&v); err != nil {
		return zero, err
	}
	if _, ok := c.s.reports[c.reportOf(v)]; !ok {
		return zero, errs.ErrConstraint
	}
	c.rows()[p.ID] = v
	return v, nil
}

func (c child[T]) remove(p model.Path) (T, error) {
	v, err := c.byPath(p)
	if err != nil {
		var zero T
		return zero, errs.ErrNoRowsAffected
	}
	delete(c.rows(), p.ID)
	return v, nil
}

func (c child[T]) removeByReport(reportID int64) int64 {
	return deleteWhere(c.rows(), func(v T) bool { return c.reportOf(v) == reportID })
}

func (c child[T]) clearAll() int64 {
	n := int64(len(c.rows()))
	clear(c.rows())
	return n
}

// --- line items ---

// LineItems implements repository.LineItemRepository.
type LineItems struct{ s *Store }

func (r *LineItems) tbl() child[model.LineItem] {
	return child[model.LineItem]{s: r.s, table: "report_line_items", rows: func() map[int64]model.LineItem { return r.s.items },
		reportOf: func(li model.LineItem) int64 { return li.ReportID }}
}

func (r *LineItems) Insert(_ context.Context, nl model.NewLineItem) (model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().insert(nl.ReportID, func(id int64) model.LineItem {
		return model.LineItem{ID: id, ReportID: nl.ReportID, ItemName: nl.ItemName, ItemPriceCents: nl.ItemPriceCents}
	})
}

func (r *LineItems) GetByID(_ context.Context, id int64) (model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byID(id)
}

func (r *LineItems) GetByPath(_ context.Context, p model.Path) (model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byPath(p)
}

func (r *LineItems) GetByReport(_ context.Context, reportID int64) ([]model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byReport(reportID), nil
}

func (r *LineItems) Update(_ context.Context, p model.Path, reportID int64, itemName string, priceCents int64) (model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(li *model.LineItem) error {
		li.ReportID, li.ItemName, li.ItemPriceCents = reportID, itemName, priceCents
		return nil
	})
}

func (r *LineItems) Replace(ctx context.Context, p model.Path, nl model.NewLineItem) (model.LineItem, error) {
	return r.Update(ctx, p, nl.ReportID, nl.ItemName, nl.ItemPriceCents)
}

func (r *LineItems) UpdateItemName(_ context.Context, p model.Path, itemName string) (model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(li *model.LineItem) error { li.ItemName = itemName; return nil })
}

func (r *LineItems) UpdatePrice(_ context.Context, p model.Path, priceCents int64) (model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(li *model.LineItem) error { li.ItemPriceCents = priceCents; return nil })
}

func (r *LineItems) Delete(_ context.Context, p model.Path) (model.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().remove(p)
}

func (r *LineItems) DeleteByReport(_ context.Context, reportID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().removeByReport(reportID), nil
}

func (r *LineItems) Clear(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().clearAll(), nil
}

func (r *LineItems) TotalCents(_ context.Context, reportID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, li := range r.tbl().byReport(reportID) {
		total += li.ItemPriceCents
	}
	return total, nil
}

// --- proofs ---

// Proofs implements repository.ProofRepository.
type Proofs struct{ s *Store }

func (r *Proofs) tbl() child[model.Proof] {
	return child[model.Proof]{s: r.s, table: "report_proof", rows: func() map[int64]model.Proof { return r.s.proofs },
		reportOf: func(p model.Proof) int64 { return p.ReportID }}
}

func (r *Proofs) Insert(_ context.Context, np model.NewProof) (model.Proof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().insert(np.ReportID, func(id int64) model.Proof {
		return model.Proof{ID: id, ReportID: np.ReportID, Data: cloneBytes(np.Data)}
	})
}

func (r *Proofs) GetByID(_ context.Context, id int64) (model.Proof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byID(id)
}

func (r *Proofs) GetByPath(_ context.Context, p model.Path) (model.Proof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byPath(p)
}

func (r *Proofs) GetByReport(_ context.Context, reportID int64) ([]model.Proof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byReport(reportID), nil
}

func (r *Proofs) Update(_ context.Context, p model.Path, reportID int64, data []byte) (model.Proof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(pr *model.Proof) error { pr.ReportID, pr.Data = reportID, cloneBytes(data); return nil })
}

func (r *Proofs) Replace(ctx context.Context, p model.Path, np model.NewProof) (model.Proof, error) {
	return r.Update(ctx, p, np.ReportID, np.Data)
}

func (r *Proofs) UpdateData(_ context.Context, p model.Path, data []byte) (model.Proof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(pr *model.Proof) error { pr.Data = cloneBytes(data); return nil })
}

func (r *Proofs) Delete(_ context.Context, p model.Path) (model.Proof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().remove(p)
}

func (r *Proofs) DeleteByReport(_ context.Context, reportID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().removeByReport(reportID), nil
}

func (r *Proofs) Clear(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().clearAll(), nil
}

// --- access ---

// Access implements repository.AccessRepository and repository.AccessResolver.
type Access struct{ s *Store }

func (r *Access) tbl() child[model.AccessGrant] {
	return child[model.AccessGrant]{s: r.s, table: "report_access", rows: func() map[int64]model.AccessGrant { return r.s.grants },
		reportOf: func(g model.AccessGrant) int64 { return g.ReportID }}
}

// check enforces the borrower FK and UNIQUE(report_id, borrower_id), ignoring the row with id self.
func (r *Access) check(self int64, ng model.NewAccessGrant) error {
	if _, ok := r.s.users[ng.BorrowerID]; !ok {
		return errs.ErrConstraint
	}
	for _, g := range r.s.grants {
		if g.ID != self && g.ReportID == ng.ReportID && g.BorrowerID == ng.BorrowerID {
			return errs.ErrAlreadyExists
		}
	}
	return nil
}

func (r *Access) Insert(_ context.Context, ng model.NewAccessGrant) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.check(0, ng); err != nil {
		return model.AccessGrant{}, err
	}
	return r.tbl().insert(ng.ReportID, func(id int64) model.AccessGrant {
		return model.AccessGrant{ID: id, BorrowerID: ng.BorrowerID, ReportID: ng.ReportID,
			ReadAccess: ng.ReadAccess, WriteAccess: ng.WriteAccess}
	})
}

func (r *Access) GetByID(_ context.Context, id int64) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byID(id)
}

func (r *Access) GetByPath(_ context.Context, p model.Path) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byPath(p)
}

func (r *Access) GetByReport(_ context.Context, reportID int64) ([]model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().byReport(reportID), nil
}

func (r *Access) GetByBorrower(_ context.Context, borrowerID int64) ([]model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sorted(r.s.grants, func(g model.AccessGrant) bool { return g.BorrowerID == borrowerID }), nil
}

func (r *Access) GetForBorrower(_ context.Context, reportID, borrowerID int64) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.grants {
		if g.ReportID == reportID && g.BorrowerID == borrowerID {
			return g, nil
		}
	}
	return model.AccessGrant{}, errs.ErrNotFound
}

func (r *Access) Update(_ context.Context, p model.Path, ng model.NewAccessGrant) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(g *model.AccessGrant) error {
		if err := r.check(p.ID, ng); err != nil {
			return err
		}
		g.BorrowerID, g.ReportID, g.ReadAccess, g.WriteAccess = ng.BorrowerID, ng.ReportID, ng.ReadAccess, ng.WriteAccess
		return nil
	})
}

func (r *Access) Replace(ctx context.Context, p model.Path, ng model.NewAccessGrant) (model.AccessGrant, error) {
	return r.Update(ctx, p, ng)
}

func (r *Access) UpdateReadAccess(_ context.Context, p model.Path, read bool) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(g *model.AccessGrant) error { g.ReadAccess = read; return nil })
}

func (r *Access) UpdateWriteAccess(_ context.Context, p model.Path, write bool) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().modify(p, func(g *model.AccessGrant) error { g.WriteAccess = write; return nil })
}

func (r *Access) Delete(_ context.Context, p model.Path) (model.AccessGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().remove(p)
}

func (r *Access) DeleteByReport(_ context.Context, reportID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().removeByReport(reportID), nil
}

func (r *Access) Clear(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.tbl().clearAll(), nil
}

func (r *Access) granted(borrowerID int64, keep func(model.AccessGrant) bool) []model.Report {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := map[int64]bool{}
	for _, g := range r.s.grants {
		if g.BorrowerID == borrowerID && keep(g) {
			ids[g.ReportID] = true
		}
	}
	return sorted(r.s.reports, func(rp model.Report) bool { return ids[rp.ID] })
}

func (r *Access) ReportsVisibleFor(_ context.Context, borrowerID int64) ([]model.Report, error) {
	return r.granted(borrowerID, func(model.AccessGrant) bool { return true }), nil
}

func (r *Access) ReportsReadableFor(_ context.Context, borrowerID int64) ([]model.Report, error) {
	return r.granted(borrowerID, func(g model.AccessGrant) bool { return g.ReadAccess }), nil
}

func (r *Access) ReportsWritableFor(_ context.Context, borrowerID int64) ([]model.Report, error) {
	return r.granted(borrowerID, func(g model.AccessGrant) bool { return g.WriteAccess }), nil
}
