package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
	"github.com/grantlemons/expenser/internal/repository/repotest"
)

type fixture struct {
	svc                           *ReportService
	st                            *repotest.Store
	owner, reader, writer, nobody model.User
	trip                          model.Report
}

// newFixture creates a report owned by owner, shared read-only with reader
// and write-only with writer.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := repotest.New()
	f := fixture{st: st, svc: NewReportService(Repos{
		Reports: st.Reports(), Items: st.LineItems(), Proofs: st.Proofs(),
		Access: st.Access(), Resolver: st.Access(),
	})}
	names := []string{"owner", "reader", "writer", "nobody"}
	for i, u := range []*model.User{&f.owner, &f.reader, &f.writer, &f.nobody} {
		name := names[i]
		nu, err := model.NewUserBuilder().Username(name).Email(name + "@x.io").PasswordHash("h").Build()
		require.NoError(t, err)
		*u, err = st.Users().Insert(ctx, nu)
		require.NoError(t, err)
	}
	var err error
	f.trip, err = f.svc.Create(ctx, f.owner.ID, model.NewReport{OwnerID: f.owner.ID, Title: "Trip"})
	require.NoError(t, err)
	_, err = f.svc.AddGrant(ctx, f.owner.ID, model.NewAccessGrant{BorrowerID: f.reader.ID, ReportID: f.trip.ID, ReadAccess: true})
	require.NoError(t, err)
	_, err = f.svc.AddGrant(ctx, f.owner.ID, model.NewAccessGrant{BorrowerID: f.writer.ID, ReportID: f.trip.ID, WriteAccess: true})
	require.NoError(t, err)
	return f
}

func TestAuthorize_Matrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor int64
		level Level
		ok    bool
	}{
		{"owner read", f.owner.ID, Read, true},
		{"owner write", f.owner.ID, Write, true},
		{"owner own", f.owner.ID, Own, true},
		{"reader read", f.reader.ID, Read, true},
		{"reader write", f.reader.ID, Write, false},
		{"reader own", f.reader.ID, Own, false},
		{"writer read", f.writer.ID, Read, false},
		{"writer write", f.writer.ID, Write, true},
		{"writer own", f.writer.ID, Own, false},
		{"nobody read", f.nobody.ID, Read, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Authorize(ctx, tc.actor, f.trip.ID, tc.level)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrForbidden)
		})
	}

	_, err := f.svc.Authorize(ctx, f.owner.ID, 999, Read)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReports_CreateAndReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.reader.ID, model.NewReport{OwnerID: f.owner.ID, Title: "Forged"})
	require.ErrorIs(t, err, errs.ErrForbidden)

	rp, err := f.svc.Replace(ctx, f.writer.ID, f.trip.ID, model.NewReport{OwnerID: f.owner.ID, Title: "Trip 2024"})
	require.NoError(t, err)
	require.Equal(t, "Trip 2024", rp.Title)

	// a writer cannot take the report over
	_, err = f.svc.Replace(ctx, f.writer.ID, f.trip.ID, model.NewReport{OwnerID: f.writer.ID, Title: "Mine"})
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.Replace(ctx, f.reader.ID, f.trip.ID, model.NewReport{OwnerID: f.owner.ID, Title: "x"})
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestReports_Listings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own, err := f.svc.Create(ctx, f.reader.ID, model.NewReport{OwnerID: f.reader.ID, Title: "Own"})
	require.NoError(t, err)

	owned, err := f.svc.Owned(ctx, f.reader.ID, f.reader.ID)
	require.NoError(t, err)
	require.Equal(t, []model.Report{own}, owned)

	readable, err := f.svc.Readable(ctx, f.reader.ID, f.reader.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{f.trip.ID}, ids(readable))

	writable, err := f.svc.Writable(ctx, f.reader.ID, f.reader.ID)
	require.NoError(t, err)
	require.Empty(t, writable)

	writable, err = f.svc.Writable(ctx, f.writer.ID, f.writer.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{f.trip.ID}, ids(writable))

	visible, err := f.svc.Visible(ctx, f.reader.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{f.trip.ID, own.ID}, ids(visible))

	_, err = f.svc.Owned(ctx, f.reader.ID, f.owner.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestReports_Items(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.reader.ID, model.NewLineItem{ReportID: f.trip.ID, ItemName: "Taxi", ItemPriceCents: 1250})
	require.ErrorIs(t, err, errs.ErrForbidden)

	taxi, err := f.svc.AddItem(ctx, f.writer.ID, model.NewLineItem{ReportID: f.trip.ID, ItemName: "Taxi", ItemPriceCents: 1250})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.owner.ID, model.NewLineItem{ReportID: f.trip.ID, ItemName: "Refund", ItemPriceCents: -500})
	require.NoError(t, err)

	items, err := f.svc.Items(ctx, f.reader.ID, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	total, err := f.svc.TotalCents(ctx, f.reader.ID, f.trip.ID)
	require.NoError(t, err)
	require.Equal(t, int64(750), total)

	// the writer holds no read grant
	_, err = f.svc.Item(ctx, f.writer.ID, taxi.Path())
	require.ErrorIs(t, err, errs.ErrForbidden)

	other, err := f.svc.Create(ctx, f.owner.ID, model.NewReport{OwnerID: f.owner.ID, Title: "Other"})
	require.NoError(t, err)
	_, err = f.svc.Item(ctx, f.owner.ID, model.Path{ReportID: other.ID, ID: taxi.ID})
	require.ErrorIs(t, err, errs.ErrNotFound)

	// moving into a report the writer cannot write
	_, err = f.svc.ReplaceItem(ctx, f.writer.ID, taxi.Path(), model.NewLineItem{ReportID: other.ID, ItemName: "Taxi", ItemPriceCents: 1250})
	require.ErrorIs(t, err, errs.ErrForbidden)

	moved, err := f.svc.ReplaceItem(ctx, f.owner.ID, taxi.Path(), model.NewLineItem{ReportID: other.ID, ItemName: "Cab", ItemPriceCents: 900})
	require.NoError(t, err)
	require.Equal(t, other.ID, moved.ReportID)

	n, err := f.svc.ClearItems(ctx, f.writer.ID, f.trip.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = f.svc.DeleteItem(ctx, f.owner.ID, moved.Path())
	require.NoError(t, err)
	_, err = f.svc.DeleteItem(ctx, f.owner.ID, moved.Path())
	require.ErrorIs(t, err, errs.ErrNoRowsAffected)
}

func TestReports_Proofs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddProof(ctx, f.writer.ID, model.NewProof{ReportID: f.trip.ID, Data: []byte("receipt")})
	require.NoError(t, err)

	got, err := f.svc.Proof(ctx, f.reader.ID, p.Path())
	require.NoError(t, err)
	require.Equal(t, []byte("receipt"), got.Data)

	ps, err := f.svc.Proofs(ctx, f.nobody.ID, f.trip.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)
	require.Nil(t, ps)

	_, err = f.svc.ReplaceProof(ctx, f.writer.ID, p.Path(), model.NewProof{ReportID: f.trip.ID, Data: []byte("v2")})
	require.NoError(t, err)

	_, err = f.svc.DeleteProof(ctx, f.reader.ID, p.Path())
	require.ErrorIs(t, err, errs.ErrForbidden)

	n, err := f.svc.ClearProofs(ctx, f.owner.ID, f.trip.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestReports_GrantsAreOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Grants(ctx, f.writer.ID, f.trip.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.AddGrant(ctx, f.writer.ID, model.NewAccessGrant{BorrowerID: f.nobody.ID, ReportID: f.trip.ID, ReadAccess: true})
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.AddGrant(ctx, f.owner.ID, model.NewAccessGrant{BorrowerID: f.owner.ID, ReportID: f.trip.ID, ReadAccess: true})
	require.ErrorIs(t, err, errs.ErrInvalid)

	_, err = f.svc.AddGrant(ctx, f.owner.ID, model.NewAccessGrant{BorrowerID: f.reader.ID, ReportID: f.trip.ID, WriteAccess: true})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	grants, err := f.svc.Grants(ctx, f.owner.ID, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, grants, 2)

	g, err := f.svc.ReplaceGrant(ctx, f.owner.ID, grants[0].Path(), model.NewAccessGrant{
		BorrowerID: f.reader.ID, ReportID: f.trip.ID, ReadAccess: true, WriteAccess: true})
	require.NoError(t, err)
	require.True(t, g.WriteAccess)
	_, err = f.svc.AddItem(ctx, f.reader.ID, model.NewLineItem{ReportID: f.trip.ID, ItemName: "Hotel", ItemPriceCents: 10000})
	require.NoError(t, err)

	_, err = f.svc.RevokeGrant(ctx, f.owner.ID, g.Path())
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, f.reader.ID, f.trip.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)

	n, err := f.svc.ClearGrants(ctx, f.owner.ID, f.trip.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestReports_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.AddItem(ctx, f.owner.ID, model.NewLineItem{ReportID: f.trip.ID, ItemName: "Taxi", ItemPriceCents: 1250})
	require.NoError(t, err)
	proof, err := f.svc.AddProof(ctx, f.owner.ID, model.NewProof{ReportID: f.trip.ID, Data: []byte("receipt")})
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, f.writer.ID, f.trip.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.Delete(ctx, f.owner.ID, f.trip.ID)
	require.NoError(t, err)

	_, err = f.st.Reports().GetByID(ctx, f.trip.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	_, err = f.st.LineItems().GetByID(ctx, item.ID)
	require.True(t, errors.Is(err, errs.ErrNotFound))
	_, err = f.st.Proofs().GetByID(ctx, proof.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	items, err := f.st.LineItems().GetByReport(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Empty(t, items)
	proofs, err := f.st.Proofs().GetByReport(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Empty(t, proofs)
	grants, err := f.st.Access().GetByReport(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Empty(t, grants)
}

func ids(rs []model.Report) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
