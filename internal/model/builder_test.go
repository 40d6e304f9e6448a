package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/money"
)

func requireIncomplete(t *testing.T, err error, missing ...string) {
	t.Helper()
	require.ErrorIs(t, err, errs.ErrIncomplete)
	var ie *IncompleteError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, missing, ie.Missing)
}

func TestUserBuilder(t *testing.T) {
	_, err := NewUserBuilder().Build()
	requireIncomplete(t, err, "username", "email", "passwordHash")

	_, err = NewUserBuilder().Username("ann").Email("ann@x.com").Build()
	requireIncomplete(t, err, "passwordHash")

	u, err := NewUserBuilder().Username("ann").Email("ann@x.com").PasswordHash("h1").Build()
	require.NoError(t, err)
	require.Equal(t, NewUser{Username: "ann", Email: "ann@x.com", PasswordHash: "h1"}, u)
	require.Nil(t, u.ProfilePicture)

	pic := []byte{1, 2, 3}
	u, err = NewUserBuilder().
		Username("ann").Username("anne").
		Email("ann@x.com").
		PasswordHash("h1").
		ProfilePicture(pic).
		Build()
	require.NoError(t, err)
	require.Equal(t, "anne", u.Username)
	pic[0] = 9
	require.Equal(t, []byte{1, 2, 3}, u.ProfilePicture)
}

func TestReportBuilder(t *testing.T) {
	_, err := NewReportBuilder().Title("Trip").Build()
	requireIncomplete(t, err, "ownerId")

	_, err = NewReportBuilder().Owner(User{ID: 1}).Build()
	requireIncomplete(t, err, "title")

	r, err := NewReportBuilder().Owner(User{ID: 1}).Title("Trip").Build()
	require.NoError(t, err)
	require.Equal(t, int64(1), r.OwnerID)
	require.Nil(t, r.Description)

	r, err = NewReportBuilder().OwnerID(3).Owner(User{ID: 4}).Title("Trip").Description("Berlin").Build()
	require.NoError(t, err)
	require.Equal(t, int64(4), r.OwnerID)
	require.NotNil(t, r.Description)
	require.Equal(t, "Berlin", *r.Description)
}

func TestLineItemBuilder(t *testing.T) {
	_, err := NewLineItemBuilder().ItemName("Taxi").Build()
	requireIncomplete(t, err, "reportId", "itemPrice")

	li, err := NewLineItemBuilder().
		Report(Report{ID: 1}).
		ItemName("Taxi").
		PriceUSD(decimal.RequireFromString("12.50")).
		Build()
	require.NoError(t, err)
	require.Equal(t, NewLineItem{ReportID: 1, ItemName: "Taxi", ItemPriceCents: 1250}, li)

	li, err = NewLineItemBuilder().ReportID(1).ItemName("Fee").PriceUSD(decimal.RequireFromString("-12.349")).Build()
	require.NoError(t, err)
	require.Equal(t, int64(-1234), li.ItemPriceCents)

	_, err = NewLineItemBuilder().ReportID(1).ItemName("Yacht").PriceUSD(decimal.RequireFromString("1e30")).Build()
	require.ErrorIs(t, err, money.ErrOutOfRange)
	require.ErrorIs(t, err, errs.ErrInvalid)
	require.NotErrorIs(t, err, errs.ErrIncomplete)

	_, err = NewLineItemBuilder().ReportID(1).ItemName("Yacht").PriceUSD(decimal.RequireFromString("92233720368547758.08")).Build()
	require.ErrorIs(t, err, errs.ErrInvalid)

	// a later valid price replaces a rejected one
	li, err = NewLineItemBuilder().ReportID(1).ItemName("Yacht").
		PriceUSD(decimal.RequireFromString("1e30")).PriceCents(500).Build()
	require.NoError(t, err)
	require.Equal(t, int64(500), li.ItemPriceCents)

	// zero is a set price, not a missing one
	li, err = NewLineItemBuilder().ReportID(1).ItemName("Free").PriceCents(0).Build()
	require.NoError(t, err)
	require.Zero(t, li.ItemPriceCents)
}

func TestProofBuilder(t *testing.T) {
	_, err := NewProofBuilder().Build()
	requireIncomplete(t, err, "reportId", "data")

	p, err := NewProofBuilder().Report(Report{ID: 2}).Data(nil).Build()
	require.NoError(t, err)
	require.Equal(t, []byte{}, p.Data)

	p, err = NewProofBuilder().ReportID(2).Data([]byte("pdf")).Build()
	require.NoError(t, err)
	require.Equal(t, NewProof{ReportID: 2, Data: []byte("pdf")}, p)
}

func TestAccessGrantBuilder(t *testing.T) {
	_, err := NewAccessGrantBuilder().ReadAccess(true).Build()
	requireIncomplete(t, err, "borrowerId", "reportId")

	g, err := NewAccessGrantBuilder().Borrower(User{ID: 2}).Report(Report{ID: 1}).Build()
	require.NoError(t, err)
	require.Equal(t, NewAccessGrant{BorrowerID: 2, ReportID: 1}, g)

	g, err = NewAccessGrantBuilder().BorrowerID(2).ReportID(1).ReadAccess(true).WriteAccess(false).Build()
	require.NoError(t, err)
	require.True(t, g.ReadAccess)
	require.False(t, g.WriteAccess)

	g, err = NewAccessGrantBuilder().BorrowerID(2).ReportID(1).ReadAccess(false).WriteAccess(true).Build()
	require.NoError(t, err)
	require.False(t, g.ReadAccess)
	require.True(t, g.WriteAccess)
}

func TestIncompleteError_Message(t *testing.T) {
	_, err := NewReportBuilder().Build()
	require.EqualError(t, err, "report: missing ownerId, title")
}

func TestUserInfo_DropsCredentials(t *testing.T) {
	u := User{ID: 1, Username: "ann", Email: "ann@x.com", PasswordHash: "h", ProfilePicture: []byte{1}}
	require.Equal(t, UserInfo{ID: 1, Username: "ann", Email: "ann@x.com"}, u.Info())
}
