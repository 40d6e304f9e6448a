package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
	"github.com/grantlemons/expenser/internal/money"
)

const (
	maxJSONBody = 1 << 20
	maxBlobBody = 16 << 20
)

// ---- requests ----
// Pointer fields distinguish "absent" from zero so builders can report what is missing.

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type reportRequest struct {
	OwnerID     *int64  `json:"ownerId"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (q reportRequest) build() (model.NewReport, error) {
	b := model.NewReportBuilder()
	if q.OwnerID != nil {
		b.OwnerID(*q.OwnerID)
	}
	if q.Title != nil {
		b.Title(*q.Title)
	}
	if q.Description != nil {
		b.Description(*q.Description)
	}
	return b.Build()
}

type lineItemRequest struct {
	ReportID     *int64           `json:"reportId"`
	ItemName     *string          `json:"itemName"`
	ItemPriceUsd *decimal.Decimal `json:"itemPriceUsd"`
}

// build defaults the report to the one in the URL.
func (q lineItemRequest) build(reportID int64) (model.NewLineItem, error) {
	b := model.NewLineItemBuilder().ReportID(reportID)
	if q.ReportID != nil {
		b.ReportID(*q.ReportID)
	}
	if q.ItemName != nil {
		b.ItemName(*q.ItemName)
	}
	if q.ItemPriceUsd != nil {
		b.PriceUSD(*q.ItemPriceUsd)
	}
	return b.Build()
}

type grantRequest struct {
	BorrowerID  *int64 `json:"borrowerId"`
	ReportID    *int64 `json:"reportId"`
	ReadAccess  bool   `json:"readAccess"`
	WriteAccess bool   `json:"writeAccess"`
}

func (q grantRequest) build(reportID int64) (model.NewAccessGrant, error) {
	b := model.NewAccessGrantBuilder().ReportID(reportID).ReadAccess(q.ReadAccess).WriteAccess(q.WriteAccess)
	if q.ReportID != nil {
		b.ReportID(*q.ReportID)
	}
	if q.BorrowerID != nil {
		b.BorrowerID(*q.BorrowerID)
	}
	return b.Build()
}

// ---- responses ----

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserJSON(u model.UserInfo) userJSON {
	return userJSON{ID: u.ID, Username: u.Username, Email: u.Email}
}

type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        userJSON  `json:"user"`
}

type reportJSON struct {
	ID          int64   `json:"id"`
	OwnerID     int64   `json:"ownerId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func toReportJSON(r model.Report) reportJSON {
	return reportJSON{ID: r.ID, OwnerID: r.OwnerID, Title: r.Title, Description: r.Description}
}

type lineItemJSON struct {
	ID             int64  `json:"id"`
	ReportID       int64  `json:"reportId"`
	ItemName       string `json:"itemName"`
	ItemPriceUsd   string `json:"itemPriceUsd"`
	ItemPriceCents int64  `json:"itemPriceCents"`
}

func toLineItemJSON(li model.LineItem) lineItemJSON {
	return lineItemJSON{
		ID:             li.ID,
		ReportID:       li.ReportID,
		ItemName:       li.ItemName,
		ItemPriceUsd:   money.Format(li.ItemPriceCents),
		ItemPriceCents: li.ItemPriceCents,
	}
}

// proofJSON describes a proof without its payload; GET /proof/{id} serves the bytes.
type proofJSON struct {
	ID       int64 `json:"id"`
	ReportID int64 `json:"reportId"`
	Size     int   `json:"size"`
}

func toProofJSON(p model.Proof) proofJSON {
	return proofJSON{ID: p.ID, ReportID: p.ReportID, Size: len(p.Data)}
}

type grantJSON struct {
	ID          int64 `json:"id"`
	BorrowerID  int64 `json:"borrowerId"`
	ReportID    int64 `json:"reportId"`
	ReadAccess  bool  `json:"readAccess"`
	WriteAccess bool  `json:"writeAccess"`
}

func toGrantJSON(g model.AccessGrant) grantJSON {
	return grantJSON{ID: g.ID, BorrowerID: g.BorrowerID, ReportID: g.ReportID, ReadAccess: g.ReadAccess, WriteAccess: g.WriteAccess}
}

type totalJSON struct {
	ReportID   int64  `json:"reportId"`
	TotalUsd   string `json:"totalUsd"`
	TotalCents int64  `json:"totalCents"`
}

type clearedJSON struct {
	Deleted int64 `json:"deleted"`
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

// ---- decoding ----

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: body: %v", errs.ErrInvalid, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body: trailing data", errs.ErrInvalid)
	}
	return nil
}

func readBlob(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBlobBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", errs.ErrInvalid, tooBig.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q", errs.ErrInvalid, name, raw)
	}
	return id, nil
}

// childPath reads {reportId} and {id} from the URL.
func childPath(r *http.Request) (model.Path, error) {
	reportID, err := idParam(r, "reportId")
	if err != nil {
		return model.Path{}, err
	}
	id, err := idParam(r, "id")
	if err != nil {
		return model.Path{}, err
	}
	return model.Path{ReportID: reportID, ID: id}, nil
}
