// Package model defines domain entities used by services and repositories.
package model

// User is an account that owns reports and may borrow access to others' reports.
type User struct {
	ID             int64
	Username       string // unique
	Email          string // unique
	ProfilePicture []byte // optional raw image
	PasswordHash   string // opaque, produced by crypto.Hasher
}

// Info returns the public projection of the user.
func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserInfo is a User without credentials or binary payloads.
type UserInfo struct {
	ID       int64
	Username string
	Email    string
}

// NewUser holds the insertable fields of a user.
type NewUser struct {
	Username       string
	Email          string
	ProfilePicture []byte
	PasswordHash   string
}

// Report is the top-level financial record. It always has exactly one owner.
type Report struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description *string
}

// NewReport holds the insertable fields of a report.
type NewReport struct {
	OwnerID     int64
	Title       string
	Description *string
}

// Path is the composite key (report id, child id) addressing a report-scoped row.
type Path struct {
	ReportID int64
	ID       int64
}

// LineItem is a single monetary entry of a report. Prices are integer cents.
type LineItem struct {
	ID             int64
	ReportID       int64
	ItemName       string
	ItemPriceCents int64
}

// Path returns the composite key of the line item.
func (li LineItem) Path() Path { return Path{ReportID: li.ReportID, ID: li.ID} }

// NewLineItem holds the insertable fields of a line item.
type NewLineItem struct {
	ReportID       int64
	ItemName       string
	ItemPriceCents int64
}

// Proof is an opaque attachment (receipt image, PDF) of a report.
type Proof struct {
	ID       int64
	ReportID int64
	Data     []byte
}

// Path returns the composite key of the proof.
func (p Proof) Path() Path { return Path{ReportID: p.ReportID, ID: p.ID} }

// NewProof holds the insertable fields of a proof.
type NewProof struct {
	ReportID int64
	Data     []byte
}

// AccessGrant gives a non-owner read and/or write access to one report.
type AccessGrant struct {
	ID          int64
	BorrowerID  int64
	ReportID    int64
	ReadAccess  bool
	WriteAccess bool
}

// Path returns the composite key of the grant.
func (a AccessGrant) Path() Path { return Path{ReportID: a.ReportID, ID: a.ID} }

// NewAccessGrant holds the insertable fields of an access grant.
type NewAccessGrant struct {
	BorrowerID  int64
	ReportID    int64
	ReadAccess  bool
	WriteAccess bool
}
