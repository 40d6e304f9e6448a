package model

// AccessGrantBuilder accumulates the fields of a NewAccessGrant.
// Read and write flags are optional and default to false.
type AccessGrantBuilder struct {
	borrowerID  slot[int64]
	reportID    slot[int64]
	readAccess  bool
	writeAccess bool
}

// NewAccessGrantBuilder returns an empty grant builder.
func NewAccessGrantBuilder() *AccessGrantBuilder { return &AccessGrantBuilder{} }

// Borrower sets the borrower id from an existing user.
func (b *AccessGrantBuilder) Borrower(borrower User) *AccessGrantBuilder {
	return b.BorrowerID(borrower.ID)
}

func (b *AccessGrantBuilder) BorrowerID(id int64) *AccessGrantBuilder {
	b.borrowerID.put(id)
	return b
}

// Report sets the report id from an existing report.
func (b *AccessGrantBuilder) Report(report Report) *AccessGrantBuilder { return b.ReportID(report.ID) }

func (b *AccessGrantBuilder) ReportID(id int64) *AccessGrantBuilder {
	b.reportID.put(id)
	return b
}

func (b *AccessGrantBuilder) ReadAccess(v bool) *AccessGrantBuilder {
	b.readAccess = v
	return b
}

func (b *AccessGrantBuilder) WriteAccess(v bool) *AccessGrantBuilder {
	b.writeAccess = v
	return b
}

// Build returns the NewAccessGrant or an *IncompleteError.
func (b *AccessGrantBuilder) Build() (NewAccessGrant, error) {
	r := required{entity: "access grant"}
	r.check("borrowerId", b.borrowerID.set)
	r.check("reportId", b.reportID.set)
	if err := r.err(); err != nil {
		return NewAccessGrant{}, err
	}
	return NewAccessGrant{
		BorrowerID:  b.borrowerID.v,
		ReportID:    b.reportID.v,
		ReadAccess:  b.readAccess,
		WriteAccess: b.writeAccess,
	}, nil
}
