package model

// ReportBuilder accumulates the fields of a NewReport.
type ReportBuilder struct {
	ownerID     slot[int64]
	title       slot[string]
	description slot[string]
}

// NewReportBuilder returns an empty report builder.
func NewReportBuilder() *ReportBuilder { return &ReportBuilder{} }

// Owner sets the owner id from an existing user.
func (b *ReportBuilder) Owner(owner User) *ReportBuilder { return b.OwnerID(owner.ID) }

func (b *ReportBuilder) OwnerID(id int64) *ReportBuilder {
	b.ownerID.put(id)
	return b
}

func (b *ReportBuilder) Title(title string) *ReportBuilder {
	b.title.put(title)
	return b
}

// Description is optional.
func (b *ReportBuilder) Description(description string) *ReportBuilder {
	b.description.put(description)
	return b
}

// Build returns the NewReport or an *IncompleteError.
func (b *ReportBuilder) Build() (NewReport, error) {
	r := required{entity: "report"}
	r.check("ownerId", b.ownerID.set)
	r.check("title", b.title.set)
	if err := r.err(); err != nil {
		return NewReport{}, err
	}
	out := NewReport{OwnerID: b.ownerID.v, Title: b.title.v}
	if b.description.set {
		d := b.description.v
		out.Description = &d
	}
	return out, nil
}
