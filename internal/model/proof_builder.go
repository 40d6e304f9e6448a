package model

// ProofBuilder accumulates the fields of a NewProof.
type ProofBuilder struct {
	reportID slot[int64]
	data     slot[[]byte]
}

// NewProofBuilder returns an empty proof builder.
func NewProofBuilder() *ProofBuilder { return &ProofBuilder{} }

// Report sets the parent report id from an existing report.
func (b *ProofBuilder) Report(report Report) *ProofBuilder { return b.ReportID(report.ID) }

func (b *ProofBuilder) ReportID(id int64) *ProofBuilder {
	b.reportID.put(id)
	return b
}

// Data sets the attachment payload; the bytes are copied. An empty payload still counts as set.
func (b *ProofBuilder) Data(data []byte) *ProofBuilder {
	if data == nil {
		data = []byte{}
	}
	b.data.put(cloneBytes(data))
	return b
}

// Build returns the NewProof or an *IncompleteError.
func (b *ProofBuilder) Build() (NewProof, error) {
	r := required{entity: "proof"}
	r.check("reportId", b.reportID.set)
	r.check("data", b.data.set)
	if err := r.err(); err != nil {
		return NewProof{}, err
	}
	return NewProof{ReportID: b.reportID.v, Data: cloneBytes(b.data.v)}, nil
}
