package domain

// RawImportRow is what an external CSV or OCR producer hands over.
type RawImportRow struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Role  string `json:"role,omitempty"`
}

type ImportError string

const (
	ImportInvalidDate    ImportError = "invalid_date"
	ImportMissingTime    ImportError = "missing_time"
	ImportMissingEndTime ImportError = "missing_end_time"
	ImportAmbiguousRole  ImportError = "ambiguous_role"
	ImportNameUnknown    ImportError = "name_unknown"
)

// Sentinels for ImportRow.MatchedUserID.
const (
	MatchOpen    = "open"
	MatchUnknown = "unknown"
)

// ImportRow is a reconciled candidate shift. It only lives during operator review.
type ImportRow struct {
	RawName       string        `json:"rawName"`
	RawDate       string        `json:"rawDate"`
	RawStart      string        `json:"rawStart"`
	RawEnd        string        `json:"rawEnd"`
	RawRole       string        `json:"rawRole"`
	MatchedUserID string        `json:"matchedUserId"`
	ParsedDate    string        `json:"parsedDate"`  // YYYY-MM-DD
	ParsedStart   string        `json:"parsedStart"` // HH:mm
	ParsedEnd     string        `json:"parsedEnd"`   // HH:mm
	FinalRole     string        `json:"finalRole"`
	Errors        []ImportError `json:"errors"`
}

func (r *ImportRow) HasError(e ImportError) bool {
	for _, x := range r.Errors {
		if x == e {
			return true
		}
	}
	return false
}

func (r *ImportRow) AddError(e ImportError) {
	if !r.HasError(e) {
		r.Errors = append(r.Errors, e)
	}
}

func (r *ImportRow) ClearError(e ImportError) {
	kept := r.Errors[:0]
	for _, x := range r.Errors {
		if x != e {
			kept = append(kept, x)
		}
	}
	r.Errors = kept
}

// ImportSession holds the rows under review between reconciliation and commit.
type ImportSession struct {
	ID        string      `json:"id"`
	CompanyID string      `json:"companyId"`
	Rows      []ImportRow `json:"rows"`
}
