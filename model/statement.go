package model

// StatementMetadata describes one downloadable account statement.
type StatementMetadata struct {
	ID    string `json:"id"`
	Month string `json:"month"`
	Year  string `json:"year"`
}

// StatementsResult is the statement listing for one account. Vendors without
// statement support return the zero listing rather than erroring so the
// facade contract stays uniform.
type StatementsResult struct {
	Statements      []StatementMetadata `json:"statements"`
	InstitutionName string              `json:"institution_name"`
	InstitutionID   string              `json:"institution_id"`
	ItemID          string              `json:"item_id,omitempty"`
}

// EmptyStatementsResult is the placeholder for vendors without statements.
func EmptyStatementsResult() *StatementsResult {
	return &StatementsResult{Statements: []StatementMetadata{}}
}

// StatementPdf is a rendered statement document.
type StatementPdf struct {
	Data     []byte `json:"pdf"`
	Filename string `json:"filename"`
}
