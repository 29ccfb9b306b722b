package models

// ReportRow is one flattened report line used by the spreadsheet and CSV exports.
type ReportRow struct {
	Date     string `csv:"date"`
	Category string `csv:"category"`
	Amount   string `csv:"amount"`
}
