package models

// Filter is the query the dashboard sends upstream. Dates use YYYY-MM-DD.
type Filter struct {
	Keyword   string
	StartDate string
	EndDate   string
}
