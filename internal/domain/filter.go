package domain

// Filter holds the listing parameters accepted by every list and export
// operation. Enum and date fields keep their raw text so that they can be
// validated before any predicate is built.
type Filter struct {
	IDs             []int64
	Status          string
	SourceType      string
	BudgetID        *int64
	ReimbursementID *int64
	Keyword         string
	StartDate       string
	EndDate         string
	// Period selects a whole civil year, month or day: yyyy, yyyy-MM or yyyy-MM-dd.
	Period string
}
