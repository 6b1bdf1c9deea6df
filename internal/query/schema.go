package query

// Table schemas for the listing queries. Repositories select from
// budgets b, reimbursements r and disbursements d, so column names carry
// those aliases.
var (
	Budgets = Schema{
		ID:          "b.id",
		Title:       "b.title",
		Description: "b.description",
		Status:      "b.status",
		UserID:      "b.user_id",
		Date:        "b.created_at",
	}

	Reimbursements = Schema{
		ID:          "r.id",
		Title:       "r.title",
		Description: "r.description",
		Status:      "r.status",
		SourceType:  "r.source_type",
		BudgetID:    "r.budget_id",
		UserID:      "r.user_id",
		Date:        "r.created_at",
	}

	Disbursements = Schema{
		ID:              "d.id",
		Title:           "d.title",
		Description:     "d.description",
		ReimbursementID: "d.reimbursement_id",
		UserID:          "d.user_id",
		Date:            "d.settled_at",
	}
)
