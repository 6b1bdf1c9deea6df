// Package query translates listing filters into SQL predicates.
//
// A filter is evaluated in one of two modes. Id-mode applies when ids, or a
// foreign key the table actually carries, are supplied and matches rows by
// identifier only. Condition-mode combines keyword, date range, status and
// source type conditions.
package query

import (
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// DefaultMaxIDs caps the id list of an id-mode filter.
const DefaultMaxIDs = 64

// Schema names the columns a filter is applied to. Columns left empty are
// not supported by the table and the matching filter field is ignored.
type Schema struct {
	ID              string
	Title           string
	Description     string
	Status          string
	SourceType      string
	BudgetID        string
	ReimbursementID string
	UserID          string
	// Date is the timestamp compared against date ranges and periods.
	Date string
}

// Builder builds predicates in a fixed reporting timezone.
type Builder struct {
	loc    *time.Location
	maxIDs int
}

// NewBuilder creates a Builder. A nil loc means UTC and a non-positive
// maxIDs means DefaultMaxIDs.
func NewBuilder(loc *time.Location, maxIDs int) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	if maxIDs <= 0 {
		maxIDs = DefaultMaxIDs
	}
	return &Builder{loc: loc, maxIDs: maxIDs}
}

// Build validates f and returns the predicate selecting matching rows of
// schema. When restrictToUserID is set only that user's rows match.
func (b *Builder) Build(schema Schema, f domain.Filter, restrictToUserID *int64) (squirrel.Sqlizer, error) {
	if err := validateEnums(f); err != nil {
		return nil, err
	}

	var where squirrel.And
	if schema.isIDMode(f) {
		idParts, err := b.idMode(schema, f)
		if err != nil {
			return nil, err
		}
		where = append(where, idParts...)
	} else {
		condParts, err := b.conditionMode(schema, f)
		if err != nil {
			return nil, err
		}
		where = append(where, condParts...)
	}

	if restrictToUserID != nil && schema.UserID != "" {
		where = append(where, squirrel.Eq{schema.UserID: *restrictToUserID})
	}
	return where, nil
}

func validateEnums(f domain.Filter) error {
	if f.Status != "" && !domain.Status(f.Status).IsValid() {
		return domain.NewValidationError("status", "Invalid status")
	}
	if f.SourceType != "" && !domain.SourceType(f.SourceType).IsValid() {
		return domain.NewValidationError("sourceType", "Invalid sourceType")
	}
	return nil
}

// isIDMode reports whether f selects rows of this table by identifier only.
// A foreign key the table does not carry is ignored and leaves the filter in
// condition-mode.
func (s Schema) isIDMode(f domain.Filter) bool {
	return len(f.IDs) > 0 ||
		(f.BudgetID != nil && s.BudgetID != "") ||
		(f.ReimbursementID != nil && s.ReimbursementID != "")
}

func (b *Builder) idMode(schema Schema, f domain.Filter) ([]squirrel.Sqlizer, error) {
	var parts []squirrel.Sqlizer
	if len(f.IDs) > 0 {
		// The cap applies to the list as sent, duplicates included.
		if len(f.IDs) > b.maxIDs {
			return nil, &domain.TooManyIDsError{Max: b.maxIDs}
		}
		parts = append(parts, squirrel.Eq{schema.ID: UniqueIDs(f.IDs)})
	}
	if f.BudgetID != nil && schema.BudgetID != "" {
		parts = append(parts, squirrel.Eq{schema.BudgetID: *f.BudgetID})
	}
	if f.ReimbursementID != nil && schema.ReimbursementID != "" {
		parts = append(parts, squirrel.Eq{schema.ReimbursementID: *f.ReimbursementID})
	}
	return parts, nil
}

func (b *Builder) conditionMode(schema Schema, f domain.Filter) ([]squirrel.Sqlizer, error) {
	var parts []squirrel.Sqlizer

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pattern := "%" + escapeLike(kw) + "%"
		var or squirrel.Or
		if schema.Title != "" {
			or = append(or, squirrel.ILike{schema.Title: pattern})
		}
		if schema.Description != "" {
			or = append(or, squirrel.ILike{schema.Description: pattern})
		}
		if len(or) > 0 {
			parts = append(parts, or)
		}
	}

	r, err := b.dateRange(f)
	if err != nil {
		return nil, err
	}
	if schema.Date != "" {
		if !r.From.IsZero() {
			parts = append(parts, squirrel.GtOrEq{schema.Date: r.From})
		}
		if !r.To.IsZero() {
			parts = append(parts, squirrel.Lt{schema.Date: r.To})
		}
	}

	if f.Status != "" && schema.Status != "" {
		parts = append(parts, squirrel.Eq{schema.Status: f.Status})
	}
	if f.SourceType != "" && schema.SourceType != "" {
		parts = append(parts, squirrel.Eq{schema.SourceType: f.SourceType})
	}
	return parts, nil
}

func (b *Builder) dateRange(f domain.Filter) (Range, error) {
	if strings.TrimSpace(f.Period) == "" {
		return DateRange(f.StartDate, f.EndDate, b.loc)
	}
	if strings.TrimSpace(f.StartDate) != "" || strings.TrimSpace(f.EndDate) != "" {
		return Range{}, domain.NewValidationError("period", "Use either period or startDate/endDate")
	}
	return PeriodRange(f.Period, b.loc)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so the keyword matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// UniqueIDs returns ids without duplicates, preserving first occurrence order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
