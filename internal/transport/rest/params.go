package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

var errInvalidBody = domain.NewValidationError("body", "Invalid request body")

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, domain.NewValidationError("id", "ID is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "ID should be a positive integer")
	}
	return id, nil
}

// parseFilter reads listing parameters. The id parameter may repeat and
// each value may hold a comma separated list.
func parseFilter(q url.Values) (domain.Filter, error) {
	f := domain.Filter{
		Status:     strings.TrimSpace(q.Get("status")),
		SourceType: strings.TrimSpace(q.Get("sourceType")),
		Keyword:    q.Get("keyword"),
		StartDate:  strings.TrimSpace(q.Get("startDate")),
		EndDate:    strings.TrimSpace(q.Get("endDate")),
		Period:     strings.TrimSpace(q.Get("period")),
	}

	for _, v := range q["id"] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := positiveInt(part)
			if err != nil {
				return f, domain.NewValidationError("id", "Invalid id")
			}
			f.IDs = append(f.IDs, id)
		}
	}

	var err error
	if f.BudgetID, err = optionalID(q, "budgetId"); err != nil {
		return f, err
	}
	if f.ReimbursementID, err = optionalID(q, "reimbursementId"); err != nil {
		return f, err
	}
	return f, nil
}

func optionalID(q url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := positiveInt(raw)
	if err != nil {
		return nil, domain.NewValidationError(key, fmt.Sprintf("Invalid %s", key))
	}
	return &id, nil
}

func positiveInt(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("not positive")
	}
	return id, nil
}

// flexString accepts a JSON string or number and keeps its text, so that
// amounts reach validation exactly as the client sent them.
type flexString struct {
	value *string
}

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		s.value = nil
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		s.value = &str
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	text := num.String()
	s.value = &text
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}
