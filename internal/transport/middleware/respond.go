package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// writeError writes the same {class, message} body the REST handlers use.
func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"class":   string(domain.ClassOf(err)),
		"message": domain.PublicMessage(err),
	})
}
