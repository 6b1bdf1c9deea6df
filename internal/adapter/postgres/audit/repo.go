// Package audit implements the Audit repository using PostgreSQL.
// It provides append-only operations for audit log records.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	postgres "github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Log appends an audit record. Called inside the mutation's transaction, it
// commits or rolls back together with the change it describes.
func (r *Repo) Log(ctx context.Context, record domain.AuditRecord) error {
	changes, err := json.Marshal(record.Changes)
	if err != nil {
		return fmt.Errorf("audit_record marshal changes: %w", err)
	}
	if record.Changes == nil {
		changes = []byte("{}")
	}

	sql, args, err := postgres.Builder().
		Insert("audit_log").
		Columns("actor_id", "entity_type", "entity_id", "action", "changes").
		Values(record.ActorID, string(record.EntityType), record.EntityID, string(record.Action), changes).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit_record: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "audit_record", record.EntityID)
	}
	return nil
}

// GetByEntity returns the change history of one record, newest first,
// limited to limit rows.
func (r *Repo) GetByEntity(ctx context.Context, kind domain.EntityKind, entityID int64, limit int) ([]domain.AuditRecord, error) {
	sql, args, err := postgres.Builder().
		Select("id", "actor_id", "entity_type", "entity_id", "action", "changes", "created_at").
		From("audit_log").
		Where("entity_type = ? AND entity_id = ?", string(kind), entityID).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select audit_records: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("get audit_records by entity: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var (
			rec        domain.AuditRecord
			entityType string
			action     string
			changes    []byte
		)
		if err := rows.Scan(&rec.ID, &rec.ActorID, &entityType, &rec.EntityID, &action, &changes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit_record: %w", err)
		}
		rec.EntityType = domain.EntityKind(entityType)
		rec.Action = domain.AuditAction(action)
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &rec.Changes); err != nil {
				return nil, fmt.Errorf("audit_record %d unmarshal changes: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get audit_records by entity: %w", err)
	}
	return records, nil
}
