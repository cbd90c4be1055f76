package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/manhour-hq/manhour-backend-go/internal/domain/audit"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/database"
)

type auditRepositoryImpl struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepositoryImpl{db: db}
}

func (r *auditRepositoryImpl) Insert(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	oldData, err := marshalNullable(entry.OldData)
	if err != nil {
		return fmt.Errorf("failed to marshal audit old_data: %w", err)
	}
	newData, err := marshalNullable(entry.NewData)
	if err != nil {
		return fmt.Errorf("failed to marshal audit new_data: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, tenant_id, entity, entity_id, action, old_data, new_data, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	_, err = q.Exec(ctx, query,
		entry.ID, entry.TenantID, entry.Entity, entry.EntityID, entry.Action, oldData, newData, entry.PerformedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
