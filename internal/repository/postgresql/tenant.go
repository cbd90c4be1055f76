package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/tenant"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/database"
)

type tenantRepositoryImpl struct {
	db *database.DB
}

func NewTenantRepository(db *database.DB) tenant.TenantRepository {
	return &tenantRepositoryImpl{db: db}
}

func (r *tenantRepositoryImpl) GetByID(ctx context.Context, id string) (tenant.Tenant, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, name, slug, settings, status, created_at, updated_at FROM tenants WHERE id = $1`

	var t tenant.Tenant
	err := q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Slug, &t.Settings, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Tenant{}, tenant.ErrTenantNotFound
		}
		return tenant.Tenant{}, fmt.Errorf("failed to get tenant: %w", err)
	}
	return t, nil
}

func (r *tenantRepositoryImpl) GetSettings(ctx context.Context, id string) (tenant.Settings, error) {
	q := GetQuerier(ctx, r.db)

	var s tenant.Settings
	err := q.QueryRow(ctx, `SELECT settings FROM tenants WHERE id = $1`, id).Scan(&s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Settings{}, tenant.ErrTenantNotFound
		}
		return tenant.Settings{}, fmt.Errorf("failed to get tenant settings: %w", err)
	}
	return s, nil
}
