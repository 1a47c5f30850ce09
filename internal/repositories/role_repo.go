package repositories

import (
	"context"

	"github.com/knowara/portal/internal/database"
	"github.com/knowara/portal/internal/models"
)

type RoleRepository struct {
	db *database.DB
}

func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, priority, description FROM roles WHERE name = $1`, name,
	).Scan(&role.ID, &role.Name, &role.Priority, &role.Description)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &role, nil
}
