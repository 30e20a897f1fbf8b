package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/repository"
)

// DomainAuraRepoImpl implements DomainAuraRepository on PostgreSQL.
type DomainAuraRepoImpl struct {
	db DB
}

// NewDomainAuraRepo creates a new instance of DomainAuraRepoImpl.
func NewDomainAuraRepo(db DB) *DomainAuraRepoImpl {
	return &DomainAuraRepoImpl{db: db}
}

var _ repository.DomainAuraRepository = (*DomainAuraRepoImpl)(nil)

// ListPageColors returns the circle color of every page of the domain.
func (r *DomainAuraRepoImpl) ListPageColors(ctx context.Context, domainID int64) ([]entity.Color, error) {
	rows, err := r.db.Query(ctx,
		`SELECT page_aura_circle->>'color' FROM pages WHERE domain_id = $1`, domainID)
	if err != nil {
		return nil, fmt.Errorf("query page colors: %w", err)
	}
	defer rows.Close()

	var colors []entity.Color
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan page color: %w", err)
		}
		colors = append(colors, entity.Color(c))
	}
	return colors, rows.Err()
}

func (r *DomainAuraRepoImpl) UpdateDomainAura(ctx context.Context, domainID int64, circle entity.Circle) error {
	aura, err := json.Marshal(circle)
	if err != nil {
		return fmt.Errorf("marshal domain aura: %w", err)
	}
	_, err = r.db.Exec(ctx, `UPDATE domains SET overall_aura = $2 WHERE id = $1`, domainID, aura)
	if err != nil {
		return fmt.Errorf("update domain aura %d: %w", domainID, err)
	}
	return nil
}
