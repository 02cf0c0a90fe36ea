package postgres

import (
	"context"
	"errors"

	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository reads area and artist master rows. Those rows are owned
// by the catalog admin; scheduling only looks them up.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetArea returns nil, nil when no area has the given id.
func (r *CatalogRepository) GetArea(ctx context.Context, id string) (*domain.Area, error) {
	const query = `
SELECT id, name, type, capacity, latitude, longitude, description, image
FROM areas
WHERE id = $1`

	var a domain.Area
	err := conn(ctx, r.pool).QueryRow(ctx, query, id).
		Scan(&a.ID, &a.Name, &a.Type, &a.Capacity, &a.Latitude, &a.Longitude, &a.Description, &a.Image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, persistenceError("get area", err)
	}
	return &a, nil
}

func (r *CatalogRepository) ArtistExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM artists WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, persistenceError("check artist", err)
	}
	return exists, nil
}
