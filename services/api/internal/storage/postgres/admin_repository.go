package postgres

import (
	"context"

	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository writes the catalog rows events refer to: areas, artists
// and tags.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateArea(ctx context.Context, area domain.Area) error {
	const stmt = `
INSERT INTO areas (id, name, type, capacity, latitude, longitude, description, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		area.ID, area.Name, area.Type, area.Capacity,
		area.Latitude, area.Longitude, area.Description, area.Image,
	)
	if err != nil {
		return mapWriteError("create area", err, nil)
	}
	return nil
}

func (r *AdminRepository) ListAreas(ctx context.Context) ([]domain.Area, error) {
	const query = `
SELECT id, name, type, capacity, latitude, longitude, description, image
FROM areas
ORDER BY name, id`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, persistenceError("list areas", err)
	}
	defer rows.Close()

	var areas []domain.Area
	for rows.Next() {
		var a domain.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Capacity, &a.Latitude, &a.Longitude, &a.Description, &a.Image); err != nil {
			return nil, persistenceError("scan area", err)
		}
		areas = append(areas, a)
	}
	if rows.Err() != nil {
		return nil, persistenceError("iterate areas", rows.Err())
	}
	return areas, nil
}

func (r *AdminRepository) CreateArtist(ctx context.Context, artist domain.Artist) error {
	const stmt = `
INSERT INTO artists (id, name, nickname, bio, links, image)
VALUES ($1, $2, $3, $4, $5, $6)`
	links := artist.Links
	if links == nil {
		links = []string{}
	}
	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		artist.ID, artist.Name, artist.Nickname, artist.Bio, links, artist.Image,
	)
	if err != nil {
		return mapWriteError("create artist", err, nil)
	}
	return nil
}

func (r *AdminRepository) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	const query = `
SELECT id, name, nickname, bio, links, image
FROM artists
ORDER BY name, id`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, persistenceError("list artists", err)
	}
	defer rows.Close()

	var artists []domain.Artist
	for rows.Next() {
		var a domain.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.Nickname, &a.Bio, &a.Links, &a.Image); err != nil {
			return nil, persistenceError("scan artist", err)
		}
		artists = append(artists, a)
	}
	if rows.Err() != nil {
		return nil, persistenceError("iterate artists", rows.Err())
	}
	return artists, nil
}

func (r *AdminRepository) CreateTag(ctx context.Context, tag domain.Tag) error {
	const stmt = `
INSERT INTO tags (id, name, description)
VALUES ($1, $2, $3)`
	_, err := conn(ctx, r.pool).Exec(ctx, stmt, tag.ID, tag.Name, tag.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTagAlreadyExists
		}
		return mapWriteError("create tag", err, nil)
	}
	return nil
}

func (r *AdminRepository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	const query = `
SELECT id, name, description
FROM tags
ORDER BY name, id`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, persistenceError("list tags", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, persistenceError("scan tag", err)
		}
		tags = append(tags, t)
	}
	if rows.Err() != nil {
		return nil, persistenceError("iterate tags", rows.Err())
	}
	return tags, nil
}
