package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Relation describes a many-to-many join table keyed by (parent, child).
type Relation struct {
	table         string
	parent        string
	child         string
	parentMissing error
	childMissing  error
}

var (
	EventArtists = Relation{
		table:         "event_artists",
		parent:        "event_id",
		child:         "artist_id",
		parentMissing: domain.ErrEventNotFound,
		childMissing:  domain.ErrArtistNotFound,
	}
	EventTags = Relation{
		table:         "event_tags",
		parent:        "event_id",
		child:         "tag_id",
		parentMissing: domain.ErrEventNotFound,
		childMissing:  domain.ErrTagNotFound,
	}
	ArtistTags = Relation{
		table:         "artist_tags",
		parent:        "artist_id",
		child:         "tag_id",
		parentMissing: domain.ErrArtistNotFound,
		childMissing:  domain.ErrTagNotFound,
	}
)

// RelationStore writes rows of a single join table. It knows nothing about
// scheduling; callers decide when sets change.
type RelationStore struct {
	pool *pgxpool.Pool
	rel  Relation
}

func NewRelationStore(pool *pgxpool.Pool, rel Relation) *RelationStore {
	return &RelationStore{pool: pool, rel: rel}
}

func (s *RelationStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.pool, fn)
}

// Attach links parentID to every child. Pairs that already exist are skipped.
func (s *RelationStore) Attach(ctx context.Context, parentID string, childIDs []string) error {
	if len(childIDs) == 0 {
		return nil
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (%s, %s)
SELECT $1::uuid, child FROM unnest($2::uuid[]) AS child
ON CONFLICT DO NOTHING`, s.rel.table, s.rel.parent, s.rel.child)

	if _, err := conn(ctx, s.pool).Exec(ctx, stmt, parentID, childIDs); err != nil {
		return mapWriteError("attach "+s.rel.table, err, s.missingFor(err))
	}
	return nil
}

// Replace makes childIDs the complete set for parentID.
func (s *RelationStore) Replace(ctx context.Context, parentID string, childIDs []string) error {
	return s.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.RemoveAll(txCtx, parentID); err != nil {
			return err
		}
		return s.Attach(txCtx, parentID, childIDs)
	})
}

func (s *RelationStore) RemoveAll(ctx context.Context, parentID string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, s.rel.table, s.rel.parent)
	if _, err := conn(ctx, s.pool).Exec(ctx, stmt, parentID); err != nil {
		return mapWriteError("clear "+s.rel.table, err, nil)
	}
	return nil
}

// missingFor picks which side of the join a foreign key failure refers to,
// using the default "<table>_<column>_fkey" constraint naming.
func (s *RelationStore) missingFor(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, s.rel.parent) {
		return s.rel.parentMissing
	}
	return s.rel.childMissing
}
