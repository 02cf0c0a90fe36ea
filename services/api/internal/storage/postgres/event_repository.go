package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, name, description, image, starts_at, ends_at, capacity, status, area_id, created_at, modified_at`

var errLockOutsideTx = errors.New("booking locks require a transaction")

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// LockBookings takes transaction-scoped advisory locks on the area and every
// artist. Keys are sorted so concurrent writers acquire them in the same order.
func (r *EventRepository) LockBookings(ctx context.Context, areaID string, artistIDs []string) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errLockOutsideTx
	}

	keys := make([]string, 0, len(artistIDs)+1)
	if areaID != "" {
		keys = append(keys, "area:"+areaID)
	}
	for _, id := range artistIDs {
		keys = append(keys, "artist:"+id)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return persistenceError("lock "+key, err)
		}
	}
	return nil
}

func (r *EventRepository) GetEventForUpdate(ctx context.Context, id string) (domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	event, err := scanEvent(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, persistenceError("get event", err)
	}
	return event, nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, description, image, starts_at, ends_at, capacity, status, area_id, created_at, modified_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		event.ID,
		event.Name,
		event.Description,
		event.Image,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		string(event.Status),
		event.AreaID,
		event.CreatedAt,
		event.ModifiedAt,
	)
	if err != nil {
		return mapWriteError("create event", err, domain.ErrAreaNotFound)
	}
	return nil
}

func (r *EventRepository) UpdateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
UPDATE events
SET name = $2, description = $3, image = $4, starts_at = $5, ends_at = $6,
    capacity = $7, status = $8, area_id = $9, modified_at = $10
WHERE id = $1`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt,
		event.ID,
		event.Name,
		event.Description,
		event.Image,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		string(event.Status),
		event.AreaID,
		event.ModifiedAt,
	)
	if err != nil {
		return mapWriteError("update event", err, domain.ErrAreaNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes the event row; join rows go with it through ON DELETE CASCADE.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapWriteError("delete event", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// FindAreaOverlap returns the earliest event in the area whose closed interval
// intersects window.
func (r *EventRepository) FindAreaOverlap(ctx context.Context, areaID string, window domain.TimeWindow, excludeEventID string) (*domain.Event, error) {
	query := `
SELECT ` + eventColumns + `
FROM events
WHERE area_id = $1
  AND starts_at <= $3 AND ends_at >= $2
  AND ($4::uuid IS NULL OR id <> $4::uuid)
ORDER BY starts_at, id
LIMIT 1`

	event, err := scanEvent(conn(ctx, r.pool).QueryRow(ctx, query, areaID, window.Start, window.End, nullableID(excludeEventID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, persistenceError("find area overlap", err)
	}
	return &event, nil
}

func (r *EventRepository) FindArtistOverlap(ctx context.Context, artistIDs []string, window domain.TimeWindow, excludeEventID string) (*domain.ArtistBooking, error) {
	const query = `
SELECT ea.artist_id, a.name, e.id, e.name, e.starts_at, e.ends_at
FROM event_artists ea
JOIN events e ON e.id = ea.event_id
JOIN artists a ON a.id = ea.artist_id
WHERE ea.artist_id = ANY($1::uuid[])
  AND e.starts_at <= $3 AND e.ends_at >= $2
  AND ($4::uuid IS NULL OR e.id <> $4::uuid)
ORDER BY e.starts_at, e.id, a.name
LIMIT 1`

	var b domain.ArtistBooking
	err := conn(ctx, r.pool).QueryRow(ctx, query, artistIDs, window.Start, window.End, nullableID(excludeEventID)).
		Scan(&b.ArtistID, &b.ArtistName, &b.EventID, &b.EventName, &b.Window.Start, &b.Window.End)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, persistenceError("find artist overlap", err)
	}
	return &b, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	var status string
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Image,
		&e.StartsAt,
		&e.EndsAt,
		&e.Capacity,
		&status,
		&e.AreaID,
		&e.CreatedAt,
		&e.ModifiedAt,
	)
	if err != nil {
		return domain.Event{}, err
	}
	e.Status = domain.EventStatus(status)
	e.StartsAt = e.StartsAt.UTC()
	e.EndsAt = e.EndsAt.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.ModifiedAt = e.ModifiedAt.UTC()
	return e, nil
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
