package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/cimillas/festival/services/api/internal/domain"
)

func (r *EventRepository) GetEventDetails(ctx context.Context, id string) (domain.EventDetails, error) {
	details, err := r.listDetails(ctx, `WHERE id = $1`, id)
	if err != nil {
		return domain.EventDetails{}, err
	}
	if len(details) == 0 {
		return domain.EventDetails{}, domain.ErrEventNotFound
	}
	return details[0], nil
}

func (r *EventRepository) ListEventDetails(ctx context.Context, filter domain.EventFilter) ([]domain.EventDetails, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.AreaID != "" {
		add("area_id = $%d", filter.AreaID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.From != nil {
		add("ends_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("starts_at <= $%d", *filter.To)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return r.listDetails(ctx, where, args...)
}

func (r *EventRepository) listDetails(ctx context.Context, where string, args ...any) ([]domain.EventDetails, error) {
	q := conn(ctx, r.pool)
	query := `SELECT ` + eventColumns + ` FROM events ` + where + ` ORDER BY starts_at, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, persistenceError("list events", err)
	}
	defer rows.Close()

	var details []domain.EventDetails
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, persistenceError("scan event", err)
		}
		details = append(details, domain.EventDetails{Event: event})
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("iterate events", err)
	}
	if len(details) == 0 {
		return details, nil
	}

	if err := r.attachDetails(ctx, q, details); err != nil {
		return nil, err
	}
	return details, nil
}

// attachDetails fills areas, artists (with their tags) and event tags with one
// query per relation, regardless of how many events are listed.
func (r *EventRepository) attachDetails(ctx context.Context, q querier, details []domain.EventDetails) error {
	eventIDs := make([]string, 0, len(details))
	var areaIDs []string
	for _, d := range details {
		eventIDs = append(eventIDs, d.ID)
		if d.AreaID != nil {
			areaIDs = append(areaIDs, *d.AreaID)
		}
	}

	areas, err := loadAreas(ctx, q, areaIDs)
	if err != nil {
		return err
	}
	artistsByEvent, artistIDs, err := loadEventArtists(ctx, q, eventIDs)
	if err != nil {
		return err
	}
	artistTags, err := loadTags(ctx, q, ArtistTags, artistIDs)
	if err != nil {
		return err
	}
	eventTags, err := loadTags(ctx, q, EventTags, eventIDs)
	if err != nil {
		return err
	}

	for i := range details {
		d := &details[i]
		if d.AreaID != nil {
			if area, ok := areas[*d.AreaID]; ok {
				d.Area = &area
			}
		}
		for _, artist := range artistsByEvent[d.ID] {
			d.Artists = append(d.Artists, domain.ArtistDetails{
				Artist: artist,
				Tags:   artistTags[artist.ID],
			})
		}
		d.Tags = eventTags[d.ID]
	}
	return nil
}

func loadAreas(ctx context.Context, q querier, ids []string) (map[string]domain.Area, error) {
	areas := make(map[string]domain.Area, len(ids))
	if len(ids) == 0 {
		return areas, nil
	}
	const query = `
SELECT id, name, type, capacity, latitude, longitude, description, image
FROM areas
WHERE id = ANY($1::uuid[])`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, persistenceError("load areas", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Capacity, &a.Latitude, &a.Longitude, &a.Description, &a.Image); err != nil {
			return nil, persistenceError("scan area", err)
		}
		areas[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("iterate areas", err)
	}
	return areas, nil
}

func loadEventArtists(ctx context.Context, q querier, eventIDs []string) (map[string][]domain.Artist, []string, error) {
	const query = `
SELECT ea.event_id, a.id, a.name, a.nickname, a.bio, a.links, a.image
FROM event_artists ea
JOIN artists a ON a.id = ea.artist_id
WHERE ea.event_id = ANY($1::uuid[])
ORDER BY a.name, a.id`

	rows, err := q.Query(ctx, query, eventIDs)
	if err != nil {
		return nil, nil, persistenceError("load event artists", err)
	}
	defer rows.Close()

	byEvent := make(map[string][]domain.Artist)
	seen := make(map[string]struct{})
	var artistIDs []string
	for rows.Next() {
		var eventID string
		var a domain.Artist
		if err := rows.Scan(&eventID, &a.ID, &a.Name, &a.Nickname, &a.Bio, &a.Links, &a.Image); err != nil {
			return nil, nil, persistenceError("scan artist", err)
		}
		byEvent[eventID] = append(byEvent[eventID], a)
		if _, ok := seen[a.ID]; !ok {
			seen[a.ID] = struct{}{}
			artistIDs = append(artistIDs, a.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, persistenceError("iterate artists", err)
	}
	return byEvent, artistIDs, nil
}

// loadTags resolves the tags of every parent in a tag relation (event_tags or
// artist_tags), grouped by parent id and ordered by tag name.
func loadTags(ctx context.Context, q querier, rel Relation, parentIDs []string) (map[string][]domain.Tag, error) {
	tags := make(map[string][]domain.Tag)
	if len(parentIDs) == 0 {
		return tags, nil
	}
	query := fmt.Sprintf(`
SELECT j.%[2]s, t.id, t.name, t.description
FROM %[1]s j
JOIN tags t ON t.id = j.tag_id
WHERE j.%[2]s = ANY($1::uuid[])
ORDER BY t.name, t.id`, rel.table, rel.parent)

	rows, err := q.Query(ctx, query, parentIDs)
	if err != nil {
		return nil, persistenceError("load "+rel.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID string
		var t domain.Tag
		if err := rows.Scan(&parentID, &t.ID, &t.Name, &t.Description); err != nil {
			return nil, persistenceError("scan tag", err)
		}
		tags[parentID] = append(tags[parentID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("iterate tags", err)
	}
	return tags, nil
}
