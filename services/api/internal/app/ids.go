package app

import (
	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

func validateID(id string) error {
	_, err := canonicalID(id)
	return err
}

// canonicalID returns id in lowercase hyphenated form, so equal uuids written
// differently map to the same lock key.
func canonicalID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return parsed.String(), nil
}

// normalizeIDs validates every id and drops duplicates, keeping first-seen order.
func normalizeIDs(field string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		canonical, err := canonicalID(id)
		if err != nil {
			return nil, domain.NewValidationError(field, err)
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}
