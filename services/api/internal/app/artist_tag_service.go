package app

import (
	"context"

	"github.com/cimillas/festival/services/api/internal/domain"
)

type ArtistRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ArtistExists(ctx context.Context, id string) (bool, error)
}

// ArtistTagService keeps the Artist↔Tag join set in sync.
type ArtistTagService struct {
	repo ArtistRepository
	tags RelationStore
}

func NewArtistTagService(repo ArtistRepository, tags RelationStore) *ArtistTagService {
	return &ArtistTagService{repo: repo, tags: tags}
}

// ReplaceArtistTags swaps the artist's tag set for tagIDs. An empty list
// leaves the artist untagged.
func (s *ArtistTagService) ReplaceArtistTags(ctx context.Context, artistID string, tagIDs []string) error {
	if err := validateID(artistID); err != nil {
		return err
	}
	tagIDs, err := normalizeIDs("tag_ids", tagIDs)
	if err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.ArtistExists(txCtx, artistID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrArtistNotFound
		}
		return s.tags.Replace(txCtx, artistID, tagIDs)
	})
}
