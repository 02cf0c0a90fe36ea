package app

import (
	"context"
	"strings"

	"github.com/cimillas/festival/services/api/internal/domain"
)

type AdminRepository interface {
	CreateArea(ctx context.Context, area domain.Area) error
	ListAreas(ctx context.Context) ([]domain.Area, error)
	CreateArtist(ctx context.Context, artist domain.Artist) error
	ListArtists(ctx context.Context) ([]domain.Artist, error)
	CreateTag(ctx context.Context, tag domain.Tag) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// AdminService manages the catalog that events are scheduled against.
type AdminService struct {
	repo AdminRepository
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

type CreateAreaInput struct {
	Name        string
	Type        string
	Capacity    int
	Latitude    *float64
	Longitude   *float64
	Description *string
	Image       *string
}

func (s *AdminService) CreateArea(ctx context.Context, in CreateAreaInput) (domain.Area, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Area{}, domain.NewValidationError("name", domain.ErrAreaNameRequired)
	}
	if in.Capacity < 0 {
		return domain.Area{}, domain.NewValidationError("capacity", domain.ErrInvalidCapacity)
	}

	area := domain.Area{
		ID:          newID(),
		Name:        name,
		Type:        strings.TrimSpace(in.Type),
		Capacity:    in.Capacity,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Description: in.Description,
		Image:       in.Image,
	}
	if err := s.repo.CreateArea(ctx, area); err != nil {
		return domain.Area{}, err
	}
	return area, nil
}

func (s *AdminService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	return s.repo.ListAreas(ctx)
}

type CreateArtistInput struct {
	Name     string
	Nickname *string
	Bio      *string
	Links    []string
	Image    *string
}

func (s *AdminService) CreateArtist(ctx context.Context, in CreateArtistInput) (domain.Artist, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Artist{}, domain.NewValidationError("name", domain.ErrArtistNameRequired)
	}

	links := make([]string, 0, len(in.Links))
	for _, link := range in.Links {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}

	artist := domain.Artist{
		ID:       newID(),
		Name:     name,
		Nickname: in.Nickname,
		Bio:      in.Bio,
		Links:    links,
		Image:    in.Image,
	}
	if err := s.repo.CreateArtist(ctx, artist); err != nil {
		return domain.Artist{}, err
	}
	return artist, nil
}

func (s *AdminService) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	return s.repo.ListArtists(ctx)
}

type CreateTagInput struct {
	Name        string
	Description *string
}

func (s *AdminService) CreateTag(ctx context.Context, in CreateTagInput) (domain.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Tag{}, domain.NewValidationError("name", domain.ErrTagNameRequired)
	}

	tag := domain.Tag{
		ID:          newID(),
		Name:        name,
		Description: in.Description,
	}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return domain.Tag{}, err
	}
	return tag, nil
}

func (s *AdminService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.repo.ListTags(ctx)
}
