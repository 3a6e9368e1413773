package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cafe-directory/auth"
	"cafe-directory/cache"
	"cafe-directory/models"
	"cafe-directory/repository"
)

const (
	listCacheKey      = "cafes:list"
	locationsCacheKey = "cafes:locations"
	listCacheTTL      = 5 * time.Minute
)

// CafeStore is the persistence the directory needs.
type CafeStore interface {
	GetByID(ctx context.Context, id int) (*models.Cafe, error)
	Insert(ctx context.Context, cafe *models.Cafe) error
	Update(ctx context.Context, cafe *models.Cafe) error
	Delete(ctx context.Context, id int) error
	FindAll(ctx context.Context) ([]models.Cafe, error)
	FindByLocation(ctx context.Context, location string) ([]models.Cafe, error)
	DistinctLocations(ctx context.Context) ([]string, error)
}

// Service implements the café directory operations.
type Service struct {
	cafes CafeStore
	cache cache.Store
}

// NewService creates the directory. listCache may be nil.
func NewService(cafes CafeStore, listCache cache.Store) *Service {
	return &Service{cafes: cafes, cache: listCache}
}

// ListAll returns every café ordered by id.
func (s *Service) ListAll(ctx context.Context) ([]models.Cafe, error) {
	var cafes []models.Cafe
	if s.fromCache(listCacheKey, &cafes) {
		return cafes, nil
	}
	cafes, err := s.cafes.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(listCacheKey, cafes)
	return cafes, nil
}

func (s *Service) GetOne(ctx context.Context, id int) (*models.Cafe, error) {
	cafe, err := s.cafes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return cafe, err
}

// Create validates the form and stores a new café.
func (s *Service) Create(ctx context.Context, form models.CafeForm) (*models.Cafe, error) {
	cafe, err := toCafe(form)
	if err != nil {
		return nil, err
	}
	if err := s.cafes.Insert(ctx, cafe); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	s.invalidate()
	return cafe, nil
}

// Update replaces every mutable field of an existing café.
func (s *Service) Update(ctx context.Context, id int, form models.CafeForm) (*models.Cafe, error) {
	if _, err := s.GetOne(ctx, id); err != nil {
		return nil, err
	}
	cafe, err := toCafe(form)
	if err != nil {
		return nil, err
	}
	cafe.ID = id

	if err := s.cafes.Update(ctx, cafe); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateName
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidate()
	return cafe, nil
}

// Delete removes a café on behalf of actor, who must be an admin.
func (s *Service) Delete(ctx context.Context, actor *models.User, id int) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.cafes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidate()
	return nil
}

// DistinctLocations lists each location once.
func (s *Service) DistinctLocations(ctx context.Context) ([]string, error) {
	var locations []string
	if s.fromCache(locationsCacheKey, &locations) {
		return locations, nil
	}
	locations, err := s.cafes.DistinctLocations(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(locationsCacheKey, locations)
	return locations, nil
}

// ByLocation is an exact, case-sensitive match and may be empty.
func (s *Service) ByLocation(ctx context.Context, location string) ([]models.Cafe, error) {
	return s.cafes.FindByLocation(ctx, location)
}

func (s *Service) fromCache(key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) toCache(key string, value any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.cache.Set(key, data, listCacheTTL)
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Delete(listCacheKey, locationsCacheKey)
	}
}
