package services

import (
	"context"
	"fmt"
	"strings"

	"garagehub/internal/caching"
	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/repositories"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PartService manages the spare parts catalogue and stock levels. Reads go
// through the cache; every write invalidates.
type PartService interface {
	Create(ctx context.Context, part *models.Part) (*models.Part, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Part, error)
	Update(ctx context.Context, part *models.Part) (*models.Part, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Part, error)
	Search(ctx context.Context, filter *models.PartSearchFilter) ([]*models.Part, error)
	ListBelowReorderLevel(ctx context.Context) ([]*models.Part, error)
}

type partService struct {
	repo  repositories.PartRepository
	cache *caching.CacheService
}

func NewPartService(repo repositories.PartRepository, cache *caching.CacheService) PartService {
	return &partService{repo: repo, cache: cache}
}

func (s *partService) validate(part *models.Part) error {
	part.Name = strings.TrimSpace(part.Name)
	part.PartNumber = strings.TrimSpace(part.PartNumber)
	if part.Name == "" {
		return common.NewValidationError("name", "is required")
	}
	if part.PartNumber == "" {
		return common.NewValidationError("part_number", "is required")
	}
	if err := common.ValidateNonNegativeFloat(part.Price, "price"); err != nil {
		return err
	}
	if part.Quantity < 0 {
		return common.NewValidationError("quantity", "cannot be negative")
	}
	if part.ReorderLevel < 0 {
		return common.NewValidationError("reorder_level", "cannot be negative")
	}
	return nil
}

func (s *partService) Create(ctx context.Context, part *models.Part) (*models.Part, error) {
	if err := s.validate(part); err != nil {
		return nil, err
	}
	part.ID = uuid.New()
	if err := s.repo.Create(ctx, part); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidatePartListings(ctx)
	}
	return part, nil
}

func (s *partService) GetByID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	if s.cache != nil {
		if part := s.cache.GetPart(ctx, id); part != nil {
			return part, nil
		}
	}
	part, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.MapPostgresError(err, "part")
	}
	if s.cache != nil {
		s.cache.SetPart(ctx, part)
	}
	return part, nil
}

func (s *partService) Update(ctx context.Context, part *models.Part) (*models.Part, error) {
	if err := s.validate(part); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, part.ID); err != nil {
		return nil, common.MapPostgresError(err, "part")
	}
	if err := s.repo.Update(ctx, part); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.DeletePart(ctx, part.ID)
		s.cache.InvalidatePartListings(ctx)
	}
	return part, nil
}

func (s *partService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return common.MapPostgresError(err, "part")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.DeletePart(ctx, id)
		s.cache.InvalidatePartListings(ctx)
	}
	return nil
}

func (s *partService) List(ctx context.Context, limit, offset int) ([]*models.Part, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	key := fmt.Sprintf("list:%d:%d", limit, offset)
	if s.cache != nil {
		if parts := s.cache.GetPartListing(ctx, key); parts != nil {
			return parts, nil
		}
	}
	parts, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(parts) > 0 {
		s.cache.SetPartListing(ctx, key, parts)
	}
	return parts, nil
}

func (s *partService) Search(ctx context.Context, filter *models.PartSearchFilter) ([]*models.Part, error) {
	return s.repo.Search(ctx, filter)
}

// ListBelowReorderLevel feeds the low-stock sweep; hits the database
// directly so the report never shows stale quantities.
func (s *partService) ListBelowReorderLevel(ctx context.Context) ([]*models.Part, error) {
	parts, err := s.repo.ListBelowReorderLevel(ctx)
	if err != nil {
		return nil, err
	}
	for _, part := range parts {
		log.WithFields(log.Fields{
			"part_id":       part.ID,
			"part_number":   part.PartNumber,
			"quantity":      part.Quantity,
			"reorder_level": part.ReorderLevel,
		}).Warn("part at or below reorder level")
	}
	return parts, nil
}
