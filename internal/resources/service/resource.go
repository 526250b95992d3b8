package service

import (
	"context"
	"errors"
	"sync"

	resourceserrors "hopper/internal/resources/errors"
	"hopper/internal/resources/repository"
	"hopper/internal/resources/validator"
	"hopper/pkg/config"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/model"
	"hopper/pkg/sanitizer"
)

type ResourceService interface {
	CreateSite(ctx context.Context, site *model.Site) error
	GetSiteByID(ctx context.Context, id string) (*model.Site, error)
	ListSites(ctx context.Context, limit int, offset int64) ([]*model.Site, int64, error)

	Create(ctx context.Context, resource *model.Resource) error
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	ListBySite(ctx context.Context, siteID, resourceType string, limit int, offset int64) ([]*model.Resource, int64, error)
	Update(ctx context.Context, id string, updates *model.ResourceUpdate) (*model.Resource, error)
	SetStatus(ctx context.Context, id, status string) error
}

type resourceService struct {
	repo      repository.ResourceRepository
	siteRepo  repository.SiteRepository
	validator *validator.ResourceValidator
	cfg       *config.Config
}

func NewResourceService(
	repo repository.ResourceRepository,
	siteRepo repository.SiteRepository,
	validator *validator.ResourceValidator,
	cfg *config.Config,
) ResourceService {
	return &resourceService{
		repo:      repo,
		siteRepo:  siteRepo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *resourceService) CreateSite(ctx context.Context, site *model.Site) error {
	site.Name = sanitizer.NormalizeName(site.Name)
	site.City = sanitizer.NormalizeCity(site.City)
	site.Address = sanitizer.TrimAndNormalize(site.Address)

	if err := s.validator.ValidateSite(site); err != nil {
		s.cfg.Log.Warn("Site validation failed", "error", err)
		return apperrors.Validation("Site validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.siteRepo.Create(ctx, site); err != nil {
		s.cfg.Log.Error("Failed to create site", "error", err)
		return apperrors.Internal("Failed to create site", err)
	}

	s.cfg.Log.Info("Site created successfully", "id", site.ID, "name", site.Name, "city", site.City)
	return nil
}

func (s *resourceService) GetSiteByID(ctx context.Context, id string) (*model.Site, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Site ID cannot be empty")
	}

	site, err := s.siteRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrSiteNotFound) {
			return nil, apperrors.NotFoundWithID("Site", id)
		}
		if errors.Is(err, resourceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid site ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve site", err)
	}

	return site, nil
}

func (s *resourceService) ListSites(ctx context.Context, limit int, offset int64) ([]*model.Site, int64, error) {
	var count int64
	var sites []*model.Site
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.siteRepo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count sites", "error", errCount)
			errCount = apperrors.Internal("Failed to count sites", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		sites, errFind = s.siteRepo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list sites", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve sites", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return sites, count, nil
}

func (s *resourceService) Create(ctx context.Context, resource *model.Resource) error {
	s.applyDefaults(resource)
	resource.Name = sanitizer.NormalizeName(resource.Name)

	if err := s.validator.Validate(resource); err != nil {
		s.cfg.Log.Warn("Resource validation failed", "error", err)
		return apperrors.Validation("Resource validation failed", map[string]any{"error": err.Error()})
	}

	// The site must exist before anything gets attached to it
	if _, err := s.GetSiteByID(ctx, resource.SiteID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		s.cfg.Log.Error("Failed to create resource", "error", err)
		return apperrors.Internal("Failed to create resource", err)
	}

	s.cfg.Log.Info("Resource created successfully",
		"id", resource.ID,
		"site_id", resource.SiteID,
		"name", resource.Name,
		"type", resource.Type,
	)
	return nil
}

func (s *resourceService) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, resourceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}

	return resource, nil
}

func (s *resourceService) ListBySite(ctx context.Context, siteID, resourceType string, limit int, offset int64) ([]*model.Resource, int64, error) {
	if siteID == "" {
		return nil, 0, apperrors.InvalidInput("Site ID is required")
	}
	if resourceType != "" && resourceType != model.ResourceTypeMeetingRoom && resourceType != model.ResourceTypeFlexDesk {
		return nil, 0, apperrors.InvalidInput("Resource type must be meeting_room or flex_desk")
	}

	var count int64
	var resources []*model.Resource
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountBySite(ctx, siteID, resourceType)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count resources", "site_id", siteID, "error", errCount)
			errCount = apperrors.Internal("Failed to count resources", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		resources, errFind = s.repo.FindBySite(ctx, siteID, resourceType, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list resources", "site_id", siteID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve resources", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return resources, count, nil
}

func (s *resourceService) Update(ctx context.Context, id string, updates *model.ResourceUpdate) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Resource update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeResourceUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Resource validation failed", map[string]any{"error": err.Error()})
	}

	updated, err := s.repo.Update(ctx, id, merged)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		s.cfg.Log.Error("Failed to update resource", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update resource", err)
	}

	s.cfg.Log.Info("Resource updated successfully", "id", id)
	return updated, nil
}

func (s *resourceService) SetStatus(ctx context.Context, id, status string) error {
	if id == "" {
		return apperrors.InvalidInput("Resource ID cannot be empty")
	}
	switch status {
	case model.ResourceStatusAvailable, model.ResourceStatusUnavailable, model.ResourceStatusMaintenance:
	default:
		return apperrors.InvalidInput("Status must be available, unavailable or maintenance")
	}

	err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, resourceserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource ID format")
		}
		return apperrors.Internal("Failed to update resource status", err)
	}

	s.cfg.Log.Info("Resource status updated", "id", id, "status", status)
	return nil
}

// --- Helpers ---

func (s *resourceService) applyDefaults(r *model.Resource) {
	if r.Status == "" {
		r.Status = model.ResourceStatusAvailable
	}
}

func (s *resourceService) mergeResourceUpdates(existing *model.Resource, updates *model.ResourceUpdate) *model.Resource {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Capacity != nil {
		merged.Capacity = updates.Capacity
	}
	if updates.HourlyCreditRate != nil {
		merged.HourlyCreditRate = *updates.HourlyCreditRate
	}
	if updates.DailyCreditRate != nil {
		merged.DailyCreditRate = *updates.DailyCreditRate
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}
