package labor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/fabriq-erp/fabriq/internal/shared"
)

type Service struct {
	repo     Repository
	logger   *slog.Logger
	validate *validator.Validate
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, req CreateLaborTypeRequest) (*LaborType, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}
	lt, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create labor type: %w", err)
	}
	s.logger.Info("labor type created", "labor_type_id", lt.ID, "name", lt.Name)
	return lt, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LaborType, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListLaborTypesRequest) ([]LaborType, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateLaborTypeRequest) (*LaborType, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PricePerHour != nil {
		updates["price_per_hour"] = *req.PricePerHour
	}

	lt, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("update labor type %d: %w", id, err)
	}
	return lt, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete labor type %d: %w", id, err)
	}
	return nil
}
