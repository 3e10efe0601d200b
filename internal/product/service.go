package product

import (
	"context"
	"fmt"
	"math"
	"strings"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

const defaultPageSize = 10

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultPageSize
	} else if opts.Limit > 100 {
		opts.Limit = 100
	}

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Products: products,
		Total:    total,
		Page:     opts.Page,
		Pages:    int(math.Ceil(float64(total) / float64(opts.Limit))),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func requireCatalogRole(ctx context.Context) error {
	id, ok := auth.IdentityFrom(ctx)
	if !ok || !id.Role.CanManageCatalog() {
		return ErrForbidden
	}
	return nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	if err := requireCatalogRole(ctx); err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(params.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	if params.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if params.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}

	return s.repo.Create(ctx, params)
}

func (s *service) Update(ctx context.Context, id string, params UpdateParams) (*Product, error) {
	if err := requireCatalogRole(ctx); err != nil {
		return nil, err
	}

	if !params.HasAnyField() {
		return nil, ErrNoFields
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if params.Price != nil && params.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if params.Stock != nil && *params.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}

	return s.repo.Update(ctx, id, params)
}

// Delete archives the product when orders reference it, hard-deletes
// otherwise. The archived product (if any) is returned for the response.
func (s *service) Delete(ctx context.Context, id string) (*Product, bool, error) {
	if err := requireCatalogRole(ctx); err != nil {
		return nil, false, err
	}

	p, archived, err := s.repo.DeleteOrArchive(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if archived {
		logger.FromCtx(ctx).Info("product archived instead of deleted",
			zap.String("product_id", id),
		)
	}

	return p, archived, nil
}
