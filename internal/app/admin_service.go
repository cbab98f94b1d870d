package app

import (
	"context"

	"github.com/ZeinaZayed4/flash-sale/internal/clock"
	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/shopspring/decimal"
)

type AdminRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// AdminService introduces products into the catalog. New products start
// with available stock equal to total stock; all later movement goes
// through the ledger.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateProductInput struct {
	Name       string
	Price      decimal.Decimal
	TotalStock int
}

func (s *AdminService) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.ErrInvalidID
	}
	if in.TotalStock < 0 || in.Price.IsNegative() {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	product := domain.Product{
		ID:             newID(),
		Name:           in.Name,
		Price:          in.Price,
		TotalStock:     in.TotalStock,
		AvailableStock: in.TotalStock,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *AdminService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}
