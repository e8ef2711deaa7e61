package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/bigshop/internal/domain/models"
	"github.com/linemk/bigshop/internal/storage"
)

// CatalogService определяет операции над каталогом товаров.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	FeaturedProducts(ctx context.Context) ([]*models.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{log: log, productRepo: productRepo}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"

	products, err := s.productRepo.GetAllProducts(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) FeaturedProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.FeaturedProducts"

	products, err := s.productRepo.GetFeaturedProducts(ctx)
	if err != nil {
		s.log.Error("failed to list featured products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) ProductsByCategory(ctx context.Context, category string) ([]*models.Product, error) {
	const op = "service.CatalogService.ProductsByCategory"

	products, err := s.productRepo.GetProductsByCategory(ctx, category)
	if err != nil {
		s.log.Error("failed to list products by category", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.CatalogService.GetProduct"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		s.log.Warn("failed to get product", slog.String("op", op), slog.Int64("id", id), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.CreateProduct"

	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		s.log.Error("failed to create product", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product created", slog.String("op", op), slog.Int64("id", created.ID))
	return created, nil
}

// UpdateProduct обновляет товар. Цена товара меняется свободно: уже созданные
// заказы хранят собственный снимок цены и задним числом не пересчитываются.
func (s *catalogService) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	const op = "service.CatalogService.UpdateProduct"

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		s.log.Error("failed to update product", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.productRepo.GetProductByID(ctx, product.ID)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "service.CatalogService.DeleteProduct"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		s.log.Error("failed to delete product", slog.String("op", op), slog.Int64("id", id), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product deleted", slog.String("op", op), slog.Int64("id", id))
	return nil
}
