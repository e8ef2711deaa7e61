package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/bigshop/internal/domain/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStorage описывает методы для работы с каталогом и остатками товаров.
type ProductStorage interface {
	GetAllProducts(ctx context.Context) ([]*models.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]*models.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	// GetStock возвращает текущий остаток товара.
	GetStock(ctx context.Context, id int64) (int, error)
	// DecrementStock атомарно списывает qty со склада внутри транзакции.
	// Условие stock_quantity >= qty проверяется самим UPDATE, поэтому два
	// конкурентных списания не могут увести остаток в минус. Если условие не
	// выполнено — возвращается ErrInsufficientStock, состояние не меняется.
	DecrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, category, image_url, stock_quantity, featured, created_at"

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.StockQuantity, &p.Featured, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// GetAllProducts возвращает товары в наличии, новые — первыми.
func (r *productRepository) GetAllProducts(ctx context.Context) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE stock_quantity > 0 ORDER BY created_at DESC"
	return r.queryProducts(ctx, query)
}

// GetFeaturedProducts возвращает до восьми рекомендуемых товаров в наличии.
func (r *productRepository) GetFeaturedProducts(ctx context.Context) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE featured = TRUE AND stock_quantity > 0 LIMIT 8"
	return r.queryProducts(ctx, query)
}

func (r *productRepository) GetProductsByCategory(ctx context.Context, category string) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE category = $1 AND stock_quantity > 0"
	return r.queryProducts(ctx, query, category)
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `INSERT INTO products (name, description, price, category, image_url, stock_quantity, featured)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.Category,
		product.ImageURL, product.StockQuantity, product.Featured,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `UPDATE products SET name = $1, description = $2, price = $3, category = $4,
	          image_url = $5, stock_quantity = $6, featured = $7 WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Category,
		product.ImageURL, product.StockQuantity, product.Featured, product.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct удаляет товар; строки корзин, ссылающиеся на него, удаляются каскадно.
func (r *productRepository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) GetStock(ctx context.Context, id int64) (int, error) {
	var qty int
	row := r.db.QueryRowContext(ctx, "SELECT stock_quantity FROM products WHERE id = $1", id)
	if err := row.Scan(&qty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return qty, nil
}

// DecrementStock выполняет условное списание: UPDATE затрагивает строку только
// если остатка хватает. Ноль затронутых строк означает либо нехватку товара,
// либо отсутствие самого товара — различаем дополнительным SELECT в той же транзакции.
func (r *productRepository) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity - $1 WHERE id = $2 AND stock_quantity >= $1",
		qty, id,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		row := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", id)
		if err := row.Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}
