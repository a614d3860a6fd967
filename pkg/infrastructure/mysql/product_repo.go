package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

type productRow struct {
	ID          uuid.UUID       `db:"id"`
	CategoryID  uuid.UUID       `db:"category_id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r productRow) toModel() *model.Product {
	return &model.Product{
		ID:          r.ID,
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const productColumns = `id, category_id, name, description, price, is_active, created_at, updated_at`

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) model.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *productRepository) Create(product *model.Product) error {
	_, err := r.db.Exec(
		`INSERT INTO products (id, category_id, name, description, price, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.CategoryID, product.Name, product.Description,
		product.Price, product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	return errors.Wrap(err, "insert product")
}

func (r *productRepository) Find(id uuid.UUID) (*model.Product, error) {
	var row productRow
	err := r.db.Get(&row, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select product")
	}
	return row.toModel(), nil
}

func (r *productRepository) FindByIDs(ids []uuid.UUID) ([]*model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "build products query")
	}

	var rows []productRow
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "select products by ids")
	}

	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

func (r *productRepository) List(filter model.ProductFilter) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	var args []interface{}

	if filter.CategoryID != uuid.Nil {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.ActiveOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	var rows []productRow
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select products")
	}

	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	_, err := r.db.Exec(
		`UPDATE products SET category_id = ?, name = ?, description = ?, price = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		product.CategoryID, product.Name, product.Description, product.Price,
		product.IsActive, product.UpdatedAt, product.ID,
	)
	return errors.Wrap(err, "update product")
}

func (r *productRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if isRowReferenced(err) {
		return model.ErrProductInUse
	}
	if err != nil {
		return errors.Wrap(err, "delete product")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}
