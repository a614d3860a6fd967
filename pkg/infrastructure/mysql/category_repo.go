package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"shop/pkg/domain/model"
)

type categoryRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r categoryRow) toModel() *model.Category {
	return &model.Category{
		ID:        r.ID,
		Name:      r.Name,
		Slug:      r.Slug,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) model.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *categoryRepository) Create(category *model.Category) error {
	_, err := r.db.Exec(
		`INSERT INTO categories (id, name, slug, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Slug, category.IsActive, category.CreatedAt, category.UpdatedAt,
	)
	if isDuplicateEntry(err, "") {
		return model.ErrCategoryExists
	}
	return errors.Wrap(err, "insert category")
}

func (r *categoryRepository) Find(id uuid.UUID) (*model.Category, error) {
	var row categoryRow
	err := r.db.Get(&row, `SELECT id, name, slug, is_active, created_at, updated_at FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select category")
	}
	return row.toModel(), nil
}

func (r *categoryRepository) List() ([]*model.Category, error) {
	var rows []categoryRow
	if err := r.db.Select(&rows, `SELECT id, name, slug, is_active, created_at, updated_at FROM categories ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "select categories")
	}

	categories := make([]*model.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toModel())
	}
	return categories, nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	_, err := r.db.Exec(
		`UPDATE categories SET name = ?, slug = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		category.Name, category.Slug, category.IsActive, category.UpdatedAt, category.ID,
	)
	if isDuplicateEntry(err, "") {
		return model.ErrCategoryExists
	}
	return errors.Wrap(err, "update category")
}
