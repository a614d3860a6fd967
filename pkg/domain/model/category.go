package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this name or slug already exists")
	ErrCategoryInactive = errors.New("category is deactivated")
)

type Category struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CategoryRepository interface {
	NextID() (uuid.UUID, error)
	Create(category *Category) error // ErrCategoryExists on a duplicate name or slug
	Find(id uuid.UUID) (*Category, error)
	List() ([]*Category, error)
	Update(category *Category) error
}
