package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"shop/pkg/domain/model"
)

type CatalogService interface {
	CreateCategory(name, slug string) (*model.Category, error)
	ListCategories() ([]*model.Category, error)
	UpdateCategory(categoryID uuid.UUID, name, slug *string) (*model.Category, error)
	DeactivateCategory(categoryID uuid.UUID) error

	CreateProduct(name, description string, price decimal.Decimal, categoryID uuid.UUID) (*model.Product, error)
	GetProduct(productID uuid.UUID) (*model.Product, error)
	ListProducts(filter model.ProductFilter) ([]*model.Product, error)
	ChangeProductPrice(productID uuid.UUID, newPrice decimal.Decimal) error
	DeactivateProduct(productID uuid.UUID) error
	DeleteProduct(productID uuid.UUID) error
}

func NewCatalogService(categories model.CategoryRepository, products model.ProductRepository, dispatcher EventDispatcher) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
		dispatcher: dispatcher,
	}
}

type catalogService struct {
	categories model.CategoryRepository
	products   model.ProductRepository
	dispatcher EventDispatcher
}

func (s *catalogService) CreateCategory(name, slug string) (*model.Category, error) {
	categoryID, err := s.categories.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &model.Category{
		ID:        categoryID,
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categories.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) ListCategories() ([]*model.Category, error) {
	return s.categories.List()
}

func (s *catalogService) UpdateCategory(categoryID uuid.UUID, name, slug *string) (*model.Category, error) {
	category, err := s.categories.Find(categoryID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		category.Name = *name
	}
	if slug != nil {
		category.Slug = *slug
	}
	category.UpdatedAt = time.Now().UTC()

	if err := s.categories.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) DeactivateCategory(categoryID uuid.UUID) error {
	category, err := s.categories.Find(categoryID)
	if err != nil {
		return err
	}
	if !category.IsActive {
		return nil
	}

	category.IsActive = false
	category.UpdatedAt = time.Now().UTC()
	return s.categories.Update(category)
}

func (s *catalogService) CreateProduct(name, description string, price decimal.Decimal, categoryID uuid.UUID) (*model.Product, error) {
	if price.IsNegative() {
		return nil, model.ErrNegativePrice
	}

	category, err := s.categories.Find(categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, model.ErrCategoryInactive
	}

	productID, err := s.products.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          productID,
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
		Price:       price,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: name})
	return product, nil
}

func (s *catalogService) GetProduct(productID uuid.UUID) (*model.Product, error) {
	return s.products.Find(productID)
}

func (s *catalogService) ListProducts(filter model.ProductFilter) ([]*model.Product, error) {
	return s.products.List(filter)
}

func (s *catalogService) ChangeProductPrice(productID uuid.UUID, newPrice decimal.Decimal) error {
	if newPrice.IsNegative() {
		return model.ErrNegativePrice
	}

	product, err := s.products.Find(productID)
	if err != nil {
		return err
	}

	oldPrice := product.Price
	product.Price = newPrice
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductPriceChanged{
		ProductID: productID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
	})
	return nil
}

func (s *catalogService) DeactivateProduct(productID uuid.UUID) error {
	product, err := s.products.Find(productID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}

	product.IsActive = false
	product.UpdatedAt = time.Now().UTC()
	return s.products.Update(product)
}

func (s *catalogService) DeleteProduct(productID uuid.UUID) error {
	return s.products.Delete(productID)
}
