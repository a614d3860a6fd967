package transport

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"shop/pkg/domain/model"
)

type categoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}

func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		Slug:     c.Slug,
		IsActive: c.IsActive,
	}
}

type productResponse struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	IsActive    bool   `json:"is_active"`
}

func toProductResponse(p *model.Product) productResponse {
	return productResponse{
		ID:          p.ID.String(),
		CategoryID:  p.CategoryID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		IsActive:    p.IsActive,
	}
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Slug == "" {
		writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}

	category, err := s.catalog.CreateCategory(req.Name, req.Slug)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	categories, err := s.catalog.ListCategories()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name *string `json:"name"`
		Slug *string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := s.catalog.UpdateCategory(categoryID, req.Name, req.Slug)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) deactivateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeactivateCategory(categoryID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       string `json:"price"`
		CategoryID  string `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category_id")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	product, err := s.catalog.CreateProduct(req.Name, req.Description, price, categoryID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	product, err := s.catalog.GetProduct(productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := model.ProductFilter{ActiveOnly: r.URL.Query().Get("all") == ""}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = categoryID
	}

	products, err := s.catalog.ListProducts(filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Price    *string `json:"price"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid price")
			return
		}
		if err := s.catalog.ChangeProductPrice(productID, price); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if req.IsActive != nil && !*req.IsActive {
		if err := s.catalog.DeactivateProduct(productID); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	product, err := s.catalog.GetProduct(productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteProduct(productID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["ID"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
