package transport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	TotalPrice string              `json:"total_price"`
	Items      []orderItemResponse `json:"items"`
}

func toOrderResponse(order *model.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}
	return orderResponse{
		ID:         order.ID.String(),
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice.StringFixed(2),
		Items:      items,
	}
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []orderItemRequest `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.OrderItemData, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product_id")
			return
		}
		items = append(items, service.OrderItemData{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := s.orders.CreateOrder(currentUser(r).ID, items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := s.orders.ListUserOrders(currentUser(r).ID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := s.orders.GetOrder(orderID, currentUser(r).ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.orders.CancelOrder(orderID, currentUser(r).ID); err != nil {
		writeDomainError(w, err)
		return
	}

	order, err := s.orders.GetOrder(orderID, currentUser(r).ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}
