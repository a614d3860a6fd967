package transport

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/service"
	"shop/pkg/gateway"
)

type Server struct {
	auth     service.AuthService
	catalog  service.CatalogService
	orders   service.OrderService
	payments service.PaymentService
	gateways map[string]gateway.PaymentGateway
	currency string
	logger   *log.Logger
}

func NewServer(
	auth service.AuthService,
	catalog service.CatalogService,
	orders service.OrderService,
	payments service.PaymentService,
	gateways map[string]gateway.PaymentGateway,
	currency string,
	logger *log.Logger,
) *Server {
	return &Server{
		auth:     auth,
		catalog:  catalog,
		orders:   orders,
		payments: payments,
		gateways: gateways,
		currency: currency,
		logger:   logger,
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)

	api.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{ID}", s.getProduct).Methods(http.MethodGet)

	// Webhooks authenticate via the provider signature, not a user token.
	api.HandleFunc("/payments/webhook/{provider}", s.paymentWebhook).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/categories", s.createCategory).Methods(http.MethodPost)
	authed.HandleFunc("/categories/{ID}", s.updateCategory).Methods(http.MethodPatch)
	authed.HandleFunc("/categories/{ID}/deactivate", s.deactivateCategory).Methods(http.MethodPost)
	authed.HandleFunc("/products", s.createProduct).Methods(http.MethodPost)
	authed.HandleFunc("/products/{ID}", s.updateProduct).Methods(http.MethodPatch)
	authed.HandleFunc("/products/{ID}", s.deleteProduct).Methods(http.MethodDelete)

	authed.HandleFunc("/orders", s.createOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders", s.listOrders).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{ID}", s.getOrder).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{ID}/cancel", s.cancelOrder).Methods(http.MethodPost)
	authed.HandleFunc("/orders/{ID}/payment", s.createPayment).Methods(http.MethodPost)

	return s.logMiddleware(r)
}
