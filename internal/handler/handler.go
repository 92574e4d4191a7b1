// Package handler exposes the storefront over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-api/internal/domain/auth"
	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/domain/user"
	"github.com/xenking/storefront-api/pkg/httpmiddleware"
)

// OrderService is the order lifecycle used by the order routes.
type OrderService interface {
	List(ctx context.Context) ([]order.Order, error)
	Get(ctx context.Context, id int64) (*order.Order, error)
	Create(ctx context.Context, userID int64, status order.Status) (*order.Order, error)
	Update(ctx context.Context, id, userID int64, status order.Status) (*order.Order, error)
	AddProduct(ctx context.Context, orderID, productID int64, quantity int) (*order.LineItem, error)
	FindCurrentByUserID(ctx context.Context, userID int64) (*order.Order, error)
	FindCompleteByUserID(ctx context.Context, userID int64) ([]order.Order, error)
}

// AccountService registers and authenticates users.
type AccountService interface {
	Register(ctx context.Context, reg user.Registration) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// TokenIssuer issues and verifies bearer tokens.
type TokenIssuer interface {
	Issue(u *user.User) (string, error)
	Verify(token string) (*auth.Identity, error)
}

// Handler serves the /api routes.
type Handler struct {
	orders   OrderService
	accounts AccountService
	tokens   TokenIssuer
	products product.Repository
	users    user.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders OrderService,
	accounts AccountService,
	tokens TokenIssuer,
	products product.Repository,
	users user.Repository,
) *Handler {
	return &Handler{
		orders:   orders,
		accounts: accounts,
		tokens:   tokens,
		products: products,
		users:    users,
	}
}

// Router returns the API routes, relative to the mount point.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpmiddleware.WriteError(w, http.StatusNotFound, kindNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpmiddleware.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/", h.index)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Post("/authenticate", h.authenticate)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/", h.listUsers)
			r.Get("/{id}", h.showUser)
			r.Delete("/{id}", h.deleteUser)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.showProduct)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/", h.createProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/current", h.currentOrder)
		r.Get("/complete", h.completeOrders)
		r.Get("/{id}", h.showOrder)
		r.Put("/{id}", h.updateOrder)
		r.Post("/{id}/products", h.addProduct)
	})

	return r
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
		})
	})
}
