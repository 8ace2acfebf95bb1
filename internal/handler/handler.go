// Package handler exposes the storefront HTTP API: public catalog, news,
// cart and contact endpoints, plus the session-guarded admin back office.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/solodko/storefront/internal/domain/auth"
	"github.com/solodko/storefront/internal/domain/cart"
	"github.com/solodko/storefront/internal/domain/category"
	"github.com/solodko/storefront/internal/domain/contact"
	"github.com/solodko/storefront/internal/domain/news"
	"github.com/solodko/storefront/internal/domain/product"
	"github.com/solodko/storefront/internal/domain/store"
	"github.com/solodko/storefront/internal/storage/images"
)

// Handler implements the storefront API over the domain services and
// repositories.
type Handler struct {
	products   product.Repository
	categories category.Repository
	news       *news.Service
	carts      *cart.Service
	auth       *auth.Service
	contacts   contact.Repository
	stores     []store.Store
	images     *images.Store
}

// NewHandler constructs a Handler with its domain dependencies.
func NewHandler(
	products product.Repository,
	categories category.Repository,
	newsSvc *news.Service,
	carts *cart.Service,
	authSvc *auth.Service,
	contacts contact.Repository,
	stores []store.Store,
	imageStore *images.Store,
) *Handler {
	return &Handler{
		products:   products,
		categories: categories,
		news:       newsSvc,
		carts:      carts,
		auth:       authSvc,
		contacts:   contacts,
		stores:     stores,
		images:     imageStore,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{productID}", h.getProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/news", h.listNews)
		r.Get("/news/{articleID}", h.getNewsArticle)
		r.Get("/stores", h.listStores)
		r.Post("/contact", h.submitContact)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{productID}", h.updateCartItem)
			r.Delete("/items/{productID}", h.removeCartItem)
			r.Post("/checkout", h.checkout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.adminLogin)

			r.Group(func(r chi.Router) {
				r.Use(h.requireSession)
				r.Post("/logout", h.adminLogout)

				r.Post("/products", h.createProduct)
				r.Put("/products/{productID}", h.updateProduct)
				r.Delete("/products/{productID}", h.deleteProduct)

				r.Post("/categories", h.createCategory)
				r.Put("/categories/{categoryID}", h.updateCategory)
				r.Delete("/categories/{categoryID}", h.deleteCategory)

				r.Post("/news", h.createNewsArticle)
				r.Put("/news/{articleID}", h.updateNewsArticle)
				r.Delete("/news/{articleID}", h.deleteNewsArticle)

				r.Post("/images/{bucket}", h.uploadImage)
				r.Get("/contact-messages", h.listContactMessages)
			})
		})
	})

	return r
}

// errorResponse is the error envelope for every non-2xx JSON response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, r, status, errorResponse{Code: status, Message: message})
}

// serverError logs err and responds with a generic 500 envelope.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	h.writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// decode parses a JSON request body into v.
func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
