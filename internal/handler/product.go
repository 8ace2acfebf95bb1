package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/solodko/storefront/internal/domain/product"
)

// productResponse is the JSON shape of a catalog product. Image paths are
// resolved to public URLs; prices are serialized as JSON numbers.
type productResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Price            float64          `json:"price"`
	Image            string           `json:"image"`
	AdditionalImages []string         `json:"additionalImages"`
	CategoryID       string           `json:"categoryId"`
	InStock          bool             `json:"inStock"`
	CreatedAt        time.Time        `json:"createdAt"`
	Details          *product.Details `json:"details,omitempty"`
}

func (h *Handler) toProductResponse(p product.Product) productResponse {
	extra := make([]string, len(p.AdditionalImages))
	for i, img := range p.AdditionalImages {
		extra[i] = h.images.ResolveURL(img)
	}
	return productResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price.InexactFloat64(),
		Image:            h.images.ResolveURL(p.Image),
		AdditionalImages: extra,
		CategoryID:       p.CategoryID,
		InStock:          p.InStock,
		CreatedAt:        p.CreatedAt,
		Details:          p.Details,
	}
}

// listProducts returns the catalog, newest first. An optional ?category=
// query filters by category.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []product.Product
		err      error
	)
	if categoryID := r.URL.Query().Get("category"); categoryID != "" {
		products, err = h.products.ListByCategory(r.Context(), categoryID)
	} else {
		products, err = h.products.List(r.Context())
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.toProductResponse(*p))
}

// categoryResponse is the JSON shape of a product category.
type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = categoryResponse{
			ID:    c.ID,
			Name:  c.Name,
			Image: h.images.ResolveURL(c.Image),
		}
	}
	h.writeJSON(w, r, http.StatusOK, out)
}
