package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/solodko/storefront/internal/domain/cart"
	"github.com/solodko/storefront/internal/domain/product"
)

// cartCookieName is the session cookie carrying the cart identifier.
const cartCookieName = "cart_session"

// cartCookieMaxAge keeps the cookie a little longer than the store TTL so the
// cookie never outlives an expired cart by much.
const cartCookieMaxAge = int(30 * 24 * time.Hour / time.Second)

// cartSession returns the request's cart session ID, issuing a new cookie
// when the request has none.
func cartSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cartCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   cartCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type cartItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type cartResponse struct {
	Items         []cartItemResponse `json:"items"`
	TotalPrice    float64            `json:"totalPrice"`
	TotalQuantity int                `json:"totalQuantity"`
}

func (h *Handler) toCartResponse(c *cart.Cart) cartResponse {
	items := make([]cartItemResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = cartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Image:     h.images.ResolveURL(item.Image),
			Quantity:  item.Quantity,
		}
	}
	return cartResponse{
		Items:         items,
		TotalPrice:    c.TotalPrice().InexactFloat64(),
		TotalQuantity: c.TotalQuantity(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), cartSession(w, r))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.toCartResponse(c))
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	c, err := h.carts.AddItem(r.Context(), cartSession(w, r), req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.toCartResponse(c))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	productID := chi.URLParam(r, "productID")
	c, err := h.carts.UpdateQuantity(r.Context(), cartSession(w, r), productID, req.Quantity)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	c, err := h.carts.RemoveItem(r.Context(), cartSession(w, r), productID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), cartSession(w, r)); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutResponse struct {
	OrderNumber string             `json:"orderNumber"`
	Total       float64            `json:"total"`
	Items       []cartItemResponse `json:"items"`
	PlacedAt    time.Time          `json:"placedAt"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	conf, err := h.carts.Checkout(r.Context(), cartSession(w, r))
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			h.writeError(w, r, http.StatusUnprocessableEntity, "cart is empty")
			return
		}
		h.serverError(w, r, err)
		return
	}

	items := make([]cartItemResponse, len(conf.Items))
	for i, item := range conf.Items {
		items[i] = cartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Image:     h.images.ResolveURL(item.Image),
			Quantity:  item.Quantity,
		}
	}
	h.writeJSON(w, r, http.StatusOK, checkoutResponse{
		OrderNumber: conf.OrderNumber,
		Total:       conf.Total.InexactFloat64(),
		Items:       items,
		PlacedAt:    conf.PlacedAt,
	})
}
