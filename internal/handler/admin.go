package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/solodko/storefront/internal/domain/auth"
	"github.com/solodko/storefront/internal/domain/category"
	"github.com/solodko/storefront/internal/domain/news"
	"github.com/solodko/storefront/internal/domain/product"
	"github.com/solodko/storefront/internal/storage/images"
)

type sessionContextKey struct{}

// SessionFromContext returns the admin session attached by requireSession.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*auth.Session)
	return s, ok
}

// requireSession guards admin routes: it resolves the Bearer token to a live
// session or rejects the request with 401.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}
		session, err := h.auth.Validate(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				h.writeError(w, r, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			h.serverError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			zctx.From(r.Context()).Warn("failed admin login attempt",
				zap.String("username", req.Username))
			h.writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *Handler) adminLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// productRequest is the admin payload for creating or updating a product.
// Price arrives as a JSON number and is converted to a decimal; negative
// prices are rejected.
type productRequest struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Price            float64          `json:"price"`
	Image            string           `json:"image"`
	AdditionalImages []string         `json:"additionalImages"`
	CategoryID       string           `json:"categoryId"`
	InStock          bool             `json:"inStock"`
	Details          *product.Details `json:"details"`
}

func (req *productRequest) toProduct(id string) (*product.Product, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.CategoryID == "" {
		return nil, errors.New("categoryId is required")
	}
	price := decimal.NewFromFloat(req.Price).Round(2)
	if price.IsNegative() {
		return nil, errors.New("price must not be negative")
	}
	return &product.Product{
		ID:               id,
		Name:             req.Name,
		Description:      req.Description,
		Price:            price,
		Image:            req.Image,
		AdditionalImages: req.AdditionalImages,
		CategoryID:       req.CategoryID,
		InStock:          req.InStock,
		Details:          req.Details,
	}, nil
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	p, err := req.toProduct(id)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p.CreatedAt = time.Now().UTC()

	if err := h.products.Create(r.Context(), p); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, h.toProductResponse(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	var req productRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := req.toProduct(id)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.toProductResponse(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	c := &category.Category{ID: req.ID, Name: req.Name, Image: req.Image}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := h.categories.Create(r.Context(), c); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, categoryResponse{
		ID:    c.ID,
		Name:  c.Name,
		Image: h.images.ResolveURL(c.Image),
	})
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")

	var req categoryRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	c := &category.Category{ID: id, Name: req.Name, Image: req.Image}
	if err := h.categories.Update(r.Context(), c); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "category not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, categoryResponse{
		ID:    c.ID,
		Name:  c.Name,
		Image: h.images.ResolveURL(c.Image),
	})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")

	if err := h.categories.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, category.ErrNotFound):
			h.writeError(w, r, http.StatusNotFound, "category not found")
		case errors.Is(err, category.ErrInUse):
			h.writeError(w, r, http.StatusConflict, "category still has products; move or delete them first")
		default:
			h.serverError(w, r, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type newsRequest struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Summary string    `json:"summary"`
	Image   string    `json:"image"`
	Images  []string  `json:"images"`
	Date    time.Time `json:"date"`
	Author  string    `json:"author"`
}

func (req *newsRequest) toArticle(id string) (*news.Article, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &news.Article{
		ID:      id,
		Title:   req.Title,
		Content: req.Content,
		Summary: req.Summary,
		Image:   req.Image,
		Images:  req.Images,
		Date:    date,
		Author:  req.Author,
	}, nil
}

func (h *Handler) createNewsArticle(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	a, err := req.toArticle(id)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.news.Create(r.Context(), a); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, h.toNewsResponse(*a))
}

func (h *Handler) updateNewsArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "articleID")

	var req newsRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := req.toArticle(id)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.news.Update(r.Context(), a); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "article not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.toNewsResponse(*a))
}

func (h *Handler) deleteNewsArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "articleID")

	if err := h.news.Delete(r.Context(), id); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "article not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// uploadImage stores a multipart image in the named bucket and returns both
// the stored object path (what the admin saves on the entity) and its
// resolved public URL.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")

	if err := r.ParseMultipartForm(images.MaxUploadSize); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	objectPath, err := h.images.Save(r.Context(), bucket, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrUnknownBucket):
			h.writeError(w, r, http.StatusNotFound, "unknown bucket")
		case errors.Is(err, images.ErrTooLarge):
			h.writeError(w, r, http.StatusRequestEntityTooLarge, "image exceeds maximum upload size")
		case errors.Is(err, images.ErrUnsupportedType):
			h.writeError(w, r, http.StatusUnsupportedMediaType, "unsupported image type")
		default:
			h.serverError(w, r, err)
		}
		return
	}
	h.writeJSON(w, r, http.StatusCreated, uploadResponse{
		Path: objectPath,
		URL:  h.images.ResolveURL(objectPath),
	})
}
