package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solodko/storefront/internal/domain/auth"
	"github.com/solodko/storefront/internal/domain/cart"
	"github.com/solodko/storefront/internal/domain/category"
	"github.com/solodko/storefront/internal/domain/contact"
	"github.com/solodko/storefront/internal/domain/news"
	"github.com/solodko/storefront/internal/domain/product"
	"github.com/solodko/storefront/internal/domain/store"
	"github.com/solodko/storefront/internal/storage/images"
	"github.com/solodko/storefront/internal/storage/memstore"
)

// --- Mock repositories ---

type mockProductRepo struct {
	products []product.Product
	listErr  error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return m.products, m.listErr
}

func (m *mockProductRepo) ListByCategory(_ context.Context, categoryID string) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, m.listErr
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) ListIDs(_ context.Context) ([]string, error) { return nil, nil }

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	m.products = append(m.products, *p)
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, p *product.Product) error {
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = *p
			return nil
		}
	}
	return product.ErrNotFound
}

func (m *mockProductRepo) Upsert(_ context.Context, _ *product.Product) error { return nil }

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return product.ErrNotFound
}

type mockCategoryRepo struct {
	categories []category.Category
	deleteErr  error
}

func (m *mockCategoryRepo) List(_ context.Context) ([]category.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id string) (*category.Category, error) {
	for i := range m.categories {
		if m.categories[i].ID == id {
			return &m.categories[i], nil
		}
	}
	return nil, category.ErrNotFound
}

func (m *mockCategoryRepo) Create(_ context.Context, c *category.Category) error {
	m.categories = append(m.categories, *c)
	return nil
}

func (m *mockCategoryRepo) Update(_ context.Context, c *category.Category) error {
	for i := range m.categories {
		if m.categories[i].ID == c.ID {
			m.categories[i] = *c
			return nil
		}
	}
	return category.ErrNotFound
}

func (m *mockCategoryRepo) Upsert(_ context.Context, _ *category.Category) error { return nil }

func (m *mockCategoryRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return category.ErrNotFound
}

type mockNewsRepo struct {
	articles []news.Article
	failing  bool
}

func (m *mockNewsRepo) List(_ context.Context) ([]news.Article, error) {
	if m.failing {
		return nil, errFailingRepo
	}
	return m.articles, nil
}

func (m *mockNewsRepo) GetByID(_ context.Context, id string) (*news.Article, error) {
	if m.failing {
		return nil, errFailingRepo
	}
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i], nil
		}
	}
	return nil, news.ErrNotFound
}

func (m *mockNewsRepo) ListIDs(_ context.Context) ([]string, error) { return nil, nil }

func (m *mockNewsRepo) Create(_ context.Context, a *news.Article) error {
	m.articles = append(m.articles, *a)
	return nil
}

func (m *mockNewsRepo) Update(_ context.Context, a *news.Article) error {
	for i := range m.articles {
		if m.articles[i].ID == a.ID {
			m.articles[i] = *a
			return nil
		}
	}
	return news.ErrNotFound
}

func (m *mockNewsRepo) Upsert(_ context.Context, _ *news.Article) error { return nil }

func (m *mockNewsRepo) Delete(_ context.Context, id string) error {
	for i := range m.articles {
		if m.articles[i].ID == id {
			m.articles = append(m.articles[:i], m.articles[i+1:]...)
			return nil
		}
	}
	return news.ErrNotFound
}

type mockContactRepo struct {
	messages []contact.Message
}

func (m *mockContactRepo) Create(_ context.Context, msg *contact.Message) error {
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockContactRepo) List(_ context.Context) ([]contact.Message, error) {
	return m.messages, nil
}

var errFailingRepo = assert.AnError

// --- Fixture ---

type fixture struct {
	handler    http.Handler
	products   *mockProductRepo
	categories *mockCategoryRepo
	newsRepo   *mockNewsRepo
	contacts   *mockContactRepo
	auth       *auth.Service
}

const (
	testAdminUser = "admin"
	testAdminPass = "s3cret"
)

var testPepper = []byte("test-pepper")

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := &mockProductRepo{products: []product.Product{
		{
			ID:         "p1",
			Name:       "Oatmeal cookies",
			Price:      decimal.RequireFromString("75.00"),
			Image:      "products/oatmeal.jpg",
			CategoryID: "c1",
			InStock:    true,
		},
		{
			ID:         "p2",
			Name:       "Vanilla rusks",
			Price:      decimal.RequireFromString("50.00"),
			Image:      "products/rusks.jpg",
			CategoryID: "c2",
			InStock:    true,
		},
	}}
	categories := &mockCategoryRepo{categories: []category.Category{
		{ID: "c1", Name: "Cookies"},
		{ID: "c2", Name: "Rusks"},
	}}
	newsRepo := &mockNewsRepo{articles: []news.Article{
		{ID: "n1", Title: "Launch", Date: time.Now()},
	}}
	contacts := &mockContactRepo{}

	seedArticles := []news.Article{{ID: "seed-1", Title: "Seeded", Date: time.Now()}}
	newsSvc := news.NewService(newsRepo, seedArticles, zap.NewNop())

	cartSvc := cart.NewService(memstore.NewCartStore(time.Hour), products)

	authSvc, err := auth.NewService(
		testAdminUser,
		auth.HashPassword(testAdminPass, testPepper),
		testPepper,
		time.Hour,
		memstore.NewSessionStore(),
	)
	require.NoError(t, err)

	imageStore, err := images.NewStore(t.TempDir(), "/images")
	require.NoError(t, err)

	stores := []store.Store{{ID: "st1", Name: "Retail partner", Logo: "stores/logo.png"}}

	h := NewHandler(products, categories, newsSvc, cartSvc, authSvc, contacts, stores, imageStore)
	return &fixture{
		handler:    h.Routes(),
		products:   products,
		categories: categories,
		newsRepo:   newsRepo,
		contacts:   contacts,
		auth:       authSvc,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	session, err := f.auth.Login(context.Background(), testAdminUser, testAdminPass)
	require.NoError(t, err)
	return session.Token
}

// --- Catalog ---

func TestListProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[[]productResponse](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.InDelta(t, 75.0, got[0].Price, 1e-9)
	assert.Equal(t, "/images/products/oatmeal.jpg", got[0].Image)
}

func TestListProducts_CategoryFilter(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/products?category=c2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[[]productResponse](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/products/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	got := decodeBody[errorResponse](t, rec)
	assert.Equal(t, http.StatusNotFound, got.Code)
	assert.NotEmpty(t, got.Message)
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]categoryResponse](t, rec), 2)
}

// --- News ---

func TestListNews_RemoteSource(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "remote", rec.Header().Get("X-Content-Source"))

	got := decodeBody[[]newsResponse](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].ID)
}

func TestListNews_DegradedSource(t *testing.T) {
	f := newFixture(t)
	f.newsRepo.failing = true

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "seed", rec.Header().Get("X-Content-Source"))

	got := decodeBody[[]newsResponse](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "seed-1", got[0].ID)
}

func TestGetNewsArticle_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/news/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Stores and contact ---

func TestListStores(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/stores", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[[]storeResponse](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "/images/stores/logo.png", got[0].Logo)
}

func TestSubmitContact(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", jsonBody(t, map[string]string{
		"name":    "Olena",
		"email":   "olena@example.com",
		"message": "Do you ship abroad?",
	}))
	rec := f.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, f.contacts.messages, 1)
	msg := f.contacts.messages[0]
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.Equal(t, "Olena", msg.Name)
}

func TestSubmitContact_Invalid(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", jsonBody(t, map[string]string{
		"name":    "Olena",
		"email":   "not-an-email",
		"message": "hello",
	}))
	rec := f.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.contacts.messages)
}

// --- Cart ---

// cartCookie extracts the session cookie issued by the first cart request.
func cartCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cartCookieName {
			return c
		}
	}
	t.Fatal("cart session cookie not set")
	return nil
}

func TestGetCart_IssuesSessionCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	c := cartCookie(t, rec)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)

	got := decodeBody[cartResponse](t, rec)
	assert.Empty(t, got.Items)
	assert.Zero(t, got.TotalQuantity)
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)

	// First request establishes the session.
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/cart/items", jsonBody(t, map[string]any{
		"productId": "p1",
		"quantity":  2,
	})))
	require.Equal(t, http.StatusOK, rec.Code)
	session := cartCookie(t, rec)

	withSession := func(req *http.Request) *http.Request {
		req.AddCookie(session)
		return req
	}

	rec = f.do(t, withSession(httptest.NewRequest(http.MethodPost, "/api/cart/items", jsonBody(t, map[string]any{
		"productId": "p2",
		"quantity":  1,
	}))))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[cartResponse](t, rec)
	require.Len(t, got.Items, 2)
	assert.InDelta(t, 200.0, got.TotalPrice, 1e-9)
	assert.Equal(t, 3, got.TotalQuantity)

	// Dropping a quantity to zero removes the line.
	rec = f.do(t, withSession(httptest.NewRequest(http.MethodPatch, "/api/cart/items/p1", jsonBody(t, map[string]int{
		"quantity": 0,
	}))))
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[cartResponse](t, rec)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p2", got.Items[0].ProductID)

	rec = f.do(t, withSession(httptest.NewRequest(http.MethodPost, "/api/cart/checkout", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	conf := decodeBody[checkoutResponse](t, rec)
	assert.NotEmpty(t, conf.OrderNumber)
	assert.InDelta(t, 50.0, conf.Total, 1e-9)

	// Checkout leaves the session with an empty cart.
	rec = f.do(t, withSession(httptest.NewRequest(http.MethodGet, "/api/cart", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[cartResponse](t, rec).Items)
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/cart/items", jsonBody(t, map[string]any{
		"productId": "missing",
	})))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCartItem_MissingProductID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/cart/items", jsonBody(t, map[string]any{
		"quantity": 1,
	})))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/cart/checkout", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// --- Admin auth ---

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/admin/login", jsonBody(t, map[string]string{
		"username": testAdminUser,
		"password": testAdminPass,
	})))
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[loginResponse](t, rec)
	assert.NotEmpty(t, got.Token)
	assert.True(t, got.ExpiresAt.After(time.Now()))
}

func TestAdminLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/api/admin/login", jsonBody(t, map[string]string{
		"username": testAdminUser,
		"password": "wrong",
	})))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/admin/products/p1", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/products/p1", nil)
	req.Header.Set("Authorization", "Bearer bogus-token")
	rec = f.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogout_RevokesSession(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := f.do(t, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/contact-messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = f.do(t, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- Admin CRUD ---

func (f *fixture) doAuthed(t *testing.T, token string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+token)
	return f.do(t, req)
}

func TestAdminCreateProduct(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	rec := f.doAuthed(t, token, httptest.NewRequest(http.MethodPost, "/api/admin/products", jsonBody(t, map[string]any{
		"name":       "Honey cake",
		"price":      120.50,
		"categoryId": "c1",
		"inStock":    true,
	})))
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeBody[productResponse](t, rec)
	assert.NotEmpty(t, got.ID)
	assert.InDelta(t, 120.50, got.Price, 1e-9)
	assert.Len(t, f.products.products, 3)
}

func TestAdminCreateProduct_Invalid(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	// Missing name.
	rec := f.doAuthed(t, token, httptest.NewRequest(http.MethodPost, "/api/admin/products", jsonBody(t, map[string]any{
		"price":      10,
		"categoryId": "c1",
	})))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Negative price.
	rec = f.doAuthed(t, token, httptest.NewRequest(http.MethodPost, "/api/admin/products", jsonBody(t, map[string]any{
		"name":       "Broken",
		"price":      -1,
		"categoryId": "c1",
	})))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUpdateProduct_NotFound(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	rec := f.doAuthed(t, token, httptest.NewRequest(http.MethodPut, "/api/admin/products/missing", jsonBody(t, map[string]any{
		"name":       "Ghost",
		"price":      10,
		"categoryId": "c1",
	})))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteProduct(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	rec := f.doAuthed(t, token, httptest.NewRequest(http.MethodDelete, "/api/admin/products/p1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, f.products.products, 1)
}

func TestAdminDeleteCategory_InUse(t *testing.T) {
	f := newFixture(t)
	f.categories.deleteErr = category.ErrInUse
	token := f.login(t)

	rec := f.doAuthed(t, token, httptest.NewRequest(http.MethodDelete, "/api/admin/categories/c1", nil))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminCreateNewsArticle(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	rec := f.doAuthed(t, token, httptest.NewRequest(http.MethodPost, "/api/admin/news", jsonBody(t, map[string]any{
		"title":   "New assortment",
		"content": "Details inside.",
	})))
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeBody[newsResponse](t, rec)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Date.IsZero())
	assert.Len(t, f.newsRepo.articles, 2)
}

func TestAdminListContactMessages(t *testing.T) {
	f := newFixture(t)
	f.contacts.messages = []contact.Message{{ID: "m1", Name: "Olena", Email: "o@example.com", Message: "Hi"}}
	token := f.login(t)

	rec := f.doAuthed(t, token, httptest.NewRequest(http.MethodGet, "/api/admin/contact-messages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]contactMessageResponse](t, rec), 1)
}

// --- Admin image upload ---

var pngHeader = []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32))

func multipartImage(t *testing.T, fileName string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAdminUploadImage(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	body, contentType := multipartImage(t, "cookies.png", pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/images/products", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.doAuthed(t, token, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decodeBody[uploadResponse](t, rec)
	assert.True(t, strings.HasPrefix(got.Path, "products/cookies-"), "got %s", got.Path)
	assert.Equal(t, "/images/"+got.Path, got.URL)
}

func TestAdminUploadImage_UnknownBucket(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	body, contentType := multipartImage(t, "a.png", pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/images/backups", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.doAuthed(t, token, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminUploadImage_UnsupportedType(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	body, contentType := multipartImage(t, "doc.txt", []byte("just text, not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/images/products", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.doAuthed(t, token, req)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
