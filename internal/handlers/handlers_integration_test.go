package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"shopapp/internal/handlers"
	"shopapp/internal/middleware"
	"shopapp/internal/remote"
	"shopapp/internal/session"
	"shopapp/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeBackend fakes both external services: the identity API and the
// document store, with in-memory collections and server-assigned keys.
type fakeBackend struct {
	accounts map[string]string // email -> password
	products map[string]remote.ProductDoc
	orders   map[string]map[string]remote.OrderDoc
	mu       sync.Mutex

	identity *httptest.Server
	docs     *httptest.Server
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		accounts: make(map[string]string),
		products: make(map[string]remote.ProductDoc),
		orders:   make(map[string]map[string]remote.OrderDoc),
	}
	b.identity = httptest.NewServer(http.HandlerFunc(b.identityHandler))
	b.docs = httptest.NewServer(http.HandlerFunc(b.docsHandler))
	return b
}

func (b *fakeBackend) Close() {
	b.identity.Close()
	b.docs.Close()
}

func identityError(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}

func (b *fakeBackend) identityHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/accounts:signUp":
		if _, ok := b.accounts[body.Email]; ok {
			identityError(w, "EMAIL_EXISTS")
			return
		}
		b.accounts[body.Email] = body.Password
	case "/accounts:signInWithPassword":
		pw, ok := b.accounts[body.Email]
		if !ok {
			identityError(w, "EMAIL_NOT_FOUND")
			return
		}
		if pw != body.Password {
			identityError(w, "INVALID_PASSWORD")
			return
		}
	default:
		identityError(w, "UNKNOWN_ENDPOINT")
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"idToken":   "tok-" + body.Email,
		"localId":   "uid-" + body.Email,
		"expiresIn": "3600",
	})
}

func docID(path, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), ".json")
}

func (b *fakeBackend) docsHandler(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case path == "/products.json" && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(b.products)
	case path == "/products.json" && r.Method == http.MethodPost:
		var doc remote.ProductDoc
		json.NewDecoder(r.Body).Decode(&doc)
		id := uuid.New().String()
		b.products[id] = doc
		json.NewEncoder(w).Encode(map[string]string{"name": id})
	case strings.HasPrefix(path, "/products/") && r.Method == http.MethodPatch:
		id := docID(path, "/products/")
		existing, ok := b.products[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		var doc remote.ProductDoc
		json.NewDecoder(r.Body).Decode(&doc)
		doc.OwnerID = existing.OwnerID
		b.products[id] = doc
		json.NewEncoder(w).Encode(doc)
	case strings.HasPrefix(path, "/products/") && r.Method == http.MethodDelete:
		delete(b.products, docID(path, "/products/"))
		w.Write([]byte("null"))
	case strings.HasPrefix(path, "/order/") && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(b.orders[docID(path, "/order/")])
	case strings.HasPrefix(path, "/order/") && r.Method == http.MethodPost:
		userID := docID(path, "/order/")
		var doc remote.OrderDoc
		json.NewDecoder(r.Body).Decode(&doc)
		if b.orders[userID] == nil {
			b.orders[userID] = make(map[string]remote.OrderDoc)
		}
		id := uuid.New().String()
		b.orders[userID][id] = doc
		json.NewEncoder(w).Encode(map[string]string{"name": id})
	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}
}

// setupApp wires the containers over the fake backend and registers all
// routes the way the composition root does.
func setupApp(t *testing.T) (*fiber.App, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	t.Cleanup(backend.Close)

	sessions := session.NewMockRepository()
	auth := store.NewAuthStore(remote.NewIdentityClient(backend.identity.URL, "test-key"), sessions)
	docs := remote.NewStoreClient(backend.docs.URL)
	cart := store.NewCartStore()
	products := store.NewProductStore(docs, auth)
	orders := store.NewOrderStore(docs, auth, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(auth)
	productHandler := handlers.NewProductHandler(products)
	cartHandler := handlers.NewCartHandler(cart)
	orderHandler := handlers.NewOrderHandler(orders, cart)

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)

	guarded := apiV1.Group("", middleware.SessionRequired(auth))
	productHandler.RegisterSellerRoutes(guarded)
	orderHandler.RegisterRoutes(guarded)

	return app, backend
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func signUp(t *testing.T, app *fiber.App, email, password string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":           email,
		"password":        password,
		"confirmPassword": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestSignUpValidation(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":           "not-an-email",
		"password":        "secret123",
		"confirmPassword": "other",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "confirmPassword")
}

func TestSignUpAndSignInFlow(t *testing.T) {
	app, _ := setupApp(t)

	signUp(t, app, "a@b.com", "secret123")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/auth/session", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var snap store.AuthSnapshot
	decodeBody(t, resp, &snap)
	assert.True(t, snap.IsLoggedIn)
	assert.Equal(t, "uid-a@b.com", snap.UserID)

	// Logout drops the session.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/auth/session", nil)
	decodeBody(t, resp, &snap)
	assert.False(t, snap.IsLoggedIn)

	// A wrong password surfaces the server-provided error text.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"email":    "a@b.com",
		"password": "wrongpass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var failure struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	decodeBody(t, resp, &failure)
	assert.Equal(t, "INVALID_PASSWORD", failure.Error)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/auth/session", nil)
	decodeBody(t, resp, &snap)
	assert.False(t, snap.IsLoggedIn)
	assert.Equal(t, store.StatusFailed, snap.Status)
	assert.Equal(t, "INVALID_PASSWORD", snap.Error)

	// The right password signs back in.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/signin", map[string]string{
		"email":    "a@b.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSellerRoutesRequireSession(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":    "Hat",
		"imageUrl": "https://example.com/hat.png",
		"price":    7.5,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The public catalog stays reachable.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProductLifecycle(t *testing.T) {
	app, _ := setupApp(t)
	signUp(t, app, "seller@shop.com", "secret123")

	// Create rejects a malformed image URL.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":    "Hat",
		"imageUrl": "not-a-url",
		"price":    7.5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var invalid struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, resp, &invalid)
	assert.Contains(t, invalid.Errors, "imageUrl")

	// Create.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":       "Hat",
		"description": "A nice hat",
		"imageUrl":    "https://example.com/hat.png",
		"price":       7.5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		OwnerID string  `json:"ownerId"`
		Price   float64 `json:"price"`
	}
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "uid-seller@shop.com", created.OwnerID)

	// Listed in both views.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	var listed []map[string]interface{}
	decodeBody(t, resp, &listed)
	assert.Len(t, listed, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/mine", nil)
	decodeBody(t, resp, &listed)
	assert.Len(t, listed, 1)

	// Update.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/products/"+created.ID, map[string]interface{}{
		"title":    "Hat Deluxe",
		"imageUrl": "https://example.com/hat.png",
		"price":    9.5,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	decodeBody(t, resp, &listed)
	assert.Equal(t, "Hat Deluxe", listed[0]["title"])

	// Delete.
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	decodeBody(t, resp, &listed)
	assert.Empty(t, listed)
}

func TestCartAndCheckout(t *testing.T) {
	app, _ := setupApp(t)
	signUp(t, app, "buyer@shop.com", "secret123")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":    "Shirt",
		"imageUrl": "https://example.com/shirt.png",
		"price":    10.0,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &created)

	// Checkout with an empty cart is rejected.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	addItem := map[string]interface{}{"id": created.ID, "title": "Shirt", "price": 10.0}
	for i := 0; i < 2; i++ {
		resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", addItem)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	var cart struct {
		Items       map[string]map[string]interface{} `json:"items"`
		TotalAmount float64                           `json:"totalAmount"`
	}
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart", nil)
	decodeBody(t, resp, &cart)
	assert.Equal(t, 20.0, cart.TotalAmount)
	assert.Equal(t, 2.0, cart.Items[created.ID]["quantity"])

	// One unit off.
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart/items/"+created.ID, nil)
	decodeBody(t, resp, &cart)
	assert.Equal(t, 10.0, cart.TotalAmount)

	// Checkout stores the order and clears the cart.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/checkout", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order struct {
		ID          string  `json:"id"`
		TotalAmount float64 `json:"totalAmount"`
	}
	decodeBody(t, resp, &order)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 10.0, order.TotalAmount)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart", nil)
	// Decoding into the reused struct would keep stale map entries; reset
	// it so the response is observed as-is.
	cart.Items = nil
	decodeBody(t, resp, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalAmount)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []map[string]interface{}
	decodeBody(t, resp, &orders)
	assert.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0]["id"])
}
