package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storeapi/internal/models"
	"storeapi/internal/repositories"
	"storeapi/internal/server"
	"storeapi/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret = "test_jwt_secret"
	categoryID = "65a1b2c3d4e5f60718293a4c"
)

type testApp struct {
	app    *fiber.App
	tokens *services.TokenService
}

// setupApp builds the full application over in-memory repositories.
func setupApp(t *testing.T, products repositories.ProductRepository, hideInternal bool) *testApp {
	t.Helper()
	if products == nil {
		products = repositories.NewMemoryProductRepository()
	}
	log := zap.NewNop()
	tokens := services.NewTokenService(testSecret, time.Hour)
	users := services.NewUserService(repositories.NewMemoryUserRepository(), services.NewBcryptHasher(bcrypt.MinCost), tokens, nil, log)

	app := server.New(server.Deps{
		Users:              users,
		Products:           services.NewProductService(products, nil, log),
		Tokens:             tokens,
		Log:                log,
		AccessLog:          io.Discard,
		HideInternalErrors: hideInternal,
	})
	return &testApp{app: app, tokens: tokens}
}

func (ta *testApp) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// login signs up and logs in a fresh user, returning the bearer token.
func (ta *testApp) login(t *testing.T) string {
	t.Helper()
	status, _ := ta.do(t, http.MethodPost, "/api/users/signup", map[string]string{
		"username": "alice", "email": "a@x.io", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, body := ta.do(t, http.MethodPost, "/api/users/login", map[string]string{
		"email": "a@x.io", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func TestRootAndHealth(t *testing.T) {
	ta := setupApp(t, nil, false)

	status, body := ta.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "working", body["message"])

	status, body = ta.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = ta.do(t, http.MethodGet, "/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestHealthReportsStoreFailure(t *testing.T) {
	app := server.New(server.Deps{
		Tokens:    services.NewTokenService(testSecret, time.Hour),
		AccessLog: io.Discard,
		Ping:      func(context.Context) error { return errors.New("no reachable servers") },
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSignup(t *testing.T) {
	ta := setupApp(t, nil, false)
	signup := map[string]string{"username": "alice", "email": "a@x.io", "password": "pw1"}

	status, body := ta.do(t, http.MethodPost, "/api/users/signup", signup, "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Signup successful", body["message"])
	data := body["data"].(map[string]any)
	assert.True(t, models.ValidID(data["id"].(string)))
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "a@x.io", data["email"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "token")

	status, body = ta.do(t, http.MethodPost, "/api/users/signup", signup, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists with this email", body["message"])

	status, body = ta.do(t, http.MethodPost, "/api/users/signup", map[string]string{"email": "b@x.io", "password": "pw"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Required Fields", body["message"])

	status, body = ta.do(t, http.MethodPost, "/api/users/signup", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Required Fields", body["message"])

	status, body = ta.do(t, http.MethodPost, "/api/users/signup", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestLogin(t *testing.T) {
	ta := setupApp(t, nil, false)
	token := ta.login(t)

	identity, err := ta.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", identity.Email)
	assert.Equal(t, "alice", identity.Username)

	cases := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"wrong password", map[string]string{"email": "a@x.io", "password": "nope"}, "Invalid credentials"},
		{"unknown email", map[string]string{"email": "z@x.io", "password": "pw1"}, "User not found"},
		{"missing password", map[string]string{"email": "a@x.io"}, "Email and password are required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := ta.do(t, http.MethodPost, "/api/users/login", tc.body, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestProductRoutesRequireAuth(t *testing.T) {
	ta := setupApp(t, nil, false)

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "Please re-login to use application"},
		{"scheme only", "Bearer", "Token missing, please re-login"},
		{"empty token", "Bearer ", "Token missing, please re-login"},
		{"bad token", "Bearer abc.def.ghi", "Invalid token, please login again"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := ta.app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, false, body["status"])
			assert.Equal(t, tc.want, body["message"])
		})
	}

	foreign, err := services.NewTokenService("other-secret", time.Hour).GenerateToken(models.Identity{ID: "1"})
	require.NoError(t, err)
	status, body := ta.do(t, http.MethodGet, "/api/products", nil, foreign)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token, please login again", body["message"])

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		ID:    "1",
		Email: "a@x.io",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
			IssuedAt:  time.Now().Add(-time.Hour).Unix(),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	status, body = ta.do(t, http.MethodGet, "/api/products", nil, expired)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token, please login again", body["message"])
}

func TestProductLifecycle(t *testing.T) {
	ta := setupApp(t, nil, false)
	token := ta.login(t)

	status, body := ta.do(t, http.MethodGet, "/api/products", nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No products found", body["message"])

	status, body = ta.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Laptop", "description": "fast", "price": 1200, "categoryId": categoryID,
	}, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Product created successfully", body["message"])
	created := body["data"].(map[string]any)
	id := created["id"].(string)
	assert.True(t, models.ValidID(id))
	assert.Equal(t, categoryID, created["categoryId"])

	status, body = ta.do(t, http.MethodGet, "/api/products", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Fetched products successfully", body["message"])
	assert.Len(t, body["data"], 1)

	status, body = ta.do(t, http.MethodGet, "/api/products/"+id, nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Data Fetched Successfully", body["message"])
	assert.Equal(t, "Laptop", body["data"].(map[string]any)["name"])

	status, body = ta.do(t, http.MethodPut, "/api/products/"+id, map[string]any{"price": 999}, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Product updated successfully", body["message"])
	updated := body["data"].(map[string]any)
	assert.Equal(t, 999.0, updated["price"])
	assert.Equal(t, "Laptop", updated["name"])

	status, body = ta.do(t, http.MethodPut, "/api/products/"+id, nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 999.0, body["data"].(map[string]any)["price"], "empty patch leaves the product unchanged")

	status, body = ta.do(t, http.MethodDelete, "/api/products/"+id, nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Deleted successfully", body["message"])
	assert.Equal(t, id, body["data"].(map[string]any)["id"])

	status, body = ta.do(t, http.MethodGet, "/api/products/"+id, nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Product not found", body["message"])

	status, body = ta.do(t, http.MethodPut, "/api/products/"+id, map[string]any{"price": 1}, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Failed to update product", body["message"])

	status, body = ta.do(t, http.MethodDelete, "/api/products/"+id, nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Failed to delete product", body["message"])
}

func TestCreateProductValidation(t *testing.T) {
	ta := setupApp(t, nil, false)
	token := ta.login(t)

	cases := []struct {
		name string
		body any
		want string
	}{
		{"missing price", map[string]any{"name": "Laptop", "categoryId": categoryID}, "Field 'price' failed on the 'required' tag"},
		{"missing name", map[string]any{"price": 1, "categoryId": categoryID}, "Field 'name' failed on the 'required' tag"},
		{"bad category", map[string]any{"name": "Laptop", "price": 1, "categoryId": "abc"}, "Field 'categoryId' failed on the 'mongodb' tag"},
		{"malformed body", "{", "Invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := ta.do(t, http.MethodPost, "/api/products", tc.body, token)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.want, body["message"])
		})
	}
}

// brokenProductRepository fails every call the way an unreachable store would.
type brokenProductRepository struct{}

var errStoreDown = errors.New("database unavailable")

func (brokenProductRepository) GetAll(context.Context) ([]models.Product, error) {
	return nil, errStoreDown
}

func (brokenProductRepository) GetByID(context.Context, string) (*models.Product, error) {
	return nil, errStoreDown
}

func (brokenProductRepository) Create(context.Context, *models.Product) error { return errStoreDown }

func (brokenProductRepository) Update(context.Context, string, models.ProductInput) (*models.Product, error) {
	return nil, errStoreDown
}

func (brokenProductRepository) Delete(context.Context, string) (*models.Product, error) {
	return nil, errStoreDown
}

func TestUnexpectedErrorsAre500(t *testing.T) {
	ta := setupApp(t, brokenProductRepository{}, false)
	token := ta.login(t)

	valid := map[string]any{"name": "Laptop", "price": 10, "categoryId": categoryID}
	cases := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"list", http.MethodGet, "/api/products", nil},
		{"get", http.MethodGet, "/api/products/" + categoryID, nil},
		{"create", http.MethodPost, "/api/products", valid},
		{"update", http.MethodPut, "/api/products/" + categoryID, map[string]any{"price": 20}},
		{"update with empty patch", http.MethodPut, "/api/products/" + categoryID, nil},
		{"delete", http.MethodDelete, "/api/products/" + categoryID, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := ta.do(t, tc.method, tc.path, tc.body, token)
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "database unavailable", body["message"])
		})
	}
}

func TestHideInternalErrors(t *testing.T) {
	ta := setupApp(t, brokenProductRepository{}, true)
	token := ta.login(t)

	status, body := ta.do(t, http.MethodGet, "/api/products", nil, token)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Server error", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	ta := setupApp(t, nil, false)
	ta.do(t, http.MethodGet, "/", nil, "")

	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "storeapi_http_requests_total")
}

// brokenUserRepository fails every lookup and insert.
type brokenUserRepository struct{}

func (brokenUserRepository) Create(context.Context, *models.User) error { return errStoreDown }

func (brokenUserRepository) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}

func TestUserEndpointsSurfaceStoreErrors(t *testing.T) {
	log := zap.NewNop()
	tokens := services.NewTokenService(testSecret, time.Hour)
	ta := &testApp{
		tokens: tokens,
		app: server.New(server.Deps{
			Users:     services.NewUserService(brokenUserRepository{}, services.NewBcryptHasher(bcrypt.MinCost), tokens, nil, log),
			Products:  services.NewProductService(repositories.NewMemoryProductRepository(), nil, log),
			Tokens:    tokens,
			Log:       log,
			AccessLog: io.Discard,
		}),
	}

	status, body := ta.do(t, http.MethodPost, "/api/users/signup", map[string]string{
		"username": "alice", "email": "a@x.io", "password": "pw1",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "database unavailable", body["message"])

	status, body = ta.do(t, http.MethodPost, "/api/users/login", map[string]string{
		"email": "a@x.io", "password": "pw1",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "database unavailable", body["message"])
}

func TestLoginWithoutSecretIs500(t *testing.T) {
	log := zap.NewNop()
	users := repositories.NewMemoryUserRepository()
	tokens := services.NewTokenService("", time.Hour)
	ta := &testApp{
		tokens: tokens,
		app: server.New(server.Deps{
			Users:     services.NewUserService(users, services.NewBcryptHasher(bcrypt.MinCost), tokens, nil, log),
			Products:  services.NewProductService(repositories.NewMemoryProductRepository(), nil, log),
			Tokens:    tokens,
			Log:       log,
			AccessLog: io.Discard,
		}),
	}

	status, _ := ta.do(t, http.MethodPost, "/api/users/signup", map[string]string{
		"username": "alice", "email": "a@x.io", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, body := ta.do(t, http.MethodPost, "/api/users/login", map[string]string{
		"email": "a@x.io", "password": "pw1",
	}, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, services.ErrMissingSecret.Error(), body["message"])
}
