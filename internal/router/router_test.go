package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nretrorsum/work-test/internal/auth"
	"github.com/nretrorsum/work-test/internal/config"
	"github.com/nretrorsum/work-test/internal/dto"
	"github.com/nretrorsum/work-test/internal/repository/repotest"
)

func init() { gin.SetMode(gin.TestMode) }

type testApp struct {
	engine       *gin.Engine
	users        *repotest.Users
	products     *repotest.Products
	transactions *repotest.Transactions
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		Env:                  "test",
		JWTSecret:            "test_jwt_secret_32_chars_minimum!",
		JWTExpirationMinutes: 15,
		BcryptCost:           4,
	}
	products := repotest.NewProducts()
	app := &testApp{
		users:        repotest.NewUsers(),
		products:     products,
		transactions: repotest.NewTransactions(products),
	}
	repos := Repositories{Users: app.users, Products: app.products, Transactions: app.transactions}
	app.engine = build(cfg, repos, nil, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func (a *testApp) login(t *testing.T, username, password, role string) *http.Cookie {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{Username: username, Password: password, Role: role})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = a.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := sessionCookie(w)
	require.NotNil(t, c)
	return c
}

func TestAuth_RegisterLoginMeLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "alice", "s3cret", "cashier")

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 15*60, cookie.MaxAge)

	w := app.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "cashier", me.Role)
	assert.NotEmpty(t, me.ID)

	w = app.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := sessionCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestAuth_WrongPasswordIssuesNoCookie(t *testing.T) {
	app := newTestApp(t)
	app.login(t, "bob", "right", "admin")

	w := app.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "bob", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w))
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestAuth_DuplicateRegisterIsConflict(t *testing.T) {
	app := newTestApp(t)
	req := dto.RegisterRequest{Username: "carol", Password: "pw12", Role: "cashier"}
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/api/auth/register", req).Code)
	assert.Equal(t, http.StatusConflict, app.do(t, http.MethodPost, "/api/auth/register", req).Code)
}

func TestAuth_MeWithoutSession(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodGet, "/api/auth/me", nil, &http.Cookie{Name: auth.CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_DeletedUserSessionIsNotFound(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "gone", "pw12", "admin")
	_, err := app.users.Delete(context.Background(), "gone")
	require.NoError(t, err)

	w := app.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactions_CashierIsForbiddenBeforeStore(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "dave", "pw12", "cashier")

	for _, path := range []string{"/transactions/", "/transactions/6b0f2b1e-36a4-4c54-9b0e-4a4f0e4f3a11"} {
		w := app.do(t, http.MethodGet, path, nil, cookie)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w := app.do(t, http.MethodDelete, "/transactions/6b0f2b1e-36a4-4c54-9b0e-4a4f0e4f3a11", nil, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Zero(t, app.transactions.Calls, "the role gate must run before any store access")
}

func TestTransactions_UnauthenticatedListIs401(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/transactions/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, app.transactions.Calls)
}

func TestTransactions_AdminLifecycle(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "root", "pw12", "admin")

	w := app.do(t, http.MethodPost, "/api/product/add_product", map[string]any{"name": "Latte", "price": 3.5, "quantity": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product dto.ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	var me dto.MeResponse
	require.NoError(t, json.Unmarshal(app.do(t, http.MethodGet, "/api/auth/me", nil, admin).Body.Bytes(), &me))

	w = app.do(t, http.MethodPost, "/transactions/", map[string]any{
		"cashier_id":  me.ID,
		"total_price": 7,
		"items":       []map[string]any{{"product_id": product.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "paid", created.Status)

	w = app.do(t, http.MethodGet, "/transactions/", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, "Latte", list[0].Items[0].Name)

	w = app.do(t, http.MethodPatch, "/transactions/"+created.ID, map[string]any{"created_at": "2020-01-01T00:00:00Z"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPatch, "/transactions/"+created.ID, map[string]any{"status": "canceled"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"canceled"`)

	w = app.do(t, http.MethodDelete, "/transactions/"+created.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction deleted successfully")

	w = app.do(t, http.MethodDelete, "/transactions/"+created.ID, nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactions_CreateUnknownProductIs400(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodPost, "/transactions/", map[string]any{
		"cashier_id":  "6b0f2b1e-36a4-4c54-9b0e-4a4f0e4f3a11",
		"total_price": 1,
		"items":       []map[string]any{{"product_id": "0d7c3a8e-5b8a-4f0e-9d55-8f6c1c5b2a90", "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "0d7c3a8e-5b8a-4f0e-9d55-8f6c1c5b2a90"))
}

func (a *testApp) addProduct(t *testing.T, name string, price float64) dto.ProductResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/product/add_product", map[string]any{"name": name, "price": price, "quantity": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestTransactions_DuplicateProductIs400(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "root", "pw12", "admin")
	p := app.addProduct(t, "Bagel", 2)

	w := app.do(t, http.MethodPost, "/transactions/", map[string]any{
		"cashier_id":  "6b0f2b1e-36a4-4c54-9b0e-4a4f0e4f3a11",
		"total_price": 4,
		"items": []map[string]any{
			{"product_id": p.ID, "quantity": 1},
			{"product_id": p.ID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "more than once")

	w = app.do(t, http.MethodGet, "/transactions/", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTransactions_ItemOrderMatchesBetweenCreateAndRead(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "root", "pw12", "admin")
	a := app.addProduct(t, "Zucchini", 1)
	b := app.addProduct(t, "Apple", 2)
	c := app.addProduct(t, "Milk", 3)

	w := app.do(t, http.MethodPost, "/transactions/", map[string]any{
		"cashier_id":  "6b0f2b1e-36a4-4c54-9b0e-4a4f0e4f3a11",
		"total_price": 6,
		"items": []map[string]any{
			{"product_id": a.ID, "quantity": 1},
			{"product_id": b.ID, "quantity": 1},
			{"product_id": c.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = app.do(t, http.MethodGet, "/transactions/"+created.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	require.Len(t, got.Items, 3)
	for i := range created.Items {
		assert.Equal(t, created.Items[i].ProductID, got.Items[i].ProductID)
	}
}

func TestTransactions_ZeroLimitIsEmptyPage(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "root", "pw12", "admin")
	p := app.addProduct(t, "Scone", 2)
	w := app.do(t, http.MethodPost, "/transactions/", map[string]any{
		"cashier_id":  "6b0f2b1e-36a4-4c54-9b0e-4a4f0e4f3a11",
		"total_price": 2,
		"items":       []map[string]any{{"product_id": p.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/transactions/?limit=0", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[]`, w.Body.String())

	w = app.do(t, http.MethodGet, "/transactions/", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestHealthAndRequestID(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
