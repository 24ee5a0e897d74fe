package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/skillmap/internal/assistant"
	"github.com/kalambet/skillmap/internal/auth"
	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/dashboard"
	"github.com/kalambet/skillmap/internal/extract"
	"github.com/kalambet/skillmap/internal/learning"
	"github.com/kalambet/skillmap/internal/recommend"
	"github.com/kalambet/skillmap/internal/storage"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestDeps(t *testing.T) AppDeps {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	cat := catalog.Default()
	sel := recommend.NewSelector(cat, recommend.NewRand(7))
	return AppDeps{
		Store:     store,
		Issuer:    issuer,
		Catalog:   cat,
		Extractor: extract.New(nil, cat, 0),
		Assistant: assistant.NewService(assistant.NewDispatcher(cat, sel), assistant.NewLog(10)),
		Selector:  sel,
		Analyzer:  learning.NewAnalyzer(sel),
		Dashboard: dashboard.NewManager(store),
		Now:       func() time.Time { return testNow },
	}
}

func setupAppHandler(t *testing.T) (http.Handler, AppDeps) {
	t.Helper()
	deps := newTestDeps(t)
	return NewAppHandler(deps), deps
}

// seedUser stores a user directly and returns a token for it.
func seedUser(t *testing.T, deps AppDeps, id, email string, role storage.Role) string {
	t.Helper()
	hash, err := auth.HashPassword("parola123")
	require.NoError(t, err)
	require.NoError(t, deps.Store.CreateUser(storage.User{
		ID: id, Name: "Kullanıcı " + id, Email: email, PasswordHash: hash, Role: role, CreatedAt: testNow,
	}))
	token, err := deps.Issuer.Issue(id, string(role))
	require.NoError(t, err)
	return token
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeInto[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func errorType(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body.Error.Type
}

func TestHealth(t *testing.T) {
	h, _ := setupAppHandler(t)
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rr.Body.String())
}

func TestHealth_DatabaseClosed(t *testing.T) {
	h, deps := setupAppHandler(t)
	require.NoError(t, deps.Store.Close())

	rr := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "unreachable")
}

func TestRegister(t *testing.T) {
	h, deps := setupAppHandler(t)

	rr := serve(h, authReq(http.MethodPost, "/api/auth/register",
		`{"name":"Ayşe","email":"Ayse@Example.com","password":"parola123"}`, ""))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "password")

	resp := decodeInto[AuthResponse](t, rr)
	assert.Equal(t, "ayse@example.com", resp.User.Email)
	assert.Equal(t, storage.RoleUser, resp.User.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := deps.Issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID())
	assert.False(t, claims.IsAdmin())
}

func TestRegister_Validation(t *testing.T) {
	h, _ := setupAppHandler(t)

	cases := map[string]string{
		"missing name":   `{"email":"a@example.com","password":"parola123"}`,
		"bad email":      `{"name":"A","email":"not-an-email","password":"parola123"}`,
		"short password": `{"name":"A","email":"a@example.com","password":"123"}`,
		"bad json":       `{"name":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := serve(h, authReq(http.MethodPost, "/api/auth/register", body, ""))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, errInvalidRequest, errorType(t, rr))
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, deps := setupAppHandler(t)
	seedUser(t, deps, "u1", "ayse@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodPost, "/api/auth/register",
		`{"name":"Başka","email":"AYSE@example.com","password":"parola123"}`, ""))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLogin(t *testing.T) {
	h, deps := setupAppHandler(t)
	seedUser(t, deps, "u1", "ayse@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodPost, "/api/auth/login", `{"email":"ayse@example.com","password":"parola123"}`, ""))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeInto[AuthResponse](t, rr)
	require.NotNil(t, resp.User.LastLogin)
	assert.True(t, testNow.Equal(*resp.User.LastLogin))

	stored, err := deps.Store.GetUser("u1")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	rr = serve(h, authReq(http.MethodPost, "/api/auth/login", `{"email":"ayse@example.com","password":"yanlış-parola"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(h, authReq(http.MethodPost, "/api/auth/login", `{"email":"kimse@example.com","password":"parola123"}`, ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminLogin_RequiresAdminRole(t *testing.T) {
	h, deps := setupAppHandler(t)
	seedUser(t, deps, "u1", "user@example.com", storage.RoleUser)
	seedUser(t, deps, "a1", "admin@example.com", storage.RoleAdmin)

	rr := serve(h, authReq(http.MethodPost, "/api/auth/admin/login", `{"email":"user@example.com","password":"parola123"}`, ""))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(h, authReq(http.MethodPost, "/api/auth/admin/login", `{"email":"admin@example.com","password":"parola123"}`, ""))
	require.Equal(t, http.StatusOK, rr.Code)
	claims, err := deps.Issuer.Verify(decodeInto[AuthResponse](t, rr).Token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestCreateFirstAdmin_OnlyOnce(t *testing.T) {
	h, _ := setupAppHandler(t)

	body := `{"name":"Yönetici","email":"admin@example.com","password":"parola123"}`
	rr := serve(h, authReq(http.MethodPost, "/api/auth/admin/create-first", body, ""))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, storage.RoleAdmin, decodeInto[AuthResponse](t, rr).User.Role)

	rr = serve(h, authReq(http.MethodPost, "/api/auth/admin/create-first",
		`{"name":"İkinci","email":"second@example.com","password":"parola123"}`, ""))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestMe(t *testing.T) {
	h, deps := setupAppHandler(t)
	token := seedUser(t, deps, "u1", "ayse@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodGet, "/api/auth/me", "", token))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", decodeInto[storage.User](t, rr).ID)
}

func TestBearerAuth_Rejects(t *testing.T) {
	h, deps := setupAppHandler(t)
	seedUser(t, deps, "u1", "ayse@example.com", storage.RoleUser)

	rr := serve(h, authReq(http.MethodGet, "/api/users/u1/activities", "", ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, errAuthentication, errorType(t, rr))

	rr = serve(h, authReq(http.MethodGet, "/api/users/u1/activities", "", "garbage"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/activities", nil)
	req.Header.Set("Authorization", "Basic dTE6cGFzcw==")
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)
}

func TestRequireSelf(t *testing.T) {
	h, deps := setupAppHandler(t)
	tokenA := seedUser(t, deps, "a", "a@example.com", storage.RoleUser)
	seedUser(t, deps, "b", "b@example.com", storage.RoleUser)
	adminToken := seedUser(t, deps, "root", "root@example.com", storage.RoleAdmin)

	rr := serve(h, authReq(http.MethodGet, "/api/users/b/activities", "", tokenA))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, errPermission, errorType(t, rr))

	assert.Equal(t, http.StatusOK, serve(h, authReq(http.MethodGet, "/api/users/a/activities", "", tokenA)).Code)
	assert.Equal(t, http.StatusOK, serve(h, authReq(http.MethodGet, "/api/users/b/activities", "", adminToken)).Code)
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:3000", "https://skillmap.example"},
		ParseOrigins(" http://localhost:3000/ ,, https://skillmap.example"))
	assert.Nil(t, ParseOrigins(""))
}

func TestParseIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&page=abc&neg=-1&ok=3", nil)
	assert.Equal(t, 100, parseIntParam(req, "limit", 10, 100))
	assert.Equal(t, 1, parseIntParam(req, "page", 1, 0))
	assert.Equal(t, 5, parseIntParam(req, "neg", 5, 0))
	assert.Equal(t, 3, parseIntParam(req, "ok", 1, 0))
	assert.Equal(t, 7, parseIntParam(req, "missing", 7, 0))
}
