package auth

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordmoa/pkg/database"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))

	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "recordmoa", Duration: time.Hour}
	repo := NewRepo(db)
	h := NewHandler(repo, tokens)

	router := gin.New()
	h.RegisterRoutes(router.Group("/auth"))

	protected := router.Group("/users")
	protected.Use(AuthMiddleware(tokens, repo))
	h.RegisterProfileRoutes(protected)
	return router
}

func doJSON(router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type authResp struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

func register(t *testing.T, router *gin.Engine, email, password, name string) authResp {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
		"email": email, "password": password, "name": name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func TestRegister(t *testing.T) {
	router := testRouter(t)

	t.Run("registers and auto-logs-in", func(t *testing.T) {
		resp := register(t, router, "Me@Example.com", "secret1", "기록러")
		assert.Equal(t, "me@example.com", resp.User.Email, "email is normalized")
		assert.Equal(t, "기록러", resp.User.Name)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/register", "", gin.H{
			"email": "me@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("empty name falls back to email local part", func(t *testing.T) {
		resp := register(t, router, "noname@example.com", "secret1", "")
		assert.Equal(t, "noname", resp.User.Name)
	})

	t.Run("validation", func(t *testing.T) {
		for name, payload := range map[string]gin.H{
			"bad email":      {"email": "not-an-email", "password": "secret1"},
			"short password": {"email": "a@b.com", "password": "12345"},
		} {
			w := doJSON(router, http.MethodPost, "/auth/register", "", payload)
			assert.Equal(t, http.StatusBadRequest, w.Code, name)
		}
	})
}

func TestLogin(t *testing.T) {
	router := testRouter(t)
	register(t, router, "me@example.com", "secret1", "기록러")

	t.Run("correct credentials", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"email": "ME@example.com", "password": "secret1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp authResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		w1 := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"email": "me@example.com", "password": "wrong",
		})
		w2 := doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"email": "ghost@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusUnauthorized, w1.Code)
		assert.Equal(t, http.StatusUnauthorized, w2.Code)
		assert.Equal(t, w1.Body.String(), w2.Body.String())
	})
}

func TestProfile(t *testing.T) {
	router := testRouter(t)
	resp := register(t, router, "me@example.com", "secret1", "기록러")

	t.Run("me requires a token", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me returns the profile", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/users/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "me@example.com")
	})

	t.Run("update name and profile image", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/users/me", resp.Token, gin.H{
			"name":              "새 이름",
			"profile_image_url": "https://res.cloudinary.com/demo/image/upload/v1/recordmoa/u1/profiles/me.jpg",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "새 이름")
		assert.Contains(t, w.Body.String(), "profile_image_url")
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/users/me", resp.Token, gin.H{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogoutInvalidatesToken(t *testing.T) {
	router := testRouter(t)
	resp := register(t, router, "me@example.com", "secret1", "기록러")

	w := doJSON(router, http.MethodPost, "/auth/logout", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the old token carries the stale token version
	w = doJSON(router, http.MethodGet, "/users/me", resp.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePasswordInvalidatesToken(t *testing.T) {
	router := testRouter(t)
	resp := register(t, router, "me@example.com", "secret1", "기록러")

	t.Run("wrong old password is rejected", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/change-password", resp.Token, gin.H{
			"old_password": "wrong", "new_password": "newsecret",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("change succeeds and revokes old tokens", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/change-password", resp.Token, gin.H{
			"old_password": "secret1", "new_password": "newsecret",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, http.MethodGet, "/users/me", resp.Token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		// old password no longer works, new one does
		w = doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"email": "me@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(router, http.MethodPost, "/auth/login", "", gin.H{
			"email": "me@example.com", "password": "newsecret",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
