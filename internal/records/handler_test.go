package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordmoa/internal/auth"
	"recordmoa/internal/images"
	"recordmoa/pkg/models"
)

func testRouter(t *testing.T, userID string) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)
	h := NewHandler(NewRepo(db), images.NewDeletionQueue(db))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.CtxClaimsKey, &auth.Claims{UserID: userID, Email: userID + "@example.com"})
	})
	h.RegisterRoutes(router.Group("/"))
	return router, h
}

func doRequest(router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRecord(t *testing.T) {
	router, _ := testRouter(t, "u1")

	t.Run("movie keeps only movie fields", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/records", gin.H{
			"category":     "movie",
			"title":        "오펜하이머",
			"rating":       5,
			"director":     "크리스토퍼 놀란",
			"cast":         []string{"킬리언 머피", " ", ""},
			"date_watched": "2026-08-10",
			"author":       "무시되어야 함",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var rec models.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "u1", rec.UserID)
		assert.Equal(t, "크리스토퍼 놀란", rec.Director)
		assert.Equal(t, []string{"킬리언 머피"}, rec.Cast)
		require.NotNil(t, rec.DateWatched)
		assert.Empty(t, rec.Author, "book fields must not be stored on a movie")
	})

	t.Run("place name defaults to title", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/records", gin.H{
			"category": "place",
			"title":    "남산타워",
			"rating":   4,
			"location": "서울 용산구",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var rec models.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		assert.Equal(t, "남산타워", rec.PlaceName)
	})

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"unknown category", gin.H{"category": "music", "title": "t", "rating": 3}},
		{"missing title", gin.H{"category": "movie", "title": "  ", "rating": 3}},
		{"rating zero", gin.H{"category": "movie", "title": "t", "rating": 0}},
		{"rating six", gin.H{"category": "movie", "title": "t", "rating": 6}},
		{"bad date", gin.H{"category": "movie", "title": "t", "rating": 3, "date_watched": "10/08/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/records", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListRecords(t *testing.T) {
	router, h := testRouter(t, "u1")
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		cat := models.CategoryMovie
		if i%3 == 0 {
			cat = models.CategoryBook
		}
		rec := models.Record{UserID: "u1", Category: cat, Title: fmt.Sprintf("기록 %02d", i), Rating: 1 + i%5}
		require.NoError(t, h.Repo.Create(ctx, &rec))
	}
	// another user's record must never appear
	other := models.Record{UserID: "u2", Category: models.CategoryMovie, Title: "남의 기록", Rating: 3}
	require.NoError(t, h.Repo.Create(ctx, &other))

	type listResp struct {
		Total        int             `json:"total"`
		Page         int             `json:"page"`
		PageSize     int             `json:"page_size"`
		TotalPages   int             `json:"total_pages"`
		VisiblePages []int           `json:"visible_pages"`
		Items        []models.Record `json:"items"`
	}

	t.Run("default listing pages at 10", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/records", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp listResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 12, resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 10, resp.PageSize)
		assert.Equal(t, 2, resp.TotalPages)
		assert.Equal(t, []int{1, 2}, resp.VisiblePages)
		assert.Len(t, resp.Items, 10)
		for _, rec := range resp.Items {
			assert.Equal(t, "u1", rec.UserID)
		}
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/records?page=2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp listResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 2)
	})

	t.Run("category filter narrows the set", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/records?category=book", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp listResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 4, resp.Total)
	})

	t.Run("search narrows the set", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/records?q=%EA%B8%B0%EB%A1%9D%2007", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp listResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("rating sort orders the page", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/records?sort=rating_high", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp listResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Items)
		for i := 1; i < len(resp.Items); i++ {
			assert.GreaterOrEqual(t, resp.Items[i-1].Rating, resp.Items[i].Rating)
		}
	})

	t.Run("bad filter values are rejected", func(t *testing.T) {
		for _, path := range []string{"/records?category=music", "/records?range=2w", "/records?sort=alphabetical"} {
			w := doRequest(router, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
		}
	})
}

func TestRecordOwnership(t *testing.T) {
	router, h := testRouter(t, "u1")
	ctx := context.Background()

	foreign := models.Record{UserID: "u2", Category: models.CategoryBook, Title: "남의 책", Rating: 4}
	require.NoError(t, h.Repo.Create(ctx, &foreign))

	t.Run("get hides other users' records behind 404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/records/"+foreign.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
	t.Run("update is blocked the same way", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/records/"+foreign.ID, gin.H{"rating": 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
	t.Run("delete is blocked the same way", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, "/records/"+foreign.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		got, err := h.Repo.GetByID(ctx, foreign.ID)
		require.NoError(t, err)
		assert.NotNil(t, got, "the record must survive")
	})
}

func TestUpdateRecord(t *testing.T) {
	router, h := testRouter(t, "u1")
	ctx := context.Background()

	oldURL := "https://res.cloudinary.com/demo/image/upload/v1/recordmoa/u1/book/old.jpg"
	rec := models.Record{UserID: "u1", Category: models.CategoryBook, Title: "데미안", Rating: 3, ImageURL: oldURL}
	require.NoError(t, h.Repo.Create(ctx, &rec))

	t.Run("partial update touches only the sent fields", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/records/"+rec.ID, gin.H{"rating": 5})
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 5, got.Rating)
		assert.Equal(t, "데미안", got.Title)
		assert.Equal(t, oldURL, got.ImageURL)
	})

	t.Run("category field group of another category is ignored", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, "/records/"+rec.ID, gin.H{"director": "감독"})
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Empty(t, got.Director)
	})

	t.Run("replacing the image queues the old one for deletion", func(t *testing.T) {
		newURL := "https://res.cloudinary.com/demo/image/upload/v1/recordmoa/u1/book/new.jpg"
		w := doRequest(router, http.MethodPut, "/records/"+rec.ID, gin.H{"image_url": newURL})
		require.Equal(t, http.StatusOK, w.Code)

		pending, err := h.Deletions.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "recordmoa/u1/book/old", pending[0].PublicID)
	})
}

func TestDeleteRecordQueuesImage(t *testing.T) {
	router, h := testRouter(t, "u1")
	ctx := context.Background()

	url := "https://res.cloudinary.com/demo/image/upload/v1/recordmoa/u1/movie/gone.jpg"
	rec := models.Record{UserID: "u1", Category: models.CategoryMovie, Title: "지워질 영화", Rating: 2, ImageURL: url}
	require.NoError(t, h.Repo.Create(ctx, &rec))

	w := doRequest(router, http.MethodDelete, "/records/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := h.Repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	pending, err := h.Deletions.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "recordmoa/u1/movie/gone", pending[0].PublicID)
}
