package records

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recordmoa/internal/auth"
	"recordmoa/internal/images"
	"recordmoa/pkg/models"
)

type Handler struct {
	Repo      *Repo
	Deletions *images.DeletionQueue
}

func NewHandler(repo *Repo, deletions *images.DeletionQueue) *Handler {
	return &Handler{Repo: repo, Deletions: deletions}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/records", h.list)
	rg.POST("/records", h.create)
	rg.GET("/records/:id", h.getByID)
	rg.PUT("/records/:id", h.update)
	rg.DELETE("/records/:id", h.remove)
}

type createReq struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Rating   int    `json:"rating"`
	Review   string `json:"review"`
	ImageURL string `json:"image_url"`

	// movie
	Director    string   `json:"director"`
	Cast        []string `json:"cast"`
	DateWatched string   `json:"date_watched"`

	// book
	Author       string `json:"author"`
	Publisher    string `json:"publisher"`
	DateStarted  string `json:"date_started"`
	DateFinished string `json:"date_finished"`

	// place
	PlaceName   string `json:"place_name"`
	Location    string `json:"location"`
	DateVisited string `json:"date_visited"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category must be one of: movie, book, place"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	rec := models.Record{
		UserID:   claims.UserID,
		Category: category,
		Title:    title,
		Rating:   req.Rating,
		Review:   strings.TrimSpace(req.Review),
		ImageURL: strings.TrimSpace(req.ImageURL),
	}

	// only the tagged category's field group is stored
	var err error
	switch category {
	case models.CategoryMovie:
		rec.Director = strings.TrimSpace(req.Director)
		rec.Cast = cleanCast(req.Cast)
		rec.DateWatched, err = parseDate(req.DateWatched)
	case models.CategoryBook:
		rec.Author = strings.TrimSpace(req.Author)
		rec.Publisher = strings.TrimSpace(req.Publisher)
		if rec.DateStarted, err = parseDate(req.DateStarted); err == nil {
			rec.DateFinished, err = parseDate(req.DateFinished)
		}
	case models.CategoryPlace:
		rec.PlaceName = strings.TrimSpace(req.PlaceName)
		if rec.PlaceName == "" {
			rec.PlaceName = title
		}
		rec.Location = strings.TrimSpace(req.Location)
		rec.DateVisited, err = parseDate(req.DateVisited)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	if err := h.Repo.Create(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	if category == "all" {
		category = ""
	}
	if category != "" && !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category filter"})
		return
	}

	rng, ok := ParseDateRange(c.Query("range"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range must be one of: all, 1m, 3m, 6m, 1y"})
		return
	}

	sortOpt, ok := ParseSortOption(c.Query("sort"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort option"})
		return
	}

	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}

	all, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID, category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	// date filter first, then search: the reported total counts search
	// hits within the selected range
	now := time.Now()
	filtered := FilterByDate(all, rng, now)
	filtered = FilterBySearch(filtered, c.Query("q"))
	sorted := SortRecords(filtered, sortOpt)
	pageRecs, totalPages := Paginate(sorted, page, DefaultPageSize)

	c.JSON(http.StatusOK, gin.H{
		"total":         len(filtered),
		"page":          page,
		"page_size":     DefaultPageSize,
		"total_pages":   totalPages,
		"visible_pages": VisiblePages(page, totalPages),
		"items":         pageRecs,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rec, err := h.Repo.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil || rec.UserID != claims.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type updateReq struct {
	Title    *string `json:"title"`
	Rating   *int    `json:"rating"`
	Review   *string `json:"review"`
	ImageURL *string `json:"image_url"`

	Director    *string   `json:"director"`
	Cast        *[]string `json:"cast"`
	DateWatched *string   `json:"date_watched"`

	Author       *string `json:"author"`
	Publisher    *string `json:"publisher"`
	DateStarted  *string `json:"date_started"`
	DateFinished *string `json:"date_finished"`

	PlaceName   *string `json:"place_name"`
	Location    *string `json:"location"`
	DateVisited *string `json:"date_visited"`
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rec, err := h.Repo.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil || rec.UserID != claims.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
			return
		}
		rec.Title = title
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}
		rec.Rating = *req.Rating
	}
	if req.Review != nil {
		rec.Review = strings.TrimSpace(*req.Review)
	}

	oldImage := rec.ImageURL
	if req.ImageURL != nil {
		rec.ImageURL = strings.TrimSpace(*req.ImageURL)
	}

	if err := h.applyCategoryFields(rec, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	ok, err := h.Repo.Update(c.Request.Context(), rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	// the replaced image is no longer referenced anywhere
	if oldImage != "" && oldImage != rec.ImageURL {
		h.enqueueImageDeletion(c, oldImage)
	}

	c.JSON(http.StatusOK, rec)
}

// applyCategoryFields merges the category-specific updates. The
// category itself never changes after creation, so only the matching
// field group is considered.
func (h *Handler) applyCategoryFields(rec *models.Record, req *updateReq) error {
	var err error
	switch rec.Category {
	case models.CategoryMovie:
		if req.Director != nil {
			rec.Director = strings.TrimSpace(*req.Director)
		}
		if req.Cast != nil {
			rec.Cast = cleanCast(*req.Cast)
		}
		if req.DateWatched != nil {
			rec.DateWatched, err = parseDate(*req.DateWatched)
		}
	case models.CategoryBook:
		if req.Author != nil {
			rec.Author = strings.TrimSpace(*req.Author)
		}
		if req.Publisher != nil {
			rec.Publisher = strings.TrimSpace(*req.Publisher)
		}
		if req.DateStarted != nil {
			if rec.DateStarted, err = parseDate(*req.DateStarted); err != nil {
				return err
			}
		}
		if req.DateFinished != nil {
			rec.DateFinished, err = parseDate(*req.DateFinished)
		}
	case models.CategoryPlace:
		if req.PlaceName != nil {
			rec.PlaceName = strings.TrimSpace(*req.PlaceName)
		}
		if req.Location != nil {
			rec.Location = strings.TrimSpace(*req.Location)
		}
		if req.DateVisited != nil {
			rec.DateVisited, err = parseDate(*req.DateVisited)
		}
	}
	return err
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	rec, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil || rec.UserID != claims.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if rec.ImageURL != "" {
		h.enqueueImageDeletion(c, rec.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// enqueueImageDeletion hands the orphaned image to the cleanup queue.
// A failure here never fails the record operation.
func (h *Handler) enqueueImageDeletion(c *gin.Context, imageURL string) {
	if h.Deletions == nil {
		return
	}
	_ = h.Deletions.Enqueue(c.Request.Context(), imageURL)
}

func cleanCast(cast []string) []string {
	out := make([]string, 0, len(cast))
	for _, name := range cast {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseDate reads the YYYY-MM-DD strings the forms submit. Empty input
// means the date is absent, not invalid.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
