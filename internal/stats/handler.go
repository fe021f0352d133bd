package stats

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recordmoa/internal/auth"
	"recordmoa/internal/records"
)

type Handler struct {
	Repo *records.Repo
}

func NewHandler(repo *records.Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.summary)
	rg.GET("/stats/insights", h.insights)
}

func (h *Handler) summary(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recs, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	c.JSON(http.StatusOK, Aggregate(recs, time.Now()))
}

func (h *Handler) insights(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	recs, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}

	monthly := MonthlyBuckets(recs, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"monthly": monthly,
		"insight": BuildInsight(monthly),
	})
}
