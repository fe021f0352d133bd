package images

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recordmoa/internal/auth"
	"recordmoa/pkg/models"
)

// max upload accepted from the client, in bytes
const maxUploadSize = 10 << 20

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/images", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}

	folder := fmt.Sprintf("recordmoa/%s", claims.UserID)
	category := strings.ToLower(strings.TrimSpace(c.PostForm("category")))
	if models.ValidCategory(category) {
		folder += "/" + category
	} else if category == "profile" {
		folder += "/profiles"
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
		return
	}
	defer file.Close()

	url, err := h.Client.Upload(c.Request.Context(), file, fileHeader.Filename, folder)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"url":           url,
		"thumbnail_url": ThumbnailURL(url),
	})
}
