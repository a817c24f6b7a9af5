package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vkuznets/shortlink/internal/middleware"
	"github.com/vkuznets/shortlink/internal/models"
	"github.com/vkuznets/shortlink/internal/repository"
	"github.com/vkuznets/shortlink/internal/service"
	"go.uber.org/zap"
)

type LinkHandler struct {
	service        service.LinkService
	clickProcessor service.ClickProcessor
	baseURL        string
	logger         *zap.Logger
}

func NewLinkHandler(
	linkService service.LinkService,
	clickProcessor service.ClickProcessor,
	baseURL string,
	logger *zap.Logger,
) *LinkHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkHandler{
		service:        linkService,
		clickProcessor: clickProcessor,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		logger:         logger,
	}
}

type CreateLinkRequest struct {
	OriginalURL string `json:"original_url" binding:"required"`
	CustomSlug  string `json:"custom_slug,omitempty"`
}

type CreateLinkResponse struct {
	Code        string    `json:"code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	IsCustom    bool      `json:"is_custom"`
	CreatedAt   time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateLink godoc
// @Summary Create a short link
// @Description Create a new shortened URL, optionally with a custom slug
// @Tags links
// @Accept json
// @Produce json
// @Param request body CreateLinkRequest true "Link creation request"
// @Success 201 {object} CreateLinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "original_url is required",
		})
		return
	}

	input := &models.CreateLinkInput{
		OriginalURL: req.OriginalURL,
	}
	if req.CustomSlug != "" {
		input.CustomSlug = &req.CustomSlug
	}

	// Владелец заполняется только для аутентифицированных запросов
	if identity, ok := middleware.GetIdentity(c); ok {
		input.OwnerID = &identity.UserID
	}

	link, isCustom, err := h.service.CreateLink(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyURL):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "original_url is required",
			})
		case errors.Is(err, service.ErrSlugTaken):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "slug_taken",
				Message: "Custom slug is already in use",
			})
		case errors.Is(err, service.ErrCodeSpaceExhausted):
			h.logger.Error("Code generation exhausted", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "generation_exhausted",
				Message: "Failed to generate a unique code, try again",
			})
		default:
			h.logger.Error("Failed to create link", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create link",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, CreateLinkResponse{
		Code:        link.Code,
		ShortURL:    h.baseURL + "/" + link.Code,
		OriginalURL: link.OriginalURL,
		IsCustom:    isCustom,
		CreatedAt:   link.CreatedAt,
	})
}

// Redirect godoc
// @Summary Redirect to original URL
// @Description Redirect to the original URL by short code, recording a click
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 307 {object} nil
// @Failure 404 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	originalURL, err := h.service.ResolveLink(
		c.Request.Context(),
		code,
		c.ClientIP(),
		c.Request.Referer(),
		c.Request.UserAgent(),
	)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Link not found",
			})
			return
		}
		h.logger.Error("Failed to resolve link", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to resolve link",
		})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, originalURL)
}

// GetAnalytics godoc
// @Summary Get click analytics for a short link
// @Description Total clicks, daily breakdown and referrer breakdown.
// @Description Unknown codes yield a zero-valued summary.
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} models.LinkAnalytics
// @Router /api/v1/links/{code}/analytics [get]
func (h *LinkHandler) GetAnalytics(c *gin.Context) {
	code := c.Param("code")

	analytics, err := h.clickProcessor.GetAnalytics(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("Failed to get analytics", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get analytics",
		})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// ListLinks godoc
// @Summary List links of the authenticated user
// @Tags links
// @Produce json
// @Success 200 {object} map[string][]models.Link
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "Authentication required",
		})
		return
	}

	links, err := h.service.ListByOwner(c.Request.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("Failed to list links", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list links",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}
