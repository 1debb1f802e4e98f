package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Beachman4/properview/internal/agents"
	"github.com/Beachman4/properview/internal/geocoding"
	"github.com/Beachman4/properview/internal/inquiries"
	"github.com/Beachman4/properview/internal/models"
	"github.com/Beachman4/properview/internal/pagination"
	"github.com/Beachman4/properview/internal/properties"
)

type Handler struct {
	properties *properties.Service
	inquiries  *inquiries.Service
	agents     *agents.Service
	logger     *logrus.Logger

	publicPageSize int
	agentPageSize  int
}

func NewHandler(propertySvc *properties.Service, inquirySvc *inquiries.Service, agentSvc *agents.Service, logger *logrus.Logger, publicPageSize, agentPageSize int) *Handler {
	return &Handler{
		properties:     propertySvc,
		inquiries:      inquirySvc,
		agents:         agentSvc,
		logger:         logger,
		publicPageSize: publicPageSize,
		agentPageSize:  agentPageSize,
	}
}

type listRequest struct {
	Page         int      `form:"page,default=1" binding:"min=1"`
	Limit        int      `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy       string   `form:"sortBy"`
	SortOrder    string   `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	BedroomsMin  *int     `form:"bedroomsMin" binding:"omitempty,min=0"`
	BedroomsMax  *int     `form:"bedroomsMax" binding:"omitempty,min=0"`
	BathroomsMin *float64 `form:"bathroomsMin" binding:"omitempty,min=0"`
	BathroomsMax *float64 `form:"bathroomsMax" binding:"omitempty,min=0"`
	PriceMin     *float64 `form:"priceMin" binding:"omitempty,min=0"`
	PriceMax     *float64 `form:"priceMax" binding:"omitempty,min=0"`
	Location     string   `form:"location"`
}

type inquiryRequest struct {
	PropertyID string `json:"propertyId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required"`
	Message    string `json:"message"`
}

// ListProperties serves the public search: active listings only, with
// optional range filters, sorting, and location-based distance ranking.
func (h *Handler) ListProperties(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if req.Limit == 0 {
		req.Limit = h.publicPageSize
	}

	page, err := h.properties.Paginate(c.Request.Context(), properties.ListQuery{
		Page:         req.Page,
		Limit:        req.Limit,
		BedroomsMin:  req.BedroomsMin,
		BedroomsMax:  req.BedroomsMax,
		BathroomsMin: req.BathroomsMin,
		BathroomsMax: req.BathroomsMax,
		PriceMin:     req.PriceMin,
		PriceMax:     req.PriceMax,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
		Location:     req.Location,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		h.respondError(c, err)
		return
	}

	public := make([]models.PublicProperty, len(page.Data))
	for i, property := range page.Data {
		public[i] = property.Public()
	}

	c.JSON(http.StatusOK, pagination.Page[models.PublicProperty]{
		Data: public,
		Meta: page.Meta,
	})
}

func (h *Handler) GetProperty(c *gin.Context) {
	property, err := h.properties.RetrieveByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, property.Public())
}

// RecordView counts a visitor view, de-duplicated per IP within the
// configured window. The response reports whether an increment happened.
func (h *Handler) RecordView(c *gin.Context) {
	counted, err := h.properties.IncrementView(c.Request.Context(), c.Param("id"), c.ClientIP())
	if err != nil {
		h.logger.WithError(err).Error("Failed to record view")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, counted)
}

func (h *Handler) SubmitInquiry(c *gin.Context) {
	var req inquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	_, err := h.inquiries.Submit(c.Request.Context(), inquiries.SubmitInput{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to submit inquiry")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inquiry submitted successfully"})
}

// respondError maps service error classes onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, properties.ErrNotFound),
		errors.Is(err, inquiries.ErrPropertyNotFound),
		errors.Is(err, agents.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, agents.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, geocoding.ErrNoResults):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Location could not be resolved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func currentAgent(c *gin.Context) *models.Agent {
	agent, _ := c.MustGet(agentContextKey).(*models.Agent)
	return agent
}
