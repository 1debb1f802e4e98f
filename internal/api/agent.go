package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Beachman4/properview/internal/models"
	"github.com/Beachman4/properview/internal/properties"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type propertyRequest struct {
	Title       string  `json:"title" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Address     string  `json:"address" binding:"required"`
	Bedrooms    int     `json:"bedrooms" binding:"min=0"`
	Bathrooms   float64 `json:"bathrooms" binding:"min=0"`
	Description string  `json:"description"`
}

type updatePropertyRequest struct {
	propertyRequest
	Status models.PropertyStatus `json:"status" binding:"required,oneof=active pending sold"`
}

type agentListRequest struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	PropertyID string `form:"propertyId"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	token, err := h.agents.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListAgentProperties lists the authenticated agent's own listings,
// regardless of status.
func (h *Handler) ListAgentProperties(c *gin.Context) {
	var req agentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if req.Limit == 0 {
		req.Limit = h.agentPageSize
	}

	agent := currentAgent(c)
	page, err := h.properties.PaginateByAgent(c.Request.Context(), agent.ID, req.Page, req.Limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list agent properties")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetAgentProperty(c *gin.Context) {
	agent := currentAgent(c)
	property, err := h.properties.RetrieveByIDAndAgent(c.Request.Context(), c.Param("id"), agent.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	agent := currentAgent(c)
	property, err := h.properties.Create(c.Request.Context(), agent.ID, properties.PropertyInput{
		Title:       req.Title,
		Price:       req.Price,
		Address:     req.Address,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to create property")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	agent := currentAgent(c)
	property, err := h.properties.Update(c.Request.Context(), c.Param("id"), agent.ID, properties.UpdateInput{
		PropertyInput: properties.PropertyInput{
			Title:       req.Title,
			Price:       req.Price,
			Address:     req.Address,
			Bedrooms:    req.Bedrooms,
			Bathrooms:   req.Bathrooms,
			Description: req.Description,
		},
		Status: req.Status,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to update property")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	agent := currentAgent(c)
	if err := h.properties.Delete(c.Request.Context(), c.Param("id"), agent.ID); err != nil {
		h.logger.WithError(err).Error("Failed to delete property")
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListInquiries(c *gin.Context) {
	var req agentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if req.Limit == 0 {
		req.Limit = h.agentPageSize
	}

	agent := currentAgent(c)
	page, err := h.inquiries.PaginateByAgent(c.Request.Context(), agent.ID, req.Page, req.Limit, req.PropertyID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list inquiries")
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
