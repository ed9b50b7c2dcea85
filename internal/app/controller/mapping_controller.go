package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	apperrors "github.com/vendsight/vendsight-backend/internal/errors"
	"github.com/vendsight/vendsight-backend/internal/ingest"
	"github.com/vendsight/vendsight-backend/internal/middleware"
)

type MappingController struct {
	mappingService service.MappingService
}

func NewMappingController(mappingService service.MappingService) *MappingController {
	return &MappingController{mappingService: mappingService}
}

type SaveMappingRequest struct {
	Name     string               `json:"name" binding:"required"`
	Platform model.Platform       `json:"platform"`
	Mapping  ingest.ColumnMapping `json:"mapping" binding:"required"`
	Headers  []string             `json:"headers"`
}

// Save stores a reusable column mapping
// POST /api/v1/mappings
func (ctrl *MappingController) Save(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req SaveMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid mapping details")
		return
	}
	if req.Platform == "" {
		req.Platform = model.PlatformCustom
	}

	mapping, err := ctrl.mappingService.Save(userID, req.Name, req.Platform, req.Mapping, req.Headers)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "mapping")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Mapping saved",
		"mapping": mapping,
	})
}

// List returns the user's saved mappings
// GET /api/v1/mappings
func (ctrl *MappingController) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	mappings, err := ctrl.mappingService.List(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "mapping")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

// Get returns one saved mapping
// GET /api/v1/mappings/:id
func (ctrl *MappingController) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	mapping, err := ctrl.mappingService.Get(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			apperrors.NotFound(c, apperrors.MappingNotFound, "Column mapping not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "mapping")
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": mapping})
}

// Delete removes a saved mapping
// DELETE /api/v1/mappings/:id
func (ctrl *MappingController) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := ctrl.mappingService.Delete(userID, id); err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "mapping")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mapping deleted"})
}
