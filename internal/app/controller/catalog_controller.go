package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	apperrors "github.com/vendsight/vendsight-backend/internal/errors"
	"github.com/vendsight/vendsight-backend/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

type UpdateLocationRequest struct {
	RegionID     *uint   `json:"region_id"`
	ClearRegion  bool    `json:"clear_region"`
	LocationType *string `json:"location_type"`
	City         *string `json:"city"`
	State        *string `json:"state"`
}

type UpdateMachineRequest struct {
	LocationID    *uint   `json:"location_id"`
	ClearLocation bool    `json:"clear_location"`
	AssetNumber   *string `json:"asset_number"`
	Make          *string `json:"make"`
	Model         *string `json:"model"`
	ProductType   *string `json:"product_type"`
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// ListRegions
// GET /api/v1/regions
func (ctrl *CatalogController) ListRegions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	regions, err := ctrl.catalogService.ListRegions(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "region")
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// ListLocations
// GET /api/v1/locations
func (ctrl *CatalogController) ListLocations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	locations, err := ctrl.catalogService.ListLocations(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "location")
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// GetLocation
// GET /api/v1/locations/:id
func (ctrl *CatalogController) GetLocation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	location, err := ctrl.catalogService.GetLocation(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			apperrors.NotFound(c, apperrors.LocationNotFound, "Location not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "location")
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location})
}

// UpdateLocation reassigns region or edits the location's attributes
// PUT /api/v1/locations/:id
func (ctrl *CatalogController) UpdateLocation(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid location details")
		return
	}

	location, err := ctrl.catalogService.UpdateLocation(userID, id, service.LocationUpdate{
		RegionID:     req.RegionID,
		ClearRegion:  req.ClearRegion,
		LocationType: req.LocationType,
		City:         req.City,
		State:        req.State,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNotFound):
			apperrors.NotFound(c, apperrors.LocationNotFound, "Location not found")
		case errors.Is(err, service.ErrRegionNotFound):
			apperrors.NotFound(c, apperrors.RegionNotFound, "Region not found")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "location")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Location updated",
		"location": location,
	})
}

// ListMachines
// GET /api/v1/machines
func (ctrl *CatalogController) ListMachines(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	machines, err := ctrl.catalogService.ListMachines(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "machine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

// GetMachine
// GET /api/v1/machines/:id
func (ctrl *CatalogController) GetMachine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	machine, err := ctrl.catalogService.GetMachine(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrMachineNotFound) {
			apperrors.NotFound(c, apperrors.MachineNotFound, "Machine not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "machine")
		return
	}
	c.JSON(http.StatusOK, gin.H{"machine": machine})
}

// UpdateMachine edits asset metadata or moves the machine
// PUT /api/v1/machines/:id
func (ctrl *CatalogController) UpdateMachine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid machine details")
		return
	}

	machine, err := ctrl.catalogService.UpdateMachine(userID, id, service.MachineUpdate{
		LocationID:    req.LocationID,
		ClearLocation: req.ClearLocation,
		AssetNumber:   req.AssetNumber,
		Make:          req.Make,
		Model:         req.Model,
		ProductType:   req.ProductType,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMachineNotFound):
			apperrors.NotFound(c, apperrors.MachineNotFound, "Machine not found")
		case errors.Is(err, service.ErrLocationNotFound):
			apperrors.NotFound(c, apperrors.LocationNotFound, "Location not found")
		default:
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "machine")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Machine updated",
		"machine": machine,
	})
}
