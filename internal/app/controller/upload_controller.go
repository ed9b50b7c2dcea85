package controller

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/vendsight/vendsight-backend/internal/app/service"
	apperrors "github.com/vendsight/vendsight-backend/internal/errors"
	"github.com/vendsight/vendsight-backend/internal/ingest"
	"github.com/vendsight/vendsight-backend/internal/middleware"
	"github.com/vendsight/vendsight-backend/internal/websocket"
)

// 10MB cap on uploaded rollups
const maxUploadSize = 10 << 20

type UploadController struct {
	uploadService  service.UploadService
	mappingService service.MappingService
	hub            *websocket.Hub
	upgrader       gorillaws.Upgrader
}

func NewUploadController(uploadService service.UploadService, mappingService service.MappingService, hub *websocket.Hub) *UploadController {
	return &UploadController{
		uploadService:  uploadService,
		mappingService: mappingService,
		hub:            hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// auth happens in middleware, the upgrade itself is open
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (ctrl *UploadController) readFile(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "A CSV file is required")
		return "", nil, false
	}

	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".csv" {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only CSV files are supported")
		return "", nil, false
	}
	if fileHeader.Size > maxUploadSize {
		apperrors.BadRequest(c, apperrors.UploadTooLarge, "File exceeds the 10MB limit")
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.InternalError(c, "")
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		apperrors.InternalError(c, "")
		return "", nil, false
	}
	if len(content) > maxUploadSize {
		apperrors.BadRequest(c, apperrors.UploadTooLarge, "File exceeds the 10MB limit")
		return "", nil, false
	}

	return fileHeader.Filename, content, true
}

// resolveMapping loads the saved mapping named by the optional
// mapping_id form field.
func (ctrl *UploadController) resolveMapping(c *gin.Context, userID uint) (*ingest.ColumnMapping, bool) {
	raw := c.PostForm("mapping_id")
	if raw == "" {
		return nil, true
	}

	mappingID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid mapping id")
		return nil, false
	}

	mapping, err := ctrl.mappingService.Resolve(userID, uint(mappingID))
	if err != nil {
		if errors.Is(err, service.ErrMappingNotFound) {
			apperrors.NotFound(c, apperrors.MappingNotFound, "Column mapping not found")
			return nil, false
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "mapping")
		return nil, false
	}
	return mapping, true
}

// Preview parses the file and returns the detected platform, mapping
// and sample rows without importing anything
// POST /api/v1/uploads/preview
func (ctrl *UploadController) Preview(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	filename, content, ok := ctrl.readFile(c)
	if !ok {
		return
	}

	mapping, ok := ctrl.resolveMapping(c, userID)
	if !ok {
		return
	}

	preview, err := ctrl.uploadService.Preview(filename, content, mapping)
	if err != nil {
		if errors.Is(err, service.ErrEmptyFile) {
			apperrors.BadRequest(c, apperrors.UploadEmptyFile, "File is empty")
			return
		}
		apperrors.BadRequest(c, apperrors.UploadParseFailed, err.Error())
		return
	}

	c.JSON(http.StatusOK, preview)
}

// Import runs a full import; progress is streamed to the user's open
// WebSocket sessions while the request blocks until the batch finishes
// POST /api/v1/uploads
func (ctrl *UploadController) Import(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	filename, content, ok := ctrl.readFile(c)
	if !ok {
		return
	}

	mapping, ok := ctrl.resolveMapping(c, userID)
	if !ok {
		return
	}

	periodStart := c.PostForm("period_start")
	periodEnd := c.PostForm("period_end")

	var onProgress service.ProgressFunc
	if ctrl.hub != nil {
		onProgress = func(p service.ImportProgress) {
			ctrl.hub.SendToUser(userID, gin.H{
				"type": "import_progress",
				"data": p,
			})
		}
	}

	upload, result, err := ctrl.uploadService.Process(userID, filename, content, periodStart, periodEnd, mapping, onProgress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFile):
			apperrors.BadRequest(c, apperrors.UploadEmptyFile, "File is empty")
		case errors.Is(err, service.ErrMissingPeriod):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Reporting period is required and was not found in the filename")
		default:
			log.Warn("Import failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
			apperrors.BadRequest(c, apperrors.UploadParseFailed, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload": upload,
		"result": result,
	})
}

// History lists the user's upload jobs, newest first
// GET /api/v1/uploads
func (ctrl *UploadController) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	uploads, err := ctrl.uploadService.History(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

// Get returns one upload job
// GET /api/v1/uploads/:id
func (ctrl *UploadController) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid upload id")
		return
	}

	upload, err := ctrl.uploadService.GetByID(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			apperrors.NotFound(c, apperrors.UploadNotFound, "Upload not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload": upload})
}

// ServeWS upgrades the connection and registers the session for import
// progress events
// GET /api/v1/ws/progress
func (ctrl *UploadController) ServeWS(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	client := websocket.NewClient(ctrl.hub, conn, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
