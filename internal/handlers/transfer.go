package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/mtsuzuki/todo-collab-api/internal/errors"
	"github.com/mtsuzuki/todo-collab-api/internal/middleware"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
)

// TransferHandler coordinates import/export HTTP handlers.
type TransferHandler struct {
	transferService *services.TransferService
	authService     *services.AuthService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService *services.TransferService, authService *services.AuthService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		authService:     authService,
	}
}

// Export streams the caller's owned todos as a JSON or CSV download.
// Completed todos are included unless completed=false.
func (h *TransferHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	includeCompleted := c.DefaultQuery("completed", "true") != "false"

	userID, _ := middleware.GetUserID(c)
	user, err := h.authService.GetUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to load user")
		return
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "json":
		data, err = h.transferService.ExportJSON(userID, includeCompleted)
		contentType = "application/json"
	case "csv":
		data, err = h.transferService.ExportCSV(userID, includeCompleted)
		contentType = "text/csv"
	default:
		apierrors.BadRequest(c, "Unsupported export format, use json or csv")
		return
	}
	if err != nil {
		apierrors.InternalError(c, "Failed to export todos")
		return
	}

	fileName := services.ExportFileName(user.Username, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, data)
}

// Import loads todos from an uploaded JSON or CSV file. Existing todos
// with the same title are left untouched.
func (h *TransferHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "No file uploaded")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apierrors.InternalError(c, "Failed to read uploaded file")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var imported int
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".json":
		imported, err = h.transferService.ImportJSON(userID, data)
	case ".csv":
		imported, err = h.transferService.ImportCSV(userID, data)
	default:
		apierrors.BadRequest(c, "Unsupported file format, upload a .json or .csv file")
		return
	}
	if err != nil {
		if errors.Is(err, services.ErrParse) {
			apierrors.ParseError(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to import todos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Import completed",
		"imported": imported,
	})
}
