// Package api is the frame's network side: the remote photo service poller, the optional bucket
// mirror and the local control web server
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aouyang1/magicframe/api/models"
	"github.com/aouyang1/magicframe/api/web/templates"
	"github.com/aouyang1/magicframe/library"
	"github.com/aouyang1/magicframe/store"
	"github.com/aouyang1/magicframe/util"
)

const displayTimeout = 5 * time.Second

// Controller is the running frame as seen from the web server. Implementations forward requests
// into the frame's event loop rather than changing its state directly.
type Controller interface {
	Status() models.StatusResponse
	RequestSync() error
	ReloadSettings() error
}

// DisplayPower switches the physical screen on and off
type DisplayPower interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
}

type WebServer struct {
	router *gin.Engine
	db     *store.Database

	library    *library.Library
	controller Controller
	screen     DisplayPower
}

func NewWebServer(db *store.Database, lib *library.Library, controller Controller, screen DisplayPower) *WebServer {
	router := gin.New()
	// the terminal belongs to the frame UI, so requests and panics only go to the log
	router.Use(requestLogger(), gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		slog.Error("panic while serving request", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))

	ws := &WebServer{
		router:     router,
		db:         db,
		library:    lib,
		controller: controller,
		screen:     screen,
	}
	ws.setupRoutes()
	return ws
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("handled request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (ws *WebServer) setupRoutes() {
	ws.router.GET("/", ws.handleIndex)
	ws.router.GET("/ui/photos", ws.handleUIPhotos)

	ws.router.GET("/status", ws.handleStatus)
	ws.router.GET("/photos", ws.handleListPhotos)
	ws.router.GET("/photos/:name/image", ws.handlePhotoImage)
	ws.router.GET("/settings", ws.handleGetSettings)
	ws.router.PUT("/settings", ws.handleUpdateSettings)
	ws.router.POST("/sync", ws.handleSync)
	ws.router.GET("/display", ws.handleGetDisplay)
	ws.router.PUT("/display/:state", ws.handleUpdateDisplay)
}

// Handler exposes the router, mostly for tests
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start serves until the listener fails
func (ws *WebServer) Start(addr string) error {
	slog.Info("starting web server", "addr", addr)
	if err := ws.router.Run(addr); err != nil {
		return fmt.Errorf("web server stopped: %w", err)
	}
	return nil
}

func (ws *WebServer) handleIndex(c *gin.Context) {
	settings, err := ws.db.GetAppSettings()
	if err != nil {
		slog.Warn("unable to read settings for status page", "error", err)
	}
	photos, err := ws.db.GetAllPhotos()
	if err != nil {
		slog.Warn("unable to read photos for status page", "error", err)
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	page := templates.StatusPage(ws.controller.Status(), settings, photos)
	if err := page.Render(c.Request.Context(), c.Writer); err != nil {
		slog.Error("failed to render status page", "error", err)
	}
}

func (ws *WebServer) handleUIPhotos(c *gin.Context) {
	photos, err := ws.db.GetAllPhotos()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("Error fetching photos: %v", err))
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := templates.PhotoGrid(photos).Render(c.Request.Context(), c.Writer); err != nil {
		slog.Error("failed to render photo grid", "error", err)
	}
}

func (ws *WebServer) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ws.controller.Status())
}

func (ws *WebServer) handleListPhotos(c *gin.Context) {
	photos, err := ws.db.GetAllPhotos()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Database error: %v", err)})
		return
	}
	if photos == nil {
		photos = []store.Photo{}
	}

	c.JSON(http.StatusOK, models.PhotoListResponse{
		Photos: photos,
		Total:  len(photos),
	})
}

func (ws *WebServer) handlePhotoImage(c *gin.Context) {
	encodedName := c.Param("name")
	if encodedName == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Photo name is required"})
		return
	}

	name, err := url.PathUnescape(encodedName)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid photo name encoding"})
		return
	}
	// only files directly inside the image directory are served
	if name != filepath.Base(name) || name == "." || name == ".." || !util.IsSupported(name) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid photo name: %s", name)})
		return
	}

	filePath := filepath.Join(ws.library.Path(), name)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Photo file not found: %s", name)})
		return
	}

	c.File(filePath)
}

func (ws *WebServer) handleGetSettings(c *gin.Context) {
	settings, err := ws.db.GetAppSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get settings: %v", err)})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (ws *WebServer) handleUpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	if req.SlideshowDelaySeconds <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "slideshow_delay_seconds must be positive"})
		return
	}
	if req.PollIntervalSeconds <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "poll_interval_seconds must be positive"})
		return
	}

	newSettings := &store.AppSettings{
		SlideshowDelaySeconds: req.SlideshowDelaySeconds,
		PollIntervalSeconds:   req.PollIntervalSeconds,
		ShuffleEnabled:        req.ShuffleEnabled,
	}
	if err := ws.db.UpsertAppSettings(newSettings); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update settings: %v", err)})
		return
	}

	// the running slideshow picks the new values up on its next timer
	if err := ws.controller.ReloadSettings(); err != nil {
		slog.Warn("settings saved but not applied", "error", err)
	}

	c.JSON(http.StatusOK, newSettings)
}

func (ws *WebServer) handleSync(c *gin.Context) {
	if err := ws.controller.RequestSync(); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: fmt.Sprintf("Unable to request sync: %v", err)})
		return
	}
	c.JSON(http.StatusAccepted, models.SyncResponse{Message: "Check for new images requested"})
}

func (ws *WebServer) handleGetDisplay(c *gin.Context) {
	if ws.screen == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "Display control is not available"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), displayTimeout)
	defer cancel()
	enabled, err := ws.screen.Enabled(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to get display state: %v", err)})
		return
	}

	c.JSON(http.StatusOK, models.DisplayStateResponse{Enabled: enabled})
}

func (ws *WebServer) handleUpdateDisplay(c *gin.Context) {
	if ws.screen == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "Display control is not available"})
		return
	}

	state := c.Param("state")
	if state != "0" && state != "1" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "state must be 0 (off) or 1 (on)"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), displayTimeout)
	defer cancel()

	desiredEnabled := state == "1"
	if err := ws.screen.SetEnabled(ctx, desiredEnabled); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to update display state: %v", err)})
		return
	}

	// Re-read state to reflect actual output if possible.
	enabled, err := ws.screen.Enabled(ctx)
	if err != nil {
		slog.Warn("failed to re-read display state after update", "error", err)
		enabled = desiredEnabled
	}

	c.JSON(http.StatusOK, models.DisplayStateResponse{Enabled: enabled})
}
