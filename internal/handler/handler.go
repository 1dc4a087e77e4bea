package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"authsync-service/internal/identity/store"
	"authsync-service/internal/ingest"
	"authsync-service/internal/logger"
	"authsync-service/internal/membersync"
	"authsync-service/internal/middleware"
	"authsync-service/internal/whitelist"

	"github.com/gin-gonic/gin"
)

// Ingestor is the ingestion entry point the callback endpoint drives.
type Ingestor interface {
	Ingest(ctx context.Context, code, originIP string) (ingest.Outcome, error)
}

// Syncer runs one membership reconciliation pass.
type Syncer interface {
	Run(ctx context.Context, groupID string) (membersync.Report, error)
}

type Handler struct {
	ingestor  Ingestor
	syncer    Syncer
	credStore store.Store
	whitelist whitelist.Store
	auth      *middleware.AuthMiddleware
}

func NewHandler(
	ingestor Ingestor,
	syncer Syncer,
	credStore store.Store,
	wl whitelist.Store,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		ingestor:  ingestor,
		syncer:    syncer,
		credStore: credStore,
		whitelist: wl,
		auth:      auth,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/", h.callback)

	ops := r.Group("/")
	ops.Use(middleware.GinRequireOperator(h.auth))
	ops.GET("/identities", h.identities)
	ops.GET("/stock", h.stock)
	ops.POST("/sync/:groupID", h.sync)

	admin := r.Group("/whitelist")
	admin.Use(middleware.GinRequireAdmin(h.auth))
	admin.PUT("/:id", h.whitelistAdd)
	admin.DELETE("/:id", h.whitelistRemove)
	admin.GET("", h.whitelistList)
}

// callback ingests one authorization code posted as a plain-text body.
func (h *Handler) callback(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 4096))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid code provided.")
		return
	}

	outcome, err := h.ingestor.Ingest(c.Request.Context(), string(body), c.ClientIP())
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidInput) {
			c.String(http.StatusBadRequest, "Invalid code provided.")
			return
		}
		logger.Error("ingestion failed", map[string]any{
			"origin_ip": c.ClientIP(),
			"error":     err.Error(),
		})
		c.String(http.StatusInternalServerError, "An error occurred during authorization.")
		return
	}

	if outcome == ingest.AlreadyAuthorized {
		c.String(http.StatusOK, "User already authorized.")
		return
	}
	c.String(http.StatusOK, "Authorization successful!")
}

// identities returns the full stored collection as a JSON array.
func (h *Handler) identities(c *gin.Context) {
	records, err := h.credStore.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to read identity data",
		})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) stock(c *gin.Context) {
	records, err := h.credStore.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to read identity data",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records)})
}

func (h *Handler) sync(c *gin.Context) {
	groupID := c.Param("groupID")

	report, err := h.syncer.Run(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, membersync.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "a sync run is already in progress",
			})
			return
		}
		logger.Error("sync run failed", map[string]any{
			"group_id": groupID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "sync run failed",
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) whitelistAdd(c *gin.Context) {
	id := c.Param("id")

	err := h.whitelist.Add(c.Request.Context(), id)
	switch {
	case errors.Is(err, whitelist.ErrAlreadyListed):
		c.JSON(http.StatusConflict, gin.H{"error": "operator already whitelisted"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update whitelist"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "added", "operator": id})
	}
}

func (h *Handler) whitelistRemove(c *gin.Context) {
	id := c.Param("id")

	err := h.whitelist.Remove(c.Request.Context(), id)
	switch {
	case errors.Is(err, whitelist.ErrNotListed):
		c.JSON(http.StatusNotFound, gin.H{"error": "operator not whitelisted"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update whitelist"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "removed", "operator": id})
	}
}

func (h *Handler) whitelistList(c *gin.Context) {
	ids, err := h.whitelist.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read whitelist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operators": ids})
}
