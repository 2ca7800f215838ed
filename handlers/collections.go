package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"college-portal-api/models"
	"college-portal-api/services"

	"github.com/gin-gonic/gin"
)

type CollectionHandler struct {
	documents         services.ObjectStore
	uploads           UploadArchive
	cacheService      *services.CacheService
	uploadPathPattern string
}

func NewCollectionHandler(documents services.ObjectStore, uploads UploadArchive, cache *services.CacheService, uploadPathPattern string) *CollectionHandler {
	return &CollectionHandler{
		documents:         documents,
		uploads:           uploads,
		cacheService:      cache,
		uploadPathPattern: uploadPathPattern,
	}
}

func collectionCacheKey(target models.ImportTarget) string {
	return fmt.Sprintf("collection:%s", target)
}

// List returns the stored records of a collection
func (h *CollectionHandler) List(c *gin.Context) {
	log.Println("CollectionHandler - List")
	target := models.ImportTarget(c.Param("target"))
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("unknown collection: %s", target),
		})
		return
	}

	cacheKey := collectionCacheKey(target)
	if cached, found := h.cacheService.Get(cacheKey); found {
		c.JSON(http.StatusOK, gin.H{
			"data":   cached,
			"cached": true,
		})
		return
	}

	docs, err := h.load(c.Request.Context(), target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load collection",
			Message: err.Error(),
		})
		return
	}

	h.cacheService.Set(cacheKey, docs, 0)

	c.JSON(http.StatusOK, gin.H{
		"data":   docs,
		"cached": false,
	})
}

func (h *CollectionHandler) load(ctx context.Context, target models.ImportTarget) (interface{}, error) {
	collection := string(target)
	switch target {
	case models.TargetCalendar:
		return services.ListDocuments[models.CalendarEvent](ctx, h.documents, collection)
	case models.TargetCourses:
		return services.ListDocuments[models.Course](ctx, h.documents, collection)
	case models.TargetDirectory:
		return services.ListDocuments[models.DirectoryEntry](ctx, h.documents, collection)
	default:
		return services.ListDocuments[models.Student](ctx, h.documents, collection)
	}
}

// ListUploads returns the archived source files of a collection
func (h *CollectionHandler) ListUploads(c *gin.Context) {
	target := models.ImportTarget(c.Param("target"))
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("unknown collection: %s", target),
		})
		return
	}

	files, err := h.uploads.ListUploads(c.Request.Context(), uploadPrefix(h.uploadPathPattern, target))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list uploads",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": files,
	})
}

// InvalidateCache drops cached collection listings
func (h *CollectionHandler) InvalidateCache(c *gin.Context) {
	h.cacheService.Flush()
	c.JSON(http.StatusOK, gin.H{
		"message": "cache invalidated successfully",
	})
}

// uploadPrefix cuts the upload path pattern after the target segment:
// "uploads/%s/%s/%s" -> "uploads/calendar/".
func uploadPrefix(pattern string, target models.ImportTarget) string {
	parts := strings.SplitN(pattern, "%s", 3)
	if len(parts) < 2 {
		return string(target) + "/"
	}
	return parts[0] + string(target) + parts[1]
}
