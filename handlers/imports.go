package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"college-portal-api/importer"
	"college-portal-api/models"
	"college-portal-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadArchive keeps the original uploaded files.
type UploadArchive interface {
	ArchiveUpload(ctx context.Context, objectPath string, data []byte, contentType string) error
	ListUploads(ctx context.Context, prefix string) ([]models.UploadFile, error)
	GetPresignedURL(ctx context.Context, objectPath string) (*models.PresignedURLResponse, error)
}

type ImportHandler struct {
	importer          *importer.Importer
	uploads           UploadArchive
	documents         services.ObjectStore
	cacheService      *services.CacheService
	uploadPathPattern string
	maxUploadBytes    int64
}

// NewImportHandler wires the import endpoints. A positive maxUploadBytes caps
// the request body of an upload.
func NewImportHandler(imp *importer.Importer, uploads UploadArchive, documents services.ObjectStore, cache *services.CacheService, uploadPathPattern string, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		importer:          imp,
		uploads:           uploads,
		documents:         documents,
		cacheService:      cache,
		uploadPathPattern: uploadPathPattern,
		maxUploadBytes:    maxUploadBytes,
	}
}

// Upload parses an uploaded file and keeps the result as a preview until it
// is confirmed or discarded
func (h *ImportHandler) Upload(c *gin.Context) {
	log.Println("ImportHandler - Upload")

	target := models.ImportTarget(c.Param("target"))
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("unknown import target: %s", target),
		})
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fileHeader, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "file too large",
			Message: fmt.Sprintf("uploads are limited to %d bytes", tooLarge.Limit),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "file is required",
			Message: err.Error(),
		})
		return
	}
	fileName := filepath.Base(fileHeader.Filename)

	kind, err := importer.DetectKind(fileName)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unsupported file",
			Message: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read upload",
			Message: err.Error(),
		})
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read upload",
			Message: err.Error(),
		})
		return
	}

	opts := importer.Options{
		CourseType: models.CourseType(strings.ToUpper(strings.TrimSpace(c.PostForm("courseType")))),
	}

	log.Printf("Importing %s: %s (%s, %d bytes)", target, fileName, kind, len(data))
	out, err := h.importer.Import(c.Request.Context(), target, data, kind, opts)
	if err != nil {
		h.importError(c, fileName, out, err)
		return
	}

	id := uuid.NewString()
	sourcePath := fmt.Sprintf(h.uploadPathPattern, target, id, fileName)
	if err := h.uploads.ArchiveUpload(c.Request.Context(), sourcePath, data, contentType(fileName)); err != nil {
		// the preview is still usable without the archived copy
		log.Printf("Failed to archive %s: %v", sourcePath, err)
		sourcePath = ""
	}

	now := time.Now()
	preview := &models.ImportPreview{
		ID:          id,
		Target:      target,
		FileName:    fileName,
		SourcePath:  sourcePath,
		Sheet:       out.Sheet,
		HeaderRow:   out.HeaderRow,
		Count:       out.Count,
		SkippedRows: nonNil(out.SkippedRows),
		Duplicates:  out.Duplicates,
		Records:     out.Records,
		CreatedAt:   now,
		ExpiresAt:   now.Add(h.cacheService.PreviewTTL()),
	}
	h.cacheService.SetPreview(preview)

	log.Printf("Preview %s: %d %s records from %s", id, out.Count, target, fileName)
	c.JSON(http.StatusCreated, preview)
}

func (h *ImportHandler) importError(c *gin.Context, fileName string, out *importer.Outcome, err error) {
	log.Printf("Import of %s failed: %v", fileName, err)

	switch {
	case errors.Is(err, importer.ErrNoData):
		resp := gin.H{
			"error":   "no valid data found",
			"message": "check that the file matches the expected format",
		}
		if out != nil {
			resp["skippedRows"] = nonNil(out.SkippedRows)
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, importer.ErrPDFUnsupported):
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{
			Error:   "pdf import is not available",
			Message: err.Error(),
		})
	case errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrUnreadableFile),
		errors.Is(err, importer.ErrNoSheets):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse file",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "import failed",
			Message: err.Error(),
		})
	}
}

// GetPreview returns a pending import
func (h *ImportHandler) GetPreview(c *gin.Context) {
	preview, ok := h.cacheService.GetPreview(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "import preview not found or expired",
		})
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Discard drops a pending import without saving it
func (h *ImportHandler) Discard(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.cacheService.GetPreview(id); !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "import preview not found or expired",
		})
		return
	}
	h.cacheService.DeletePreview(id)
	c.JSON(http.StatusOK, gin.H{
		"message": "import discarded",
	})
}

// Confirm bulk-upserts a pending import into its collection
func (h *ImportHandler) Confirm(c *gin.Context) {
	log.Println("ImportHandler - Confirm")

	id := c.Param("id")
	preview, ok := h.cacheService.GetPreview(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "import preview not found or expired",
		})
		return
	}

	summary, err := h.persist(c.Request.Context(), preview)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to save records",
			Message: err.Error(),
		})
		return
	}

	h.cacheService.DeletePreview(id)
	h.cacheService.Delete(collectionCacheKey(preview.Target))

	log.Printf("Import %s saved: %d created, %d updated", id, summary.Created, summary.Updated)
	c.JSON(http.StatusOK, summary)
}

func (h *ImportHandler) persist(ctx context.Context, preview *models.ImportPreview) (*models.UpsertSummary, error) {
	collection := string(preview.Target)
	switch records := preview.Records.(type) {
	case []models.CalendarEvent:
		return services.UpsertDocuments(ctx, h.documents, collection, records)
	case []models.Course:
		return services.UpsertDocuments(ctx, h.documents, collection, records)
	case []models.DirectoryEntry:
		return services.UpsertDocuments(ctx, h.documents, collection, records)
	case []models.Student:
		return services.UpsertDocuments(ctx, h.documents, collection, records)
	default:
		return nil, fmt.Errorf("unexpected records for %s: %T", collection, preview.Records)
	}
}

// GetSource returns a presigned URL for the uploaded original
func (h *ImportHandler) GetSource(c *gin.Context) {
	preview, ok := h.cacheService.GetPreview(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "import preview not found or expired",
		})
		return
	}
	if preview.SourcePath == "" {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "source file was not archived",
		})
		return
	}

	urlResponse, err := h.uploads.GetPresignedURL(c.Request.Context(), preview.SourcePath)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "file not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to generate download url",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, urlResponse)
}

func contentType(fileName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func nonNil(rows []int) []int {
	if rows == nil {
		return []int{}
	}
	return rows
}
