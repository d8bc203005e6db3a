package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quotis/quotation_batch_app/internal/apperrors"
	portssvc "github.com/quotis/quotation_batch_app/internal/core/ports/services"
	"github.com/quotis/quotation_batch_app/internal/dto"
	"github.com/quotis/quotation_batch_app/internal/middleware"
)

// maxUploadSize bounds the accepted tabular file (5MB).
const maxUploadSize = 5 << 20

// batchHandler handles HTTP requests related to quotation batches.
type batchHandler struct {
	batchService portssvc.BatchSvcFacade
	processor    portssvc.BatchProcessorSvc
}

func newBatchHandler(bs portssvc.BatchSvcFacade, proc portssvc.BatchProcessorSvc) *batchHandler {
	return &batchHandler{batchService: bs, processor: proc}
}

// RegisterBatchRoutes registers routes related to quotation batches.
func RegisterBatchRoutes(rg *gin.RouterGroup, bs portssvc.BatchSvcFacade, proc portssvc.BatchProcessorSvc) {
	h := newBatchHandler(bs, proc)

	batches := rg.Group("/batches")
	{
		batches.POST("", h.createBatch)
		batches.GET("", h.listBatches)
		batches.GET("/:id", h.getBatch)
		batches.GET("/:id/progress", h.getProgress)
		batches.POST("/:id/cancel", h.cancelBatch)
		batches.POST("/:id/extend", h.extendBatch)
		batches.POST("/:id/bundle", h.attachBundle)
		batches.DELETE("/:id", h.deleteBatch)
	}
}

func (h *batchHandler) createBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		logger.Error("Owner ID not found in context")
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner id required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("No file in upload request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 5MB limit"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	batch, err := h.batchService.CreateBatch(c.Request.Context(), raw, ownerID)
	if err != nil {
		var malformed *apperrors.MalformedInputError
		var missingCols *apperrors.MissingColumnsError
		switch {
		case errors.As(err, &malformed):
			logger.Warn("Malformed upload", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &missingCols):
			logger.Warn("Upload missing required columns", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create batch", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create batch"})
		}
		return
	}

	// Processing continues after the response; the caller polls progress.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := h.processor.ProcessBatch(ctx, batch.BatchID); err != nil {
			logger.Error("Batch processing failed",
				slog.String("batch_id", batch.BatchID),
				slog.String("error", err.Error()),
			)
		}
	}()

	logger.Info("Batch accepted",
		slog.String("batch_id", batch.BatchID),
		slog.Int("quotations", len(batch.Quotations)),
	)
	c.JSON(http.StatusAccepted, dto.ToBatchResponse(batch))
}

func (h *batchHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	batch, err := h.batchService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
			return
		}
		logger.Error("Failed to get batch", slog.String("batch_id", batchID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get batch"})
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}

func (h *batchHandler) getProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	progress, err := h.batchService.GetProgress(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
			return
		}
		logger.Error("Failed to get progress", slog.String("batch_id", batchID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get progress"})
		return
	}
	c.JSON(http.StatusOK, dto.ToProgressResponse(progress))
}

func (h *batchHandler) listBatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ownerID, ok := middleware.GetOwnerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner id required"})
		return
	}

	var query dto.ListBatchesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	projections, err := h.batchService.ListBatches(c.Request.Context(), ownerID, query.Limit)
	if err != nil {
		logger.Error("Failed to list batches", slog.String("owner_id", ownerID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list batches"})
		return
	}
	c.JSON(http.StatusOK, dto.ToListProgressResponse(projections))
}

func (h *batchHandler) cancelBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	ok, err := h.batchService.CancelBatch(c.Request.Context(), batchID)
	if err != nil {
		logger.Error("Failed to cancel batch", slog.String("batch_id", batchID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel batch"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *batchHandler) extendBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	var req dto.ExtendTTLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ok, err := h.batchService.ExtendBatchTTL(c.Request.Context(), batchID, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		logger.Error("Failed to extend batch TTL", slog.String("batch_id", batchID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extend batch TTL"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *batchHandler) attachBundle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	var req dto.AttachBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ok, err := h.batchService.AttachBundlePath(c.Request.Context(), batchID, req.Path)
	if err != nil {
		logger.Error("Failed to attach bundle path", slog.String("batch_id", batchID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach bundle path"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *batchHandler) deleteBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("id")

	ok, err := h.batchService.DeleteBatch(c.Request.Context(), batchID)
	if err != nil {
		logger.Error("Failed to delete batch", slog.String("batch_id", batchID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete batch"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
