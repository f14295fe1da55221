package controller

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khatrisoftware/alankar-backend/internal/errors"
	"github.com/khatrisoftware/alankar-backend/internal/middleware"
	"github.com/khatrisoftware/alankar-backend/internal/storage"
)

// ImagePresigner issues upload URLs for product images.
type ImagePresigner interface {
	PresignProductImage(ctx context.Context, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type UploadController struct {
	presigner ImagePresigner
}

func NewUploadController(presigner ImagePresigner) *UploadController {
	return &UploadController{
		presigner: presigner,
	}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// PresignProductImage returns a presigned PUT URL for a product image
// POST /api/uploads/presign
func (ctrl *UploadController) PresignProductImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presign request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, errors.ValidationInvalidInput, "filename and contentType are required")
		return
	}

	resp, err := ctrl.presigner.PresignProductImage(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		var notAllowed *storage.ErrContentTypeNotAllowed
		if stdErrors.As(err, &notAllowed) {
			log.Warn("Invalid content type", map[string]interface{}{
				"content_type": req.ContentType,
			})
			errors.BadRequest(c, errors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		errors.RespondWithError(c, http.StatusInternalServerError, errors.UploadFailed, "Failed to generate presigned URL")
		return
	}

	log.Info("Presigned URL generated", map[string]interface{}{
		"key": resp.Key,
	})

	c.JSON(http.StatusOK, resp)
}
