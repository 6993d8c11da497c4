package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"instareply/internal/domain/knowledge"
	"instareply/internal/interfaces/httpserver/responses"
)

// KnowledgeHandler serves the knowledge-base upload routes.
type KnowledgeHandler struct {
	service *knowledge.Service
	log     zerolog.Logger
}

// NewKnowledgeHandler constructs the knowledge handler.
func NewKnowledgeHandler(service *knowledge.Service, log zerolog.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		service: service,
		log:     log.With().Str("component", "knowledge-handler").Logger(),
	}
}

// ItemPayload is an uploaded document as listed in the dashboard.
type ItemPayload struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// List returns uploaded documents, newest first.
func (h *KnowledgeHandler) List(reqCtx *gin.Context) {
	items, err := h.service.ListItems(reqCtx.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list knowledge items failed")
		responses.HandleError(reqCtx, err, "failed to list knowledge items")
		return
	}

	payload := make([]ItemPayload, len(items))
	for i, item := range items {
		payload[i] = ItemPayload{
			ID:          item.ID,
			Filename:    item.Filename,
			ContentType: item.ContentType,
			CreatedAt:   item.CreatedAt,
		}
	}
	reqCtx.JSON(http.StatusOK, payload)
}

// Upload ingests a plain-text document: chunk, embed, index.
func (h *KnowledgeHandler) Upload(reqCtx *gin.Context) {
	fileHeader, err := reqCtx.FormFile("file")
	if err != nil {
		responses.HandleValidationError(reqCtx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to open upload")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to read upload")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.service.Upload(reqCtx.Request.Context(), fileHeader.Filename, contentType, string(content))
	if err != nil {
		h.log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("upload failed")
		responses.HandleError(reqCtx, err, "failed to process upload")
		return
	}

	h.log.Info().
		Str("item_id", result.ItemID).
		Int("processed", result.ChunksProcessed).
		Int("total", result.TotalChunks).
		Msg("document ingested")
	reqCtx.JSON(http.StatusOK, result)
}

// Delete removes a document and its indexed chunks.
func (h *KnowledgeHandler) Delete(reqCtx *gin.Context) {
	id := reqCtx.Param("id")
	if err := h.service.DeleteItem(reqCtx.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Str("item_id", id).Msg("delete knowledge item failed")
		responses.HandleError(reqCtx, err, "failed to delete knowledge item")
		return
	}
	reqCtx.JSON(http.StatusOK, gin.H{"success": true})
}
