package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EmptyEmeraldTablet/blankpage/internal/clip"
	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
)

// ClipHandler serves the single cloud-clipboard slot. It talks to the
// store directly: the slot has no business rules to put in a service.
type ClipHandler struct {
	store *clip.Store
}

func NewClipHandler(store *clip.Store) *ClipHandler {
	return &ClipHandler{store: store}
}

// Get godoc
// @Summary      Read the clipboard slot
// @Tags         clip
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ClipResponse  "text is null when the slot is empty"
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /clip [get]
func (h *ClipHandler) Get(c *gin.Context) {
	cl, err := h.store.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		return
	}
	if cl == nil {
		c.JSON(http.StatusOK, dto.ClipResponse{Text: nil})
		return
	}
	created := cl.CreatedAt
	c.JSON(http.StatusOK, dto.ClipResponse{Text: &cl.Text, CreatedAt: &created})
}

// Save godoc
// @Summary      Overwrite the clipboard slot
// @Tags         clip
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.SaveClipRequest  true  "Clip text; empty string clears"
// @Success      201   {object}  dto.ClipResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /clip [post]
func (h *ClipHandler) Save(c *gin.Context) {
	var req dto.SaveClipRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.CodeInvalidPayload})
		return
	}
	cl, err := h.store.Set(c.Request.Context(), *req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		return
	}
	created := cl.CreatedAt
	c.JSON(http.StatusCreated, dto.ClipResponse{Text: &cl.Text, CreatedAt: &created})
}
