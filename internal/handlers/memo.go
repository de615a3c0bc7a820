package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	dom "github.com/EmptyEmeraldTablet/blankpage/internal/domain"
	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
	"github.com/EmptyEmeraldTablet/blankpage/internal/service"
)

type MemoHandler struct {
	svc *service.MemoService
}

func NewMemoHandler(svc *service.MemoService) *MemoHandler {
	return &MemoHandler{svc: svc}
}

// List godoc
// @Summary      List all memos, newest-updated first
// @Tags         memos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.MemoResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /memos [get]
func (h *MemoHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		return
	}
	c.JSON(http.StatusOK, memosToResponses(list))
}

// Create godoc
// @Summary      Create a memo
// @Tags         memos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateMemoRequest  true  "Memo content"
// @Success      201   {object}  dto.MemoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /memos [post]
func (h *MemoHandler) Create(c *gin.Context) {
	var req dto.CreateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.CodeInvalidPayload})
		return
	}
	m, err := h.svc.Create(c.Request.Context(), req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.CodeInvalidPayload})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		return
	}
	c.JSON(http.StatusCreated, memoToResponse(m))
}

// GetByID godoc
// @Summary      Get a memo by ID
// @Tags         memos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Memo ID"
// @Success      200  {object}  dto.MemoResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /memos/{id} [get]
func (h *MemoHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.CodeNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		return
	}
	c.JSON(http.StatusOK, memoToResponse(m))
}

// Update godoc
// @Summary      Replace a memo's content
// @Tags         memos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Memo ID"
// @Param        body  body      dto.UpdateMemoRequest  true  "New content"
// @Success      200   {object}  dto.MemoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /memos/{id} [put]
func (h *MemoHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.CodeInvalidPayload})
		return
	}
	m, err := h.svc.Update(c.Request.Context(), id, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.CodeNotFound})
		case errors.Is(err, service.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.CodeInvalidPayload})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		}
		return
	}
	c.JSON(http.StatusOK, memoToResponse(m))
}

// Delete godoc
// @Summary      Delete a memo
// @Tags         memos
// @Security     BearerAuth
// @Param        id   path  int  true  "Memo ID"
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /memos/{id} [delete]
func (h *MemoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.CodeNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.CodeNotFound})
		return 0, false
	}
	return id, true
}

func memoToResponse(m dom.Memo) dto.MemoResponse {
	return dto.MemoResponse{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func memosToResponses(list []dom.Memo) []dto.MemoResponse {
	out := make([]dto.MemoResponse, len(list))
	for i := range list {
		out[i] = memoToResponse(list[i])
	}
	return out
}
