package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/core"
	"lifenotes-backend-go/internal/models"
)

// LessonHandler handles API endpoints related to lessons.
type LessonHandler struct {
	lessonService core.LessonService
	logger        *zap.Logger
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(ls core.LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{lessonService: ls, logger: logger}
}

// ListLessons handles GET /addLesson
func (h *LessonHandler) ListLessons(c *gin.Context) {
	lessons, err := h.lessonService.ListLessons(c.Request.Context(), "")
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// ListMyLessons handles GET /myLesson?email=. Without an email every lesson is listed.
func (h *LessonHandler) ListMyLessons(c *gin.Context) {
	lessons, err := h.lessonService.ListLessons(c.Request.Context(), c.Query("email"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// ListFavorites handles GET /favorites?email=
func (h *LessonHandler) ListFavorites(c *gin.Context) {
	lessons, err := h.lessonService.ListFavorites(c.Request.Context(), c.Query("email"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// GetLesson handles GET /addLesson/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lesson, err := h.lessonService.GetLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// CreateLesson handles POST /addLesson
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req models.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	lesson, err := h.lessonService.CreateLesson(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, InsertAck{Acknowledged: true, InsertedID: lesson.ID})
}

// UpdateLesson handles PUT /addLesson/:id
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	if err := h.lessonService.UpdateLesson(c.Request.Context(), c.Param("id"), patch); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, UpdateAck{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1})
}

// DeleteLesson handles DELETE /addLesson/:id
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	if err := h.lessonService.DeleteLesson(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, DeleteAck{Acknowledged: true, DeletedCount: 1})
}

// AddComment handles PATCH /addLesson/comment/:id
func (h *LessonHandler) AddComment(c *gin.Context) {
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	if err := h.lessonService.AppendComment(c.Request.Context(), c.Param("id"), req); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, UpdateAck{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1})
}

// ToggleLike handles PATCH /addLesson/like/:id
func (h *LessonHandler) ToggleLike(c *gin.Context) {
	var req models.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	result, err := h.lessonService.ToggleLike(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, LikeResponse{Acknowledged: true, Liked: result.Member, LikesCount: result.Count})
}

// ToggleFavorite handles PATCH /addLesson/favorite/:id
func (h *LessonHandler) ToggleFavorite(c *gin.Context) {
	var req models.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	result, err := h.lessonService.ToggleFavorite(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, FavoriteResponse{Acknowledged: true, Favorited: result.Member, FavoritesCount: result.Count})
}
