package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-habit-board/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/services"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/view"
)

// HabitHandler exposes the habit store as JSON.
type HabitHandler struct {
	store  *services.HabitStore
	events *services.Broadcaster
	log    logrus.FieldLogger
}

func NewHabitHandler(store *services.HabitStore, events *services.Broadcaster, log logrus.FieldLogger) *HabitHandler {
	return &HabitHandler{
		store:  store,
		events: events,
		log:    log.WithField("component", "habit_api"),
	}
}

type createHabitRequest struct {
	Name      string `json:"name" binding:"required"`
	Frequency string `json:"frequency"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("", h.List)
		habits.POST("", h.Create)
		habits.POST("/:id/complete", h.Complete)
		habits.DELETE("/:id", h.Delete)
	}

	router.POST("/reset", h.Reset)
	router.GET("/stats", h.Stats)
	router.GET("/board", h.Board)
}

func (h *HabitHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.List())
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.store.Add(c.Request.Context(), req.Name, req.Frequency)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNameEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, err)
		return
	}

	h.publish(c, "habit_added")
	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) Complete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	habit, err := h.store.Complete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "already completed",
				"message": view.NoticeText(view.NoticeAlreadyCompleted),
				"habit":   habit,
			})
			return
		}
		h.fail(c, err)
		return
	}

	h.publish(c, "habit_completed")
	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
			return
		}
		h.fail(c, err)
		return
	}

	h.publish(c, "habit_deleted")
	c.Status(http.StatusNoContent)
}

func (h *HabitHandler) Reset(c *gin.Context) {
	changed, err := h.store.DailyReset(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	if changed {
		h.publish(c, "daily_reset")
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *HabitHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

func (h *HabitHandler) Board(c *gin.Context) {
	c.JSON(http.StatusOK, view.BuildBoard(h.store.List(), h.store.Today()))
}

// fail reports storage trouble. A persist failure still changed the board,
// so subscribers are told to repaint.
func (h *HabitHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrPersist) {
		h.log.WithError(err).Error("change applied but not persisted")
		h.publish(c, "unpersisted_change")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist habits"})
		return
	}
	h.log.WithError(err).Error("habit operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// publish tags the event with the request id so the caller can recognise
// its own change.
func (h *HabitHandler) publish(c *gin.Context, reason string) {
	origin, _ := middleware.GetRequestID(c)
	h.events.PublishFrom(origin, reason)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return 0, false
	}
	return id, true
}
