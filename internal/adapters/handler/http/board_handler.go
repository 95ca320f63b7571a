package http

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/services"
	"github.com/comitanigiacomo/kanso-habit-board/internal/core/view"
)

const (
	actionComplete = "complete"
	actionDelete   = "delete"
)

// BoardHandler binds the board page's form posts and button clicks to the
// habit store and repaints by redirecting back to the board.
type BoardHandler struct {
	store  *services.HabitStore
	events *services.Broadcaster
	tmpl   *template.Template
	log    logrus.FieldLogger
}

func NewBoardHandler(store *services.HabitStore, events *services.Broadcaster, tmpl *template.Template, log logrus.FieldLogger) *BoardHandler {
	return &BoardHandler{
		store:  store,
		events: events,
		tmpl:   tmpl,
		log:    log.WithField("component", "board_handler"),
	}
}

// client_id is minted per rendered page and echoed back by its forms, so
// the page can skip the refresh event its own change caused.
type habitForm struct {
	Name      string `form:"name"`
	Frequency string `form:"frequency"`
	ClientID  string `form:"client_id"`
}

type actionForm struct {
	Action   string `form:"action"`
	HabitID  string `form:"habit_id"`
	Confirm  string `form:"confirm"`
	ClientID string `form:"client_id"`
}

type refreshEvent struct {
	Reason string `json:"reason"`
	Origin string `json:"origin,omitempty"`
}

func (h *BoardHandler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(h.tmpl)

	router.GET("/", h.Index)
	router.POST("/habits", h.Submit)
	router.POST("/actions", h.Action)
	router.GET("/events", h.Events)
}

func (h *BoardHandler) Index(c *gin.Context) {
	board := view.BuildBoard(h.store.List(), h.store.Today())
	board.Notice = view.NoticeText(c.Query("notice"))
	board.FocusName = c.Query("focus") == "name"
	board.ClientID = uuid.NewString()

	c.HTML(http.StatusOK, "board.tmpl", board)
}

// Submit handles the add-habit form. A blank name is ignored.
func (h *BoardHandler) Submit(c *gin.Context) {
	var form habitForm
	if err := c.ShouldBind(&form); err != nil {
		h.repaint(c, url.Values{"focus": {"name"}})
		return
	}

	name := strings.TrimSpace(form.Name)
	if name == "" {
		h.repaint(c, url.Values{"focus": {"name"}})
		return
	}

	habit, err := h.store.Add(c.Request.Context(), name, form.Frequency)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPersist):
		h.log.WithError(err).Warn("habit added but not persisted")
	default:
		h.log.WithError(err).Error("failed to add habit")
		h.repaint(c, nil)
		return
	}

	h.log.WithField("habit_id", habit.ID).Info("habit added")
	h.events.PublishFrom(form.ClientID, "habit_added")
	h.repaint(c, nil)
}

// Action is the single entry point for every button on a habit card.
func (h *BoardHandler) Action(c *gin.Context) {
	var form actionForm
	if err := c.ShouldBind(&form); err != nil {
		h.repaint(c, nil)
		return
	}

	id, err := strconv.ParseInt(form.HabitID, 10, 64)
	if err != nil {
		h.repaint(c, nil)
		return
	}

	switch form.Action {
	case actionComplete:
		h.complete(c, id, form.ClientID)
	case actionDelete:
		h.delete(c, id, form.Confirm, form.ClientID)
	default:
		h.repaint(c, nil)
	}
}

func (h *BoardHandler) complete(c *gin.Context, id int64, origin string) {
	_, err := h.store.Complete(c.Request.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrHabitNotFound):
		h.repaint(c, nil)
		return
	case errors.Is(err, domain.ErrAlreadyCompleted):
		h.repaint(c, url.Values{"notice": {view.NoticeAlreadyCompleted}})
		return
	case errors.Is(err, domain.ErrPersist):
		h.log.WithError(err).WithField("habit_id", id).Warn("completion not persisted")
	default:
		h.log.WithError(err).WithField("habit_id", id).Error("failed to complete habit")
		h.repaint(c, nil)
		return
	}

	h.log.WithField("habit_id", id).Info("habit completed")
	h.events.PublishFrom(origin, "habit_completed")
	h.repaint(c, nil)
}

func (h *BoardHandler) delete(c *gin.Context, id int64, confirm, origin string) {
	switch confirm {
	case "yes":
	case "no":
		h.repaint(c, nil)
		return
	default:
		habit, err := h.store.Get(id)
		if err != nil {
			h.repaint(c, nil)
			return
		}
		prompt := view.ConfirmDelete(*habit)
		prompt.ClientID = origin
		c.HTML(http.StatusOK, "confirm.tmpl", prompt)
		return
	}

	_, err := h.store.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrHabitNotFound):
		h.repaint(c, nil)
		return
	case errors.Is(err, domain.ErrPersist):
		h.log.WithError(err).WithField("habit_id", id).Warn("deletion not persisted")
	default:
		h.log.WithError(err).WithField("habit_id", id).Error("failed to delete habit")
		h.repaint(c, nil)
		return
	}

	h.log.WithField("habit_id", id).Info("habit deleted")
	h.events.PublishFrom(origin, "habit_deleted")
	h.repaint(c, nil)
}

// Events streams a "refresh" event whenever the board changed.
func (h *BoardHandler) Events(c *gin.Context) {
	ch, cancel := h.events.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("refresh", refreshEvent{Reason: ev.Reason, Origin: ev.Origin})
			c.Writer.Flush()
		}
	}
}

func (h *BoardHandler) repaint(c *gin.Context, query url.Values) {
	target := "/"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}
