package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docsight/docsight/internal/application/feedback"
	"github.com/docsight/docsight/internal/application/panel"
	appviewstate "github.com/docsight/docsight/internal/application/viewstate"
	"github.com/docsight/docsight/internal/domain/analysis"
	domain "github.com/docsight/docsight/internal/domain/viewstate"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// SessionHandler exposes the session lifecycle and every per-session
// interaction endpoint.
type SessionHandler struct {
	sessions *panel.Manager
	store    *appviewstate.Store
	logger   logging.Logger
}

// NewSessionHandler builds the handler set.
func NewSessionHandler(sessions *panel.Manager, store *appviewstate.Store, log logging.Logger) *SessionHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SessionHandler{sessions: sessions, store: store, logger: log.Named("handlers")}
}

// Register mounts the routes on the API group.
func (h *SessionHandler) Register(api *gin.RouterGroup) {
	api.POST("/sessions", h.createSession)
	api.DELETE("/sessions/:id", h.removeSession)

	api.POST("/sessions/:id/document", h.setDocument)
	api.GET("/sessions/:id/segments", h.segments)
	api.GET("/sessions/:id/annotations", h.annotations)

	api.POST("/sessions/:id/select", h.selectAnnotation)
	api.GET("/sessions/:id/collections/:collection", h.collectionState)
	api.POST("/sessions/:id/collections/:collection/navigate", h.navigate)
	api.POST("/sessions/:id/collections/:collection/gesture", h.gesture)

	api.GET("/sessions/:id/state", h.getState)
	api.PATCH("/sessions/:id/state", h.patchState)
	api.DELETE("/sessions/:id/state", h.removeState)
	api.DELETE("/state", h.clearState)

	api.POST("/sessions/:id/scroll/:tab", h.reportScroll)
	api.POST("/sessions/:id/scroll/:tab/restore", h.restoreScroll)

	api.POST("/sessions/:id/feedback", h.giveFeedback)
	api.GET("/sessions/:id/feedback", h.listFeedback)
}

func (h *SessionHandler) session(c *gin.Context) (*panel.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// ─── session lifecycle ───────────────────────────────────────────────────────

func (h *SessionHandler) createSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"id": s.ID()})
}

func (h *SessionHandler) removeSession(c *gin.Context) {
	h.sessions.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ─── document binding ────────────────────────────────────────────────────────

type documentRequest struct {
	PrimaryID    string          `json:"id"`
	AlternateID  string          `json:"document_id"`
	Filename     string          `json:"filename"`
	DocumentText string          `json:"document_text"`
	Analysis     json.RawMessage `json:"analysis"`
	AnalyzedAt   time.Time       `json:"analyzed_at"`
}

func (h *SessionHandler) setDocument(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed document body")
		return
	}

	payload, err := analysis.ParsePayload(req.Analysis)
	if err != nil {
		// A malformed payload degrades to the empty state, it does not
		// fail the request.
		h.logger.Warn("Analysis payload degraded", logging.Err(err))
	}

	res := &analysis.Result{
		PrimaryID:    req.PrimaryID,
		AlternateID:  req.AlternateID,
		Filename:     req.Filename,
		DocumentText: req.DocumentText,
		Analysis:     payload,
		AnalyzedAt:   req.AnalyzedAt,
	}

	change, state := s.SetDocument(c.Request.Context(), res)
	c.JSON(http.StatusOK, gin.H{
		"change":      change.String(),
		"key":         s.Key(),
		"annotations": len(s.Annotations()),
		"state":       state,
	})
}

func (h *SessionHandler) segments(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": s.Segments()})
}

func (h *SessionHandler) annotations(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"annotations": s.Annotations()})
}

// ─── highlight coordination ──────────────────────────────────────────────────

type selectRequest struct {
	AnnotationID string `json:"annotation_id"`
}

func (h *SessionHandler) selectAnnotation(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed select body")
		return
	}

	col, idx, err := s.Coordinator().SelectFromDocument(req.AnnotationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"collection": col,
		"index":      idx,
		"active_id":  s.Coordinator().ActiveID(),
	})
}

func (h *SessionHandler) collectionState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	col := panel.Collection(c.Param("collection"))
	if !col.IsValid() {
		respondError(c, apperrors.Newf(apperrors.ErrCodeCollectionUnknown, "unknown collection %q", col))
		return
	}

	coord := s.Coordinator()
	item, _ := coord.CurrentItem(col)
	c.JSON(http.StatusOK, gin.H{
		"collection": col,
		"index":      coord.Index(col),
		"total":      coord.Total(col),
		"item":       item,
		"progress":   coord.Progress(col),
		"active_id":  coord.ActiveID(),
	})
}

type navigateRequest struct {
	Delta *int `json:"delta"`
	Index *int `json:"index"`
}

func (h *SessionHandler) navigate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	col := panel.Collection(c.Param("collection"))

	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed navigate body")
		return
	}

	var (
		idx int
		err error
	)
	switch {
	case req.Index != nil:
		idx, err = s.Coordinator().JumpTo(col, *req.Index)
	case req.Delta != nil:
		idx, err = s.Coordinator().Navigate(col, *req.Delta)
	default:
		badRequest(c, "navigate requires delta or index")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"index":     idx,
		"total":     s.Coordinator().Total(col),
		"active_id": s.Coordinator().ActiveID(),
	})
}

type gestureRequest struct {
	Phase string  `json:"phase"` // begin | move | end
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func (h *SessionHandler) gesture(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	col := panel.Collection(c.Param("collection"))

	var req gestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed gesture body")
		return
	}

	coord := s.Coordinator()
	now := time.Now()
	switch req.Phase {
	case "begin":
		if err := coord.BeginDrag(col, req.X, req.Y, now); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"progress": 0.0})
	case "move":
		c.JSON(http.StatusOK, gin.H{"progress": coord.UpdateDrag(col, req.X, req.Y)})
	case "end":
		idx, moved := coord.EndDrag(col, req.X, req.Y, now)
		c.JSON(http.StatusOK, gin.H{
			"index":     idx,
			"moved":     moved,
			"active_id": coord.ActiveID(),
		})
	default:
		respondError(c, apperrors.Newf(apperrors.ErrCodeGestureNotRecognized,
			"gesture phase must be begin, move or end, got %q", req.Phase))
	}
}

// ─── view state ──────────────────────────────────────────────────────────────

type actionRequest struct {
	Type    string           `json:"type"`
	Tab     domain.Tab       `json:"tab,omitempty"`
	Mode    domain.CardMode  `json:"mode,omitempty"`
	Chart   domain.ChartType `json:"chart,omitempty"`
	Filters []string         `json:"filters,omitempty"`
	Open    bool             `json:"open,omitempty"`
}

func toAction(a actionRequest) (domain.Action, error) {
	switch a.Type {
	case "set_active_tab":
		return domain.SetActiveTab{Tab: a.Tab}, nil
	case "set_card_mode":
		return domain.SetCardMode{Mode: a.Mode}, nil
	case "set_chart_type":
		return domain.SetChartType{Tab: a.Tab, Chart: a.Chart}, nil
	case "set_category_filters":
		return domain.SetCategoryFilters{Tab: a.Tab, Filters: a.Filters}, nil
	case "set_level_filters":
		return domain.SetLevelFilters{Tab: a.Tab, Filters: a.Filters}, nil
	case "set_drawer_open":
		return domain.SetDrawerOpen{Tab: a.Tab, Open: a.Open}, nil
	default:
		return nil, apperrors.Newf(apperrors.ErrCodeBadRequest, "unknown action type %q", a.Type)
	}
}

func (h *SessionHandler) getState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State(c.Request.Context()))
}

type patchStateRequest struct {
	Actions []actionRequest `json:"actions"`
}

func (h *SessionHandler) patchState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req patchStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed state patch")
		return
	}
	if len(req.Actions) == 0 {
		badRequest(c, "state patch requires at least one action")
		return
	}

	actions := make([]domain.Action, 0, len(req.Actions))
	for _, a := range req.Actions {
		action, err := toAction(a)
		if err != nil {
			respondError(c, err)
			return
		}
		actions = append(actions, action)
	}

	s.SaveState(c.Request.Context(), actions...)
	c.JSON(http.StatusOK, s.State(c.Request.Context()))
}

func (h *SessionHandler) removeState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.store.Remove(c.Request.Context(), s.Key())
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) clearState(c *gin.Context) {
	h.store.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// ─── scroll ──────────────────────────────────────────────────────────────────

type scrollEventRequest struct {
	Top            float64 `json:"top"`
	ContentHeight  float64 `json:"content_height"`
	ViewportHeight float64 `json:"viewport_height"`
}

func (h *SessionHandler) scrollTab(c *gin.Context) (domain.Tab, bool) {
	tab := domain.Tab(c.Param("tab"))
	if !tab.IsValid() {
		badRequest(c, "unknown tab")
		return "", false
	}
	return tab, true
}

func (h *SessionHandler) reportScroll(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	tab, ok := h.scrollTab(c)
	if !ok {
		return
	}

	var req scrollEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed scroll event")
		return
	}

	s.Viewport(tab).Report(req.Top, req.ContentHeight, req.ViewportHeight)
	// The capture fires after the debounce, past the end of this request,
	// so it must not inherit the request's cancellation.
	s.Tracker(tab).OnScroll(context.WithoutCancel(c.Request.Context()))
	c.Status(http.StatusAccepted)
}

func (h *SessionHandler) restoreScroll(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	tab, ok := h.scrollTab(c)
	if !ok {
		return
	}

	result := s.Tracker(tab).Restore(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"result": string(result)})
}

// ─── feedback ────────────────────────────────────────────────────────────────

type feedbackRequest struct {
	AnnotationID string        `json:"annotation_id"`
	Feedback     feedback.Type `json:"feedback_type"`
}

func (h *SessionHandler) giveFeedback(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed feedback body")
		return
	}

	if err := s.GiveFeedback(c.Request.Context(), req.AnnotationID, req.Feedback); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"given": s.Feedback().All()})
}

func (h *SessionHandler) listFeedback(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"given": s.Feedback().All()})
}
