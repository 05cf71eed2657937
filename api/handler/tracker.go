package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase/tracker"
)

type TrackerHandler struct {
	baseHandler
	manager *tracker.Manager
}

func NewTrackerHandler(manager *tracker.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *TrackerHandler {
	return &TrackerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

func (h *TrackerHandler) open(ctx *fasthttp.RequestCtx, stdCtx context.Context) (*tracker.Tracker, bool) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return nil, false
	}
	t, err := h.manager.Open(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return nil, false
	}
	return t, true
}

// @Summary Tracker state and session log
// @Tags tracker
// @Router /api/v1/tracker/{id} [get]
func (h *TrackerHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	if t, ok := h.open(ctx, stdCtx); ok {
		h.respondSuccess(ctx, http.StatusOK, t.Snapshot())
	}
}

// @Summary Start or resume timing
// @Tags tracker
// @Router /api/v1/tracker/{id}/start [post]
func (h *TrackerHandler) Start(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	if t, ok := h.open(ctx, stdCtx); ok {
		t.Start()
		h.respondSuccess(ctx, http.StatusOK, t.Snapshot())
	}
}

// @Summary Pause timing
// @Tags tracker
// @Router /api/v1/tracker/{id}/pause [post]
func (h *TrackerHandler) Pause(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	if t, ok := h.open(ctx, stdCtx); ok {
		t.Pause()
		h.respondSuccess(ctx, http.StatusOK, t.Snapshot())
	}
}

// @Summary Stop timing and record a session
// @Tags tracker
// @Router /api/v1/tracker/{id}/stop [post]
func (h *TrackerHandler) Stop(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	t, ok := h.open(ctx, stdCtx)
	if !ok {
		return
	}

	session, err := t.Stop(stdCtx)
	if err != nil {
		h.respondMutation(ctx, http.StatusOK, session, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"session": session,
		"tracker": t.Snapshot(),
	})
}

// @Summary Save tracked time to the task
// @Tags tracker
// @Router /api/v1/tracker/{id}/save [post]
func (h *TrackerHandler) Save(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.manager.Save(stdCtx, id)
	h.respondMutation(ctx, http.StatusOK, task, err)
}

// @Summary Delete one recorded session
// @Tags tracker
// @Router /api/v1/tracker/{id}/sessions/{session} [delete]
func (h *TrackerHandler) DeleteSession(ctx *fasthttp.RequestCtx) {
	sessionID, ok := h.pathParam(ctx, "session")
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	t, ok := h.open(ctx, stdCtx)
	if !ok {
		return
	}

	if err := t.DeleteSession(stdCtx, sessionID); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
