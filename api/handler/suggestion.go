package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase/suggest"
	taskUC "github.com/fastygo/taskflow/usecase/task"
)

// SuggestionHandler serves suggestions for the process-wide session. The
// dismissed set lives as long as the server process.
type SuggestionHandler struct {
	baseHandler
	store     *taskUC.Store
	engine    *suggest.Engine
	dismissed *suggest.Dismissed
}

func NewSuggestionHandler(store *taskUC.Store, engine *suggest.Engine, dismissed *suggest.Dismissed, adapter *httpcontext.Adapter, logger *zap.Logger) *SuggestionHandler {
	if dismissed == nil {
		dismissed = suggest.NewDismissed()
	}
	return &SuggestionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
		engine:      engine,
		dismissed:   dismissed,
	}
}

// @Summary Current suggestions
// @Tags suggestions
// @Router /api/v1/suggestions [get]
func (h *SuggestionHandler) GetSuggestions(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	h.respondSuccess(ctx, http.StatusOK, h.engine.Evaluate(h.store.List(stdCtx), h.dismissed))
}

// @Summary Dismiss a suggestion for this session
// @Tags suggestions
// @Router /api/v1/suggestions/{id}/dismiss [post]
func (h *SuggestionHandler) Dismiss(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	h.dismissed.Dismiss(id)
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"dismissed": h.dismissed.IDs()})
}

// @Summary Forget dismissed suggestions
// @Tags suggestions
// @Router /api/v1/suggestions/dismissed [delete]
func (h *SuggestionHandler) ClearDismissed(ctx *fasthttp.RequestCtx) {
	h.dismissed.Clear()
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Run a suggestion's action
// @Tags suggestions
// @Router /api/v1/suggestions/{id}/apply [post]
func (h *SuggestionHandler) Apply(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	s, found := h.engine.Find(h.store.List(stdCtx), h.dismissed, id)
	if !found {
		h.respondError(ctx, domain.NewError(domain.ErrCodeNotFound, "suggestion not active"))
		return
	}
	updated, err := h.engine.ApplyAction(stdCtx, h.store, s, h.logFor(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"suggestion": s,
		"updated":    updated,
	})
}
