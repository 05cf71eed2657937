package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, data interface{}, meta transport.ListMeta) {
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(data, meta))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logFor(ctx).Error("request failed", zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

// respondMutation reports the result of a store mutation. A storage failure
// still returns the entity, which lives on in memory.
func (h baseHandler) respondMutation(ctx *fasthttp.RequestCtx, status int, data interface{}, err error) {
	if err == nil {
		h.respondSuccess(ctx, status, data)
		return
	}
	if domain.IsDomainError(err, domain.ErrCodeStorage) && data != nil {
		code, name := mapError(err)
		h.logFor(ctx).Warn("change kept in memory only", zap.Error(err))
		h.respondJSON(ctx, code, transport.NewPartial(name, err.Error(), data))
		return
	}
	h.respondError(ctx, err)
}

func (h baseHandler) decodeBody(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), domain.ErrInvalidPayload.Error(), nil))
		return false
	}
	return true
}

func (h baseHandler) pathParam(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	value, _ := ctx.UserValue(name).(string)
	if value == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing "+name, nil))
		return "", false
	}
	return value, true
}

func (h baseHandler) logFor(ctx *fasthttp.RequestCtx) *zap.Logger {
	id := string(ctx.Response.Header.Peek("X-Request-ID"))
	if id == "" {
		return h.logger
	}
	return logger.WithRequestID(logger.ContextWithRequestID(context.Background(), id), h.logger)
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType, string(code)
	case domain.ErrCodeFormat:
		return http.StatusUnprocessableEntity, string(code)
	case domain.ErrCodeStorage:
		return http.StatusInsufficientStorage, string(code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
