package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	settingsUC "github.com/fastygo/taskflow/usecase/settings"
)

type SettingsHandler struct {
	baseHandler
	service *settingsUC.Service
}

func NewSettingsHandler(service *settingsUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		service:     service,
	}
}

// @Summary Read settings and storage usage
// @Tags settings
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	usage, err := h.service.StorageUsage(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"settings": h.service.Load(stdCtx),
		"storage":  usage,
	})
}

// @Summary Update settings
// @Tags settings
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(ctx *fasthttp.RequestCtx) {
	var patch domain.SettingsPatch
	if !h.decodeBody(ctx, &patch) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	settings, err := h.service.Update(stdCtx, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, settings)
}

// @Summary Wipe all data
// @Tags settings
// @Router /api/v1/data [delete]
func (h *SettingsHandler) Wipe(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.service.Wipe(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
