package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/interchange"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	taskUC "github.com/fastygo/taskflow/usecase/task"
)

type InterchangeHandler struct {
	baseHandler
	store *taskUC.Store
	codec *interchange.Codec
	now   func() time.Time
}

func NewInterchangeHandler(store *taskUC.Store, codec *interchange.Codec, adapter *httpcontext.Adapter, logger *zap.Logger) *InterchangeHandler {
	if codec == nil {
		codec = interchange.New()
	}
	return &InterchangeHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
		codec:       codec,
		now:         time.Now,
	}
}

// @Summary Export all tasks
// @Tags interchange
// @Router /api/v1/export [get]
func (h *InterchangeHandler) Export(ctx *fasthttp.RequestCtx) {
	raw := string(ctx.QueryArgs().Peek("format"))
	if raw == "" {
		raw = string(interchange.FormatJSON)
	}
	format, err := interchange.ParseFormat(raw)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var buf bytes.Buffer
	if err := h.codec.Encode(&buf, format, h.store.List(stdCtx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.Response.Header.SetContentType(format.ContentType() + "; charset=utf-8")
	ctx.Response.Header.Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", interchange.FileName(format, h.now().In(h.store.Location()))))
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(buf.Bytes())
}

// @Summary Import tasks from a JSON or CSV file
// @Tags interchange
// @Router /api/v1/import [post]
func (h *InterchangeHandler) Import(ctx *fasthttp.RequestCtx) {
	contentType, filename, body, err := h.upload(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if closer, ok := body.(io.Closer); ok {
		defer closer.Close()
	}

	records, format, err := h.codec.Import(contentType, filename, body)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	imported, err := h.store.Import(stdCtx, records)
	h.respondMutation(ctx, http.StatusOK, transport.ImportResponse{
		Format:   string(format),
		Imported: len(imported),
		Tasks:    imported,
	}, err)
}

// upload accepts either a raw body typed by Content-Type or a multipart form
// with a "file" field.
func (h *InterchangeHandler) upload(ctx *fasthttp.RequestCtx) (string, string, io.Reader, error) {
	contentType := string(ctx.Request.Header.ContentType())
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		filename := string(ctx.QueryArgs().Peek("filename"))
		return contentType, filename, bytes.NewReader(ctx.PostBody()), nil
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return "", "", nil, domain.WrapError(domain.ErrCodeFormat, "failed to read file", err)
	}
	file, err := header.Open()
	if err != nil {
		return "", "", nil, domain.WrapError(domain.ErrCodeFormat, "failed to read file", err)
	}
	return header.Header.Get("Content-Type"), header.Filename, file, nil
}
