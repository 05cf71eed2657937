package middleware

import (
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskflow/pkg/httpcontext"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	h := Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mark("outer"), mark("inner"))
	h(&fasthttp.RequestCtx{})

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Errorf("unexpected order %s", got)
	}
}

func TestRecoverReturns500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Chain(func(*fasthttp.RequestCtx) { panic("boom") }, Recover(zap.New(core)))

	var ctx fasthttp.RequestCtx
	h(&ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusInternalServerError {
		t.Errorf("expected 500, got %d", ctx.Response.StatusCode())
	}
	if !strings.Contains(string(ctx.Response.Body()), `"INTERNAL"`) {
		t.Errorf("unexpected body %s", ctx.Response.Body())
	}
	if logs.Len() != 1 {
		t.Errorf("expected one panic log, got %d", logs.Len())
	}
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := Chain(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusNoContent) },
		AccessLog(zap.New(core)), RequestID())

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set(httpcontext.HeaderRequestID, "req-7")
	ctx.Request.SetRequestURI("/api/v1/tasks")
	h(&ctx)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one access log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-7" || fields["status"] != int64(fasthttp.StatusNoContent) {
		t.Errorf("unexpected fields %v", fields)
	}
}
