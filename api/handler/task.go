package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase/query"
	taskUC "github.com/fastygo/taskflow/usecase/task"
)

// Preferences supplies the draft defaults chosen by the user.
type Preferences interface {
	Load(ctx context.Context) domain.Settings
}

// Discarder drops the tracker and session log of a deleted task.
type Discarder interface {
	Discard(ctx context.Context, taskID string) error
}

type TaskHandler struct {
	baseHandler
	store    *taskUC.Store
	engine   *query.Engine
	prefs    Preferences
	trackers Discarder
}

func NewTaskHandler(store *taskUC.Store, engine *query.Engine, prefs Preferences, trackers Discarder, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
		engine:      engine,
		prefs:       prefs,
		trackers:    trackers,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	params, err := listParams(ctx.QueryArgs(), h.store.Location())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	all := h.store.List(stdCtx)
	tasks := h.engine.Project(all, params)
	h.respondList(ctx, tasks, transport.ListMeta{Total: len(all), Returned: len(tasks)})
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.store.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if !h.decodeBody(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	draft, err := req.Draft(h.store.Location())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if h.prefs != nil {
		h.prefs.Load(stdCtx).ApplyDefaults(&draft)
	}

	created, err := h.store.Create(stdCtx, draft)
	h.respondMutation(ctx, http.StatusCreated, created, err)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	var req transport.TaskUpdateRequest
	if !h.decodeBody(ctx, &req) {
		return
	}
	patch, err := req.Patch(h.store.Location())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.store.Update(stdCtx, id, patch)
	h.respondMutation(ctx, http.StatusOK, updated, err)
}

// @Summary Toggle completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	toggled, err := h.store.ToggleCompletion(stdCtx, id)
	h.respondMutation(ctx, http.StatusOK, toggled, err)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.store.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	if h.trackers != nil {
		if err := h.trackers.Discard(stdCtx, id); err != nil {
			h.respondError(ctx, err)
			return
		}
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Sidebar counts
// @Tags tasks
// @Router /api/v1/counts [get]
func (h *TaskHandler) GetCounts(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	h.respondSuccess(ctx, http.StatusOK, query.Count(h.store.List(stdCtx)))
}

// @Summary Analytics snapshot and insights
// @Tags analytics
// @Router /api/v1/analytics [get]
func (h *TaskHandler) GetAnalytics(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.AnalyticsResponse{
		Snapshot: h.store.Analytics(),
		Insights: h.store.Insights(),
	})
}

// listParams turns the query string into a view configuration. List
// filters accept repeated keys and comma-separated values.
func listParams(args *fasthttp.Args, loc *time.Location) (query.Params, error) {
	from, to, err := query.ParseDateRange(string(args.Peek("due_from")), string(args.Peek("due_to")), loc)
	if err != nil {
		return query.Params{}, err
	}
	return query.Params{
		Basic: query.ParseBasicFilter(string(args.Peek("filter"))),
		Advanced: query.AdvancedFilter{
			Categories:     query.ParseCategories(multi(args, "category")...),
			Priorities:     query.ParsePriorities(multi(args, "priority")...),
			Statuses:       query.ParseStatuses(multi(args, "status")...),
			Tags:           query.SplitList(multi(args, "tag")...),
			DueFrom:        from,
			DueTo:          to,
			HasDescription: query.ParseFlag(string(args.Peek("has_description"))),
			IsOverdue:      query.ParseFlag(string(args.Peek("overdue"))),
		},
		Search: string(args.Peek("q")),
		Sort:   query.ParseSortKey(string(args.Peek("sort"))),
	}, nil
}

func multi(args *fasthttp.Args, key string) []string {
	raw := args.PeekMulti(key)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, string(v))
	}
	return out
}
