package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase/query"
	taskUC "github.com/fastygo/taskflow/usecase/task"
)

type brokenRepo struct{}

func (brokenRepo) LoadTasks(context.Context) ([]domain.Task, error)         { return nil, nil }
func (brokenRepo) LoadAnalytics(context.Context) (*domain.Analytics, error) { return nil, nil }
func (brokenRepo) SaveAnalytics(context.Context, domain.Analytics) error    { return nil }
func (brokenRepo) SaveTasks(context.Context, []domain.Task) error {
	return errors.New("disk full")
}

func TestCreateReportsStorageFailureWithTask(t *testing.T) {
	store, err := taskUC.New(context.Background(), brokenRepo{}, nil)
	if err != nil {
		t.Fatalf("task.New failed: %v", err)
	}
	h := NewTaskHandler(store, query.New(), nil, nil, httpcontext.NewAdapter(time.Second), nil)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(http.MethodPost)
	ctx.Request.SetBodyString(`{"title":"Water plants"}`)
	h.CreateTask(&ctx)

	if ctx.Response.StatusCode() != http.StatusInsufficientStorage {
		t.Fatalf("expected 507, got %d", ctx.Response.StatusCode())
	}
	var body struct {
		Code string      `json:"code"`
		Data domain.Task `json:"data"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("invalid body %q: %v", ctx.Response.Body(), err)
	}
	if body.Code != string(domain.ErrCodeStorage) || body.Data.Title != "Water plants" {
		t.Errorf("unexpected body %+v", body)
	}
	if store.Len() != 1 || !store.Dirty() {
		t.Error("the task must stay in memory and the store must be dirty")
	}
	if ctx.Response.Header.Peek(httpcontext.HeaderRequestID) == nil {
		t.Error("expected a request id header")
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{domain.Invalidf("bad"), http.StatusBadRequest},
		{domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{domain.ErrNotArray, http.StatusUnprocessableEntity},
		{domain.StorageFailure(errors.New("io")), http.StatusInsufficientStorage},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if status, _ := mapError(tc.err); status != tc.status {
			t.Errorf("%v: want %d, got %d", tc.err, tc.status, status)
		}
	}
}

func TestListParams(t *testing.T) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Parse("filter=today&category=work&category=health,learning&overdue=true&q=Milk&sort=priority&due_to=2024-06-30")

	params, err := listParams(args, time.UTC)
	if err != nil {
		t.Fatalf("listParams failed: %v", err)
	}
	if params.Basic != query.FilterDueToday || params.Sort != query.SortPriority || params.Search != "Milk" {
		t.Errorf("unexpected params %+v", params)
	}
	if len(params.Advanced.Categories) != 3 || params.Advanced.IsOverdue == nil || !*params.Advanced.IsOverdue {
		t.Errorf("unexpected advanced filter %+v", params.Advanced)
	}
	if params.Advanced.DueTo == nil || params.Advanced.DueTo.Day() != 30 || params.Advanced.DueTo.Hour() != 23 {
		t.Errorf("unexpected due bound %v", params.Advanced.DueTo)
	}
}
