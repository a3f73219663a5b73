package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "aula/pkg/errors"
	httputil "aula/pkg/http"
	"aula/pkg/logger"
	"aula/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// ────────────────────────────────────────────────
// Mock service
// ────────────────────────────────────────────────

type mockReservationService struct {
	createFunc  func(ctx context.Context, actor model.Actor, r *model.Reservation) error
	approveFunc func(ctx context.Context, actor model.Actor, id string) error
	cancelFunc  func(ctx context.Context, actor model.Actor, id string) error
	getByIDFunc func(ctx context.Context, id string) (*model.Reservation, error)
}

func (m *mockReservationService) Create(ctx context.Context, actor model.Actor, r *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, actor, r)
	}
	return nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Reservation{ID: id}, nil
}

func (m *mockReservationService) GetAll(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockReservationService) GetByUser(ctx context.Context, actor model.Actor, userID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockReservationService) Approve(ctx context.Context, actor model.Actor, id string) error {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, actor, id)
	}
	return nil
}

func (m *mockReservationService) Reject(ctx context.Context, actor model.Actor, id string) error {
	return nil
}

func (m *mockReservationService) Cancel(ctx context.Context, actor model.Actor, id string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, actor, id)
	}
	return nil
}

func (m *mockReservationService) Update(ctx context.Context, actor model.Actor, id string, updates *model.ReservationUpdate) error {
	return nil
}

func newRouter(svc *mockReservationService) *httprouter.Router {
	router := httprouter.New()
	NewReservationHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func asFaculty(req *http.Request) *http.Request {
	req.Header.Set(httputil.HeaderUserID, "prof-1")
	req.Header.Set(httputil.HeaderUserRole, "faculty")
	return req
}

const createBody = `{
	"classroom_id": "room-101",
	"date": "2025-06-01",
	"slot": {"start_time": "10:00", "end_time": "12:00"},
	"purpose": "Linear algebra lecture"
}`

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestCreate_Created(t *testing.T) {
	var gotActor model.Actor
	svc := &mockReservationService{
		createFunc: func(_ context.Context, actor model.Actor, r *model.Reservation) error {
			gotActor = actor
			r.ID = "res-1"
			r.Status = model.StatusPending
			return nil
		},
	}
	router := newRouter(svc)

	req := asFaculty(httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(createBody)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	if gotActor.UserID != "prof-1" || gotActor.Role != model.RoleFaculty {
		t.Errorf("actor = %+v, want prof-1/faculty", gotActor)
	}

	var resp struct {
		Data model.Reservation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Data.ID != "res-1" || resp.Data.Status != model.StatusPending {
		t.Errorf("unexpected payload: %+v", resp.Data)
	}
}

func TestCreate_MissingIdentity(t *testing.T) {
	router := newRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(createBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	router := newRouter(&mockReservationService{})

	req := asFaculty(httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{"date": 17}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"forbidden", apperrors.Forbidden("nope"), http.StatusForbidden, apperrors.CodeForbidden},
		{"conflict", apperrors.Conflict("slot taken"), http.StatusConflict, apperrors.CodeConflict},
		{"invalid state", apperrors.InvalidState("cannot approve", nil), http.StatusConflict, apperrors.CodeInvalidState},
		{"busy", apperrors.Busy("try again"), http.StatusServiceUnavailable, apperrors.CodeBusy},
		{"validation", apperrors.Validation("bad input", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockReservationService{
				createFunc: func(context.Context, model.Actor, *model.Reservation) error {
					return tc.err
				},
			}
			router := newRouter(svc)

			req := asFaculty(httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(createBody)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var resp httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestBusy_SetsRetryAfter(t *testing.T) {
	svc := &mockReservationService{
		createFunc: func(context.Context, model.Actor, *model.Reservation) error {
			return apperrors.Busy("busy")
		},
	}
	router := newRouter(svc)

	req := asFaculty(httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(createBody)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on busy response")
	}
}

func TestGetAll_RequiresIdentity(t *testing.T) {
	router := newRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestApprove_NoContent(t *testing.T) {
	var gotID string
	svc := &mockReservationService{
		approveFunc: func(_ context.Context, _ model.Actor, id string) error {
			gotID = id
			return nil
		},
	}
	router := newRouter(svc)

	req := asFaculty(httptest.NewRequest(http.MethodPost, "/api/v1/reservations/id/res-1/approve", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if gotID != "res-1" {
		t.Errorf("id = %s, want res-1", gotID)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockReservationService{
		getByIDFunc: func(_ context.Context, id string) (*model.Reservation, error) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/id/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
