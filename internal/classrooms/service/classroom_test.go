package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	classroomserrors "aula/internal/classrooms/errors"
	"aula/pkg/config"
	apperrors "aula/pkg/errors"
	"aula/pkg/logger"
	"aula/pkg/model"
)

type fakeClassroomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Classroom
	seq   int
}

func newFakeClassroomRepo() *fakeClassroomRepo {
	return &fakeClassroomRepo{rooms: make(map[string]*model.Classroom)}
}

func (f *fakeClassroomRepo) Create(_ context.Context, classroom *model.Classroom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rooms {
		if existing.Name == classroom.Name {
			return classroomserrors.ErrDuplicateName
		}
	}
	f.seq++
	classroom.ID = fmt.Sprintf("room-%d", f.seq)
	clone := *classroom
	f.rooms[classroom.ID] = &clone
	return nil
}

func (f *fakeClassroomRepo) FindByID(_ context.Context, id string) (*model.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, classroomserrors.ErrNotFound
	}
	clone := *room
	return &clone, nil
}

func (f *fakeClassroomRepo) FindAll(_ context.Context) ([]*model.Classroom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Classroom, 0, len(f.rooms))
	for _, room := range f.rooms {
		clone := *room
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeClassroomRepo) UpdateBaseStatus(_ context.Context, id string, status model.BaseStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return classroomserrors.ErrNotFound
	}
	room.BaseStatus = status
	return nil
}

func newService(repo *fakeClassroomRepo) ClassroomService {
	return NewClassroomService(repo, &config.Config{Log: logger.Discard()})
}

var (
	admin   = model.Actor{UserID: "admin-1", Role: model.RoleAdmin}
	faculty = model.Actor{UserID: "prof-1", Role: model.RoleFaculty}
)

func TestCreate_AdminOnly(t *testing.T) {
	svc := newService(newFakeClassroomRepo())
	ctx := context.Background()

	room := &model.Classroom{Name: "R101", Building: "Main", Capacity: 40}
	if err := svc.Create(ctx, faculty, room); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("faculty create: err = %v, want FORBIDDEN", err)
	}

	if err := svc.Create(ctx, admin, room); err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if room.ID == "" {
		t.Error("expected an assigned ID")
	}
	if room.BaseStatus != model.ClassroomAvailable {
		t.Errorf("BaseStatus = %s, want default %s", room.BaseStatus, model.ClassroomAvailable)
	}
}

func TestCreate_SanitizesAndValidates(t *testing.T) {
	svc := newService(newFakeClassroomRepo())
	ctx := context.Background()

	room := &model.Classroom{Name: "  R101\t\n", Building: " Main  Hall ", Capacity: 40}
	if err := svc.Create(ctx, admin, room); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if room.Name != "R101" {
		t.Errorf("Name = %q, want trimmed %q", room.Name, "R101")
	}
	if room.Building != "Main Hall" {
		t.Errorf("Building = %q, want %q", room.Building, "Main Hall")
	}

	cases := []struct {
		name string
		room model.Classroom
	}{
		{"empty name", model.Classroom{Name: "   ", Building: "Main", Capacity: 40}},
		{"zero capacity", model.Classroom{Name: "R102", Building: "Main", Capacity: 0}},
		{"negative capacity", model.Classroom{Name: "R103", Building: "Main", Capacity: -5}},
		{"unknown base status", model.Classroom{Name: "R104", Building: "Main", Capacity: 40, BaseStatus: "Closed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room := tc.room
			if err := svc.Create(ctx, admin, &room); !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("err = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	svc := newService(newFakeClassroomRepo())
	ctx := context.Background()

	if err := svc.Create(ctx, admin, &model.Classroom{Name: "R101", Building: "Main", Capacity: 40}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := svc.Create(ctx, admin, &model.Classroom{Name: "R101", Building: "Annex", Capacity: 20})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("err = %v, want CONFLICT", err)
	}
}

func TestSetBaseStatus(t *testing.T) {
	repo := newFakeClassroomRepo()
	svc := newService(repo)
	ctx := context.Background()

	room := &model.Classroom{Name: "R101", Building: "Main", Capacity: 40}
	if err := svc.Create(ctx, admin, room); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.SetBaseStatus(ctx, faculty, room.ID, model.ClassroomUnavailable); !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("faculty update: err = %v, want FORBIDDEN", err)
	}

	if err := svc.SetBaseStatus(ctx, admin, room.ID, model.ClassroomUnavailable); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	got, err := svc.GetByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.BaseStatus != model.ClassroomUnavailable {
		t.Errorf("BaseStatus = %s, want %s", got.BaseStatus, model.ClassroomUnavailable)
	}

	if err := svc.SetBaseStatus(ctx, admin, room.ID, "Closed"); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("unknown status: err = %v, want VALIDATION_ERROR", err)
	}
	if err := svc.SetBaseStatus(ctx, admin, "missing", model.ClassroomAvailable); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing room: err = %v, want NOT_FOUND", err)
	}
}

func TestGetByID_Missing(t *testing.T) {
	svc := newService(newFakeClassroomRepo())

	if _, err := svc.GetByID(context.Background(), "nope"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
	if _, err := svc.GetByID(context.Background(), ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}
