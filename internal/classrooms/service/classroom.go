package service

import (
	"context"
	"errors"

	classroomserrors "aula/internal/classrooms/errors"
	"aula/internal/classrooms/repository"
	"aula/pkg/config"
	apperrors "aula/pkg/errors"
	"aula/pkg/model"
	"aula/pkg/sanitizer"
)

type ClassroomService interface {
	Create(ctx context.Context, actor model.Actor, classroom *model.Classroom) error
	GetByID(ctx context.Context, id string) (*model.Classroom, error)
	GetAll(ctx context.Context) ([]*model.Classroom, error)
	SetBaseStatus(ctx context.Context, actor model.Actor, id string, status model.BaseStatus) error
}

type classroomService struct {
	repo repository.ClassroomRepository
	cfg  *config.Config
}

func NewClassroomService(repo repository.ClassroomRepository, cfg *config.Config) ClassroomService {
	return &classroomService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *classroomService) Create(ctx context.Context, actor model.Actor, classroom *model.Classroom) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only administrators can manage classrooms")
	}

	classroom.ID = ""
	classroom.Name = sanitizer.SanitizeName(classroom.Name)
	classroom.Building = sanitizer.SanitizeName(classroom.Building)
	if classroom.BaseStatus == "" {
		classroom.BaseStatus = model.ClassroomAvailable
	}

	if classroom.Name == "" {
		return apperrors.Validation("Classroom name is required", nil)
	}
	if classroom.Capacity <= 0 {
		return apperrors.Validation("Classroom capacity must be positive", map[string]any{
			"capacity": classroom.Capacity,
		})
	}
	if classroom.BaseStatus != model.ClassroomAvailable && classroom.BaseStatus != model.ClassroomUnavailable {
		return apperrors.Validation("Unknown base status", map[string]any{
			"base_status": classroom.BaseStatus,
		})
	}

	if err := s.repo.Create(ctx, classroom); err != nil {
		if errors.Is(err, classroomserrors.ErrDuplicateName) {
			return apperrors.Conflict("A classroom with this name already exists")
		}
		s.cfg.Log.Error("Failed to create classroom", "name", classroom.Name, "error", err)
		return apperrors.Internal("Failed to create classroom", err)
	}

	s.cfg.Log.Info("Classroom created", "id", classroom.ID, "name", classroom.Name)
	return nil
}

func (s *classroomService) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Classroom ID cannot be empty")
	}

	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, classroomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Classroom", id)
		}
		return nil, apperrors.Internal("Failed to retrieve classroom", err)
	}

	return classroom, nil
}

func (s *classroomService) GetAll(ctx context.Context) ([]*model.Classroom, error) {
	classrooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list classrooms", "error", err)
		return nil, apperrors.Internal("Failed to retrieve classrooms", err)
	}
	return classrooms, nil
}

func (s *classroomService) SetBaseStatus(ctx context.Context, actor model.Actor, id string, status model.BaseStatus) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only administrators can manage classrooms")
	}
	if status != model.ClassroomAvailable && status != model.ClassroomUnavailable {
		return apperrors.Validation("Unknown base status", map[string]any{"base_status": status})
	}

	if err := s.repo.UpdateBaseStatus(ctx, id, status); err != nil {
		if errors.Is(err, classroomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Classroom", id)
		}
		s.cfg.Log.Error("Failed to update classroom status", "id", id, "error", err)
		return apperrors.Internal("Failed to update classroom status", err)
	}

	s.cfg.Log.Info("Classroom base status updated", "id", id, "base_status", status)
	return nil
}
