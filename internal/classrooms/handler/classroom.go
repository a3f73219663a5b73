package handler

import (
	"encoding/json"
	"net/http"

	"aula/internal/classrooms/service"
	reservationsservice "aula/internal/reservations/service"
	httputil "aula/pkg/http"
	"aula/pkg/logger"
	"aula/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ClassroomHandler struct {
	service      service.ClassroomService
	availability reservationsservice.AvailabilityService
	log          *logger.Logger
}

func NewClassroomHandler(
	service service.ClassroomService,
	availability reservationsservice.AvailabilityService,
	log *logger.Logger,
) *ClassroomHandler {
	return &ClassroomHandler{
		service:      service,
		availability: availability,
		log:          log,
	}
}

func (h *ClassroomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var classroom model.Classroom
	if err := json.NewDecoder(r.Body).Decode(&classroom); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), actor, &classroom); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, classroom)
}

func (h *ClassroomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	classrooms, err := h.service.GetAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, classrooms)
}

func (h *ClassroomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	classroom, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, classroom)
}

func (h *ClassroomHandler) SetBaseStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body struct {
		BaseStatus model.BaseStatus `json:"base_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.SetBaseStatus(r.Context(), actor, ps.ByName("id"), body.BaseStatus); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// GetOccupiedSlots returns the booked intervals of one classroom on one
// date, for schedule displays.
func (h *ClassroomHandler) GetOccupiedSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slots, err := h.availability.ListOccupiedSlots(r.Context(), ps.ByName("id"), date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, slots)
}

// CheckAvailability answers whether one classroom is free for the given
// slot under the booking-time rule.
func (h *ClassroomHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	slot, err := httputil.ExtractInterval(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	excludeID := r.URL.Query().Get("exclude_reservation_id")

	available, err := h.availability.CheckAvailability(r.Context(), ps.ByName("id"), date, slot, excludeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"available": available})
}

// FindAvailable lists every classroom free for the given slot under the
// discovery rule.
func (h *ClassroomHandler) FindAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.ExtractDate(r, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	slot, err := httputil.ExtractInterval(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	classrooms, err := h.availability.FindAvailableClassrooms(r.Context(), date, slot)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, classrooms)
}

func (h *ClassroomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/classrooms", h.Create)
	router.GET("/api/v1/classrooms", h.GetAll)
	router.GET("/api/v1/classrooms/available", h.FindAvailable)
	router.GET("/api/v1/classrooms/id/:id", h.GetByID)
	router.PATCH("/api/v1/classrooms/id/:id/status", h.SetBaseStatus)
	router.GET("/api/v1/classrooms/id/:id/slots", h.GetOccupiedSlots)
	router.GET("/api/v1/classrooms/id/:id/availability", h.CheckAvailability)
}
