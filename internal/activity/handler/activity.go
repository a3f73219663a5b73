package handler

import (
	"net/http"

	"aula/internal/activity/service"
	httputil "aula/pkg/http"
	"aula/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ActivityHandler struct {
	recorder *service.Recorder
	log      *logger.Logger
}

func NewActivityHandler(recorder *service.Recorder, log *logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		recorder: recorder,
		log:      log,
	}
}

func (h *ActivityHandler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, total, err := h.recorder.ListByUser(r.Context(), actor, ps.ByName("user_id"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, entries, total, limit, offset)
}

func (h *ActivityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/users/:user_id/activity", h.GetByUser)
}
