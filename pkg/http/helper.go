package http

import (
	"net/http"
	"strconv"

	"aula/pkg/config"
	apperrors "aula/pkg/errors"
	"aula/pkg/model"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// ExtractActor reads the pre-authenticated caller identity from the
// request headers. The engine trusts the values; authentication happened
// upstream.
func ExtractActor(r *http.Request) (model.Actor, error) {
	userID := r.Header.Get(HeaderUserID)
	role := model.Role(r.Header.Get(HeaderUserRole))

	if userID == "" {
		return model.Actor{}, apperrors.InvalidInput("missing " + HeaderUserID + " header")
	}
	if !role.Valid() {
		return model.Actor{}, apperrors.InvalidInput("missing or unknown " + HeaderUserRole + " header")
	}
	return model.Actor{UserID: userID, Role: role}, nil
}

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// ExtractDate parses the named query parameter as a calendar date.
func ExtractDate(r *http.Request, param string) (model.Date, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return "", apperrors.InvalidInput("missing " + param + " parameter")
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		return "", apperrors.InvalidInput("invalid " + param + " parameter: " + raw)
	}
	return date, nil
}

// ExtractInterval parses start/end query parameters ("HH:MM") into a
// half-open interval.
func ExtractInterval(r *http.Request) (model.Interval, error) {
	query := r.URL.Query()

	start, err := model.ParseTimeOfDay(query.Get("start"))
	if err != nil {
		return model.Interval{}, apperrors.InvalidInput("invalid start parameter: " + query.Get("start"))
	}
	end, err := model.ParseTimeOfDay(query.Get("end"))
	if err != nil {
		return model.Interval{}, apperrors.InvalidInput("invalid end parameter: " + query.Get("end"))
	}

	slot := model.Interval{Start: start, End: end}
	if !slot.Valid() {
		return model.Interval{}, apperrors.InvalidInput("end must be after start")
	}
	return slot, nil
}
