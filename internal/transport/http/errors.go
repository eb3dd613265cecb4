package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/httpx"
	"byod/internal/observability/logging"
	obsmw "byod/internal/observability/middleware"
	"byod/internal/service/impl"
)

var errBadQuery = fmt.Errorf("%w: bad query parameter", domain.ErrValidation)

func statusFor(err error) int {
	switch {
	case errors.Is(err, httpx.ErrBadJSON):
		return http.StatusBadRequest
	case errors.Is(err, impl.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrDuplicateMAC):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps a service error onto its status code. Internal
// errors are logged and never shown to the client; the client gets the
// request id to quote instead.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		httpx.WriteJSON(w, status, map[string]string{
			"error":     "internal error",
			"requestId": obsmw.RequestIDFromContext(r.Context()),
		})
		return
	}
	httpx.WriteError(w, status, err.Error())
}

func pageFromQuery(r *http.Request) (dto.PageRequest, error) {
	q := r.URL.Query()
	var p dto.PageRequest
	var err error
	if v := q.Get("page"); v != "" {
		if p.Page, err = strconv.Atoi(v); err != nil {
			return p, errBadQuery
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if p.PageSize, err = strconv.Atoi(v); err != nil {
			return p, errBadQuery
		}
	}
	return p, nil
}

func boolFromQuery(r *http.Request, key string) (*bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, errBadQuery
	}
	return &b, nil
}
