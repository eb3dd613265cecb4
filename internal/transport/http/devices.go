package http

import (
	"context"
	"net/http"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/httpx"

	"github.com/go-chi/chi/v5"
)

func (h *handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	var req dto.DeviceRegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.Devices.Register(r.Context(), actorFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *handler) listDevices(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	compliant, err := boolFromQuery(r, "compliant")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := h.Devices.List(r.Context(), actorFrom(r.Context()), dto.DeviceFilter{
		Search:          q.Get("search"),
		DeviceType:      q.Get("deviceType"),
		OperatingSystem: q.Get("operatingSystem"),
		AccessStatus:    q.Get("accessStatus"),
		Compliant:       compliant,
		PageRequest:     page,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) getDevice(w http.ResponseWriter, r *http.Request) {
	h.withDevice(w, r, h.Devices.Get)
}

func (h *handler) suspendDevice(w http.ResponseWriter, r *http.Request) {
	h.withDevice(w, r, h.Devices.Suspend)
}

func (h *handler) reactivateDevice(w http.ResponseWriter, r *http.Request) {
	h.withDevice(w, r, h.Devices.Reactivate)
}

func (h *handler) setCompliance(w http.ResponseWriter, r *http.Request) {
	var req dto.ComplianceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withDevice(w, r, func(ctx context.Context, actor domain.Actor, id domain.DeviceID) (*dto.DeviceResponse, error) {
		return h.Devices.SetCompliance(ctx, actor, id, req.Compliant)
	})
}

func (h *handler) withDevice(w http.ResponseWriter, r *http.Request, fn func(context.Context, domain.Actor, domain.DeviceID) (*dto.DeviceResponse, error)) {
	id, err := domain.ParseID(chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := fn(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
