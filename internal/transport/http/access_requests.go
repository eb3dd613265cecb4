package http

import (
	"context"
	"net/http"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/httpx"

	"github.com/go-chi/chi/v5"
)

func (h *handler) requestQueue(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.Requests.Queue(r.Context(), actorFrom(r.Context()), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) myRequests(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.Requests.Mine(r.Context(), actorFrom(r.Context()), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) getRequest(w http.ResponseWriter, r *http.Request) {
	h.withRequest(w, r, h.Requests.Get)
}

func (h *handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	var body dto.ApproveRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withRequest(w, r, func(ctx context.Context, actor domain.Actor, id domain.AccessRequestID) (*dto.AccessRequestResponse, error) {
		return h.Requests.Approve(ctx, actor, id, body.Notes)
	})
}

func (h *handler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	var body dto.RejectRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.withRequest(w, r, func(ctx context.Context, actor domain.Actor, id domain.AccessRequestID) (*dto.AccessRequestResponse, error) {
		return h.Requests.Reject(ctx, actor, id, body.Reason)
	})
}

func (h *handler) withRequest(w http.ResponseWriter, r *http.Request, fn func(context.Context, domain.Actor, domain.AccessRequestID) (*dto.AccessRequestResponse, error)) {
	id, err := domain.ParseID(chi.URLParam(r, "requestID"))
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
