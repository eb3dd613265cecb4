package http

import (
	"net/http"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/httpx"

	"github.com/go-chi/chi/v5"
)

func (h *handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.Notifications.List(r.Context(), actorFrom(r.Context()).ID, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// unreadCount backs the polled notification badge.
func (h *handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notifications.UnreadCount(r.Context(), actorFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.UnreadCountResponse{Count: n})
}

func (h *handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "notificationID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.Notifications.MarkRead(r.Context(), actorFrom(r.Context()).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Notifications.MarkAllRead(r.Context(), actorFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.MarkAllReadResponse{Updated: n})
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.Dashboard.Summary(r.Context(), actorFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) auditLog(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := h.Audit.List(r.Context(), actorFrom(r.Context()), dto.AuditFilter{
		ActorID:     q.Get("actorId"),
		Action:      q.Get("action"),
		PageRequest: page,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
