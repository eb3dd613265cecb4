package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"byod/internal/domain"
	obsmw "byod/internal/observability/middleware"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrDuplicateMAC, http.StatusConflict},
		{domain.ErrDuplicateDeviceName, http.StatusBadRequest},
		{domain.ErrRequestAlreadyResolved, http.StatusConflict},
		{domain.ErrDeviceAccessDenied, http.StatusForbidden},
		{domain.ErrNotificationNotFound, http.StatusNotFound},
		{errBadQuery, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Fatalf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestInternalErrorCarriesRequestID(t *testing.T) {
	h := obsmw.WithRequestAndTrace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeServiceError(w, r, errors.New("db exploded"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/devices", nil)
	req.Header.Set(obsmw.HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "internal error" || body["requestId"] != "req-42" {
		t.Fatalf("unexpected body: %v", body)
	}
}
