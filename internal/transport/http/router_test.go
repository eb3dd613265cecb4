package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"byod/internal/cache"
	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/jwtsigner"
	"byod/internal/service/impl"
	"byod/internal/store"
	"byod/pkg/db"

	"github.com/google/uuid"
)

type testServer struct {
	handler http.Handler
	auth    *impl.AuthServiceImpl
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	gdb, err := db.OpenGorm(db.Config{Driver: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	priv, err := jwtsigner.GenerateBase64()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := jwtsigner.NewFromBase64(priv, "test", "byod-test")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	tokens := impl.NewTokenServiceEdDSA(impl.TokenConfig{AccessTTL: time.Hour}, signer)
	passwords := impl.NewPasswordServiceWithParams(impl.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	auth := impl.NewAuthServiceImpl(st, passwords, tokens)
	notifier := impl.NewNotificationServiceImpl(st, cache.NewMemory())
	requests := impl.NewAccessRequestServiceImpl(st, notifier)

	return &testServer{
		auth: auth,
		handler: NewRouter(Deps{
			Auth:               auth,
			Tokens:             tokens,
			Devices:            impl.NewDeviceServiceImpl(st, notifier),
			Requests:           requests,
			Notifications:      notifier,
			Dashboard:          impl.NewDashboardServiceImpl(st, notifier, requests),
			Audit:              impl.NewAuditServiceImpl(st),
			RateLimitPerMinute: rateLimit,
		}),
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// login creates the user and returns a bearer token obtained over HTTP.
func (s *testServer) login(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	if _, err := s.auth.CreateUser(context.Background(), nil, dto.CreateUserRequest{
		Username: username,
		Password: "password-" + username,
		Role:     string(role),
	}); err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Username: username, Password: "password-" + username})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var tr dto.TokenResponse
	decode(t, rec, &tr)
	return tr.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, want, rec.Body.String())
	}
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}

	rec = s.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var jwks struct {
		Keys []map[string]any `json:"keys"`
	}
	decode(t, rec, &jwks)
	if len(jwks.Keys) != 1 || jwks.Keys[0]["kid"] != "test" {
		t.Fatalf("unexpected jwks: %+v", jwks)
	}

	expectStatus(t, s.do(t, http.MethodGet, "/metrics", "", nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/dashboard", "", nil), http.StatusUnauthorized)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/dashboard", "garbage", nil), http.StatusUnauthorized)
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t, 0)
	s.login(t, "alice", domain.RoleStudent)

	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Username: "alice", Password: "nope"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"user": "alice"})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestRegisterApproveOverHTTP(t *testing.T) {
	s := newTestServer(t, 0)
	alice := s.login(t, "alice", domain.RoleStudent)
	bob := s.login(t, "bob", domain.RoleTeacher)
	carol := s.login(t, "carol", domain.RoleStudent)

	rec := s.do(t, http.MethodGet, "/v1/auth/me", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	var me dto.UserResponse
	decode(t, rec, &me)
	if me.Username != "alice" || me.Role != "student" {
		t.Fatalf("unexpected me: %+v", me)
	}

	rec = s.do(t, http.MethodPost, "/v1/devices", alice, dto.DeviceRegisterRequest{
		Name:            "Alice Laptop",
		DeviceType:      "laptop",
		MACAddress:      "02-00-00-00-00-aa",
		OperatingSystem: "linux",
	})
	expectStatus(t, rec, http.StatusCreated)
	var reg dto.DeviceRegisterResponse
	decode(t, rec, &reg)
	if reg.Outcome != "pending" || reg.AccessRequest == nil || reg.Device.MACAddress != "02:00:00:00:00:AA" {
		t.Fatalf("unexpected registration: %+v", reg)
	}
	reqPath := "/v1/access-requests/" + reg.AccessRequest.ID

	rec = s.do(t, http.MethodPost, "/v1/devices", carol, dto.DeviceRegisterRequest{
		Name:            "Carol Laptop",
		DeviceType:      "laptop",
		MACAddress:      "02:00:00:00:00:AA",
		OperatingSystem: "linux",
	})
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(t, http.MethodGet, "/v1/notifications/unread-count", bob, nil)
	expectStatus(t, rec, http.StatusOK)
	var badge map[string]int64
	decode(t, rec, &badge)
	if badge["count"] != 1 {
		t.Fatalf("badge = %v", badge)
	}

	rec = s.do(t, http.MethodGet, "/v1/access-requests", bob, nil)
	expectStatus(t, rec, http.StatusOK)
	var queue dto.AccessRequestListResponse
	decode(t, rec, &queue)
	if queue.Total != 1 || queue.Items[0].ID != reg.AccessRequest.ID {
		t.Fatalf("unexpected queue: %+v", queue)
	}
	expectStatus(t, s.do(t, http.MethodGet, "/v1/access-requests", alice, nil), http.StatusForbidden)

	expectStatus(t, s.do(t, http.MethodPost, reqPath+"/approve", alice, dto.ApproveRequest{}), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodPost, reqPath+"/approve", carol, dto.ApproveRequest{}), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodPost, reqPath+"/reject", bob, dto.RejectRequest{Reason: "  "}), http.StatusBadRequest)

	rec = s.do(t, http.MethodPost, reqPath+"/approve", bob, dto.ApproveRequest{Notes: "ok for class"})
	expectStatus(t, rec, http.StatusOK)
	var approved dto.AccessRequestResponse
	decode(t, rec, &approved)
	if approved.Status != "approved" || approved.Notes != "ok for class" {
		t.Fatalf("unexpected approval: %+v", approved)
	}
	expectStatus(t, s.do(t, http.MethodPost, reqPath+"/reject", bob, dto.RejectRequest{Reason: "late"}), http.StatusConflict)

	rec = s.do(t, http.MethodGet, "/v1/devices/"+reg.Device.ID, alice, nil)
	expectStatus(t, rec, http.StatusOK)
	var dev dto.DeviceResponse
	decode(t, rec, &dev)
	if dev.AccessStatus != "active" {
		t.Fatalf("device status = %s", dev.AccessStatus)
	}
	expectStatus(t, s.do(t, http.MethodGet, "/v1/devices/"+reg.Device.ID, carol, nil), http.StatusForbidden)

	rec = s.do(t, http.MethodGet, "/v1/notifications", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	var inbox dto.NotificationListResponse
	decode(t, rec, &inbox)
	if inbox.Total != 1 || inbox.Items[0].Type != "request_approved" {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
	expectStatus(t, s.do(t, http.MethodPost, "/v1/notifications/"+inbox.Items[0].ID+"/read", bob, nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/notifications/"+inbox.Items[0].ID+"/read", alice, nil), http.StatusNoContent)

	rec = s.do(t, http.MethodPost, "/v1/notifications/read-all", bob, nil)
	expectStatus(t, rec, http.StatusOK)
	var all dto.MarkAllReadResponse
	decode(t, rec, &all)
	if all.Updated != 1 {
		t.Fatalf("mark all read updated %d", all.Updated)
	}
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t, 0)
	bob := s.login(t, "bob", domain.RoleTeacher)

	expectStatus(t, s.do(t, http.MethodGet, "/v1/access-requests/not-a-uuid", bob, nil), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodPost, "/v1/access-requests/"+uuid.NewString()+"/approve", bob, nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/devices?compliant=maybe", bob, nil), http.StatusBadRequest)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/users", bob, nil), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodGet, "/v1/audit", bob, nil), http.StatusForbidden)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t, 0)
	root := s.login(t, "root", domain.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/v1/users", root, dto.CreateUserRequest{Username: "dave", Password: "long-enough", Role: "student"})
	expectStatus(t, rec, http.StatusCreated)
	var dave dto.UserResponse
	decode(t, rec, &dave)

	rec = s.do(t, http.MethodPost, "/v1/devices", root, dto.DeviceRegisterRequest{
		OwnerID:         dave.ID,
		Name:            "Dave Tablet",
		DeviceType:      "tablet",
		MACAddress:      "02:00:00:00:00:10",
		OperatingSystem: "android",
	})
	expectStatus(t, rec, http.StatusCreated)
	var reg dto.DeviceRegisterResponse
	decode(t, rec, &reg)
	if reg.Outcome != "auto_approved" || reg.Device.AccessStatus != "active" {
		t.Fatalf("unexpected admin registration: %+v", reg)
	}

	devPath := "/v1/devices/" + reg.Device.ID
	expectStatus(t, s.do(t, http.MethodPost, devPath+"/suspend", root, nil), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodPost, devPath+"/reactivate", root, nil), http.StatusOK)
	rec = s.do(t, http.MethodPost, devPath+"/compliance", root, dto.ComplianceRequest{Compliant: true})
	expectStatus(t, rec, http.StatusOK)
	var dev dto.DeviceResponse
	decode(t, rec, &dev)
	if !dev.ComplianceStatus || dev.AccessStatus != "active" {
		t.Fatalf("unexpected device: %+v", dev)
	}

	rec = s.do(t, http.MethodGet, "/v1/users?role=student", root, nil)
	expectStatus(t, rec, http.StatusOK)
	var users dto.UserListResponse
	decode(t, rec, &users)
	if users.Total != 1 || users.Items[0].Username != "dave" {
		t.Fatalf("unexpected users: %+v", users)
	}

	rec = s.do(t, http.MethodGet, "/v1/audit?action="+domain.ActionDeviceSuspend, root, nil)
	expectStatus(t, rec, http.StatusOK)
	var audit dto.AuditListResponse
	decode(t, rec, &audit)
	if audit.Total != 1 {
		t.Fatalf("unexpected audit: %+v", audit)
	}

	rec = s.do(t, http.MethodGet, "/v1/dashboard", root, nil)
	expectStatus(t, rec, http.StatusOK)
	var dash dto.DashboardResponse
	decode(t, rec, &dash)
	if dash.Admin == nil || dash.Admin.TotalDevices != 1 || dash.Admin.ComplianceRate != 100 {
		t.Fatalf("unexpected dashboard: %+v", dash.Admin)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		expectStatus(t, s.do(t, http.MethodGet, "/healthz", "", nil), http.StatusOK)
	}
	expectStatus(t, s.do(t, http.MethodGet, "/healthz", "", nil), http.StatusTooManyRequests)
}
