package impl

import (
	"context"
	"testing"
	"time"

	"byod/internal/cache"
	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/store"
	"byod/pkg/db"

	"github.com/google/uuid"
)

type testEnv struct {
	store     *store.Store
	cache     *cache.Memory
	notifier  *NotificationServiceImpl
	devices   *DeviceServiceImpl
	requests  *AccessRequestServiceImpl
	dashboard *DashboardServiceImpl
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	// one private in-memory database per test
	gdb, err := db.OpenGorm(db.Config{Driver: "sqlite", DSN: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	c := cache.NewMemory()
	notifier := NewNotificationServiceImpl(st, c)
	requests := NewAccessRequestServiceImpl(st, notifier)
	return &testEnv{
		store:     st,
		cache:     c,
		notifier:  notifier,
		devices:   NewDeviceServiceImpl(st, notifier),
		requests:  requests,
		dashboard: NewDashboardServiceImpl(st, notifier, requests),
	}
}

var userSeq time.Duration

func (e *testEnv) user(t *testing.T, username string, role domain.Role) domain.Actor {
	t.Helper()
	userSeq++
	now := time.Now().UTC().Add(userSeq * time.Millisecond)
	u := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		FullName:  username,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return domain.ActorFromUser(u)
}

func (e *testEnv) disable(t *testing.T, a domain.Actor) {
	t.Helper()
	if err := e.store.Users().SetDisabled(context.Background(), a.ID, true); err != nil {
		t.Fatalf("disable: %v", err)
	}
}

var macSeq byte

// nextMAC hands out distinct unicast addresses.
func nextMAC() string {
	macSeq++
	return "02:00:00:00:00:" + hexByte(macSeq)
}

func hexByte(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}

func deviceReq(name string) dto.DeviceRegisterRequest {
	return dto.DeviceRegisterRequest{
		Name:            name,
		DeviceType:      "laptop",
		MACAddress:      nextMAC(),
		OperatingSystem: "linux",
	}
}

func (e *testEnv) register(t *testing.T, actor domain.Actor, r dto.DeviceRegisterRequest) *dto.DeviceRegisterResponse {
	t.Helper()
	resp, err := e.devices.Register(context.Background(), actor, r)
	if err != nil {
		t.Fatalf("register %s: %v", r.Name, err)
	}
	return resp
}

func (e *testEnv) pendingRequest(t *testing.T, actor domain.Actor, name string) domain.AccessRequestID {
	t.Helper()
	resp := e.register(t, actor, deviceReq(name))
	if resp.AccessRequest == nil {
		t.Fatalf("expected pending request for %s, outcome %s", name, resp.Outcome)
	}
	return uuid.MustParse(resp.AccessRequest.ID)
}

func (e *testEnv) deviceStatus(t *testing.T, id string) domain.AccessStatus {
	t.Helper()
	d, err := e.store.Devices().GetByID(context.Background(), uuid.MustParse(id))
	if err != nil {
		t.Fatalf("load device: %v", err)
	}
	return d.AccessStatus
}

func (e *testEnv) notifications(t *testing.T, userID uuid.UUID) []*domain.Notification {
	t.Helper()
	ns, _, err := e.store.Notifications().List(context.Background(), userID, 0, 100)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return ns
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := e.store.DB.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}
