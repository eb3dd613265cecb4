package impl

import (
	"context"
	"errors"
	"testing"

	"byod/internal/cache"
	"byod/internal/domain"
	"byod/internal/dto"

	"github.com/google/uuid"
)

func TestMarkReadIdempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleStudent)
	bob := env.user(t, "bob", domain.RoleTeacher)
	admin := env.user(t, "root", domain.RoleAdmin)

	env.pendingRequest(t, alice, "Alice Laptop")
	env.pendingRequest(t, alice, "Alice Tablet")

	if n, err := env.notifier.UnreadCount(ctx, bob.ID); err != nil || n != 2 {
		t.Fatalf("bob unread = %d, %v", n, err)
	}
	ns := env.notifications(t, bob.ID)

	if err := env.notifier.MarkRead(ctx, bob.ID, ns[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	read, err := env.store.Notifications().Get(ctx, bob.ID, ns[0].ID)
	if err != nil || !read.IsRead || read.ReadAt == nil {
		t.Fatalf("after mark read: %+v, %v", read, err)
	}
	if err := env.notifier.MarkRead(ctx, bob.ID, ns[0].ID); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	again, _ := env.store.Notifications().Get(ctx, bob.ID, ns[0].ID)
	if again.ReadAt == nil || !again.ReadAt.Equal(*read.ReadAt) {
		t.Fatalf("second mark read moved read time: %v -> %v", read.ReadAt, again.ReadAt)
	}
	if n, _ := env.notifier.UnreadCount(ctx, bob.ID); n != 1 {
		t.Fatalf("unread after double mark = %d, want 1", n)
	}

	// a notification of someone else is reported as missing
	if err := env.notifier.MarkRead(ctx, admin.ID, ns[1].ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("foreign mark read err = %v", err)
	}
	if n, _ := env.notifier.UnreadCount(ctx, bob.ID); n != 1 {
		t.Fatalf("foreign mark read changed bob's count to %d", n)
	}

	changed, err := env.notifier.MarkAllRead(ctx, bob.ID)
	if err != nil || changed != 1 {
		t.Fatalf("mark all read = %d, %v", changed, err)
	}
	if changed, _ := env.notifier.MarkAllRead(ctx, bob.ID); changed != 0 {
		t.Fatalf("second mark all read changed %d rows", changed)
	}
	if n, _ := env.notifier.UnreadCount(ctx, bob.ID); n != 0 {
		t.Fatalf("unread after mark all = %d", n)
	}
	if n, _ := env.notifier.UnreadCount(ctx, admin.ID); n != 2 {
		t.Fatalf("admin unread = %d, want 2", n)
	}
}

func TestUnreadCountCacheInvalidatedOnWrite(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleStudent)
	bob := env.user(t, "bob", domain.RoleTeacher)

	if n, _ := env.notifier.UnreadCount(ctx, bob.ID); n != 0 {
		t.Fatalf("initial unread = %d", n)
	}
	if _, ok, _, _ := env.cache.Get(ctx, bob.ID); !ok {
		t.Fatalf("count should be cached after a read")
	}

	env.pendingRequest(t, alice, "Alice Laptop")
	if _, ok, _, _ := env.cache.Get(ctx, bob.ID); ok {
		t.Fatalf("registration must invalidate the approver's cached count")
	}
	if n, _ := env.notifier.UnreadCount(ctx, bob.ID); n != 1 {
		t.Fatalf("unread after registration = %d", n)
	}
}

// interleavedCache runs beforeSet once, between the database count and
// the cache write, to stand in for a concurrent request.
type interleavedCache struct {
	*cache.Memory
	beforeSet func()
}

func (c *interleavedCache) Set(ctx context.Context, userID uuid.UUID, version, n int64) error {
	if f := c.beforeSet; f != nil {
		c.beforeSet = nil
		f()
	}
	return c.Memory.Set(ctx, userID, version, n)
}

func TestUnreadCountNotCachedAcrossConcurrentWrite(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleStudent)
	bob := env.user(t, "bob", domain.RoleTeacher)

	c := &interleavedCache{Memory: cache.NewMemory()}
	notifier := NewNotificationServiceImpl(env.store, c)
	devices := NewDeviceServiceImpl(env.store, notifier)
	c.beforeSet = func() {
		if _, err := devices.Register(ctx, alice, deviceReq("Alice Laptop")); err != nil {
			t.Errorf("register: %v", err)
		}
	}

	first, err := notifier.UnreadCount(ctx, bob.ID)
	if err != nil {
		t.Fatalf("first count: %v", err)
	}
	if first != 0 {
		t.Fatalf("first count = %d, want 0", first)
	}
	second, err := notifier.UnreadCount(ctx, bob.ID)
	if err != nil {
		t.Fatalf("second count: %v", err)
	}
	db, err := env.store.Notifications().CountUnread(ctx, bob.ID)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if db != 1 || second != db {
		t.Fatalf("second = %d, db = %d; stale count served from cache", second, db)
	}
}

func TestNotificationListNewestFirst(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleStudent)
	bob := env.user(t, "bob", domain.RoleTeacher)

	first := env.pendingRequest(t, alice, "Alice Laptop")
	env.pendingRequest(t, alice, "Alice Tablet")
	if _, err := env.requests.Approve(ctx, bob, first, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	list, err := env.notifier.List(ctx, bob.ID, dto.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 2 || list.UnreadCount != 2 || list.PageSize != 20 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if !list.Items[0].CreatedAt.After(list.Items[1].CreatedAt) && !list.Items[0].CreatedAt.Equal(list.Items[1].CreatedAt) {
		t.Fatalf("expected newest first: %v then %v", list.Items[0].CreatedAt, list.Items[1].CreatedAt)
	}

	mine, err := env.notifier.List(ctx, alice.ID, dto.PageRequest{})
	if err != nil || mine.Total != 1 || mine.Items[0].Type != string(domain.NotificationRequestApproved) {
		t.Fatalf("alice list: %+v, %v", mine, err)
	}
	if mine.Items[0].AccessRequestID != first.String() {
		t.Fatalf("notification should reference the request")
	}
}
