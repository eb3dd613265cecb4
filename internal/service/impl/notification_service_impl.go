package impl

import (
	"context"
	"fmt"

	"byod/internal/cache"
	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/observability/logging"
	"byod/internal/observability/metrics"
	"byod/internal/policy"
	"byod/internal/store"

	"github.com/google/uuid"
)

const notificationsPerPage = 20

// NotificationServiceImpl creates and reads notifications. A copy bound to
// a transaction via inTx writes through that transaction and leaves cache
// invalidation to the caller, which must do it after commit.
type NotificationServiceImpl struct {
	store *store.Store
	cache cache.UnreadCounts
	bound bool
}

func NewNotificationServiceImpl(st *store.Store, c cache.UnreadCounts) *NotificationServiceImpl {
	if c == nil {
		c = cache.Noop{}
	}
	return &NotificationServiceImpl{store: st, cache: c}
}

func (n *NotificationServiceImpl) inTx(tx *store.Store) *NotificationServiceImpl {
	c := *n
	c.store = tx
	c.bound = true
	return &c
}

// invalidate drops cached unread counts. Cache failures only cost
// freshness, so they are logged.
func (n *NotificationServiceImpl) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	if err := n.cache.Invalidate(ctx, ids...); err != nil {
		logging.FromContext(ctx).Warn("unread cache invalidate failed", "error", err)
	}
}

func (n *NotificationServiceImpl) written(ctx context.Context, ids ...uuid.UUID) {
	if !n.bound {
		n.invalidate(ctx, ids...)
	}
}

func (n *NotificationServiceImpl) loadRequest(ctx context.Context, req *domain.AccessRequest) (*domain.User, *domain.Device, error) {
	requester, err := n.store.Users().GetByID(ctx, req.RequesterID)
	if err != nil {
		return nil, nil, notFound(err, domain.ErrUserNotFound)
	}
	device, err := n.store.Devices().GetByID(ctx, req.DeviceID)
	if err != nil {
		return nil, nil, notFound(err, domain.ErrDeviceNotFound)
	}
	return requester, device, nil
}

func (n *NotificationServiceImpl) create(ctx context.Context, ns []*domain.Notification) error {
	if err := n.store.Notifications().CreateBatch(ctx, ns); err != nil {
		return err
	}
	for _, x := range ns {
		metrics.NotificationsCreatedTotal.WithLabelValues(string(x.Type)).Inc()
	}
	return nil
}

// NotifyAccessRequest tells every eligible approver about a new request and
// returns who was notified. Disabled users and the requester are skipped.
func (n *NotificationServiceImpl) NotifyAccessRequest(ctx context.Context, req *domain.AccessRequest) ([]domain.UserID, error) {
	requester, device, err := n.loadRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	approvers, err := n.store.Users().ActiveByRoles(ctx, policy.ApproverRoles(requester.Role), requester.ID)
	if err != nil {
		return nil, err
	}

	name := requester.DisplayName()
	title := fmt.Sprintf("New Device Access Request from %s", name)
	message := fmt.Sprintf("%s has requested access for device '%s' (%s).", name, device.Name, device.DeviceType.Display())
	now := nowFunc()
	reqID := req.ID

	ns := make([]*domain.Notification, 0, len(approvers))
	recipients := make([]domain.UserID, 0, len(approvers))
	for _, a := range approvers {
		ns = append(ns, &domain.Notification{
			ID:              uuid.New(),
			RecipientID:     a.ID,
			Type:            domain.NotificationAccessRequest,
			Title:           title,
			Message:         message,
			AccessRequestID: &reqID,
			CreatedAt:       now,
		})
		recipients = append(recipients, a.ID)
	}
	if err := n.create(ctx, ns); err != nil {
		return nil, err
	}
	n.written(ctx, recipients...)

	logging.FromContext(ctx).Info("access request notifications created",
		"request_id", req.ID.String(),
		"recipients", len(recipients),
	)
	return recipients, nil
}

func (n *NotificationServiceImpl) resolverName(ctx context.Context, req *domain.AccessRequest) (string, error) {
	if req.ResolvedByID == nil {
		return "", domain.ErrUserNotFound
	}
	resolver, err := n.store.Users().GetByID(ctx, *req.ResolvedByID)
	if err != nil {
		return "", notFound(err, domain.ErrUserNotFound)
	}
	return resolver.DisplayName(), nil
}

func (n *NotificationServiceImpl) notifyRequester(ctx context.Context, req *domain.AccessRequest, typ domain.NotificationType, title, message string) error {
	reqID := req.ID
	if err := n.create(ctx, []*domain.Notification{{
		ID:              uuid.New(),
		RecipientID:     req.RequesterID,
		Type:            typ,
		Title:           title,
		Message:         message,
		AccessRequestID: &reqID,
		CreatedAt:       nowFunc(),
	}}); err != nil {
		return err
	}
	n.written(ctx, req.RequesterID)
	logging.FromContext(ctx).Info("requester notified",
		"type", string(typ),
		"recipient_id", req.RequesterID.String(),
		"request_id", req.ID.String(),
	)
	return nil
}

func (n *NotificationServiceImpl) NotifyRequestApproved(ctx context.Context, req *domain.AccessRequest) error {
	_, device, err := n.loadRequest(ctx, req)
	if err != nil {
		return err
	}
	approver, err := n.resolverName(ctx, req)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("Your device '%s' has been approved by %s. You can now use this device on the network.", device.Name, approver)
	if req.Notes != "" {
		message += "\n\nNotes: " + req.Notes
	}
	return n.notifyRequester(ctx, req, domain.NotificationRequestApproved, "Device Access Request Approved", message)
}

func (n *NotificationServiceImpl) NotifyRequestRejected(ctx context.Context, req *domain.AccessRequest, reason string) error {
	_, device, err := n.loadRequest(ctx, req)
	if err != nil {
		return err
	}
	approver, err := n.resolverName(ctx, req)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("Your device '%s' access request has been rejected by %s.", device.Name, approver)
	if reason != "" {
		message += "\n\nReason: " + reason
	}
	return n.notifyRequester(ctx, req, domain.NotificationRequestRejected, "Device Access Request Rejected", message)
}

// UnreadCount reads through the cache. The cache version is taken before
// the count so a count that races an invalidation is never stored.
func (n *NotificationServiceImpl) UnreadCount(ctx context.Context, userID domain.UserID) (int64, error) {
	if n.bound {
		return n.store.Notifications().CountUnread(ctx, userID)
	}
	cached := true
	c, ok, version, err := n.cache.Get(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Warn("unread cache read failed", "error", err)
		cached = false
	} else if ok {
		return c, nil
	}
	c, err = n.store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if cached {
		if err := n.cache.Set(ctx, userID, version, c); err != nil {
			logging.FromContext(ctx).Warn("unread cache write failed", "error", err)
		}
	}
	return c, nil
}

func (n *NotificationServiceImpl) List(ctx context.Context, userID domain.UserID, page dto.PageRequest) (*dto.NotificationListResponse, error) {
	page = page.Normalize(notificationsPerPage)
	items, total, err := n.store.Notifications().List(ctx, userID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	unread, err := n.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, 0, len(items))
	for _, x := range items {
		out = append(out, dto.FromNotification(x))
	}
	return &dto.NotificationListResponse{Items: out, UnreadCount: unread, PageInfo: dto.NewPageInfo(page, total)}, nil
}

// MarkRead is idempotent. Notifications of other users are reported as
// missing.
func (n *NotificationServiceImpl) MarkRead(ctx context.Context, userID domain.UserID, id domain.NotificationID) error {
	got, err := n.store.Notifications().Get(ctx, userID, id)
	if err != nil {
		return notFound(err, domain.ErrNotificationNotFound)
	}
	if !got.MarkRead(nowFunc()) {
		return nil
	}
	changed, err := n.store.Notifications().MarkRead(ctx, userID, id, *got.ReadAt)
	if err != nil {
		return err
	}
	if changed > 0 {
		n.written(ctx, userID)
	}
	return nil
}

func (n *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID domain.UserID) (int64, error) {
	changed, err := n.store.Notifications().MarkAllRead(ctx, userID, nowFunc())
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		n.written(ctx, userID)
	}
	return changed, nil
}
