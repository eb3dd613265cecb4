package impl

import (
	"context"
	"errors"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/events"
	"byod/internal/observability/metrics"
	"byod/internal/policy"
	"byod/internal/store"

	"github.com/google/uuid"
)

const requestsPerPage = 20

type decision string

const (
	decisionApprove decision = "approve"
	decisionReject  decision = "reject"
)

func (d decision) action() string {
	if d == decisionApprove {
		return domain.ActionRequestApprove
	}
	return domain.ActionRequestReject
}

type AccessRequestServiceImpl struct {
	store    *store.Store
	notifier *NotificationServiceImpl
}

func NewAccessRequestServiceImpl(st *store.Store, notifier *NotificationServiceImpl) *AccessRequestServiceImpl {
	return &AccessRequestServiceImpl{store: st, notifier: notifier}
}

func (s *AccessRequestServiceImpl) Approve(ctx context.Context, actor domain.Actor, id domain.AccessRequestID, notes string) (*dto.AccessRequestResponse, error) {
	return s.resolve(ctx, actor, id, decisionApprove, notes)
}

// Reject requires a non-blank reason, checked before storage is touched.
func (s *AccessRequestServiceImpl) Reject(ctx context.Context, actor domain.Actor, id domain.AccessRequestID, reason string) (*dto.AccessRequestResponse, error) {
	return s.resolve(ctx, actor, id, decisionReject, reason)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "denied"
	case errors.Is(err, domain.ErrAlreadyResolved):
		return "conflict"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// resolve runs one approve or reject: permission check, state transition,
// guarded update, device status and requester notification, all in one
// transaction.
func (s *AccessRequestServiceImpl) resolve(ctx context.Context, actor domain.Actor, id domain.AccessRequestID, d decision, text string) (*dto.AccessRequestResponse, error) {
	log := actorLogger(ctx, actor).With("request_id", id.String(), "decision", string(d))

	var (
		out         dto.AccessRequestResponse
		requesterID domain.UserID
	)
	err := func() error {
		if d == decisionReject {
			reason, err := domain.NormalizeRejectionReason(text)
			if err != nil {
				return err
			}
			text = reason
		}
		return s.store.WithTx(ctx, func(tx *store.Store) error {
			req, err := tx.AccessRequests().GetByID(ctx, id)
			if err != nil {
				return notFound(err, domain.ErrRequestNotFound)
			}
			requester, err := tx.Users().GetByID(ctx, req.RequesterID)
			if err != nil {
				return notFound(err, domain.ErrUserNotFound)
			}
			if err := policy.CanResolve(actor.ID, actor.Role, requester.ID, requester.Role); err != nil {
				return err
			}

			now := nowFunc()
			if d == decisionApprove {
				err = req.Approve(actor.ID, text, now)
			} else {
				err = req.Reject(actor.ID, text, now)
			}
			if err != nil {
				return err
			}

			// single writer: a concurrent resolution leaves zero rows here
			ok, err := tx.AccessRequests().Resolve(ctx, req)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrRequestAlreadyResolved
			}

			to := domain.DeviceStatusFor(req.Status)
			ok, err = tx.Devices().UpdateStatus(ctx, req.DeviceID, domain.AccessPending, to, now)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrInvalidTransition
			}

			notifier := s.notifier.inTx(tx)
			if d == decisionApprove {
				err = notifier.NotifyRequestApproved(ctx, req)
			} else {
				err = notifier.NotifyRequestRejected(ctx, req, text)
			}
			if err != nil {
				return err
			}

			requesterID = req.RequesterID
			out = dto.FromAccessRequest(req)
			ev := events.AccessRequestResolved{
				RequestID:   req.ID.String(),
				DeviceID:    req.DeviceID.String(),
				RequesterID: req.RequesterID.String(),
				Decision:    string(d),
				Notes:       req.Notes,
				At:          now,
			}
			if req.RejectionReason != nil {
				ev.Reason = *req.RejectionReason
			}
			return audit(ctx, tx, actor, auditEntry{
				action:     d.action(),
				entityType: "access_request",
				entityID:   req.ID,
				meta:       ev,
			})
		})
	}()

	metrics.AccessRequestDecisionsTotal.WithLabelValues(string(d), resultLabel(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) || errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrAlreadyResolved) {
			log.Warn("access request resolution refused", "error", err)
			auditFailure(ctx, s.store, actor, auditEntry{
				action:     d.action(),
				entityType: "access_request",
				entityID:   id,
				err:        err,
				meta:       events.AccessRequestDenied{RequestID: id.String(), Decision: string(d), Error: err.Error(), At: nowFunc()},
			})
		} else {
			log.Error("access request resolution failed", "error", err)
		}
		return nil, err
	}

	s.notifier.invalidate(ctx, requesterID)
	log.Info("access request resolved", "status", out.Status)
	return &out, nil
}

// Get returns a request to its requester or to anyone eligible to resolve
// it.
func (s *AccessRequestServiceImpl) Get(ctx context.Context, actor domain.Actor, id domain.AccessRequestID) (*dto.AccessRequestResponse, error) {
	req, err := s.store.AccessRequests().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrRequestNotFound)
	}
	requester, err := s.store.Users().GetByID(ctx, req.RequesterID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	if requester.ID != actor.ID && !policy.IsApproverRole(actor.Role, requester.Role) {
		return nil, domain.ErrRequestAccessDenied
	}
	device, err := s.store.Devices().GetByID(ctx, req.DeviceID)
	if err != nil {
		return nil, notFound(err, domain.ErrDeviceNotFound)
	}
	out := dto.FromAccessRequestDetail(dto.AccessRequestDetail{Request: req, Device: device, Requester: requester})
	return &out, nil
}

func (s *AccessRequestServiceImpl) details(ctx context.Context, reqs []*domain.AccessRequest) ([]dto.AccessRequestDetail, error) {
	deviceIDs := make([]uuid.UUID, 0, len(reqs))
	userIDs := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		deviceIDs = append(deviceIDs, r.DeviceID)
		userIDs = append(userIDs, r.RequesterID)
	}
	devices, err := s.store.Devices().GetByIDs(ctx, deviceIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.store.Users().GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccessRequestDetail, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, dto.AccessRequestDetail{Request: r, Device: devices[r.DeviceID], Requester: users[r.RequesterID]})
	}
	return out, nil
}

// Queue lists the pending requests the actor may resolve, newest first.
func (s *AccessRequestServiceImpl) Queue(ctx context.Context, actor domain.Actor, page dto.PageRequest) (*dto.AccessRequestListResponse, error) {
	if !policy.CanViewQueue(actor.Role) {
		return nil, domain.ErrQueueForbidden
	}
	page = page.Normalize(requestsPerPage)
	reqs, total, err := s.store.AccessRequests().Pending(ctx, policy.QueueRoles(actor.Role), page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, reqs)
	if err != nil {
		return nil, err
	}
	return &dto.AccessRequestListResponse{
		Items:    dto.FromAccessRequestDetails(details),
		PageInfo: dto.NewPageInfo(page, total),
	}, nil
}

func (s *AccessRequestServiceImpl) Mine(ctx context.Context, actor domain.Actor, page dto.PageRequest) (*dto.MyRequestsResponse, error) {
	page = page.Normalize(requestsPerPage)
	reqs, total, err := s.store.AccessRequests().ByRequester(ctx, actor.ID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.AccessRequests().CountByRequesterStatus(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, reqs)
	if err != nil {
		return nil, err
	}
	return &dto.MyRequestsResponse{
		Items:    dto.FromAccessRequestDetails(details),
		Pending:  counts[string(domain.RequestPending)],
		Approved: counts[string(domain.RequestApproved)],
		Rejected: counts[string(domain.RequestRejected)],
		PageInfo: dto.NewPageInfo(page, total),
	}, nil
}
