package impl

import (
	"context"
	"errors"
	"strings"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/events"
	"byod/internal/observability/metrics"
	"byod/internal/policy"
	"byod/internal/store"

	"github.com/google/uuid"
)

const devicesPerPage = 10

type DeviceServiceImpl struct {
	store    *store.Store
	notifier *NotificationServiceImpl
}

func NewDeviceServiceImpl(st *store.Store, notifier *NotificationServiceImpl) *DeviceServiceImpl {
	return &DeviceServiceImpl{store: st, notifier: notifier}
}

type deviceInput struct {
	name string
	mac  string
	typ  domain.DeviceType
	os   domain.OperatingSystem
}

func validateDevice(r dto.DeviceRegisterRequest) (deviceInput, error) {
	name, err := domain.NormalizeDeviceName(r.Name)
	if err != nil {
		return deviceInput{}, err
	}
	mac, err := domain.NormalizeMAC(r.MACAddress)
	if err != nil {
		return deviceInput{}, err
	}
	typ := domain.DeviceType(strings.ToLower(strings.TrimSpace(r.DeviceType)))
	os := domain.OperatingSystem(strings.ToLower(strings.TrimSpace(r.OperatingSystem)))
	if err := domain.CheckPlatform(typ, os); err != nil {
		return deviceInput{}, err
	}
	return deviceInput{name: name, mac: mac, typ: typ, os: os}, nil
}

// Register validates the device, decides between auto-approval and review,
// and writes the device, the pending request and the approver fan-out in
// one transaction.
func (s *DeviceServiceImpl) Register(ctx context.Context, actor domain.Actor, r dto.DeviceRegisterRequest) (*dto.DeviceRegisterResponse, error) {
	log := actorLogger(ctx, actor)

	resp, recipients, err := s.register(ctx, actor, r)
	if err != nil {
		label := "invalid"
		if errors.Is(err, domain.ErrPermissionDenied) {
			label = "forbidden"
		}
		metrics.DeviceRegistrationsTotal.WithLabelValues(label).Inc()
		if errors.Is(err, domain.ErrPermissionDenied) || errors.Is(err, domain.ErrValidation) {
			log.Warn("device registration refused", "owner_id", r.OwnerID, "mac", r.MACAddress, "error", err)
			auditFailure(ctx, s.store, actor, auditEntry{
				action:     domain.ActionDeviceRegister,
				entityType: "device",
				err:        err,
				meta:       map[string]string{"ownerId": r.OwnerID, "macAddress": r.MACAddress, "error": err.Error()},
			})
		}
		return nil, err
	}

	s.notifier.invalidate(ctx, recipients...)
	metrics.DeviceRegistrationsTotal.WithLabelValues(resp.Outcome).Inc()
	log.Info("device registered",
		"device_id", resp.Device.ID,
		"owner_id", resp.Device.OwnerID,
		"outcome", resp.Outcome,
		"notified", resp.NotifiedApprovers,
	)
	return resp, nil
}

func (s *DeviceServiceImpl) register(ctx context.Context, actor domain.Actor, r dto.DeviceRegisterRequest) (*dto.DeviceRegisterResponse, []domain.UserID, error) {
	in, err := validateDevice(r)
	if err != nil {
		return nil, nil, err
	}

	ownerID := actor.ID
	if strings.TrimSpace(r.OwnerID) != "" {
		if ownerID, err = domain.ParseID(strings.TrimSpace(r.OwnerID)); err != nil {
			return nil, nil, err
		}
	}

	// decided before anything is read or written for another user
	outcome := policy.Decide(actor.Role, ownerID == actor.ID)
	if outcome == policy.Forbidden {
		return nil, nil, domain.ErrRegistrationForbidden
	}

	var (
		out        dto.DeviceRegisterResponse
		recipients []domain.UserID
	)
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		owner, err := tx.Users().GetByID(ctx, ownerID)
		if err != nil {
			return notFound(err, domain.ErrUserNotFound)
		}

		exists, err := tx.Devices().MACExists(ctx, in.mac)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateMAC
		}
		exists, err = tx.Devices().NameExists(ctx, owner.ID, in.name)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateDeviceName
		}

		now := nowFunc()
		registrar := actor.ID
		device := &domain.Device{
			ID:              uuid.New(),
			Name:            in.name,
			DeviceType:      in.typ,
			MACAddress:      in.mac,
			OperatingSystem: in.os,
			AccessStatus:    domain.AccessPending,
			OwnerID:         owner.ID,
			RegisteredByID:  &registrar,
			RegisteredAt:    now,
			LastSeenAt:      now,
			UpdatedAt:       now,
		}
		if outcome == policy.AutoApprove {
			device.AccessStatus = domain.AccessActive
		}
		if err := tx.Devices().Create(ctx, device); err != nil {
			return err
		}

		var req *domain.AccessRequest
		if outcome == policy.Pending {
			req = &domain.AccessRequest{
				ID:          uuid.New(),
				DeviceID:    device.ID,
				RequesterID: owner.ID,
				Status:      domain.RequestPending,
				Notes:       strings.TrimSpace(r.Notes),
				RequestedAt: now,
			}
			if err := tx.AccessRequests().Create(ctx, req); err != nil {
				return err
			}
			recipients, err = s.notifier.inTx(tx).NotifyAccessRequest(ctx, req)
			if err != nil {
				return err
			}
		}

		out = dto.DeviceRegisterResponse{
			Device:            dto.FromDevice(device),
			Outcome:           outcome.String(),
			NotifiedApprovers: len(recipients),
		}
		ev := events.DeviceRegistered{
			DeviceID:     device.ID.String(),
			OwnerID:      owner.ID.String(),
			RegisteredBy: actor.ID.String(),
			MACAddress:   device.MACAddress,
			Outcome:      outcome.String(),
			Notified:     len(recipients),
			At:           now,
		}
		if req != nil {
			ar := dto.FromAccessRequest(req)
			out.AccessRequest = &ar
			ev.RequestID = req.ID.String()
		}
		return audit(ctx, tx, actor, auditEntry{
			action:     domain.ActionDeviceRegister,
			entityType: "device",
			entityID:   device.ID,
			meta:       ev,
		})
	})
	if errors.Is(err, store.ErrDuplicate) {
		// a concurrent registration won the race past the checks above
		err = s.duplicateError(ctx, in.mac)
	}
	if err != nil {
		return nil, nil, err
	}
	return &out, recipients, nil
}

// duplicateError tells which unique index a failed insert hit. It runs
// after the transaction rolled back, against committed rows.
func (s *DeviceServiceImpl) duplicateError(ctx context.Context, mac string) error {
	taken, err := s.store.Devices().MACExists(ctx, mac)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateMAC
	}
	return domain.ErrDuplicateDeviceName
}

func parseFilter(f dto.DeviceFilter) (store.DeviceQuery, error) {
	q := store.DeviceQuery{Search: f.Search, Compliant: f.Compliant}
	if f.DeviceType != "" {
		q.DeviceType = domain.DeviceType(strings.ToLower(f.DeviceType))
		if !q.DeviceType.Valid() {
			return q, domain.ErrInvalidDeviceType
		}
	}
	if f.OperatingSystem != "" {
		q.OperatingSystem = domain.OperatingSystem(strings.ToLower(f.OperatingSystem))
		if !q.OperatingSystem.Valid() {
			return q, domain.ErrInvalidOperatingSystem
		}
	}
	if f.AccessStatus != "" {
		q.AccessStatus = domain.AccessStatus(strings.ToLower(f.AccessStatus))
		if !q.AccessStatus.Valid() {
			return q, domain.ErrInvalidAccessStatus
		}
	}
	return q, nil
}

// List returns the actor's own devices with per-status and compliance
// counts over all of them.
func (s *DeviceServiceImpl) List(ctx context.Context, actor domain.Actor, f dto.DeviceFilter) (*dto.DeviceListResponse, error) {
	q, err := parseFilter(f)
	if err != nil {
		return nil, err
	}
	owner := actor.ID
	q.OwnerID = &owner
	page := f.PageRequest.Normalize(devicesPerPage)

	devices, total, err := s.store.Devices().List(ctx, q, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.Devices().CountByStatus(ctx, store.DeviceQuery{OwnerID: &owner})
	if err != nil {
		return nil, err
	}
	compliant := true
	nCompliant, err := s.store.Devices().Count(ctx, store.DeviceQuery{OwnerID: &owner, Compliant: &compliant})
	if err != nil {
		return nil, err
	}
	var all int64
	for _, st := range domain.AccessStatuses {
		all += counts[string(st)]
	}
	counts["total"] = all
	counts["compliant"] = nCompliant
	counts["non_compliant"] = all - nCompliant

	return &dto.DeviceListResponse{
		Items:    dto.FromDevices(devices),
		Counts:   counts,
		PageInfo: dto.NewPageInfo(page, total),
	}, nil
}

func canSeeDevice(actor domain.Actor, d *domain.Device) bool {
	if actor.IsAdmin() || d.OwnerID == actor.ID {
		return true
	}
	return d.RegisteredByID != nil && *d.RegisteredByID == actor.ID
}

func (s *DeviceServiceImpl) Get(ctx context.Context, actor domain.Actor, id domain.DeviceID) (*dto.DeviceResponse, error) {
	d, err := s.store.Devices().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrDeviceNotFound)
	}
	if !canSeeDevice(actor, d) {
		return nil, domain.ErrDeviceAccessDenied
	}
	out := dto.FromDevice(d)
	// auto-approved devices never had a request
	req, err := s.store.AccessRequests().LatestForDevice(ctx, d.ID)
	switch {
	case err == nil:
		ar := dto.FromAccessRequest(req)
		out.LatestRequest = &ar
	case !errors.Is(err, store.ErrRecordNotFound):
		return nil, err
	}
	return &out, nil
}

func (s *DeviceServiceImpl) Suspend(ctx context.Context, actor domain.Actor, id domain.DeviceID) (*dto.DeviceResponse, error) {
	return s.transition(ctx, actor, id, domain.AccessSuspended, domain.ActionDeviceSuspend)
}

func (s *DeviceServiceImpl) Reactivate(ctx context.Context, actor domain.Actor, id domain.DeviceID) (*dto.DeviceResponse, error) {
	return s.transition(ctx, actor, id, domain.AccessActive, domain.ActionDeviceReactivate)
}

// transition applies an admin status change. Pending and rejected devices
// can only move through their access request.
func (s *DeviceServiceImpl) transition(ctx context.Context, actor domain.Actor, id domain.DeviceID, to domain.AccessStatus, action string) (*dto.DeviceResponse, error) {
	var out dto.DeviceResponse
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if !actor.IsAdmin() {
			return domain.ErrAdminOnly
		}
		d, err := tx.Devices().GetByID(ctx, id)
		if err != nil {
			return notFound(err, domain.ErrDeviceNotFound)
		}
		if d.AccessStatus == domain.AccessPending || d.AccessStatus == domain.AccessRejected {
			return domain.ErrInvalidTransition
		}
		from := d.AccessStatus
		now := nowFunc()
		if err := d.TransitionTo(to, now); err != nil {
			return err
		}
		ok, err := tx.Devices().UpdateStatus(ctx, d.ID, from, to, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		out = dto.FromDevice(d)
		return audit(ctx, tx, actor, auditEntry{
			action:     action,
			entityType: "device",
			entityID:   d.ID,
			meta:       events.DeviceStatusChanged{DeviceID: d.ID.String(), From: string(from), To: string(to), At: now},
		})
	})
	if err != nil {
		actorLogger(ctx, actor).Warn("device status change refused", "device_id", id.String(), "to", string(to), "error", err)
		if !errors.Is(err, domain.ErrNotFound) {
			auditFailure(ctx, s.store, actor, auditEntry{action: action, entityType: "device", entityID: id, err: err,
				meta: map[string]string{"to": string(to), "error": err.Error()}})
		}
		return nil, err
	}
	actorLogger(ctx, actor).Info("device status changed", "device_id", id.String(), "to", string(to))
	return &out, nil
}

// SetCompliance flags a device as compliant or not. Owners and admins only.
func (s *DeviceServiceImpl) SetCompliance(ctx context.Context, actor domain.Actor, id domain.DeviceID, compliant bool) (*dto.DeviceResponse, error) {
	var out dto.DeviceResponse
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		d, err := tx.Devices().GetByID(ctx, id)
		if err != nil {
			return notFound(err, domain.ErrDeviceNotFound)
		}
		if !actor.IsAdmin() && d.OwnerID != actor.ID {
			return domain.ErrDeviceAccessDenied
		}
		now := nowFunc()
		if err := tx.Devices().SetCompliance(ctx, d.ID, compliant, now); err != nil {
			return err
		}
		d.ComplianceStatus = compliant
		d.UpdatedAt = now
		out = dto.FromDevice(d)
		return audit(ctx, tx, actor, auditEntry{
			action:     domain.ActionDeviceCompliance,
			entityType: "device",
			entityID:   d.ID,
			meta:       events.DeviceComplianceChanged{DeviceID: d.ID.String(), Compliant: compliant, At: now},
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			actorLogger(ctx, actor).Warn("compliance change refused", "device_id", id.String(), "error", err)
			auditFailure(ctx, s.store, actor, auditEntry{action: domain.ActionDeviceCompliance, entityType: "device", entityID: id, err: err})
		}
		return nil, err
	}
	return &out, nil
}
