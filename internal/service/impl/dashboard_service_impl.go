package impl

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/store"
)

const (
	dashboardPending       = 10
	dashboardRecent        = 5
	dashboardStudentRecent = 5
)

// DashboardServiceImpl builds read-only, role specific summaries.
type DashboardServiceImpl struct {
	store    *store.Store
	notifier *NotificationServiceImpl
	requests *AccessRequestServiceImpl
}

func NewDashboardServiceImpl(st *store.Store, notifier *NotificationServiceImpl, requests *AccessRequestServiceImpl) *DashboardServiceImpl {
	return &DashboardServiceImpl{store: st, notifier: notifier, requests: requests}
}

func (s *DashboardServiceImpl) Summary(ctx context.Context, actor domain.Actor) (*dto.DashboardResponse, error) {
	unread, err := s.notifier.UnreadCount(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.DashboardResponse{Role: string(actor.Role), UnreadNotifications: unread}

	switch actor.Role {
	case domain.RoleAdmin:
		err = s.admin(ctx, actor, out)
	case domain.RoleTeacher:
		err = s.teacher(ctx, actor, out)
	default:
		err = s.student(ctx, actor, out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardServiceImpl) pendingQueue(ctx context.Context, actor domain.Actor, out *dto.DashboardResponse) error {
	queue, err := s.requests.Queue(ctx, actor, dto.PageRequest{Page: 1, PageSize: dashboardPending})
	if err != nil {
		return err
	}
	out.PendingRequests = queue.Total
	out.RecentRequests = queue.Items
	return nil
}

func (s *DashboardServiceImpl) admin(ctx context.Context, actor domain.Actor, out *dto.DashboardResponse) error {
	byRole, err := s.store.Users().CountByRole(ctx)
	if err != nil {
		return err
	}
	for _, r := range domain.Roles {
		if _, ok := byRole[string(r)]; !ok {
			byRole[string(r)] = 0
		}
	}
	byStatus, err := s.store.Devices().CountByStatus(ctx, store.DeviceQuery{})
	if err != nil {
		return err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	compliant := true
	nCompliant, err := s.store.Devices().Count(ctx, store.DeviceQuery{Compliant: &compliant})
	if err != nil {
		return err
	}
	recent, _, err := s.store.Devices().List(ctx, store.DeviceQuery{}, 0, dashboardRecent)
	if err != nil {
		return err
	}
	if err := s.pendingQueue(ctx, actor, out); err != nil {
		return err
	}

	rate := 0.0
	if total > 0 {
		rate = float64(nCompliant) / float64(total) * 100
	}
	out.DevicesByStatus = byStatus
	out.Admin = &dto.AdminDashboard{
		UsersByRole:         byRole,
		TotalDevices:        total,
		ComplianceRate:      rate,
		RecentRegistrations: dto.FromDevices(recent),
	}
	return nil
}

func (s *DashboardServiceImpl) teacher(ctx context.Context, actor domain.Actor, out *dto.DashboardResponse) error {
	byRole, err := s.store.Users().CountByRole(ctx)
	if err != nil {
		return err
	}
	studentDevices, err := s.store.Devices().Count(ctx, store.DeviceQuery{OwnerRoles: []domain.Role{domain.RoleStudent}})
	if err != nil {
		return err
	}
	owner := actor.ID
	own, err := s.store.Devices().CountByStatus(ctx, store.DeviceQuery{OwnerID: &owner})
	if err != nil {
		return err
	}
	if err := s.pendingQueue(ctx, actor, out); err != nil {
		return err
	}
	out.DevicesByStatus = own
	out.Teacher = &dto.TeacherDashboard{
		Students:       byRole[string(domain.RoleStudent)],
		StudentDevices: studentDevices,
		OwnDevices:     own,
	}
	return nil
}

func (s *DashboardServiceImpl) student(ctx context.Context, actor domain.Actor, out *dto.DashboardResponse) error {
	owner := actor.ID
	own, err := s.store.Devices().CountByStatus(ctx, store.DeviceQuery{OwnerID: &owner})
	if err != nil {
		return err
	}
	mine, err := s.requests.Mine(ctx, actor, dto.PageRequest{Page: 1, PageSize: dashboardStudentRecent})
	if err != nil {
		return err
	}
	out.DevicesByStatus = own
	out.PendingRequests = mine.Pending
	out.RecentRequests = mine.Items
	return nil
}
