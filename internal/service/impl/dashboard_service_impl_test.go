package impl

import (
	"context"
	"testing"

	"byod/internal/domain"
)

// alice (student) registers, bob (teacher) approves, and every dashboard
// reflects the result.
func TestDashboardsAfterApproval(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", domain.RoleStudent)
	bob := env.user(t, "bob", domain.RoleTeacher)
	admin := env.user(t, "root", domain.RoleAdmin)

	reqID := env.pendingRequest(t, alice, "Alice Laptop")
	env.pendingRequest(t, alice, "Alice Tablet")
	env.register(t, bob, deviceReq("Bob Laptop"))

	teacherView, err := env.dashboard.Summary(ctx, bob)
	if err != nil {
		t.Fatalf("teacher summary: %v", err)
	}
	if teacherView.PendingRequests != 2 || len(teacherView.RecentRequests) != 2 || teacherView.UnreadNotifications != 2 {
		t.Fatalf("unexpected teacher view: %+v", teacherView)
	}
	if teacherView.Teacher == nil || teacherView.Teacher.Students != 1 || teacherView.Teacher.StudentDevices != 2 {
		t.Fatalf("unexpected teacher block: %+v", teacherView.Teacher)
	}
	if teacherView.DevicesByStatus["active"] != 1 {
		t.Fatalf("teacher own devices: %v", teacherView.DevicesByStatus)
	}

	if _, err := env.requests.Approve(ctx, bob, reqID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	studentView, err := env.dashboard.Summary(ctx, alice)
	if err != nil {
		t.Fatalf("student summary: %v", err)
	}
	if studentView.DevicesByStatus["active"] != 1 || studentView.DevicesByStatus["pending"] != 1 {
		t.Fatalf("student devices: %v", studentView.DevicesByStatus)
	}
	if studentView.PendingRequests != 1 || len(studentView.RecentRequests) != 2 || studentView.UnreadNotifications != 1 {
		t.Fatalf("unexpected student view: %+v", studentView)
	}
	if studentView.Admin != nil || studentView.Teacher != nil {
		t.Fatalf("student must not see role blocks")
	}

	adminView, err := env.dashboard.Summary(ctx, admin)
	if err != nil {
		t.Fatalf("admin summary: %v", err)
	}
	if adminView.Admin == nil || adminView.Admin.TotalDevices != 3 || adminView.Admin.UsersByRole["student"] != 1 {
		t.Fatalf("unexpected admin block: %+v", adminView.Admin)
	}
	if adminView.PendingRequests != 1 || len(adminView.Admin.RecentRegistrations) != 3 {
		t.Fatalf("unexpected admin view: %+v", adminView)
	}
	if adminView.DevicesByStatus["active"] != 2 || adminView.Admin.ComplianceRate != 0 {
		t.Fatalf("admin devices: %v, rate %v", adminView.DevicesByStatus, adminView.Admin.ComplianceRate)
	}
}
