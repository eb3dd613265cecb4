package dto

type DashboardResponse struct {
	Role                string                  `json:"role"`
	UnreadNotifications int64                   `json:"unreadNotifications"`
	DevicesByStatus     map[string]int64        `json:"devicesByStatus"`
	PendingRequests     int64                   `json:"pendingRequests"`
	RecentRequests      []AccessRequestResponse `json:"recentRequests"`
	Admin               *AdminDashboard         `json:"admin,omitempty"`
	Teacher             *TeacherDashboard       `json:"teacher,omitempty"`
}

type AdminDashboard struct {
	UsersByRole         map[string]int64 `json:"usersByRole"`
	TotalDevices        int64            `json:"totalDevices"`
	ComplianceRate      float64          `json:"complianceRate"`
	RecentRegistrations []DeviceResponse `json:"recentRegistrations"`
}

type TeacherDashboard struct {
	Students       int64            `json:"students"`
	StudentDevices int64            `json:"studentDevices"`
	OwnDevices     map[string]int64 `json:"ownDevices"`
}
