package dto

import (
	"time"

	"byod/internal/domain"
)

type ApproveRequest struct {
	Notes string `json:"notes"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type AccessRequestResponse struct {
	ID              string          `json:"id"`
	DeviceID        string          `json:"deviceId"`
	RequesterID     string          `json:"requesterId"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	ResolvedByID    string          `json:"resolvedById,omitempty"`
	ResolvedAt      *time.Time      `json:"resolvedAt,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	RequestedAt     time.Time       `json:"requestedAt"`
	Device          *DeviceResponse `json:"device,omitempty"`
	Requester       *UserResponse   `json:"requester,omitempty"`
}

func FromAccessRequest(r *domain.AccessRequest) AccessRequestResponse {
	out := AccessRequestResponse{
		ID:          r.ID.String(),
		DeviceID:    r.DeviceID.String(),
		RequesterID: r.RequesterID.String(),
		Status:      string(r.Status),
		Notes:       r.Notes,
		ResolvedAt:  r.ResolvedAt,
		RequestedAt: r.RequestedAt,
	}
	if r.ResolvedByID != nil {
		out.ResolvedByID = r.ResolvedByID.String()
	}
	if r.RejectionReason != nil {
		out.RejectionReason = *r.RejectionReason
	}
	return out
}

// AccessRequestDetail is a request joined with its device and requester.
type AccessRequestDetail struct {
	Request   *domain.AccessRequest
	Device    *domain.Device
	Requester *domain.User
}

func FromAccessRequestDetail(d AccessRequestDetail) AccessRequestResponse {
	out := FromAccessRequest(d.Request)
	if d.Device != nil {
		dev := FromDevice(d.Device)
		out.Device = &dev
	}
	if d.Requester != nil {
		u := FromUser(d.Requester)
		out.Requester = &u
	}
	return out
}

func FromAccessRequestDetails(ds []AccessRequestDetail) []AccessRequestResponse {
	out := make([]AccessRequestResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, FromAccessRequestDetail(d))
	}
	return out
}

type AccessRequestListResponse struct {
	Items []AccessRequestResponse `json:"items"`
	PageInfo
}

type MyRequestsResponse struct {
	Items    []AccessRequestResponse `json:"items"`
	Pending  int64                   `json:"pending"`
	Approved int64                   `json:"approved"`
	Rejected int64                   `json:"rejected"`
	PageInfo
}
