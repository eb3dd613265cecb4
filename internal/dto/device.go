package dto

import (
	"time"

	"byod/internal/domain"
)

type DeviceRegisterRequest struct {
	OwnerID         string `json:"ownerId,omitempty"`
	Name            string `json:"name"`
	DeviceType      string `json:"deviceType"`
	MACAddress      string `json:"macAddress"`
	OperatingSystem string `json:"operatingSystem"`
	Notes           string `json:"notes,omitempty"`
}

type DeviceResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	DeviceType       string    `json:"deviceType"`
	MACAddress       string    `json:"macAddress"`
	OperatingSystem  string    `json:"operatingSystem"`
	AccessStatus     string    `json:"accessStatus"`
	ComplianceStatus bool      `json:"complianceStatus"`
	OwnerID          string    `json:"ownerId"`
	RegisteredByID   string    `json:"registeredById,omitempty"`
	RegisteredAt     time.Time `json:"registeredAt"`
	LastSeenAt       time.Time `json:"lastSeenAt"`

	// only filled on the single-device view
	LatestRequest *AccessRequestResponse `json:"latestRequest,omitempty"`
}

func FromDevice(d *domain.Device) DeviceResponse {
	out := DeviceResponse{
		ID:               d.ID.String(),
		Name:             d.Name,
		DeviceType:       string(d.DeviceType),
		MACAddress:       d.MACAddress,
		OperatingSystem:  string(d.OperatingSystem),
		AccessStatus:     string(d.AccessStatus),
		ComplianceStatus: d.ComplianceStatus,
		OwnerID:          d.OwnerID.String(),
		RegisteredAt:     d.RegisteredAt,
		LastSeenAt:       d.LastSeenAt,
	}
	if d.RegisteredByID != nil {
		out.RegisteredByID = d.RegisteredByID.String()
	}
	return out
}

func FromDevices(ds []*domain.Device) []DeviceResponse {
	out := make([]DeviceResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, FromDevice(d))
	}
	return out
}

type DeviceRegisterResponse struct {
	Device            DeviceResponse         `json:"device"`
	AccessRequest     *AccessRequestResponse `json:"accessRequest,omitempty"`
	Outcome           string                 `json:"outcome"`
	NotifiedApprovers int                    `json:"notifiedApprovers"`
}

type DeviceFilter struct {
	Search          string
	DeviceType      string
	OperatingSystem string
	AccessStatus    string
	Compliant       *bool
	PageRequest
}

type DeviceListResponse struct {
	Items  []DeviceResponse `json:"items"`
	Counts map[string]int64 `json:"counts"`
	PageInfo
}

type ComplianceRequest struct {
	Compliant bool `json:"compliant"`
}
