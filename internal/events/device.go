package events

import "time"

type DeviceRegistered struct {
	DeviceID     string    `json:"deviceId"`
	OwnerID      string    `json:"ownerId"`
	RegisteredBy string    `json:"registeredBy"`
	MACAddress   string    `json:"macAddress"`
	Outcome      string    `json:"outcome"`
	RequestID    string    `json:"requestId,omitempty"`
	Notified     int       `json:"notified"`
	At           time.Time `json:"at"`
}

type DeviceStatusChanged struct {
	DeviceID string    `json:"deviceId"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	At       time.Time `json:"at"`
}

type DeviceComplianceChanged struct {
	DeviceID  string    `json:"deviceId"`
	Compliant bool      `json:"compliant"`
	At        time.Time `json:"at"`
}
