package events

import "time"

type AccessRequestResolved struct {
	RequestID   string    `json:"requestId"`
	DeviceID    string    `json:"deviceId"`
	RequesterID string    `json:"requesterId"`
	Decision    string    `json:"decision"`
	Notes       string    `json:"notes,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	At          time.Time `json:"at"`
}

// AccessRequestDenied records a refused or invalid attempt to resolve a
// request.
type AccessRequestDenied struct {
	RequestID string    `json:"requestId"`
	Decision  string    `json:"decision"`
	Error     string    `json:"error"`
	At        time.Time `json:"at"`
}
