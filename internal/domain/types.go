package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type DeviceID = uuid.UUID
type AccessRequestID = uuid.UUID
type NotificationID = uuid.UUID
type CredentialID = uuid.UUID
