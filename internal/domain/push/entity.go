package push

import (
	"time"
)

// Permission is the notification permission state of the installation
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Keys are the public halves handed to the application server
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is the installation's push subscription. Only the agent can
// issue one; the backend only mirrors its existence per user.
type Subscription struct {
	InstallationID string    `json:"installation_id"`
	UserID         string    `json:"user_id"`
	Endpoint       string    `json:"endpoint"`
	Keys           Keys      `json:"keys"`
	PrivateKey     string    `json:"private_key"`
	VAPIDKey       string    `json:"vapid_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Status is what the push toggle renders
type Status struct {
	Supported  bool       `json:"supported"`
	Subscribed bool       `json:"subscribed"`
	Enabling   bool       `json:"enabling"`
	Permission Permission `json:"permission"`
}
