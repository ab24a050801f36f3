package push

import "time"

// SubscribeRequest is sent to the backend to register a subscription
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     Keys   `json:"keys"`
}

// VAPIDKeyResponse is returned by the backend's public key endpoint
type VAPIDKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// MessageResponse is the generic backend acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// SetPermissionRequest changes the installation's permission state
type SetPermissionRequest struct {
	Permission Permission `json:"permission" validate:"required,oneof=default granted denied"`
}

// ToastLevel classifies user-visible feedback
type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// Toast is the non-blocking message shown after a toggle
type Toast struct {
	Level   ToastLevel `json:"level"`
	Message string     `json:"message"`
}

// ToggleResult reports the confirmed state after a toggle attempt
type ToggleResult struct {
	Status Status `json:"status"`
	Toast  *Toast `json:"toast,omitempty"`
}

// SubscriptionResponse is the public view of a subscription. The private key never leaves the agent.
type SubscriptionResponse struct {
	InstallationID string `json:"installation_id"`
	UserID         string `json:"user_id"`
	Endpoint       string `json:"endpoint"`
	Keys           Keys   `json:"keys"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ToResponse strips the private key from a subscription
func (s *Subscription) ToResponse() SubscriptionResponse {
	return SubscriptionResponse{
		InstallationID: s.InstallationID,
		UserID:         s.UserID,
		Endpoint:       s.Endpoint,
		Keys:           s.Keys,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      s.UpdatedAt.Format(time.RFC3339),
	}
}

// StreamTokenResponse carries a short-lived token for the event stream
type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
