package notification

// ============= Request DTOs =============

// ListParams filters the notification history
type ListParams struct {
	Skip             int    `json:"skip,omitempty" validate:"gte=0"`
	Limit            int    `json:"limit,omitempty" validate:"gte=0,lte=200"`
	NotificationType string `json:"notification_type,omitempty"`
	IsRead           *bool  `json:"is_read,omitempty"`
}

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []int64 `json:"notification_ids" validate:"required,min=1"`
}

// ClickRequest represents a user interaction with a visible notification
type ClickRequest struct {
	Action ActionType `json:"action" validate:"omitempty,oneof=view close"`
}

// ============= Response DTOs =============

// HistoryResponse is the refreshed history returned after every read or mutation
type HistoryResponse struct {
	Notifications []HistoryEntry `json:"notifications"`
	Params        ListParams     `json:"params"`
}

// ============= Tray Events =============

const (
	TrayEventShown    = "notification_shown"
	TrayEventReplaced = "notification_replaced"
	TrayEventClosed   = "notification_closed"
)

// TrayEvent is streamed to tray observers
type TrayEvent struct {
	Event        string       `json:"event"`
	Notification Notification `json:"notification"`
}
