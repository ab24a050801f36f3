package worker

// RegisterClientRequest announces an open application window
type RegisterClientRequest struct {
	URL        string `json:"url" validate:"required,url"`
	Controlled bool   `json:"controlled"`
}

// NavigateClientRequest records that a window moved to another page
type NavigateClientRequest struct {
	URL string `json:"url" validate:"required,url"`
}
