package worker

import (
	"context"
)

// ClientType filters MatchAll results. The zero value means window.
type ClientType string

const (
	ClientTypeWindow ClientType = "window"
	ClientTypeWorker ClientType = "worker"
	ClientTypeAll    ClientType = "all"
)

// MatchOptions mirrors the client query used by click routing
type MatchOptions struct {
	Type                ClientType
	IncludeUncontrolled bool
}

// WindowClient is an open application window
type WindowClient interface {
	ID() string
	URL() string
	Focus(ctx context.Context) error
}

// Clients gives the runtime access to the application's open windows
type Clients interface {
	MatchAll(ctx context.Context, opts MatchOptions) ([]WindowClient, error)
	OpenWindow(ctx context.Context, url string) (WindowClient, error)
	Claim(ctx context.Context) error
}
