package app

import (
	"context"

	"romrelease/pkg/types"
)

// ReleasePublisher defines the interface for publishing a release
type ReleasePublisher interface {
	// Publish creates the release and uploads every file in order
	Publish(ctx context.Context, req types.ReleaseRequest) (*Result, error)
}
